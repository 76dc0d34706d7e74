// Package policy implements role-based capability checks for work order
// operations. The caller identity is always passed explicitly; nothing here
// reads ambient request state.
package policy

import (
	"fmt"

	"github.com/fieldworks/workorder-service/internal/errs"
	"github.com/fieldworks/workorder-service/internal/model"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleStaff  Role = "staff"
	RoleClient Role = "client"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStaff || r == RoleClient
}

// Actor is the authenticated caller, as supplied by the identity provider.
type Actor struct {
	ID   string
	Role Role
}

type Operation string

const (
	OpRead            Operation = "read"
	OpCreate          Operation = "create"
	OpUpdateExecution Operation = "update_execution"
	OpChangeStatus    Operation = "change_status"
	OpManageMaterials Operation = "manage_materials"
	OpRecordSignature Operation = "record_signature"
	OpDelete          Operation = "delete"
)

// Allow reports whether actor may perform op. wo may be nil for operations
// that do not target an existing record (OpCreate). Staff may only mutate
// work orders assigned to them; clients have no access to the engine at all
// (their read paths live in the document-sharing collaborator).
func Allow(actor Actor, op Operation, wo *model.WorkOrder) bool {
	switch actor.Role {
	case RoleAdmin:
		return true
	case RoleStaff:
		switch op {
		case OpRead, OpCreate:
			return true
		case OpUpdateExecution, OpChangeStatus, OpManageMaterials, OpRecordSignature:
			return wo != nil && wo.AssignedTo != "" && wo.AssignedTo == actor.ID
		}
		return false
	}
	return false
}

// Require returns ErrAccessDenied when Allow fails. Services call this before
// touching any state.
func Require(actor Actor, op Operation, wo *model.WorkOrder) error {
	if !Allow(actor, op, wo) {
		return fmt.Errorf("%w: role %q may not %s", errs.ErrAccessDenied, actor.Role, op)
	}
	return nil
}
