package model

import "time"

type WorkOrderStatus string

const (
	StatusPending    WorkOrderStatus = "pending"
	StatusInProgress WorkOrderStatus = "in_progress"
	StatusCompleted  WorkOrderStatus = "completed"
	StatusCancelled  WorkOrderStatus = "cancelled"
)

func (s WorkOrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status ends the normal lifecycle.
func (s WorkOrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Priority string

const (
	PriorityEmergency Priority = "emergency"
	PriorityHigh      Priority = "high"
	PriorityNormal    Priority = "normal"
	PriorityLow       Priority = "low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityEmergency, PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

type ServiceType string

const (
	ServiceMaintenance ServiceType = "maintenance"
	ServiceRepair      ServiceType = "repair"
	ServiceReplace     ServiceType = "replace"
	ServiceInspection  ServiceType = "inspection"
	ServicePreventive  ServiceType = "preventive"
	ServiceCleaning    ServiceType = "cleaning"
	ServiceOther       ServiceType = "other"
)

func (t ServiceType) Valid() bool {
	switch t {
	case ServiceMaintenance, ServiceRepair, ServiceReplace, ServiceInspection,
		ServicePreventive, ServiceCleaning, ServiceOther:
		return true
	}
	return false
}

// SignerType identifies one of the two counter-signing roles on a work order.
type SignerType string

const (
	SignerTLCorpRep   SignerType = "tl_corp_rep"
	SignerBuildingRep SignerType = "building_rep"
)

func (t SignerType) Valid() bool {
	return t == SignerTLCorpRep || t == SignerBuildingRep
}

// Date and time-of-day fields are stored as formatted strings, matching the
// legacy schema. Empty string means not set.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

type WorkOrder struct {
	ID              uint64 `gorm:"primaryKey" json:"id"`
	WorkOrderNumber string `gorm:"type:varchar(32);uniqueIndex;not null" json:"work_order_number"`

	// Intake
	ReceivedDate string `gorm:"type:varchar(10)" json:"received_date,omitempty"`
	TimeReceived string `gorm:"type:varchar(5)" json:"time_received,omitempty"`
	Description  string `gorm:"type:text;not null" json:"description"`

	// Requester contact
	ContactName  string `gorm:"type:varchar(128)" json:"contact_name,omitempty"`
	ContactPhone string `gorm:"type:varchar(32)" json:"contact_phone,omitempty"`
	ContactEmail string `gorm:"type:varchar(128)" json:"contact_email,omitempty"`
	Company      string `gorm:"type:varchar(128)" json:"company,omitempty"`
	Department   string `gorm:"type:varchar(128)" json:"department,omitempty"`

	// Location
	Location           string `gorm:"type:varchar(255)" json:"location,omitempty"`
	Unit               string `gorm:"type:varchar(64)" json:"unit,omitempty"`
	Area               string `gorm:"type:varchar(128)" json:"area,omitempty"`
	AccessInstructions string `gorm:"type:text" json:"access_instructions,omitempty"`
	PreferredEntry     string `gorm:"type:varchar(128)" json:"preferred_entry_window,omitempty"`

	Priority    Priority    `gorm:"type:varchar(16);index;not null" json:"priority"`
	ServiceType ServiceType `gorm:"type:varchar(16);index;not null" json:"service_type"`

	AssignedTo string `gorm:"type:varchar(64);index" json:"assigned_to,omitempty"`
	ProjectID  string `gorm:"type:varchar(64);index" json:"project_id,omitempty"`

	// Scheduling and execution
	ScheduledDate   string   `gorm:"type:varchar(10)" json:"scheduled_date,omitempty"`
	ScheduledTime   string   `gorm:"type:varchar(5)" json:"scheduled_time,omitempty"`
	TimeIn          string   `gorm:"type:varchar(5)" json:"time_in,omitempty"`
	TimeOut         string   `gorm:"type:varchar(5)" json:"time_out,omitempty"`
	TotalLaborHours *float64 `gorm:"type:decimal(6,2)" json:"total_labor_hours,omitempty"`

	// Lifecycle. The column keeps its legacy name.
	Status        WorkOrderStatus `gorm:"column:work_completed;type:varchar(16);index;not null;default:pending" json:"work_completed"`
	CompletedDate string          `gorm:"type:varchar(10)" json:"completed_date,omitempty"`
	CompletedTime string          `gorm:"type:varchar(5)" json:"completed_time,omitempty"`
	WorkSummary   string          `gorm:"type:text" json:"work_summary,omitempty"`

	CreatedBy string    `gorm:"type:varchar(64)" json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Materials  []Material  `gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE" json:"materials,omitempty"`
	Signatures []Signature `gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE" json:"signatures,omitempty"`
}

func (WorkOrder) TableName() string { return "work_orders" }

// Material is a cost line item on a work order. TotalCost is derived at write
// time (quantity * unit cost) and is null when unit cost is unknown.
type Material struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	WorkOrderID uint64    `gorm:"index;not null" json:"work_order_id"`
	Name        string    `gorm:"type:varchar(128);not null" json:"name"`
	Quantity    float64   `gorm:"type:decimal(12,3);not null" json:"quantity"`
	Unit        string    `gorm:"type:varchar(32)" json:"unit,omitempty"`
	UnitCost    *float64  `gorm:"type:decimal(12,2)" json:"unit_cost,omitempty"`
	TotalCost   *float64  `gorm:"type:decimal(14,2)" json:"total_cost,omitempty"`
	Notes       string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Material) TableName() string { return "work_order_materials" }

// Signature is an append-once audit record, at most one per signer type.
// SignatureImage is an opaque reference to externally stored image data.
type Signature struct {
	ID             uint64     `gorm:"primaryKey" json:"id"`
	WorkOrderID    uint64     `gorm:"not null;uniqueIndex:idx_signatures_wo_signer" json:"work_order_id"`
	SignerType     SignerType `gorm:"type:varchar(16);not null;uniqueIndex:idx_signatures_wo_signer" json:"signer_type"`
	SignerName     string     `gorm:"type:varchar(128);not null" json:"signer_name"`
	SignerTitle    string     `gorm:"type:varchar(128)" json:"signer_title,omitempty"`
	SignatureImage string     `gorm:"type:text" json:"signature_image,omitempty"`
	SignedDate     string     `gorm:"type:varchar(10)" json:"signed_date,omitempty"`
	SignedTime     string     `gorm:"type:varchar(5)" json:"signed_time,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (Signature) TableName() string { return "work_order_signatures" }
