package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fieldworks/workorder-service/internal/errs"
	"github.com/fieldworks/workorder-service/internal/model"
	"github.com/fieldworks/workorder-service/internal/policy"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Clock supplies "now" for completion timestamps and numbering. Injectable so
// tests are deterministic.
type Clock func() time.Time

// maxNumberAttempts bounds the retry loop on work_order_number collisions.
const maxNumberAttempts = 5

type WorkOrderService struct {
	db  *gorm.DB
	now Clock
	log *zap.Logger

	// nextNumber is overridable in tests to force collisions.
	nextNumber func(ctx context.Context, today time.Time) (string, error)
}

func NewWorkOrderService(db *gorm.DB, now Clock, log *zap.Logger) *WorkOrderService {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &WorkOrderService{db: db, now: now, log: log}
	s.nextNumber = s.nextWorkOrderNumber
	return s
}

type CreateWorkOrderInput struct {
	Description  string
	ReceivedDate string
	TimeReceived string

	ContactName  string
	ContactPhone string
	ContactEmail string
	Company      string
	Department   string

	Location           string
	Unit               string
	Area               string
	AccessInstructions string
	PreferredEntry     string

	Priority    model.Priority
	ServiceType model.ServiceType

	AssignedTo string
	ProjectID  string

	ScheduledDate string
	ScheduledTime string
}

func (in *CreateWorkOrderInput) validate() error {
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("%w: description is required", errs.ErrValidation)
	}
	if !in.Priority.Valid() {
		return fmt.Errorf("%w: invalid priority %q", errs.ErrValidation, in.Priority)
	}
	if !in.ServiceType.Valid() {
		return fmt.Errorf("%w: invalid service_type %q", errs.ErrValidation, in.ServiceType)
	}
	if !model.ValidDate(in.ReceivedDate) || !model.ValidDate(in.ScheduledDate) {
		return fmt.Errorf("%w: dates must be YYYY-MM-DD", errs.ErrValidation)
	}
	if !model.ValidClock(in.TimeReceived) || !model.ValidClock(in.ScheduledTime) {
		return fmt.Errorf("%w: times must be HH:MM", errs.ErrValidation)
	}
	return nil
}

// Create registers a new work order in status pending, assigning the next
// daily sequence number. On a number collision with a concurrent creator it
// re-derives the number and retries up to maxNumberAttempts before giving up
// with ErrNumberGeneration. It never silently reuses a number.
func (s *WorkOrderService) Create(ctx context.Context, actor policy.Actor, in CreateWorkOrderInput) (*model.WorkOrder, error) {
	if err := policy.Require(actor, policy.OpCreate, nil); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	wo := &model.WorkOrder{
		Description:        strings.TrimSpace(in.Description),
		ReceivedDate:       in.ReceivedDate,
		TimeReceived:       in.TimeReceived,
		ContactName:        in.ContactName,
		ContactPhone:       in.ContactPhone,
		ContactEmail:       in.ContactEmail,
		Company:            in.Company,
		Department:         in.Department,
		Location:           in.Location,
		Unit:               in.Unit,
		Area:               in.Area,
		AccessInstructions: in.AccessInstructions,
		PreferredEntry:     in.PreferredEntry,
		Priority:           in.Priority,
		ServiceType:        in.ServiceType,
		AssignedTo:         in.AssignedTo,
		ProjectID:          in.ProjectID,
		ScheduledDate:      in.ScheduledDate,
		ScheduledTime:      in.ScheduledTime,
		Status:             model.StatusPending,
		CreatedBy:          actor.ID,
	}
	today := s.now()
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		number, err := s.nextNumber(ctx, today)
		if err != nil {
			return nil, err
		}
		wo.WorkOrderNumber = number
		err = s.db.WithContext(ctx).Create(wo).Error
		if err == nil {
			return wo, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		s.log.Warn("work order number collision, retrying",
			zap.String("number", number), zap.Int("attempt", attempt))
		wo.ID = 0
	}
	return nil, fmt.Errorf("%w: gave up after %d attempts", errs.ErrNumberGeneration, maxNumberAttempts)
}

// nextWorkOrderNumber derives WO-<YYYYMMDD>-<seq> from the highest number
// already issued for the day. Best effort: the unique constraint on
// work_order_number is what actually guarantees uniqueness.
func (s *WorkOrderService) nextWorkOrderNumber(ctx context.Context, today time.Time) (string, error) {
	prefix := "WO-" + today.Format("20060102")
	var numbers []string
	err := s.db.WithContext(ctx).Model(&model.WorkOrder{}).
		Where("work_order_number LIKE ?", prefix+"-%").
		Order("work_order_number DESC").
		Limit(1).
		Pluck("work_order_number", &numbers).Error
	if err != nil {
		return "", err
	}
	seq := 1
	if len(numbers) > 0 {
		if n, err := strconv.Atoi(numbers[0][len(prefix)+1:]); err == nil {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s-%03d", prefix, seq), nil
}

func (s *WorkOrderService) Get(ctx context.Context, actor policy.Actor, id uint64) (*model.WorkOrder, error) {
	if err := policy.Require(actor, policy.OpRead, nil); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *WorkOrderService) get(ctx context.Context, id uint64) (*model.WorkOrder, error) {
	var wo model.WorkOrder
	if err := s.db.WithContext(ctx).First(&wo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrWorkOrderNotFound
		}
		return nil, err
	}
	return &wo, nil
}

func (s *WorkOrderService) List(ctx context.Context, actor policy.Actor, filter map[string]interface{}, limit, offset int) ([]model.WorkOrder, int64, error) {
	if err := policy.Require(actor, policy.OpRead, nil); err != nil {
		return nil, 0, err
	}
	var items []model.WorkOrder
	var total int64
	tx := s.db.WithContext(ctx).Model(&model.WorkOrder{})
	for k, v := range filter {
		tx = tx.Where(k, v)
	}
	// Count total before pagination
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if offset > 0 {
		tx = tx.Offset(offset)
	}
	if err := tx.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ExecutionUpdate carries the execution fields staff record during the job.
// Nil means "leave unchanged"; pointing at an empty string clears the field.
type ExecutionUpdate struct {
	TimeIn        *string
	TimeOut       *string
	WorkSummary   *string
	AssignedTo    *string
	ScheduledDate *string
	ScheduledTime *string
}

// UpdateExecution applies execution-field changes. Whenever time_in or
// time_out changes, total_labor_hours is recomputed in the same write, so a
// stale derived value can never be persisted.
func (s *WorkOrderService) UpdateExecution(ctx context.Context, actor policy.Actor, id uint64, upd ExecutionUpdate) (*model.WorkOrder, error) {
	wo, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Require(actor, policy.OpUpdateExecution, wo); err != nil {
		return nil, err
	}

	changes := make(map[string]interface{})
	if upd.TimeIn != nil {
		if !model.ValidClock(*upd.TimeIn) {
			return nil, fmt.Errorf("%w: time_in %q is not HH:MM", errs.ErrValidation, *upd.TimeIn)
		}
		changes["time_in"] = *upd.TimeIn
	}
	if upd.TimeOut != nil {
		if !model.ValidClock(*upd.TimeOut) {
			return nil, fmt.Errorf("%w: time_out %q is not HH:MM", errs.ErrValidation, *upd.TimeOut)
		}
		changes["time_out"] = *upd.TimeOut
	}
	if upd.WorkSummary != nil {
		changes["work_summary"] = *upd.WorkSummary
	}
	if upd.AssignedTo != nil {
		changes["assigned_to"] = *upd.AssignedTo
	}
	if upd.ScheduledDate != nil {
		if !model.ValidDate(*upd.ScheduledDate) {
			return nil, fmt.Errorf("%w: scheduled_date %q is not YYYY-MM-DD", errs.ErrValidation, *upd.ScheduledDate)
		}
		changes["scheduled_date"] = *upd.ScheduledDate
	}
	if upd.ScheduledTime != nil {
		if !model.ValidClock(*upd.ScheduledTime) {
			return nil, fmt.Errorf("%w: scheduled_time %q is not HH:MM", errs.ErrValidation, *upd.ScheduledTime)
		}
		changes["scheduled_time"] = *upd.ScheduledTime
	}
	if len(changes) == 0 {
		return nil, fmt.Errorf("%w: no changes provided", errs.ErrValidation)
	}

	if upd.TimeIn != nil || upd.TimeOut != nil {
		timeIn := wo.TimeIn
		if upd.TimeIn != nil {
			timeIn = *upd.TimeIn
		}
		timeOut := wo.TimeOut
		if upd.TimeOut != nil {
			timeOut = *upd.TimeOut
		}
		hours, err := model.ComputeLaborHours(timeIn, timeOut)
		if err != nil {
			return nil, err
		}
		changes["total_labor_hours"] = hours
	}

	if err := s.db.WithContext(ctx).Model(wo).Updates(changes).Error; err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

// SetStatus drives the lifecycle state machine. Entering completed stamps
// completed_date/completed_time from the service clock; leaving completed
// clears both. Setting the current status again is a no-op besides
// updated_at. Admins may set any status (manual correction); staff are
// limited to forward transitions plus cancelling a non-terminal order.
func (s *WorkOrderService) SetStatus(ctx context.Context, actor policy.Actor, id uint64, newStatus model.WorkOrderStatus) (*model.WorkOrder, error) {
	wo, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Require(actor, policy.OpChangeStatus, wo); err != nil {
		return nil, err
	}
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: invalid status %q", errs.ErrValidation, newStatus)
	}
	if newStatus != wo.Status && actor.Role != policy.RoleAdmin && !staffTransitionAllowed(wo.Status, newStatus) {
		return nil, fmt.Errorf("%w: transition %s -> %s not allowed", errs.ErrValidation, wo.Status, newStatus)
	}

	changes := map[string]interface{}{"work_completed": newStatus}
	switch {
	case newStatus == wo.Status:
		// Idempotent repeat: touch updated_at, do not re-stamp completion.
	case newStatus == model.StatusCompleted:
		now := s.now()
		changes["completed_date"] = now.Format(model.DateLayout)
		changes["completed_time"] = now.Format(model.ClockLayout)
	case wo.Status == model.StatusCompleted:
		changes["completed_date"] = ""
		changes["completed_time"] = ""
	}

	if err := s.db.WithContext(ctx).Model(wo).Updates(changes).Error; err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

// staffTransitionAllowed restricts non-admin callers to the forward path
// pending -> in_progress -> completed, plus cancellation of any non-terminal
// order. Reopening a terminal order is an admin correction.
func staffTransitionAllowed(from, to model.WorkOrderStatus) bool {
	if to == model.StatusCancelled {
		return !from.Terminal()
	}
	switch from {
	case model.StatusPending:
		return to == model.StatusInProgress || to == model.StatusCompleted
	case model.StatusInProgress:
		return to == model.StatusCompleted
	}
	return false
}

// Delete removes a work order and its materials and signatures. Admin-only
// corrective action.
func (s *WorkOrderService) Delete(ctx context.Context, actor policy.Actor, id uint64) error {
	wo, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Require(actor, policy.OpDelete, wo); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Select(clause.Associations).Delete(wo).Error
}
