package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fieldworks/workorder-service/internal/errs"
	"github.com/fieldworks/workorder-service/internal/model"
	"github.com/fieldworks/workorder-service/internal/policy"
	"gorm.io/gorm"
)

// MaterialService is the append/remove ledger of cost line items on a work
// order.
type MaterialService struct {
	db  *gorm.DB
	now Clock
}

func NewMaterialService(db *gorm.DB, now Clock) *MaterialService {
	if now == nil {
		now = time.Now
	}
	return &MaterialService{db: db, now: now}
}

type AddMaterialInput struct {
	Name     string
	Quantity float64
	Unit     string
	UnitCost *float64
	Notes    string
}

// Add appends a line item. total_cost is derived here, at write time, as
// quantity * unit_cost; it stays null while unit cost is unknown. Any future
// edit path for quantity or unit cost must recompute it the same way.
func (s *MaterialService) Add(ctx context.Context, actor policy.Actor, workOrderID uint64, in AddMaterialInput) (*model.Material, error) {
	wo, err := s.workOrder(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	if err := policy.Require(actor, policy.OpManageMaterials, wo); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: material name is required", errs.ErrValidation)
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than 0", errs.ErrValidation)
	}
	if in.UnitCost != nil && *in.UnitCost < 0 {
		return nil, fmt.Errorf("%w: unit cost must not be negative", errs.ErrValidation)
	}
	m := &model.Material{
		WorkOrderID: wo.ID,
		Name:        name,
		Quantity:    in.Quantity,
		Unit:        in.Unit,
		UnitCost:    in.UnitCost,
		Notes:       in.Notes,
	}
	if in.UnitCost != nil {
		total := roundMoney(in.Quantity * *in.UnitCost)
		m.TotalCost = &total
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	if err := s.touch(ctx, wo.ID); err != nil {
		return nil, err
	}
	return m, nil
}

// Remove hard-deletes a line item. No soft delete or versioning.
func (s *MaterialService) Remove(ctx context.Context, actor policy.Actor, materialID uint64) error {
	var m model.Material
	if err := s.db.WithContext(ctx).First(&m, materialID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrMaterialNotFound
		}
		return err
	}
	wo, err := s.workOrder(ctx, m.WorkOrderID)
	if err != nil {
		return err
	}
	if err := policy.Require(actor, policy.OpManageMaterials, wo); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&m).Error; err != nil {
		return err
	}
	return s.touch(ctx, wo.ID)
}

func (s *MaterialService) List(ctx context.Context, actor policy.Actor, workOrderID uint64) ([]model.Material, error) {
	if err := policy.Require(actor, policy.OpRead, nil); err != nil {
		return nil, err
	}
	if _, err := s.workOrder(ctx, workOrderID); err != nil {
		return nil, err
	}
	var items []model.Material
	err := s.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// TotalCost sums the non-null total_cost values; lines without a unit cost
// contribute 0.
func (s *MaterialService) TotalCost(ctx context.Context, actor policy.Actor, workOrderID uint64) (float64, error) {
	if err := policy.Require(actor, policy.OpRead, nil); err != nil {
		return 0, err
	}
	if _, err := s.workOrder(ctx, workOrderID); err != nil {
		return 0, err
	}
	var total float64
	err := s.db.WithContext(ctx).Model(&model.Material{}).
		Where("work_order_id = ?", workOrderID).
		Select("COALESCE(SUM(total_cost), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return roundMoney(total), nil
}

func (s *MaterialService) workOrder(ctx context.Context, id uint64) (*model.WorkOrder, error) {
	var wo model.WorkOrder
	if err := s.db.WithContext(ctx).First(&wo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrWorkOrderNotFound
		}
		return nil, err
	}
	return &wo, nil
}

// touch bumps the parent work order's updated_at; child mutations count as
// mutations of the record.
func (s *MaterialService) touch(ctx context.Context, workOrderID uint64) error {
	return s.db.WithContext(ctx).Model(&model.WorkOrder{}).
		Where("id = ?", workOrderID).
		Update("updated_at", s.now()).Error
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
