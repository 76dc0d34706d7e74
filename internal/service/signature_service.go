package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fieldworks/workorder-service/internal/errs"
	"github.com/fieldworks/workorder-service/internal/model"
	"github.com/fieldworks/workorder-service/internal/policy"
	"gorm.io/gorm"
)

// SignatureService records the dual sign-off on a completed job. Signatures
// are append-once: the unique constraint on (work_order_id, signer_type)
// makes a second recording fail instead of overwriting the audit record.
type SignatureService struct {
	db  *gorm.DB
	now Clock
}

func NewSignatureService(db *gorm.DB, now Clock) *SignatureService {
	if now == nil {
		now = time.Now
	}
	return &SignatureService{db: db, now: now}
}

type RecordSignatureInput struct {
	SignerType     model.SignerType
	SignerName     string
	SignerTitle    string
	SignatureImage string
}

func (s *SignatureService) Record(ctx context.Context, actor policy.Actor, workOrderID uint64, in RecordSignatureInput) (*model.Signature, error) {
	wo, err := s.workOrder(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	if err := policy.Require(actor, policy.OpRecordSignature, wo); err != nil {
		return nil, err
	}
	if !in.SignerType.Valid() {
		return nil, fmt.Errorf("%w: invalid signer_type %q", errs.ErrValidation, in.SignerType)
	}
	name := strings.TrimSpace(in.SignerName)
	if name == "" {
		return nil, fmt.Errorf("%w: signer name is required", errs.ErrValidation)
	}
	now := s.now()
	sig := &model.Signature{
		WorkOrderID:    wo.ID,
		SignerType:     in.SignerType,
		SignerName:     name,
		SignerTitle:    in.SignerTitle,
		SignatureImage: in.SignatureImage,
		SignedDate:     now.Format(model.DateLayout),
		SignedTime:     now.Format(model.ClockLayout),
	}
	if err := s.db.WithContext(ctx).Create(sig).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s already signed work order %d", errs.ErrDuplicateSignature, in.SignerType, wo.ID)
		}
		return nil, err
	}
	if err := s.touchWorkOrder(ctx, wo.ID); err != nil {
		return nil, err
	}
	return sig, nil
}

func (s *SignatureService) List(ctx context.Context, actor policy.Actor, workOrderID uint64) ([]model.Signature, error) {
	if err := policy.Require(actor, policy.OpRead, nil); err != nil {
		return nil, err
	}
	if _, err := s.workOrder(ctx, workOrderID); err != nil {
		return nil, err
	}
	var items []model.Signature
	err := s.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *SignatureService) Has(ctx context.Context, workOrderID uint64, signerType model.SignerType) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Signature{}).
		Where("work_order_id = ? AND signer_type = ?", workOrderID, signerType).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsFullySigned reports whether both counter-signing roles have signed.
// Advisory: completion is not hard-blocked on it.
func (s *SignatureService) IsFullySigned(ctx context.Context, workOrderID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Signature{}).
		Where("work_order_id = ?", workOrderID).
		Distinct("signer_type").
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count == 2, nil
}

func (s *SignatureService) workOrder(ctx context.Context, id uint64) (*model.WorkOrder, error) {
	var wo model.WorkOrder
	if err := s.db.WithContext(ctx).First(&wo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrWorkOrderNotFound
		}
		return nil, err
	}
	return &wo, nil
}

func (s *SignatureService) touchWorkOrder(ctx context.Context, workOrderID uint64) error {
	return s.db.WithContext(ctx).Model(&model.WorkOrder{}).
		Where("id = ?", workOrderID).
		Update("updated_at", s.now()).Error
}
