package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/creditdesk/backend/internal/workflow/model"
)

// StepRepository is the gorm-backed store for workflow step details. The
// conditional updates here are the optimistic-concurrency guard: a step can be
// resolved at most once, and a successor can be started at most once, even
// when two reviewers race on the same order.
type StepRepository struct{}

// NewStepRepository creates a new StepRepository instance.
func NewStepRepository() *StepRepository {
	return &StepRepository{}
}

func (r *StepRepository) CreateStepsInTx(ctx context.Context, tx *gorm.DB, steps []model.WorkflowStepDetail) ([]model.WorkflowStepDetail, error) {
	if len(steps) == 0 {
		return steps, nil
	}
	if err := tx.WithContext(ctx).Create(&steps).Error; err != nil {
		return nil, wrapStorageErr("create steps", err)
	}
	return steps, nil
}

func (r *StepRepository) GetStepInTx(ctx context.Context, tx *gorm.DB, stepID uuid.UUID) (*model.WorkflowStepDetail, error) {
	var step model.WorkflowStepDetail
	err := tx.WithContext(ctx).
		Preload("Jurisdiction").
		First(&step, "id = ?", stepID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("step %s: %w", stepID, model.ErrNotFound)
		}
		return nil, wrapStorageErr("get step", err)
	}
	return &step, nil
}

func (r *StepRepository) GetStepsByOrderIDInTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]model.WorkflowStepDetail, error) {
	var steps []model.WorkflowStepDetail
	err := tx.WithContext(ctx).
		Preload("Jurisdiction").
		Where("workflow_order_id = ?", orderID).
		Order("workflow_step ASC").
		Find(&steps).Error
	if err != nil {
		return nil, wrapStorageErr("list steps by order", err)
	}
	return steps, nil
}

func (r *StepRepository) ResolveStepInTx(ctx context.Context, tx *gorm.DB, stepID uuid.UUID, approval bool, approverID uuid.UUID, comment *string, decidedAt time.Time) (int64, error) {
	result := tx.WithContext(ctx).
		Model(&model.WorkflowStepDetail{}).
		Where("id = ? AND approval IS NULL AND started_at IS NOT NULL", stepID).
		Updates(map[string]interface{}{
			"approval":    approval,
			"finished_at": decidedAt,
			"approver":    approverID,
			"comments":    comment,
			"updated_at":  decidedAt,
		})
	if result.Error != nil {
		return 0, wrapStorageErr("resolve step", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *StepRepository) StartStepInTx(ctx context.Context, tx *gorm.DB, stepID uuid.UUID, startedAt time.Time) (int64, error) {
	result := tx.WithContext(ctx).
		Model(&model.WorkflowStepDetail{}).
		Where("id = ? AND started_at IS NULL AND approval IS NULL", stepID).
		Updates(map[string]interface{}{
			"started_at": startedAt,
			"updated_at": startedAt,
		})
	if result.Error != nil {
		return 0, wrapStorageErr("start step", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *StepRepository) DeleteStepsByOrderIDInTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	if err := tx.WithContext(ctx).Delete(&model.WorkflowStepDetail{}, "workflow_order_id = ?", orderID).Error; err != nil {
		return wrapStorageErr("delete steps by order", err)
	}
	return nil
}
