package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/creditdesk/backend/internal/workflow/model"
)

// OrderRepository is the gorm-backed store for workflow orders.
type OrderRepository struct{}

// NewOrderRepository creates a new OrderRepository instance.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

func (r *OrderRepository) CreateOrderInTx(ctx context.Context, tx *gorm.DB, order *model.WorkflowOrder) error {
	if err := tx.WithContext(ctx).Create(order).Error; err != nil {
		return wrapStorageErr("create order", err)
	}
	return nil
}

func (r *OrderRepository) GetOrderInTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*model.WorkflowOrder, error) {
	var order model.WorkflowOrder
	if err := tx.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", orderID, model.ErrNotFound)
		}
		return nil, wrapStorageErr("get order", err)
	}
	return &order, nil
}

func (r *OrderRepository) GetOrderByRequestIDInTx(ctx context.Context, tx *gorm.DB, requestID uuid.UUID) (*model.WorkflowOrder, error) {
	var order model.WorkflowOrder
	if err := tx.WithContext(ctx).First(&order, "request_id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order for request %s: %w", requestID, model.ErrNotFound)
		}
		return nil, wrapStorageErr("get order by request", err)
	}
	return &order, nil
}

func (r *OrderRepository) UpdateOrderCurrentStepInTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, currentStep int) error {
	result := tx.WithContext(ctx).
		Model(&model.WorkflowOrder{}).
		Where("id = ?", orderID).
		Update("current_step", currentStep)
	if result.Error != nil {
		return wrapStorageErr("update order current step", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("order %s: %w", orderID, model.ErrNotFound)
	}
	return nil
}

func (r *OrderRepository) DeleteOrderInTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	if err := tx.WithContext(ctx).Delete(&model.WorkflowOrder{}, "id = ?", orderID).Error; err != nil {
		return wrapStorageErr("delete order", err)
	}
	return nil
}
