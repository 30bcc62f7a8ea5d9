package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/creditdesk/backend/internal/workflow/model"
	"github.com/creditdesk/backend/utils"
)

// RequestRepository is the gorm-backed store for credit limit requests.
type RequestRepository struct{}

// NewRequestRepository creates a new RequestRepository instance.
func NewRequestRepository() *RequestRepository {
	return &RequestRepository{}
}

func (r *RequestRepository) CreateRequestInTx(ctx context.Context, tx *gorm.DB, req *model.CreditLimitRequest) error {
	if err := tx.WithContext(ctx).Create(req).Error; err != nil {
		return wrapStorageErr("create request", err)
	}
	return nil
}

func (r *RequestRepository) GetRequestInTx(ctx context.Context, tx *gorm.DB, requestID uuid.UUID) (*model.CreditLimitRequest, error) {
	var req model.CreditLimitRequest
	if err := tx.WithContext(ctx).First(&req, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("request %s: %w", requestID, model.ErrNotFound)
		}
		return nil, wrapStorageErr("get request", err)
	}
	return &req, nil
}

func (r *RequestRepository) GetRequestsByCustomerInTx(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) ([]model.CreditLimitRequest, error) {
	var requests []model.CreditLimitRequest
	err := tx.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, wrapStorageErr("list requests by customer", err)
	}
	return requests, nil
}

func (r *RequestRepository) ListRequestsInTx(ctx context.Context, tx *gorm.DB, filter model.RequestFilter) ([]model.CreditLimitRequest, error) {
	query := tx.WithContext(ctx).Model(&model.CreditLimitRequest{})

	if filter.Status != nil {
		query = query.Where("status_id = ?", *filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Branch != nil {
		query = query.Where("branch = ?", *filter.Branch)
	}

	offset, limit := utils.GetPaginationParams(filter.Offset, filter.Limit)

	var requests []model.CreditLimitRequest
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&requests).Error
	if err != nil {
		return nil, wrapStorageErr("list requests", err)
	}
	return requests, nil
}

func (r *RequestRepository) UpdateRequestStatusInTx(ctx context.Context, tx *gorm.DB, requestID uuid.UUID, status model.RequestStatus) error {
	result := tx.WithContext(ctx).
		Model(&model.CreditLimitRequest{}).
		Where("id = ?", requestID).
		Update("status_id", status)
	if result.Error != nil {
		return wrapStorageErr("update request status", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("request %s: %w", requestID, model.ErrNotFound)
	}
	return nil
}

func (r *RequestRepository) DeleteRequestInTx(ctx context.Context, tx *gorm.DB, requestID uuid.UUID) error {
	result := tx.WithContext(ctx).Delete(&model.CreditLimitRequest{}, "id = ?", requestID)
	if result.Error != nil {
		return wrapStorageErr("delete request", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("request %s: %w", requestID, model.ErrNotFound)
	}
	return nil
}
