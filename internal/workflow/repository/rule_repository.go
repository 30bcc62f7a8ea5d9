package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/creditdesk/backend/internal/workflow/model"
)

// RuleRepository reads the jurisdiction registry and the value-range routing
// rules. Both are reference data owned by a separate administration feature.
type RuleRepository struct{}

// NewRuleRepository creates a new RuleRepository instance.
func NewRuleRepository() *RuleRepository {
	return &RuleRepository{}
}

func (r *RuleRepository) GetRulesInTx(ctx context.Context, tx *gorm.DB) ([]model.ApprovalRule, error) {
	var rules []model.ApprovalRule
	err := tx.WithContext(ctx).
		Preload("Jurisdiction").
		Order("step_order ASC, min_amount ASC").
		Find(&rules).Error
	if err != nil {
		return nil, wrapStorageErr("list approval rules", err)
	}
	return rules, nil
}

func (r *RuleRepository) GetJurisdictionsInTx(ctx context.Context, tx *gorm.DB) ([]model.JurisdictionRole, error) {
	var jurisdictions []model.JurisdictionRole
	if err := tx.WithContext(ctx).Order("name ASC").Find(&jurisdictions).Error; err != nil {
		return nil, wrapStorageErr("list jurisdictions", err)
	}
	return jurisdictions, nil
}

func (r *RuleRepository) GetJurisdictionInTx(ctx context.Context, tx *gorm.DB, jurisdictionID uuid.UUID) (*model.JurisdictionRole, error) {
	var jurisdiction model.JurisdictionRole
	if err := tx.WithContext(ctx).First(&jurisdiction, "id = ?", jurisdictionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("jurisdiction %s: %w", jurisdictionID, model.ErrNotFound)
		}
		return nil, wrapStorageErr("get jurisdiction", err)
	}
	return &jurisdiction, nil
}
