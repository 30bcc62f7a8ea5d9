package model

import "github.com/google/uuid"

// JurisdictionRole is a named approval authority level ("alcada") that owns
// one or more workflow steps. Read-only reference data for the engine; owned
// by a separate role-administration feature.
type JurisdictionRole struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);column:name;not null;uniqueIndex" json:"name"`
	Description string `gorm:"type:text;column:description" json:"description"`
}

func (j *JurisdictionRole) TableName() string {
	return "jurisdiction_roles"
}

// ApprovalRule maps a requested-amount range to a jurisdiction that must
// approve requests in that range. MaxAmount nil means unbounded. StepOrder
// controls the position of the jurisdiction in the resolved chain.
type ApprovalRule struct {
	BaseModel
	JurisdictionID uuid.UUID `gorm:"type:uuid;column:jurisdiction_id;not null;index" json:"jurisdictionId"`
	MinAmount      float64   `gorm:"type:decimal(12,2);column:min_amount;not null;default:0" json:"minAmount"`
	MaxAmount      *float64  `gorm:"type:decimal(12,2);column:max_amount" json:"maxAmount"`
	StepOrder      int       `gorm:"type:int;column:step_order;not null;default:0" json:"stepOrder"`

	// Relationships
	Jurisdiction *JurisdictionRole `gorm:"foreignKey:JurisdictionID;references:ID" json:"jurisdiction,omitempty"`
}

func (r *ApprovalRule) TableName() string {
	return "approval_rules"
}

// Matches reports whether the rule's half-open range [min, max) covers the amount.
func (r *ApprovalRule) Matches(amount float64) bool {
	if amount < r.MinAmount {
		return false
	}
	if r.MaxAmount != nil && amount >= *r.MaxAmount {
		return false
	}
	return true
}
