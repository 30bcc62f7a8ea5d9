package model

import (
	"github.com/google/uuid"
)

// RequestStatus is the overall state of a credit limit request. The stored
// status_id column is a projection; DeriveStatus over the request's step rows
// is always the source of truth.
type RequestStatus int

const (
	RequestStatusNew      RequestStatus = 1
	RequestStatusPending  RequestStatus = 2
	RequestStatusApproved RequestStatus = 3
	RequestStatusRejected RequestStatus = 4
)

// String returns a human-readable name for the status.
func (s RequestStatus) String() string {
	switch s {
	case RequestStatusNew:
		return "NEW"
	case RequestStatusPending:
		return "PENDING"
	case RequestStatusApproved:
		return "APPROVED"
	case RequestStatusRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the status is an absorbing state.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}

// CreditLimitRequest represents a commercial credit limit request submitted by
// a customer. The approval chain for a request lives in its WorkflowOrder and
// the order's step details.
type CreditLimitRequest struct {
	BaseModel
	CustomerID      uuid.UUID     `gorm:"type:uuid;column:customer_id;not null;index" json:"customerId"`
	Amount          float64       `gorm:"type:decimal(12,2);column:credit_limit_amt;not null" json:"creditLimitAmt"`
	PaymentTermDays int           `gorm:"type:int;column:payment_term_days;not null;default:30" json:"paymentTermDays"`
	Classification  string        `gorm:"type:varchar(50);column:classification" json:"classification"`
	Branch          string        `gorm:"type:varchar(100);column:branch" json:"branch"`
	Comment         string        `gorm:"type:text;column:comment" json:"comment"`
	StatusID        RequestStatus `gorm:"type:int;column:status_id;not null;index" json:"statusId"`

	// Relationships
	Order *WorkflowOrder `gorm:"foreignKey:RequestID;references:ID" json:"order,omitempty"`
}

func (r *CreditLimitRequest) TableName() string {
	return "credit_limit_requests"
}
