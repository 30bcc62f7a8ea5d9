package model

import "github.com/google/uuid"

// RequestFilter narrows request listings. Nil fields are ignored.
type RequestFilter struct {
	Status     *RequestStatus
	CustomerID *uuid.UUID
	Branch     *string
	Offset     *int
	Limit      *int
}
