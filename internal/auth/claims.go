package auth

import (
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

// Role is the coarse role carried by an externally issued token.
type Role string

const (
	RoleRequester Role = "requester"
	RoleApprover  Role = "approver"
	RoleAnalyst   Role = "analyst"
)

// Claims is the claim set of the bearer tokens this service accepts. The
// tokens are issued by the external identity provider; this service only
// verifies the signature and reads the identity out.
type Claims struct {
	jwt.StandardClaims
	UserUUID uuid.UUID `json:"user_uuid"`
	Role     Role      `json:"role"`
}

// Identity is the authenticated caller injected into the request context.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}
