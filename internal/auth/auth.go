package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the access level attached to every user account.
type Role string

const (
	RoleEmployee    Role = "EMPLOYEE"
	RoleManager     Role = "MANAGER"
	RoleHRAdmin     Role = "HR_ADMIN"
	RoleSystemAdmin Role = "SYSTEM_ADMIN"
)

// Valid reports whether the role is one of the four known values.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleHRAdmin, RoleSystemAdmin:
		return true
	}
	return false
}

// Qualifying reports whether the role is eligible to be assigned as the
// manager of a department or of another user.
func (r Role) Qualifying() bool {
	return r == RoleManager || r == RoleHRAdmin || r == RoleSystemAdmin
}

// Admin reports whether the role carries HR-wide privileges.
func (r Role) Admin() bool {
	return r == RoleHRAdmin || r == RoleSystemAdmin
}

// Caller is the authenticated identity attached to the request context by the
// auth middleware. It is deliberately small: just enough for policy decisions.
type Caller struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Active   bool   `json:"active"`
}

type ctxKey string

const ContextCallerKey ctxKey = "caller"

func CallerFromContext(ctx context.Context) (*Caller, bool) {
	c, ok := ctx.Value(ContextCallerKey).(*Caller)
	return c, ok
}

func ContextWithCaller(ctx context.Context, c *Caller) context.Context {
	return context.WithValue(ctx, ContextCallerKey, c)
}

// Claims represents JWT token claims.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenGenerator creates and verifies signed tokens.
type TokenGenerator interface {
	GenerateToken(userID int64, username string, role Role) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	Secret []byte
	TTL    time.Duration
}
