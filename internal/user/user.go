package user

import (
	"fmt"
	"time"

	"github.com/frahmantamala/review-system/internal"
	"github.com/frahmantamala/review-system/internal/auth"
)

// User is an account in the review system. Department and manager are
// optional foreign keys; the manager relation is self-referential and the
// reverse collections (direct reports, managed departments) are never
// eagerly loaded, only queried explicitly.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-" gorm:"column:password_hash"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         auth.Role `json:"role"`
	Active       bool      `json:"active"`
	DepartmentID *int64    `json:"department_id"`
	ManagerID    *int64    `json:"manager_id"`

	PerformanceRating *int       `json:"performance_rating"`
	ReviewNotes       *string    `json:"review_notes"`
	ReviewDate        *time.Time `json:"review_date"`
	Goals             *string    `json:"goals"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// DepartmentInfo is the slice of a department a user response needs.
type DepartmentInfo struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	OrganizationName string `json:"organization_name"`
}

var (
	ErrNotFound = internal.NewNotFoundError("User not found", internal.ErrCodeUserNotFound)

	ErrUsernameTaken = internal.NewConflictError("Username is already taken", internal.ErrCodeUsernameTaken)

	ErrEmailInUse = internal.NewConflictError("Email is already in use", internal.ErrCodeEmailInUse)

	ErrManagerNotFound = internal.NewNotFoundError("Manager not found", internal.ErrCodeManagerNotFound)

	ErrDepartmentNotFound = internal.NewNotFoundError("Department not found", internal.ErrCodeDepartmentNotFound)

	ErrHasReports = internal.NewConflictError(
		"Cannot delete user with direct reports. Reassign them first or use deactivate instead.",
		internal.ErrCodeHasDependents)
)

// NewIneligibleManagerError names the candidate's actual role so the caller
// can see why the assignment was refused.
func NewIneligibleManagerError(manager *User) *internal.AppError {
	message := fmt.Sprintf("User %s %s has role %s and cannot be assigned as a manager",
		manager.FirstName, manager.LastName, manager.Role)
	return internal.NewValidationError(message, internal.ErrCodeIneligibleManager)
}
