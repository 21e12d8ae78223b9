package department

import (
	"fmt"
	"time"

	"github.com/frahmantamala/review-system/internal"
	"github.com/frahmantamala/review-system/internal/auth"
)

// Department belongs to exactly one organization. Names are unique per
// organization, not globally, so two organizations can both have an
// "Engineering" department.
type Department struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	OrganizationID int64     `json:"organization_id"`
	ManagerID      *int64    `json:"manager_id"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Department) TableName() string {
	return "departments"
}

// OrganizationInfo is the slice of an organization a department needs.
type OrganizationInfo struct {
	ID   int64
	Name string
}

// ManagerInfo is the slice of a user needed to vet a manager assignment.
type ManagerInfo struct {
	ID        int64
	FirstName string
	LastName  string
	Role      auth.Role
	Active    bool
}

var (
	ErrNotFound = internal.NewNotFoundError("Department not found", internal.ErrCodeDepartmentNotFound)

	ErrNameTaken = internal.NewConflictError("Department with this name already exists in the organization", internal.ErrCodeDepartmentNameTaken)

	ErrManagerNotFound = internal.NewNotFoundError("Manager not found", internal.ErrCodeManagerNotFound)

	ErrHasUsers = internal.NewConflictError(
		"Cannot delete department with assigned users. Reassign them first or use deactivate instead.",
		internal.ErrCodeHasDependents)
)

// NewIneligibleManagerError names the user's actual role so the caller can
// see why the assignment was refused.
func NewIneligibleManagerError(m *ManagerInfo) *internal.AppError {
	message := fmt.Sprintf("User %s %s has role %s and cannot manage a department",
		m.FirstName, m.LastName, m.Role)
	return internal.NewValidationError(message, internal.ErrCodeIneligibleManager)
}
