package organization

import (
	"time"

	"github.com/frahmantamala/review-system/internal"
)

// Organization is the top of the ownership hierarchy: it owns departments,
// which in turn own users.
type Organization struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Organization) TableName() string {
	return "organizations"
}

var (
	ErrNotFound = internal.NewNotFoundError("Organization not found", internal.ErrCodeOrganizationNotFound)

	ErrNameTaken = internal.NewConflictError("Organization with this name already exists", internal.ErrCodeOrganizationNameTaken)

	// Hard delete is blocked while departments exist; deactivate is the
	// supported alternative.
	ErrHasDepartments = internal.NewConflictError(
		"Cannot delete organization with existing departments. Remove all departments first or use deactivate instead.",
		internal.ErrCodeHasDependents)
)
