package department

import (
	"time"

	"github.com/frahmantamala/review-system/internal"
	"github.com/frahmantamala/review-system/internal/core/common/validation"
)

type CreateDTO struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	OrganizationID int64  `json:"organization_id"`
	ManagerID      *int64 `json:"manager_id"`
}

// UpdateDTO is a patch. ManagerID uses Optional so "leave the manager alone"
// (absent) and "clear the manager" (null) stay distinguishable.
type UpdateDTO struct {
	Name        *string                  `json:"name"`
	Description *string                  `json:"description"`
	ManagerID   internal.Optional[int64] `json:"manager_id"`
	Active      *bool                    `json:"active"`
}

type Response struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	OrganizationID   int64     `json:"organization_id"`
	OrganizationName string    `json:"organization_name"`
	ManagerID        *int64    `json:"manager_id"`
	ManagerName      *string   `json:"manager_name"`
	Active           bool      `json:"active"`
	UserCount        int       `json:"user_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (d CreateDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("description", d.Description).MaxLength(500)
	v.Field("organization_id", d.OrganizationID).Required()
	return v.Validate()
}

func (d UpdateDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", *d.Name).Required().MaxLength(100)
	}
	v.Field("description", d.Description).MaxLength(500)
	return v.Validate()
}

func toResponse(dept *Department, org *OrganizationInfo, manager *ManagerInfo, userCount int) Response {
	resp := Response{
		ID:             dept.ID,
		Name:           dept.Name,
		Description:    dept.Description,
		OrganizationID: dept.OrganizationID,
		ManagerID:      dept.ManagerID,
		Active:         dept.Active,
		UserCount:      userCount,
		CreatedAt:      dept.CreatedAt,
		UpdatedAt:      dept.UpdatedAt,
	}
	if org != nil {
		resp.OrganizationName = org.Name
	}
	if manager != nil {
		name := manager.FirstName + " " + manager.LastName
		resp.ManagerName = &name
	}
	return resp
}
