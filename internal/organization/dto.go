package organization

import (
	"time"

	"github.com/frahmantamala/review-system/internal"
	"github.com/frahmantamala/review-system/internal/core/common/validation"
)

type CreateDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateDTO is a patch: nil pointer means "leave unchanged". A set pointer
// always overwrites, so clearing a field and skipping it are distinct.
type UpdateDTO struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

// Response is the read model for an organization, including the number of
// departments it owns (counted, never eagerly loaded).
type Response struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	DepartmentCount int       `json:"department_count"`
}

func (d CreateDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("description", d.Description).MaxLength(500)
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

func toResponse(org *Organization, departmentCount int) Response {
	return Response{
		ID:              org.ID,
		Name:            org.Name,
		Description:     org.Description,
		Active:          org.Active,
		CreatedAt:       org.CreatedAt,
		UpdatedAt:       org.UpdatedAt,
		DepartmentCount: departmentCount,
	}
}
