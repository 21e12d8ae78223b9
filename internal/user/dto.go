package user

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/frahmantamala/review-system/internal"
	"github.com/frahmantamala/review-system/internal/auth"
	"github.com/frahmantamala/review-system/internal/core/common/validation"
)

type CreateDTO struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Role         string `json:"role"`
	DepartmentID *int64 `json:"department_id"`
	ManagerID    *int64 `json:"manager_id"`
}

// UpdateDTO is the admin patch: any field can change. Department and manager
// use Optional so an explicit null clears the reference while an absent field
// leaves it alone. The own-profile path decodes the same shape but applies
// only username, email and the name fields.
type UpdateDTO struct {
	Username     *string                  `json:"username"`
	Email        *string                  `json:"email"`
	FirstName    *string                  `json:"first_name"`
	LastName     *string                  `json:"last_name"`
	Role         *string                  `json:"role"`
	Active       *bool                    `json:"active"`
	DepartmentID internal.Optional[int64] `json:"department_id"`
	ManagerID    internal.Optional[int64] `json:"manager_id"`
}

// PerformanceDTO carries a review update; all fields optional, absent fields
// stay unchanged.
type PerformanceDTO struct {
	PerformanceRating *int       `json:"performance_rating"`
	ReviewNotes       *string    `json:"review_notes"`
	ReviewDate        *time.Time `json:"review_date"`
	Goals             *string    `json:"goals"`
}

// UserSummary is the compact shape embedded in other responses.
type UserSummary struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      auth.Role `json:"role"`
}

type Response struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      auth.Role `json:"role"`
	Active    bool      `json:"active"`

	Department *DepartmentInfo `json:"department"`
	Manager    *UserSummary    `json:"manager"`

	PerformanceRating *int       `json:"performance_rating"`
	ReviewNotes       *string    `json:"review_notes"`
	ReviewDate        *time.Time `json:"review_date"`
	Goals             *string    `json:"goals"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func validEmail(value interface{}) *internal.AppError {
	s, ok := value.(string)
	if !ok || s == "" {
		return nil
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return internal.NewValidationFieldError("email", "email must be a valid address", internal.ErrCodeValidationFailed)
	}
	return nil
}

func validRole(value interface{}) *internal.AppError {
	s, ok := value.(string)
	if !ok || s == "" {
		return nil
	}
	if !auth.Role(s).Valid() {
		return internal.NewValidationFieldError("role", fmt.Sprintf("unknown role %q", s), internal.ErrCodeInvalidRole)
	}
	return nil
}

func (d CreateDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("username", d.Username).Required().MinLength(3).MaxLength(50)
	v.Field("email", d.Email).Required().Custom(validEmail)
	v.Field("password", d.Password).Required().MinLength(6)
	v.Field("first_name", d.FirstName).Required().MaxLength(100)
	v.Field("last_name", d.LastName).Required().MaxLength(100)
	v.Field("role", d.Role).Custom(validRole)
	return v.Validate()
}

func (d UpdateDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if d.Username != nil {
		v.Field("username", *d.Username).Required().MinLength(3).MaxLength(50)
	}
	if d.Email != nil {
		v.Field("email", *d.Email).Required().Custom(validEmail)
	}
	if d.FirstName != nil {
		v.Field("first_name", *d.FirstName).Required().MaxLength(100)
	}
	if d.LastName != nil {
		v.Field("last_name", *d.LastName).Required().MaxLength(100)
	}
	if d.Role != nil {
		v.Field("role", *d.Role).Required().Custom(validRole)
	}
	return v.Validate()
}

func (d PerformanceDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("performance_rating", d.PerformanceRating).RangeInt(1, 5, internal.ErrCodeInvalidRating)
	v.Field("review_notes", d.ReviewNotes).MaxLength(2000)
	v.Field("review_date", d.ReviewDate).NotFuture()
	v.Field("goals", d.Goals).MaxLength(1000)
	return v.Validate()
}

func toSummary(u *User) *UserSummary {
	return &UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}

func toResponse(u *User, dept *DepartmentInfo, manager *User) Response {
	resp := Response{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Role:              u.Role,
		Active:            u.Active,
		Department:        dept,
		PerformanceRating: u.PerformanceRating,
		ReviewNotes:       u.ReviewNotes,
		ReviewDate:        u.ReviewDate,
		Goals:             u.Goals,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
	if manager != nil {
		resp.Manager = toSummary(manager)
	}
	return resp
}
