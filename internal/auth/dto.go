package auth

import (
	"net/mail"
	"strings"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterDTO accepts self-service account registration.
type RegisterDTO struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `json:"role"`
}

// AuthResponse is returned from both register and login: a bearer token plus
// enough user info for the client to render its session.
type AuthResponse struct {
	Token    string `json:"token"`
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

// Validate checks required fields and returns a ValidationError on failure.
func (d LoginDTO) Validate() error {
	if d.Username == "" {
		return ValidationError{Msg: "username is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

func (d RegisterDTO) Validate() error {
	if strings.TrimSpace(d.Username) == "" {
		return ValidationError{Msg: "username is required"}
	}
	if len(d.Username) > 50 {
		return ValidationError{Msg: "username must not exceed 50 characters"}
	}
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	if _, err := mail.ParseAddress(d.Email); err != nil {
		return ValidationError{Msg: "email is not a valid address"}
	}
	if len(d.Password) < 6 {
		return ValidationError{Msg: "password must be at least 6 characters"}
	}
	if strings.TrimSpace(d.FirstName) == "" {
		return ValidationError{Msg: "first_name is required"}
	}
	if strings.TrimSpace(d.LastName) == "" {
		return ValidationError{Msg: "last_name is required"}
	}
	if d.Role != "" && !d.Role.Valid() {
		return ValidationError{Msg: "role must be one of EMPLOYEE, MANAGER, HR_ADMIN, SYSTEM_ADMIN"}
	}
	return nil
}
