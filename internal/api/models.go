package api

import (
	"github.com/phrazzld/task-manager-api/internal/domain"
)

// RegisterRequest defines the payload for the user registration endpoint.
// Content rules (trimming, email format, password strength, age) are the
// domain's; the tags only check presence.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
	Age      int    `json:"age"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest lists the profile fields a PATCH may name. Any other
// field makes the whole request invalid.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Age      *int    `json:"age"`
}

// Patch converts the request to a domain patch.
func (r UpdateUserRequest) Patch() domain.UserPatch {
	return domain.UserPatch{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Age:      r.Age,
	}
}

// AuthResponse is returned by registration and login.
type AuthResponse struct {
	User  domain.PublicUser `json:"user"`
	Token string            `json:"token"`
}

// CreateTaskRequest defines the payload for creating a task. The owner always
// comes from the session.
type CreateTaskRequest struct {
	Description string `json:"description" validate:"required"`
	Completed   bool   `json:"completed"`
}

// UpdateTaskRequest lists the task fields a PATCH may name.
type UpdateTaskRequest struct {
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// Patch converts the request to a domain patch.
func (r UpdateTaskRequest) Patch() domain.TaskPatch {
	return domain.TaskPatch{
		Description: r.Description,
		Completed:   r.Completed,
	}
}
