package dto

import (
	"photo_studio/internal/domain/models"
)

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=admin superadmin"`
}

type UpdateUserRequest struct {
	Role   *string `json:"role,omitempty" validate:"omitempty,oneof=admin superadmin"`
	Active *bool   `json:"active,omitempty"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Me is the admin identity resolved from the session token.
type Me struct {
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}
