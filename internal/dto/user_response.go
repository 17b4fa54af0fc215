// File: internal/dto/user_response.go
package dto

import (
	"time"

	"algobench/internal/model"

	"github.com/google/uuid"
)

// swagger:model dto.UserResponse
type UserResponse struct {
	ID        uuid.UUID `json:"id" example:"7b0c1c7e-4f9c-4a57-9c0e-2d8f1f3a9b10"`
	Email     string    `json:"email" example:"alice@example.com"`
	Role      string    `json:"role" example:"user"`
	IsActive  bool      `json:"is_active" example:"true"`
	CreatedAt time.Time `json:"created_at" example:"2025-05-01T15:04:05Z"`
}

func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}
