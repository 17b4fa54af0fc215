// File: internal/dto/create_user_request.go
package dto

// swagger:model dto.CreateUserRequest
type CreateUserRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email" example:"alice@example.com"`
	Password string `json:"password" form:"password" validate:"required,min=8" example:"Secret123!"`
	Role     string `json:"role" form:"role" validate:"omitempty,oneof=user admin" example:"user"`
}
