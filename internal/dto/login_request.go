// File: internal/dto/login_request.go
package dto

// LoginRequest OAuth2 password 表單；username 為 email
// swagger:model dto.LoginRequest
type LoginRequest struct {
	Username string `form:"username" validate:"required" example:"alice@example.com"`
	Password string `form:"password" validate:"required" example:"Secret123!"`
}
