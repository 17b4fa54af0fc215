// File: internal/dto/update_user_request.go
package dto

// UpdateUserRequest 只更新有給的欄位
// swagger:model dto.UpdateUserRequest
type UpdateUserRequest struct {
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=user admin" example:"admin"`
	IsActive *bool   `json:"is_active,omitempty" example:"false"`
}
