// File: internal/dto/http_error.go
package dto

// HTTPError 錯誤響應；401 時另帶 WWW-Authenticate: Bearer
// swagger:model dto.HTTPError
type HTTPError struct {
	Message string `json:"message" example:"could not validate credentials"`
}
