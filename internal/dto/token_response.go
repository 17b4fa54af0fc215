// File: internal/dto/token_response.go
package dto

import "time"

// swagger:model dto.TokenResponse
type TokenResponse struct {
	AccessToken string    `json:"access_token" example:"eyJhbGciOi..."`
	TokenType   string    `json:"token_type" example:"bearer"`
	ExpiresAt   time.Time `json:"expires_at" example:"2025-05-09T15:04:05Z"`
}
