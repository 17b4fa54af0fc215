package dto

// swagger:model dto.HealthResponse
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
