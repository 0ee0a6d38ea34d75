package handler

import "github.com/printshop/backend/internal/interfaces/http/dto"

// APIResponse represents a generic API response for OpenAPI documentation
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse represents an error API response for OpenAPI documentation
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// DraftStatusData is the lightweight body of the draft status endpoint
// @Description Draft processing status
type DraftStatusData struct {
	ID        string `json:"id"`
	Status    string `json:"status" example:"ready_for_preview"`
	PageCount int    `json:"page_count"`
	Version   int    `json:"version"`
}

// HealthData reports the service state
// @Description Service health
type HealthData struct {
	Status  string            `json:"status" example:"ok"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks,omitempty"`
	Queue   map[string]int64  `json:"queue,omitempty" example:"pending:3,failed:1"`
}
