package dto

import "readhub/internal/microservices/http-api/models"

// SubmitSessionRequest: payload to log a reading session.
// Mode "pages_read" treats Value as pages read now, "current_page" as the
// page the reader stopped on.
type SubmitSessionRequest struct {
	BookID string `json:"book_id"`
	Mode   string `json:"mode" binding:"required,oneof=pages_read current_page"`
	Value  int    `json:"value"`
}

// SessionListResponse: list of reading sessions
type SessionListResponse struct {
	Items []models.ReadingSession `json:"items"`
	Total int                     `json:"total"`
}
