package dto

import "readhub/internal/microservices/http-api/models"

// EvaluateBadgesRequest: event_type narrows which badge kinds are checked
type EvaluateBadgesRequest struct {
	EventType string         `json:"event_type" binding:"omitempty,oneof=session_submitted book_completed streak_updated manual"`
	EventData map[string]any `json:"event_data"`
}

type EvaluateBadgesResponse struct {
	NewBadges []models.Badge `json:"new_badges"`
	Total     int            `json:"total"`
}
