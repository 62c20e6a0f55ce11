package dto

import "readhub/internal/gamification"

// DTOs for progress-related operations in HTTP API

type LevelQuery struct {
	XP int64 `form:"xp" binding:"gte=0,lte=1000000000000"`
}

type LevelsResponse struct {
	Current gamification.LevelInfo   `json:"current"`
	Levels  []gamification.LevelStep `json:"levels"`
}

type ActivitiesQuery struct {
	Limit int `form:"limit" binding:"gte=1,lte=500"`
}
