package handler

import (
	"net/http"

	"readhub/internal/gamification"
	"readhub/internal/microservices/http-api/dto"
	"readhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

const defaultActivityLimit = 20

type ProgressHandler struct {
	svc service.ProgressService
	xp  service.XPSyncService
}

func NewProgressHandler(svc service.ProgressService, xp service.XPSyncService) *ProgressHandler {
	return &ProgressHandler{svc: svc, xp: xp}
}

func (h *ProgressHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Get)
	rg.GET("/level", h.Level)
	rg.GET("/levels", h.Levels)
	rg.GET("/stats", h.Stats)
	rg.GET("/activities", h.Activities)
	rg.POST("/resync", h.Resync)
}

// Get returns XP, level and streak for the authenticated user
func (h *ProgressHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	progress, err := h.svc.GetProgress(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// Level resolves an arbitrary XP total; it touches no user state
func (h *ProgressHandler) Level(c *gin.Context) {
	var q dto.LevelQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gamification.LevelForXP(q.XP))
}

// Levels lists the level ladder around the user's current XP
func (h *ProgressHandler) Levels(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	progress, err := h.svc.GetProgress(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LevelsResponse{
		Current: progress.Level,
		Levels:  gamification.LevelHistory(progress.XP),
	})
}

func (h *ProgressHandler) Stats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := h.svc.Stats(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Activities returns the recent-activity feed
func (h *ProgressHandler) Activities(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	q := dto.ActivitiesQuery{Limit: defaultActivityLimit}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	activities, err := h.svc.Activities(ctx, userID, q.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activities": activities, "total": len(activities)})
}

// Resync recomputes the user's XP from the session log
func (h *ProgressHandler) Resync(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.xp.Resync(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
