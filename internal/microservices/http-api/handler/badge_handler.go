package handler

import (
	"errors"
	"io"
	"net/http"

	"readhub/internal/microservices/http-api/dto"
	"readhub/internal/microservices/http-api/models"
	"readhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type BadgeHandler struct {
	svc service.BadgeService
}

func NewBadgeHandler(svc service.BadgeService) *BadgeHandler {
	return &BadgeHandler{svc: svc}
}

func (h *BadgeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/catalog", h.Catalog)
	rg.GET("/progress", h.Progress)
	rg.POST("/evaluate", h.Evaluate)
}

// List returns the badges the user has unlocked
func (h *BadgeHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	badges, err := h.svc.List(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if badges == nil {
		badges = []models.Badge{}
	}

	c.JSON(http.StatusOK, gin.H{"badges": badges, "total": len(badges)})
}

// Catalog returns every badge that can be earned
func (h *BadgeHandler) Catalog(c *gin.Context) {
	badges := h.svc.Catalog()
	c.JSON(http.StatusOK, gin.H{"badges": badges, "total": len(badges)})
}

// Progress returns current/target for every catalog badge
func (h *BadgeHandler) Progress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	progress, err := h.svc.Progress(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": progress, "total": len(progress)})
}

// Evaluate checks the catalog and unlocks anything newly earned
func (h *BadgeHandler) Evaluate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.EvaluateBadgesRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	event, err := service.ParseBadgeEvent(req.EventType)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	unlocked, err := h.svc.Evaluate(ctx, userID, event, req.EventData)
	if err != nil {
		respondError(c, err)
		return
	}
	if unlocked == nil {
		unlocked = []models.Badge{}
	}

	c.JSON(http.StatusOK, dto.EvaluateBadgesResponse{NewBadges: unlocked, Total: len(unlocked)})
}
