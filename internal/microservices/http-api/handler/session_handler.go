package handler

import (
	"net/http"
	"strconv"

	"readhub/internal/microservices/http-api/dto"
	"readhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

const defaultSessionLimit = 50

type SessionHandler struct {
	svc service.SessionService
}

func NewSessionHandler(svc service.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// RegisterRoutes mounts the session routes. submit runs in front of the
// submission endpoint only, typically a rate limiter.
func (h *SessionHandler) RegisterRoutes(rg *gin.RouterGroup, submit ...gin.HandlerFunc) {
	rg.POST("", append(submit, h.Submit)...)
	rg.GET("", h.List)
}

// Submit logs a reading session and returns everything it earned
func (h *SessionHandler) Submit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.SubmitSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.svc.Submit(ctx, userID, service.SubmitRequest{
		BookID: req.BookID,
		Mode:   service.SubmitMode(req.Mode),
		Value:  req.Value,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// List returns the user's sessions, newest first
func (h *SessionHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	limit := defaultSessionLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	sessions, err := h.svc.List(ctx, userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SessionListResponse{Items: sessions, Total: len(sessions)})
}
