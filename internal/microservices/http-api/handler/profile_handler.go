package handler

import (
	"errors"
	"io"
	"net/http"

	"readhub/internal/microservices/http-api/dto"
	"readhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	svc service.ProgressService
}

func NewProfileHandler(svc service.ProgressService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

func (h *ProfileHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Ensure)
}

// Ensure creates the caller's profile on first login; later calls return
// the existing one unchanged
func (h *ProfileHandler) Ensure(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.EnsureProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Username == "" {
		req.Username = c.GetString("username")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := h.svc.EnsureProfile(ctx, userID, req.Username, req.Timezone)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
