package handler

import (
	"net/http"

	"readhub/internal/microservices/http-api/dto"
	"readhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type BookHandler struct {
	svc service.BookService
}

func NewBookHandler(svc service.BookService) *BookHandler {
	return &BookHandler{svc: svc}
}

func (h *BookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

// Create adds a book to the user's shelf
func (h *BookHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	book, err := h.svc.Create(ctx, userID, service.BookInput{
		Title:       req.Title,
		Author:      req.Author,
		Genres:      req.Genres,
		TotalPages:  req.TotalPages,
		CurrentPage: req.CurrentPage,
		Status:      req.Status,
		CoverURL:    req.CoverURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, book)
}

// List returns the shelf, optionally filtered by ?status=
func (h *BookHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	books, err := h.svc.List(ctx, userID, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.BookListResponse{Items: books, Total: len(books)})
}

func (h *BookHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	book, err := h.svc.Get(ctx, userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, book)
}

// Update applies a partial update; XP is resynced afterwards
func (h *BookHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	book, err := h.svc.Update(ctx, userID, c.Param("id"), service.BookPatch{
		Title:       req.Title,
		Author:      req.Author,
		Genres:      req.Genres,
		TotalPages:  req.TotalPages,
		CurrentPage: req.CurrentPage,
		Status:      req.Status,
		CoverURL:    req.CoverURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, book)
}

// Delete removes the book and its sessions; XP is resynced afterwards
func (h *BookHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Delete(ctx, userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
