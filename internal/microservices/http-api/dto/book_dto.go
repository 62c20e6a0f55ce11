package dto

import "readhub/internal/microservices/http-api/models"

// CreateBookRequest: payload to add a book to the shelf
type CreateBookRequest struct {
	Title       string   `json:"title" binding:"required"`
	Author      string   `json:"author"`
	Genres      []string `json:"genres"`
	TotalPages  int      `json:"total_pages" binding:"required,gt=0"`
	CurrentPage int      `json:"current_page" binding:"gte=0"`
	Status      string   `json:"status" binding:"omitempty,oneof=wishlist reading completed"`
	CoverURL    *string  `json:"cover_url" binding:"omitempty,url"`
}

// UpdateBookRequest: omitted fields are left unchanged
type UpdateBookRequest struct {
	Title       *string  `json:"title" binding:"omitempty,min=1"`
	Author      *string  `json:"author"`
	Genres      []string `json:"genres"`
	TotalPages  *int     `json:"total_pages" binding:"omitempty,gt=0"`
	CurrentPage *int     `json:"current_page" binding:"omitempty,gte=0"`
	Status      *string  `json:"status" binding:"omitempty,oneof=wishlist reading completed"`
	CoverURL    *string  `json:"cover_url" binding:"omitempty,url"`
}

// BookListResponse: list of books
type BookListResponse struct {
	Items []models.Book `json:"items"`
	Total int           `json:"total"`
}
