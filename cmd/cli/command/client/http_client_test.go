package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"readhub/internal/microservices/http-api/dto"
	"readhub/internal/microservices/http-api/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitSession_SendsTokenAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/sessions", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req dto.SubmitSessionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "book-1", req.BookID)
		assert.Equal(t, "pages_read", req.Mode)
		assert.Equal(t, 25, req.Value)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(service.SubmitResult{ActualPagesRead: 25, XPAwarded: 75, Streak: 1})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	c.SetToken("tok")
	res, err := c.SubmitSession(context.Background(), &dto.SubmitSessionRequest{BookID: "book-1", Mode: "pages_read", Value: 25})
	require.NoError(t, err)
	assert.Equal(t, 25, res.ActualPagesRead)
	assert.Equal(t, int64(75), res.XPAwarded)
}

func TestDo_DecodesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"You only have 10 pages left in this book.","field":"pages_read"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL).SubmitSession(context.Background(), &dto.SubmitSessionRequest{BookID: "b", Mode: "pages_read", Value: 50})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "pages_read", apiErr.Field)
	assert.Contains(t, apiErr.Error(), "10 pages left")
}

func TestDo_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL).GetProgress(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestDeleteBook_NoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/books/abc", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	assert.NoError(t, NewHTTPClient(srv.URL).DeleteBook(context.Background(), "abc"))
}

func TestListBooks_StatusQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "completed", r.URL.Query().Get("status"))
		w.Write([]byte(`{"items":[{"id":"b1","title":"Dune","total_pages":412,"current_page":412,"status":"completed"}],"total":1}`))
	}))
	defer srv.Close()

	resp, err := NewHTTPClient(srv.URL).ListBooks(context.Background(), "completed")
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Dune", resp.Items[0].Title)
}
