package client

// http_client.go = typed HTTP client for the readhub API.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"readhub/internal/gamification"
	"readhub/internal/microservices/http-api/dto"
	"readhub/internal/microservices/http-api/models"
	"readhub/internal/microservices/http-api/service"
)

// APIError carries the server's {"error": ...} body.
type APIError struct {
	Status  int
	Message string
	Field   string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%s, status %d)", e.Message, e.Field, e.Status)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// ErrUnauthorized is returned for 401 responses.
var ErrUnauthorized = errors.New("not logged in or token expired, run `readhub login`")

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

type BadgeList struct {
	Badges []models.Badge `json:"badges"`
	Total  int            `json:"total"`
}

type CatalogList struct {
	Badges []gamification.MasterBadge `json:"badges"`
	Total  int                        `json:"total"`
}

type BadgeProgressList struct {
	Progress []gamification.BadgeProgress `json:"progress"`
	Total    int                          `json:"total"`
}

type ActivityList struct {
	Activities []service.Activity `json:"activities"`
	Total      int                `json:"total"`
}

type NotificationList struct {
	Notifications []models.Notification `json:"notifications"`
}

func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: apiURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// do sends body as JSON and decodes the response into out when out is non-nil.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: resp.Status}
		var payload struct {
			Error string `json:"error"`
			Field string `json:"field"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
			apiErr.Message = payload.Error
			apiErr.Field = payload.Field
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Profile
func (c *HTTPClient) EnsureProfile(ctx context.Context, req *dto.EnsureProfileRequest) (*models.UserProfile, error) {
	var result models.UserProfile
	if err := c.do(ctx, http.MethodPost, "/api/profile", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Books
func (c *HTTPClient) CreateBook(ctx context.Context, req *dto.CreateBookRequest) (*models.Book, error) {
	var result models.Book
	if err := c.do(ctx, http.MethodPost, "/api/books", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) ListBooks(ctx context.Context, status string) (*dto.BookListResponse, error) {
	path := "/api/books"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var result dto.BookListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) UpdateBook(ctx context.Context, id string, req *dto.UpdateBookRequest) (*models.Book, error) {
	var result models.Book
	if err := c.do(ctx, http.MethodPut, "/api/books/"+url.PathEscape(id), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) DeleteBook(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/books/"+url.PathEscape(id), nil, nil)
}

// Sessions
func (c *HTTPClient) SubmitSession(ctx context.Context, req *dto.SubmitSessionRequest) (*service.SubmitResult, error) {
	var result service.SubmitResult
	if err := c.do(ctx, http.MethodPost, "/api/sessions", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) ListSessions(ctx context.Context, limit int) (*dto.SessionListResponse, error) {
	var result dto.SessionListResponse
	path := "/api/sessions?limit=" + strconv.Itoa(limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Progress
func (c *HTTPClient) GetProgress(ctx context.Context) (*service.Progress, error) {
	var result service.Progress
	if err := c.do(ctx, http.MethodGet, "/api/progress", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) GetLevels(ctx context.Context) (*dto.LevelsResponse, error) {
	var result dto.LevelsResponse
	if err := c.do(ctx, http.MethodGet, "/api/progress/levels", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) GetStats(ctx context.Context) (*service.Stats, error) {
	var result service.Stats
	if err := c.do(ctx, http.MethodGet, "/api/progress/stats", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) GetActivities(ctx context.Context, limit int) (*ActivityList, error) {
	var result ActivityList
	path := "/api/progress/activities?limit=" + strconv.Itoa(limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Resync(ctx context.Context) (*service.ResyncResult, error) {
	var result service.ResyncResult
	if err := c.do(ctx, http.MethodPost, "/api/progress/resync", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Badges
func (c *HTTPClient) ListBadges(ctx context.Context) (*BadgeList, error) {
	var result BadgeList
	if err := c.do(ctx, http.MethodGet, "/api/badges", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) BadgeCatalog(ctx context.Context) (*CatalogList, error) {
	var result CatalogList
	if err := c.do(ctx, http.MethodGet, "/api/badges/catalog", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) BadgeProgress(ctx context.Context) (*BadgeProgressList, error) {
	var result BadgeProgressList
	if err := c.do(ctx, http.MethodGet, "/api/badges/progress", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) EvaluateBadges(ctx context.Context, req *dto.EvaluateBadgesRequest) (*dto.EvaluateBadgesResponse, error) {
	var result dto.EvaluateBadgesResponse
	if err := c.do(ctx, http.MethodPost, "/api/badges/evaluate", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Notifications
func (c *HTTPClient) UnreadNotifications(ctx context.Context) (*NotificationList, error) {
	var result NotificationList
	if err := c.do(ctx, http.MethodGet, "/api/notifications/unread", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPut, "/api/notifications/read-all", nil, nil)
}
