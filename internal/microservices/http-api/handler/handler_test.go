package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"readhub/internal/gamification"
	"readhub/internal/microservices/http-api/handler"
	"readhub/internal/microservices/http-api/models"
	"readhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testUserID = "test-user-id"

// --- MOCK SERVICES ---

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Submit(ctx context.Context, userID string, req service.SubmitRequest) (*service.SubmitResult, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubmitResult), args.Error(1)
}

func (m *MockSessionService) List(ctx context.Context, userID string, limit int) ([]models.ReadingSession, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]models.ReadingSession), args.Error(1)
}

type MockBookService struct {
	mock.Mock
}

func (m *MockBookService) Create(ctx context.Context, userID string, in service.BookInput) (*models.Book, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookService) Get(ctx context.Context, userID, bookID string) (*models.Book, error) {
	args := m.Called(ctx, userID, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookService) List(ctx context.Context, userID, status string) ([]models.Book, error) {
	args := m.Called(ctx, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockBookService) Update(ctx context.Context, userID, bookID string, patch service.BookPatch) (*models.Book, error) {
	args := m.Called(ctx, userID, bookID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookService) Delete(ctx context.Context, userID, bookID string) error {
	args := m.Called(ctx, userID, bookID)
	return args.Error(0)
}

type MockBadgeService struct {
	mock.Mock
}

func (m *MockBadgeService) Evaluate(ctx context.Context, userID string, event service.BadgeEvent, data map[string]any) ([]models.Badge, error) {
	args := m.Called(ctx, userID, event, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Badge), args.Error(1)
}

func (m *MockBadgeService) List(ctx context.Context, userID string) ([]models.Badge, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Badge), args.Error(1)
}

func (m *MockBadgeService) Progress(ctx context.Context, userID string) ([]gamification.BadgeProgress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gamification.BadgeProgress), args.Error(1)
}

func (m *MockBadgeService) Catalog() []gamification.MasterBadge {
	args := m.Called()
	return args.Get(0).([]gamification.MasterBadge)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) GetUnread(ctx context.Context, userID string) ([]models.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkAsRead(ctx context.Context, userID string, id int64) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockNotificationService) MarkAllAsRead(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockProgressService struct {
	mock.Mock
}

func (m *MockProgressService) EnsureProfile(ctx context.Context, userID, username, timezone string) (*models.UserProfile, error) {
	args := m.Called(ctx, userID, username, timezone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockProgressService) GetProgress(ctx context.Context, userID string) (*service.Progress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Progress), args.Error(1)
}

func (m *MockProgressService) Stats(ctx context.Context, userID string) (*service.Stats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Stats), args.Error(1)
}

func (m *MockProgressService) Activities(ctx context.Context, userID string, limit int) ([]service.Activity, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.Activity), args.Error(1)
}

type MockXPSyncService struct {
	mock.Mock
}

func (m *MockXPSyncService) Resync(ctx context.Context, userID string) (*service.ResyncResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ResyncResult), args.Error(1)
}

func (m *MockXPSyncService) Check(ctx context.Context, userID string) (*service.ResyncResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ResyncResult), args.Error(1)
}

func (m *MockXPSyncService) UserIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

// --- SETUP ---

func mockAuthMiddleware(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
			c.Set("username", "testuser")
		}
		c.Next()
	}
}

type registrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

func setupRouter(prefix, userID string, h registrar) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rg := r.Group("/api" + prefix)
	rg.Use(mockAuthMiddleware(userID))
	h.RegisterRoutes(rg)
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

type sessionRoutes struct{ h *handler.SessionHandler }

func (s sessionRoutes) RegisterRoutes(rg *gin.RouterGroup) { s.h.RegisterRoutes(rg) }

// --- TESTS ---

func TestSessionHandler_Submit(t *testing.T) {
	mockService := new(MockSessionService)
	r := setupRouter("/sessions", testUserID, sessionRoutes{handler.NewSessionHandler(mockService)})

	t.Run("Success", func(t *testing.T) {
		want := service.SubmitRequest{BookID: "b1", Mode: service.ModePagesRead, Value: 120}
		mockService.On("Submit", mock.Anything, testUserID, want).Return(&service.SubmitResult{
			ActualPagesRead: 120,
			BookCompleted:   true,
			XPAwarded:       170,
			Streak:          1,
			LeveledUp:       true,
			Level:           gamification.LevelForXP(170),
			NewBadges:       []models.Badge{},
		}, nil).Once()

		w := doJSON(r, http.MethodPost, "/api/sessions", map[string]any{"book_id": "b1", "mode": "pages_read", "value": 120})

		assert.Equal(t, http.StatusCreated, w.Code)
		body := decode(t, w)
		assert.Equal(t, float64(170), body["xp_awarded"])
		assert.Equal(t, true, body["book_completed"])
		level := body["level"].(map[string]any)
		assert.Equal(t, float64(2), level["level"])
	})

	t.Run("ValidationError", func(t *testing.T) {
		mockService.On("Submit", mock.Anything, testUserID, mock.Anything).
			Return(nil, &service.ValidationError{Field: "pages_read", Message: "You only have 10 pages left in this book."}).Once()

		w := doJSON(r, http.MethodPost, "/api/sessions", map[string]any{"book_id": "b1", "mode": "pages_read", "value": 11})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decode(t, w)
		assert.Equal(t, "You only have 10 pages left in this book.", body["error"])
		assert.Equal(t, "pages_read", body["field"])
	})

	t.Run("BookNotFound", func(t *testing.T) {
		mockService.On("Submit", mock.Anything, testUserID, mock.Anything).Return(nil, service.ErrBookNotFound).Once()
		w := doJSON(r, http.MethodPost, "/api/sessions", map[string]any{"book_id": "nope", "mode": "pages_read", "value": 1})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Busy", func(t *testing.T) {
		mockService.On("Submit", mock.Anything, testUserID, mock.Anything).Return(nil, service.ErrBusy).Once()
		w := doJSON(r, http.MethodPost, "/api/sessions", map[string]any{"book_id": "b1", "mode": "pages_read", "value": 1})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("StoreFailureIsHidden", func(t *testing.T) {
		mockService.On("Submit", mock.Anything, testUserID, mock.Anything).
			Return(nil, &service.StoreError{Op: "insert session", Err: errors.New("pq: connection refused")}).Once()
		w := doJSON(r, http.MethodPost, "/api/sessions", map[string]any{"book_id": "b1", "mode": "pages_read", "value": 1})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})

	t.Run("InvalidMode", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/sessions", map[string]any{"book_id": "b1", "mode": "chapters", "value": 1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/sessions", "{")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	mockService.AssertExpectations(t)
}

func TestSessionHandler_Unauthenticated(t *testing.T) {
	mockService := new(MockSessionService)
	r := setupRouter("/sessions", "", sessionRoutes{handler.NewSessionHandler(mockService)})

	w := doJSON(r, http.MethodPost, "/api/sessions", map[string]any{"book_id": "b1", "mode": "pages_read", "value": 1})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionHandler_List(t *testing.T) {
	mockService := new(MockSessionService)
	r := setupRouter("/sessions", testUserID, sessionRoutes{handler.NewSessionHandler(mockService)})

	mockService.On("List", mock.Anything, testUserID, 50).Return([]models.ReadingSession{{ID: "s1", PagesRead: 10}}, nil).Once()
	mockService.On("List", mock.Anything, testUserID, 5).Return([]models.ReadingSession{}, nil).Once()

	w := doJSON(r, http.MethodGet, "/api/sessions", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])

	w = doJSON(r, http.MethodGet, "/api/sessions?limit=5", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/sessions?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mockService.AssertExpectations(t)
}

func TestBookHandler(t *testing.T) {
	mockService := new(MockBookService)
	r := setupRouter("/books", testUserID, handler.NewBookHandler(mockService))

	t.Run("Create", func(t *testing.T) {
		in := service.BookInput{Title: "Bumi", Author: "Tere Liye", Genres: []string{"Fantasi"}, TotalPages: 440}
		mockService.On("Create", mock.Anything, testUserID, in).
			Return(&models.Book{ID: "b1", Title: "Bumi", TotalPages: 440, Status: models.BookStatusReading}, nil).Once()

		w := doJSON(r, http.MethodPost, "/api/books", map[string]any{
			"title": "Bumi", "author": "Tere Liye", "genres": []string{"Fantasi"}, "total_pages": 440,
		})
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "b1", decode(t, w)["id"])
	})

	t.Run("CreateRequiresPages", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/books", map[string]any{"title": "Bumi"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("CreateRejectsUnknownStatus", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/books", map[string]any{"title": "Bumi", "total_pages": 10, "status": "dropped"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("ListByStatus", func(t *testing.T) {
		mockService.On("List", mock.Anything, testUserID, "completed").Return([]models.Book{{ID: "b2"}}, nil).Once()
		w := doJSON(r, http.MethodGet, "/api/books?status=completed", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), decode(t, w)["total"])
	})

	t.Run("Update", func(t *testing.T) {
		status := models.BookStatusCompleted
		mockService.On("Update", mock.Anything, testUserID, "b1", service.BookPatch{Status: &status}).
			Return(&models.Book{ID: "b1", Status: status}, nil).Once()
		w := doJSON(r, http.MethodPut, "/api/books/b1", map[string]any{"status": "completed"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("GetMissing", func(t *testing.T) {
		mockService.On("Get", mock.Anything, testUserID, "gone").Return(nil, service.ErrBookNotFound).Once()
		w := doJSON(r, http.MethodGet, "/api/books/gone", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Delete", func(t *testing.T) {
		mockService.On("Delete", mock.Anything, testUserID, "b1").Return(nil).Once()
		w := doJSON(r, http.MethodDelete, "/api/books/b1", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	mockService.AssertExpectations(t)
}

func TestBadgeHandler(t *testing.T) {
	mockService := new(MockBadgeService)
	r := setupRouter("/badges", testUserID, handler.NewBadgeHandler(mockService))

	t.Run("EvaluateDefaultsToManual", func(t *testing.T) {
		mockService.On("Evaluate", mock.Anything, testUserID, service.EventManual, map[string]any(nil)).
			Return(nil, nil).Once()
		w := doJSON(r, http.MethodPost, "/api/badges/evaluate", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, float64(0), body["total"])
		assert.Equal(t, []any{}, body["new_badges"])
	})

	t.Run("EvaluateWithEvent", func(t *testing.T) {
		data := map[string]any{"book_id": "b1"}
		mockService.On("Evaluate", mock.Anything, testUserID, service.EventBookCompleted, data).
			Return([]models.Badge{{BadgeID: "genre_fantasi_1"}}, nil).Once()
		w := doJSON(r, http.MethodPost, "/api/badges/evaluate", map[string]any{"event_type": "book_completed", "event_data": data})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), decode(t, w)["total"])
	})

	t.Run("EvaluateUnknownEvent", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/badges/evaluate", map[string]any{"event_type": "birthday"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Catalog", func(t *testing.T) {
		mockService.On("Catalog").Return(gamification.DefaultCatalog.All()).Once()
		w := doJSON(r, http.MethodGet, "/api/badges/catalog", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(gamification.DefaultCatalog.Len()), decode(t, w)["total"])
	})

	t.Run("ProgressWithoutProfile", func(t *testing.T) {
		mockService.On("Progress", mock.Anything, testUserID).Return(nil, service.ErrProfileNotFound).Once()
		w := doJSON(r, http.MethodGet, "/api/badges/progress", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	mockService.AssertExpectations(t)
}

func TestNotificationHandler(t *testing.T) {
	mockService := new(MockNotificationService)
	r := setupRouter("/notifications", testUserID, handler.NewNotificationHandler(mockService))

	mockService.On("GetUnread", mock.Anything, testUserID).
		Return([]models.Notification{{ID: 1, Type: models.NotificationLevelUp}}, nil).Once()
	w := doJSON(r, http.MethodGet, "/api/notifications/unread", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPut, "/api/notifications/abc/read", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mockService.On("MarkAsRead", mock.Anything, testUserID, int64(9)).Return(service.ErrNotificationNotFound).Once()
	w = doJSON(r, http.MethodPut, "/api/notifications/9/read", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	mockService.On("MarkAsRead", mock.Anything, testUserID, int64(1)).Return(nil).Once()
	w = doJSON(r, http.MethodPut, "/api/notifications/1/read", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	mockService.On("MarkAllAsRead", mock.Anything, testUserID).Return(nil).Once()
	w = doJSON(r, http.MethodPut, "/api/notifications/read-all", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	mockService.AssertExpectations(t)
}

func TestProgressHandler(t *testing.T) {
	progressSvc := new(MockProgressService)
	xpSvc := new(MockXPSyncService)
	r := setupRouter("/progress", testUserID, handler.NewProgressHandler(progressSvc, xpSvc))

	t.Run("Level", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/progress/level?xp=250", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, float64(gamification.LevelForXP(250).Level), body["level"])

		w = doJSON(r, http.MethodGet, "/api/progress/level?xp=-5", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(r, http.MethodGet, "/api/progress/level?xp=1000000000000", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(r, http.MethodGet, "/api/progress/level?xp=4611686018427387904", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Get", func(t *testing.T) {
		progressSvc.On("GetProgress", mock.Anything, testUserID).
			Return(&service.Progress{UserID: testUserID, XP: 170, Level: gamification.LevelForXP(170), Streak: 1}, nil).Twice()

		w := doJSON(r, http.MethodGet, "/api/progress", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(170), decode(t, w)["xp"])

		w = doJSON(r, http.MethodGet, "/api/progress/levels", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, decode(t, w)["levels"])
	})

	t.Run("Activities", func(t *testing.T) {
		progressSvc.On("Activities", mock.Anything, testUserID, 20).Return([]service.Activity{}, nil).Once()
		w := doJSON(r, http.MethodGet, "/api/progress/activities", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(r, http.MethodGet, "/api/progress/activities?limit=0", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Resync", func(t *testing.T) {
		xpSvc.On("Resync", mock.Anything, testUserID).Return(&service.ResyncResult{UserID: testUserID, XP: 170, Level: 2}, nil).Once()
		w := doJSON(r, http.MethodPost, "/api/progress/resync", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(170), decode(t, w)["xp"])
	})

	progressSvc.AssertExpectations(t)
	xpSvc.AssertExpectations(t)
}

func TestProfileHandler(t *testing.T) {
	mockService := new(MockProgressService)
	r := setupRouter("/profile", testUserID, handler.NewProfileHandler(mockService))

	mockService.On("EnsureProfile", mock.Anything, testUserID, "testuser", "").
		Return(&models.UserProfile{UserID: testUserID, Username: "testuser", Level: 1}, nil).Once()
	w := doJSON(r, http.MethodPost, "/api/profile", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	mockService.On("EnsureProfile", mock.Anything, testUserID, "dewi", "Asia/Jakarta").
		Return(&models.UserProfile{UserID: testUserID, Username: "dewi", Timezone: "Asia/Jakarta"}, nil).Once()
	w = doJSON(r, http.MethodPost, "/api/profile", map[string]any{"username": "dewi", "timezone": "Asia/Jakarta"})
	assert.Equal(t, http.StatusOK, w.Code)

	mockService.AssertExpectations(t)
}

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	healthy := gin.New()
	handler.NewHealthHandler(map[string]handler.Pinger{
		"database": func(context.Context) error { return nil },
	}).RegisterRoutes(healthy)
	w := doJSON(healthy, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	degraded := gin.New()
	handler.NewHealthHandler(map[string]handler.Pinger{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("dial tcp: refused") },
	}).RegisterRoutes(degraded)
	w = doJSON(degraded, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "degraded", decode(t, w)["status"])
}
