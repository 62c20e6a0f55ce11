package command

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"readhub/internal/gamification"
	"readhub/internal/microservices/http-api/dto"
	"readhub/internal/microservices/http-api/middleware"
	"readhub/internal/microservices/http-api/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestLevel_OfflineXP(t *testing.T) {
	out, err := execute(t, "level", "--xp", "170")
	require.NoError(t, err)
	assert.Contains(t, out, "Level 2: Pustakawan Pemula")
	assert.Contains(t, out, "170 total, 70/120 in level")
	assert.Contains(t, out, "← you")
}

func TestSessionSubmit_PagesMode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req dto.SubmitSessionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pages_read", req.Mode)
		assert.Equal(t, 120, req.Value)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(service.SubmitResult{
			ActualPagesRead: 120,
			BookCompleted:   true,
			XPAwarded:       170,
			XP:              service.XPBreakdown{Pages: 120, CompletionBonus: 50, Total: 170},
			Streak:          1,
			LeveledUp:       true,
			PreviousLevel:   1,
			Level:           gamification.LevelForXP(170),
			Celebration:     &service.Celebration{Title: "Laskar Pelangi", Author: "Andrea Hirata", TotalPages: 120, FinishedOn: "2024-03-13"},
			Quote:           "keep reading",
		})
	}))
	defer srv.Close()

	out, err := execute(t, "session", "submit", "--api", srv.URL, "--token", "tok", "--book", "b1", "--pages", "120")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged 120 pages (+170 XP)")
	assert.Contains(t, out, "completion bonus 50")
	assert.Contains(t, out, "Level up! 1 → 2")
	assert.Contains(t, out, `Finished "Laskar Pelangi"`)
	assert.Contains(t, out, "keep reading")
}

func TestCredentialsFromToken(t *testing.T) {
	signed, err := middleware.SignToken([]byte("0123456789abcdef0123456789abcdef"), "user-1", "dina", time.Hour)
	require.NoError(t, err)

	creds, err := credentialsFromToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", creds.UserID)
	assert.Equal(t, "dina", creds.Username)
	assert.False(t, creds.Expired(time.Now()))
	assert.True(t, creds.Expired(time.Now().Add(2*time.Hour)))

	_, err = credentialsFromToken("not-a-jwt")
	assert.Error(t, err)
}
