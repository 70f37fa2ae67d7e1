package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/trip-eval-backend-go/internal/monitoring"
)

func init() {
	gin.SetMode(gin.TestMode)
	monitoring.SetLogger(nil)
}

func TestRateLimiterWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := newRateLimiter(2, time.Minute, func() time.Time { return now })

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := IssueToken("secret", "evaluator@example.com", time.Hour, time.Now())
	require.NoError(t, err)

	subject, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "evaluator@example.com", subject)

	_, err = ParseToken("other", token)
	assert.Error(t, err)

	expired, err := IssueToken("secret", "evaluator@example.com", time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = ParseToken("secret", expired)
	assert.Error(t, err)

	_, err = IssueToken("", "x", time.Hour, time.Now())
	assert.Error(t, err)
}

func TestAuth(t *testing.T) {
	r := gin.New()
	r.Use(Auth("secret"))
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(UserKey))
	})

	token, err := IssueToken("secret", "evaluator@example.com", time.Hour, time.Now())
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid", "Bearer " + token, http.StatusOK, "evaluator@example.com"},
		{"missing", "", http.StatusUnauthorized, ""},
		{"not bearer", "Basic " + token, http.StatusUnauthorized, ""},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestLogger(t *testing.T) {
	var lines []string
	monitoring.SetLogger(func(format string, v ...interface{}) { lines = append(lines, fmt.Sprintf(format, v...)) })
	defer monitoring.SetLogger(nil)

	token, err := IssueToken("secret", "evaluator@example.com", time.Hour, time.Now())
	require.NoError(t, err)

	r := gin.New()
	r.Use(Logger("/health"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.POST("/tasks", Auth("secret"), func(c *gin.Context) { c.Status(http.StatusAccepted) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, lines)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping?x=1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "GET /ping?x=1 204")
	assert.Contains(t, lines[0], "user=-")

	req := httptest.NewRequest(http.MethodPost, "/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "user=evaluator@example.com")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/tasks", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.Len(t, lines, 3)
	assert.Contains(t, lines[2], "POST /tasks 401")
	assert.Contains(t, w.Body.String(), `"code":401`)
}
