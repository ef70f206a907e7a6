package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/panic", func(*gin.Context) { panic("kaboom") })
	return r
}

func do(r http.Handler, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID())

	w := do(r, "/ping", nil)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w = do(r, "/ping", http.Header{RequestIDHeader: {"abc"}})
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}

func TestRecovery(t *testing.T) {
	r := newEngine(RequestID(), Recovery())
	w := do(r, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(1, 2)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("1.1.1.1"))
	assert.False(t, l.Allow("1.1.1.1"), "burst exhausted")
	assert.True(t, l.Allow("2.2.2.2"), "other clients have their own bucket")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("1.1.1.1"), "refilled after a second")

	now = now.Add(10 * time.Minute)
	l.Allow("3.3.3.3")
	l.mu.Lock()
	_, stale := l.clients["1.1.1.1"]
	l.mu.Unlock()
	assert.False(t, stale, "idle clients are swept")
}

func TestRateLimiterMiddleware(t *testing.T) {
	r := newEngine(NewRateLimiter(0.001, 1).Middleware())
	assert.Equal(t, http.StatusOK, do(r, "/ping", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, "/ping", nil).Code)

	open := newEngine(NewRateLimiter(0, 0).Middleware())
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, do(open, "/ping", nil).Code)
	}
}

func TestAdminAuth(t *testing.T) {
	const secret = "s3cret"
	r := newEngine(AdminAuth(secret))

	assert.Equal(t, http.StatusUnauthorized, do(r, "/ping", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/ping", http.Header{"Authorization": {"Bearer nope"}}).Code)

	tok, exp, err := IssueAdminToken(secret, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)
	assert.Equal(t, http.StatusOK, do(r, "/ping", http.Header{"Authorization": {"Bearer " + tok}}).Code)

	other, _, err := IssueAdminToken("different", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/ping", http.Header{"Authorization": {"Bearer " + other}}).Code)

	expired, _, err := IssueAdminToken(secret, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/ping", http.Header{"Authorization": {"Bearer " + expired}}).Code)
}

func TestAdminAuth_DisabledWithoutSecret(t *testing.T) {
	r := newEngine(AdminAuth(""))
	assert.Equal(t, http.StatusOK, do(r, "/ping", nil).Code)

	_, _, err := IssueAdminToken("", time.Hour)
	assert.Error(t, err)
}
