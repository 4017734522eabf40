package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Jassur2025/metallerp-sub000/internal/ledger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

const testSecret = "test-secret-test-secret-test-secret"

func signed(t *testing.T, role string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "8a3f2b52-6f57-4b5e-9e0a-1b1f0b7c0c11", "username": "aziz", "role": role, "exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func protected() *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.GET("/admin", JWTAuth(testSecret), RequireRole("admin"), func(c *gin.Context) {
		c.String(http.StatusOK, GetClaims(c).Username)
	})
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(&ledger.ValidationError{Fields: map[string]string{"amount": "must be greater than zero"}})
	})
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("pq: relation does not exist"))
	})
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthAndRoles(t *testing.T) {
	r := protected()

	assert.Equal(t, http.StatusUnauthorized, do(r, "/admin", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/admin", signed(t, "admin", time.Now().Add(-time.Hour))).Code)
	assert.Equal(t, http.StatusForbidden, do(r, "/admin", signed(t, "storekeeper", time.Now().Add(time.Hour))).Code)

	w := do(r, "/admin", signed(t, "admin", time.Now().Add(time.Hour)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "aziz", w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestErrorHandlerMapsDomainErrors(t *testing.T) {
	r := protected()

	w := do(r, "/fail", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "must be greater than zero")

	w = do(r, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "relation")
}

func TestLimiter(t *testing.T) {
	l := NewLimiter("t", 2, time.Minute, "slow down")
	now := time.Now()

	ok, _ := l.Allow("1.2.3.4", now)
	assert.True(t, ok)
	ok, _ = l.Allow("1.2.3.4", now)
	assert.True(t, ok)
	ok, _ = l.Allow("1.2.3.4", now)
	assert.False(t, ok)
	ok, _ = l.Allow("5.6.7.8", now)
	assert.True(t, ok)

	ok, _ = l.Allow("1.2.3.4", now.Add(2*time.Minute))
	assert.True(t, ok, "a new window starts after the period")
}

func TestCORS_OnlyListedOrigins(t *testing.T) {
	r := gin.New()
	r.Use(CORS("http://localhost:5173"))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
