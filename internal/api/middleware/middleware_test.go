package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/princeprakhar/game-reviews-backend/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessions map[string]*models.User

func (s stubSessions) ParseSession(token string) (*models.User, error) {
	if user, ok := s[token]; ok {
		return user, nil
	}
	return nil, errors.New("invalid")
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, user.ID)
	})
	r.GET("/", handlers...)
	return r
}

func get(r http.Handler, setup func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if setup != nil {
		setup(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	sessions := stubSessions{
		"alice-token": {ID: "alice"},
		"admin-token": {ID: "root", IsAdmin: true},
	}
	r := newRouter(AuthMiddleware(sessions))

	assert.Equal(t, http.StatusUnauthorized, get(r, nil).Code)

	w := get(r, func(req *http.Request) { req.Header.Set("Authorization", "Bearer alice-token") })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())

	w = get(r, func(req *http.Request) { req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "alice-token"}) })
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(r, func(req *http.Request) { req.Header.Set("Authorization", "Basic alice-token") })
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, func(req *http.Request) { req.Header.Set("Authorization", "Bearer forged") })
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminOnly(t *testing.T) {
	sessions := stubSessions{
		"alice-token": {ID: "alice"},
		"admin-token": {ID: "root", IsAdmin: true},
	}
	r := newRouter(AuthMiddleware(sessions), AdminOnly())

	w := get(r, func(req *http.Request) { req.Header.Set("Authorization", "Bearer alice-token") })
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = get(r, func(req *http.Request) { req.Header.Set("Authorization", "Bearer admin-token") })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "root", w.Body.String())
}

func TestRateLimitMiddleware(t *testing.T) {
	store, err := NewRateLimitStore(nil)
	require.NoError(t, err)
	r := newRouter(RateLimitMiddleware(store, 2))

	assert.Equal(t, http.StatusOK, get(r, nil).Code)
	assert.Equal(t, http.StatusOK, get(r, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, nil).Code)
}

func TestRateLimitMiddlewareWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := NewRateLimitStore(client)
	require.NoError(t, err)
	r := newRouter(RateLimitMiddleware(store, 1))

	assert.Equal(t, http.StatusOK, get(r, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, nil).Code)
}

func TestRateLimitDisabled(t *testing.T) {
	r := newRouter(RateLimitMiddleware(nil, 0))
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, get(r, nil).Code)
	}
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := newRouter(RequestLogger())

	w := get(r, nil)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w = get(r, func(req *http.Request) { req.Header.Set(RequestIDHeader, "fixed-id") })
	assert.Equal(t, "fixed-id", w.Header().Get(RequestIDHeader))
}
