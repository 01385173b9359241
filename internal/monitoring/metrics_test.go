package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/games/:slug", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for i := 0; i < 3; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/games/x", nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/games/:slug", "404")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.errorsTotal.WithLabelValues("client_error", "/api/games/:slug")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
}

func TestRecordEvent(t *testing.T) {
	m := NewMetrics()
	m.RecordEvent(EventReviewCreated)
	m.RecordEvent(EventReviewCreated)
	m.RecordAuth(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues(EventReviewCreated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authAttempts.WithLabelValues("failure")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.RecordEvent(EventGameCreated) })
}

func TestSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics()
		NewMetrics()
	})
}

func TestMiddlewareCountsConflicts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	r := gin.New()
	r.Use(m.Middleware())
	r.POST("/api/reviews", func(c *gin.Context) { c.Status(http.StatusConflict) })
	r.GET("/api/games", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/reviews", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/games", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues(EventConflict)))
}
