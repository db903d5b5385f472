package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMetricsEndpointExposesDomainCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	Init()
	Init() // 重复调用不应 panic

	SubmissionsSubmitted.WithLabelValues("student").Inc()
	SubmissionsGraded.WithLabelValues("auto").Inc()
	GradesRecorded.Inc()

	r := gin.New()
	r.Use(MetricsMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", PrometheusHandler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "submissions_submitted_total"))
	assert.True(t, strings.Contains(body, "submissions_graded_total"))
	assert.True(t, strings.Contains(body, "grades_recorded_total"))
	assert.True(t, strings.Contains(body, `http_requests_total{endpoint="/ping",method="GET",status="200"}`))
}
