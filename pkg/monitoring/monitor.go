package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	SubmissionsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submissions_submitted_total",
			Help: "Submissions handed in, by trigger",
		},
		[]string{"trigger"}, // student, deadline
	)

	SubmissionsGraded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submissions_graded_total",
			Help: "Submissions that reached graded status",
		},
		[]string{"mode"}, // auto, manual
	)

	GradesRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grades_recorded_total",
			Help: "Manual grade records written",
		},
	)

	PointsAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gamification_points_awarded_total",
			Help: "Total gamification points awarded",
		},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(SubmissionsSubmitted)
		prometheus.MustRegister(SubmissionsGraded)
		prometheus.MustRegister(GradesRecorded)
		prometheus.MustRegister(PointsAwarded)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
