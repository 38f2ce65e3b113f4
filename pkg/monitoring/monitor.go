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
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	SMSDispatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_dispatch_total",
			Help: "Verification SMS dispatch attempts by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	AdsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ads_created_total",
			Help: "Ads created, by owner role",
		},
		[]string{"role"},
	)

	CooperationTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cooperation_request_transitions_total",
			Help: "Cooperation requests moved out of pending, by resulting status",
		},
		[]string{"status"},
	)

	ProvinceVisits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "province_visits_total",
			Help: "Valid province checks recorded in the visit counter",
		},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			SMSDispatches,
			AdsCreated,
			CooperationTransitions,
			ProvinceVisits,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
