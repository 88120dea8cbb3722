package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/bastiangx/courseserve/internal/logger"
	"github.com/bastiangx/courseserve/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

const requestIDKey = "request_id"

var (
	// httpRequests counts requests by route and status.
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "courseserve",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status code",
	}, []string{"route", "code"})

	// httpDuration measures request latency by route.
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "courseserve",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

// requestID makes sure every request carries an X-Request-ID.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		getOrCreateRequestID(c)
		c.Next()
	}
}

// accessLog writes one JSON line per request and records HTTP metrics.
func accessLog() gin.HandlerFunc {
	access := logger.Access("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		status := c.Writer.Status()
		httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		id, _ := c.Get(requestIDKey)
		access.Info("request",
			"request_id", id,
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"took_us", elapsed.Microseconds())
	}
}

// rateLimit rejects requests beyond server.rate_limit with 429. The limiter
// follows config reloads.
func rateLimit(cfg *config.Live) gin.HandlerFunc {
	c0 := cfg.Get()
	limiter := rate.NewLimiter(perSecond(c0.Server.RateLimit), c0.Server.RateBurst)
	return func(c *gin.Context) {
		cur := cfg.Get()
		if l := perSecond(cur.Server.RateLimit); limiter.Limit() != l {
			limiter.SetLimit(l)
		}
		if limiter.Burst() != cur.Server.RateBurst {
			limiter.SetBurst(cur.Server.RateBurst)
		}
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Message: "Too many requests"})
			return
		}
		c.Next()
	}
}

func perSecond(r float64) rate.Limit {
	if r <= 0 {
		return rate.Inf
	}
	return rate.Limit(r)
}
