package http

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/pantry/backend/internal/logger"
	"golang.org/x/time/rate"
)

// CORSMiddleware allows the configured frontend origins. Entries ending in "*" match by prefix.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return isAllowedOrigin(origin, allowedOrigins)
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	})
}

// isAllowedOrigin checks if the origin is in the allowed list
func isAllowedOrigin(origin string, allowedOrigins []string) bool {
	for _, allowed := range allowedOrigins {
		if strings.HasSuffix(allowed, "*") {
			prefix := strings.TrimSuffix(allowed, "*")
			if origin != "" && strings.HasPrefix(origin, prefix) {
				return true
			}
		} else if origin == allowed {
			return true
		}
	}
	return false
}

// RequestIDMiddleware tags every request with an X-Request-ID, keeping one sent by the client
func RequestIDMiddleware() gin.HandlerFunc {
	return requestid.New()
}

// LoggerMiddleware writes one structured access log line per request
func LoggerMiddleware() gin.HandlerFunc {
	log := logger.GetLogger().Named("http")

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"ip", c.ClientIP(),
			"latency", time.Since(start),
			"request_id", requestid.Get(c),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.Errors())
		}

		switch {
		case status >= 500:
			log.Errorw("Server error", fields...)
		case status >= 400:
			log.Warnw("Client error", fields...)
		default:
			log.Infow("Request completed", fields...)
		}
	}
}

// RecoveryMiddleware recovers from panics and answers 500
func RecoveryMiddleware() gin.HandlerFunc {
	log := logger.GetLogger().Named("http")

	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Errorw("Panic recovered",
					"error", err,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					"request_id", requestid.Get(c),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
			}
		}()

		c.Next()
	}
}

// ipLimiter is the token bucket of one client
type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiters hands out one limiter per client IP and forgets idle clients
type clientLimiters struct {
	mu        sync.Mutex
	clients   map[string]*ipLimiter
	perMinute int
	lastPrune time.Time
}

const limiterIdleTimeout = 10 * time.Minute

func (l *clientLimiters) get(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastPrune) > time.Minute {
		for key, client := range l.clients {
			if now.Sub(client.lastSeen) > limiterIdleTimeout {
				delete(l.clients, key)
			}
		}
		l.lastPrune = now
	}

	client, ok := l.clients[ip]
	if !ok {
		client = &ipLimiter{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMinute)), l.perMinute),
		}
		l.clients[ip] = client
	}
	client.lastSeen = now
	return client.limiter
}

// RateLimitMiddleware limits each client IP to perMinute requests per minute.
// Zero disables limiting.
func RateLimitMiddleware(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	log := logger.GetLogger().Named("http")
	limiters := &clientLimiters{
		clients:   make(map[string]*ipLimiter),
		perMinute: perMinute,
		lastPrune: time.Now(),
	}

	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP(), time.Now()).Allow() {
			log.Infow("Rate limit exceeded", "ip", c.ClientIP(), "path", c.Request.URL.Path)

			c.Header("Retry-After", fmt.Sprintf("%d", 60/perMinute+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests",
			})
			return
		}

		c.Next()
	}
}
