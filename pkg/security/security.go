package security

import (
	"eduassess_backend/internal/util"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// CORS 中间件 仅允许白名单中的Origin，支持Credentials
// 白名单包含 "*" 时允许任意来源，但不携带 Credentials
func CORS(allowedOrigins []string) gin.HandlerFunc {
	originSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originSet[o] = true
	}
	wildcard := originSet["*"]

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		switch {
		case origin != "" && originSet[origin]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		case wildcard:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Secure 中间件
func Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 防止MIME嗅探
		c.Header("X-Content-Type-Options", "nosniff")
		// 防止点击劫持
		c.Header("X-Frame-Options", "DENY")
		// XSS保护
		c.Header("X-XSS-Protection", "1; mode=block")
		// HSTS
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		}

		c.Next()
	}
}

// visitor 包装限流器和最后活跃时间，用于定期清理
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter 按IP限流，自动清理过期条目，支持配置热更新
type Limiter struct {
	mu          sync.Mutex
	store       map[string]*visitor
	maxRequests int
	window      time.Duration
}

func NewLimiter(maxRequests int, window time.Duration) *Limiter {
	l := &Limiter{store: make(map[string]*visitor)}
	l.Reset(maxRequests, window)

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			l.mu.Lock()
			expiry := l.window * 3
			if expiry < time.Minute {
				expiry = time.Minute
			}
			for ip, v := range l.store {
				if time.Since(v.lastSeen) > expiry {
					delete(l.store, ip)
				}
			}
			l.mu.Unlock()
		}
	}()

	return l
}

// Reset 更新限流参数并清空已有计数，maxRequests 不大于 0 时不限流
func (l *Limiter) Reset(maxRequests int, window time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maxRequests = maxRequests
	l.window = window
	l.store = make(map[string]*visitor)
}

func (l *Limiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()

		l.mu.Lock()
		if l.maxRequests <= 0 || l.window <= 0 {
			l.mu.Unlock()
			c.Next()
			return
		}
		v, exists := l.store[key]
		if !exists {
			v = &visitor{
				limiter: rate.NewLimiter(rate.Every(l.window/time.Duration(l.maxRequests)), l.maxRequests),
			}
			l.store[key] = v
		}
		v.lastSeen = time.Now()
		l.mu.Unlock()

		if !v.limiter.Allow() {
			util.Error(c, http.StatusTooManyRequests, "요청이 너무 많습니다. 잠시 후 다시 시도해주세요")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RateLimiter 固定参数的限流中间件
func RateLimiter(maxRequests int, window time.Duration) gin.HandlerFunc {
	return NewLimiter(maxRequests, window).Handler()
}
