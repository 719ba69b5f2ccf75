package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/warbler/pkg/response"
)

// IPRateLimiter 按客户端 IP 的令牌桶限流
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*visitor
	rps      rate.Limit
	burst    int
	idle     time.Duration
	// 每隔 sweepEvery 清理一次空闲 IP
	sweepEvery time.Duration
	lastSweep  time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &IPRateLimiter{
		limiters: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		idle:     10 * time.Minute,

		sweepEvery: time.Minute,
		lastSweep:  time.Now(),
	}
}

func (l *IPRateLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	v, ok := l.limiters[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[ip] = v
	}
	v.lastSeen = now

	if now.Sub(l.lastSweep) >= l.sweepEvery {
		l.sweep(now)
		l.lastSweep = now
	}
	return v.limiter
}

// sweep 删除长时间不活跃的 IP，调用方持有锁
func (l *IPRateLimiter) sweep(now time.Time) {
	for k, v := range l.limiters {
		if now.Sub(v.lastSeen) > l.idle {
			delete(l.limiters, k)
		}
	}
}

// Len 当前跟踪的 IP 数
func (l *IPRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func (l *IPRateLimiter) Allow(ip string) bool { return l.get(ip).Allow() }

// RateLimit 超限返回 429
func RateLimit(l *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			response.TooManyRequests(c)
			return
		}
		c.Next()
	}
}
