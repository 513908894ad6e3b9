package mw

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientLimiters hands out one token bucket per client IP. Entries
// idle for longer than staleAfter are dropped so the map stays bounded
// under churning clients.
type clientLimiters struct {
	mu         sync.Mutex
	clients    map[string]*clientEntry
	limit      rate.Limit
	burst      int
	staleAfter time.Duration
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiters(limit rate.Limit, burst int) *clientLimiters {
	return &clientLimiters{
		clients:    make(map[string]*clientEntry),
		limit:      limit,
		burst:      burst,
		staleAfter: 10 * time.Minute,
	}
}

func (cl *clientLimiters) allow(ip string) bool {
	now := time.Now()

	cl.mu.Lock()
	entry, ok := cl.clients[ip]
	if !ok {
		cl.evictStale(now)
		entry = &clientEntry{limiter: rate.NewLimiter(cl.limit, cl.burst)}
		cl.clients[ip] = entry
	}
	entry.lastSeen = now
	cl.mu.Unlock()

	return entry.limiter.Allow()
}

// evictStale runs under cl.mu.
func (cl *clientLimiters) evictStale(now time.Time) {
	for ip, entry := range cl.clients {
		if now.Sub(entry.lastSeen) > cl.staleAfter {
			delete(cl.clients, ip)
		}
	}
}

// RateLimiter throttles requests per client IP.
func RateLimiter(limit rate.Limit, burst int) gin.HandlerFunc {
	limiters := newClientLimiters(limit, burst)
	return func(c *gin.Context) {
		if !limiters.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}
