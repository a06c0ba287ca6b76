package middleware

import (
	"net/http"
	"sync"
	"time"

	"comanda/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// windowLimiter counts requests per client IP in fixed windows. Expired
// entries are swept lazily, at most once per window.
type windowLimiter struct {
	nome   string
	limit  int
	window time.Duration
	msg    string

	mu        sync.Mutex
	entries   map[string]*janela
	nextSweep time.Time
	now       func() time.Time
}

type janela struct {
	count int
	fim   time.Time
}

func newWindowLimiter(nome string, limit int, window time.Duration, msg string) *windowLimiter {
	return &windowLimiter{
		nome:    nome,
		limit:   limit,
		window:  window,
		msg:     msg,
		entries: make(map[string]*janela),
		now:     time.Now,
	}
}

// allow registers one hit for ip and reports whether it is within the limit,
// plus the end of the current window.
func (l *windowLimiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.nextSweep) {
		l.sweep(now)
		l.nextSweep = now.Add(l.window)
	}

	e, ok := l.entries[ip]
	if !ok || now.After(e.fim) {
		e = &janela{fim: now.Add(l.window)}
		l.entries[ip] = e
	}
	e.count++
	return e.count <= l.limit, e.fim
}

func (l *windowLimiter) sweep(now time.Time) {
	purged := 0
	for ip, e := range l.entries {
		if now.After(e.fim) {
			delete(l.entries, ip)
			purged++
		}
	}
	if purged > 0 {
		log.Debug().Str("limiter", l.nome).Int("purged", purged).Int("remaining", len(l.entries)).
			Msg("rate limiter purged")
	}
}

func (l *windowLimiter) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, fim := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", fim.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.msg))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts (admin and shared waiter) to 20 per
// minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return newWindowLimiter("login", 20, time.Minute,
		"Muitas tentativas de login. Tente novamente em 1 minuto.").handler()
}

// RateLimiter limits every request to limit per window per IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newWindowLimiter("api", limit, window,
		"Muitas requisições. Tente novamente em instantes.").handler()
}
