package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"cochera/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── Fixed-window limiter per IP ───────────────────────────────────────────────

type ventana struct {
	count int
	fin   time.Time
}

type limitador struct {
	mu       sync.Mutex
	limite   int
	duracion time.Duration
	ips      map[string]*ventana
}

func newLimitador(limite int, window time.Duration) *limitador {
	l := &limitador{limite: limite, duracion: window, ips: make(map[string]*ventana)}
	registrarLimitador(l)
	return l
}

// permitir counts one request from ip and reports whether it is within the
// limit, along with the end of the current window.
func (l *limitador) permitir(ip string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.ips[ip]
	if !ok || now.After(v.fin) {
		v = &ventana{fin: now.Add(l.duracion)}
		l.ips[ip] = v
	}
	v.count++
	return v.count <= l.limite, v.fin
}

func (l *limitador) purgar(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for ip, v := range l.ips {
		if now.After(v.fin) {
			delete(l.ips, ip)
			n++
		}
	}
	return n
}

func (l *limitador) handler(msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, fin := l.permitir(c.ClientIP(), time.Now())
		if !ok {
			secs := int(time.Until(fin).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return newLimitador(20, time.Minute).handler("Demasiados intentos de login. Intente en 1 minuto.")
}

// RateLimiter limits every request to limit per window per IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newLimitador(limit, window).handler("Demasiadas solicitudes. Intente nuevamente en un momento.")
}

// ── Purge goroutine ───────────────────────────────────────────────────────────
// Expired windows are dropped periodically so IPs that never return do not
// accumulate.

const purgeInterval = 5 * time.Minute

var (
	limitadores   []*limitador
	limitadoresMu sync.Mutex
	purgaOnce     sync.Once
)

func registrarLimitador(l *limitador) {
	limitadoresMu.Lock()
	limitadores = append(limitadores, l)
	limitadoresMu.Unlock()
	purgaOnce.Do(func() { go purgeExpiredEntries() })
}

func purgeExpiredEntries() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for now := range ticker.C {
		limitadoresMu.Lock()
		purged := 0
		for _, l := range limitadores {
			purged += l.purgar(now)
		}
		limitadoresMu.Unlock()

		if purged > 0 {
			log.Debug().Int("entries_purged", purged).Msg("rate limiter maps purged")
		}
	}
}
