package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const rateWindow = time.Minute

type clientWindow struct {
	count   int
	resetAt time.Time
}

// Limiter считает запросы с одного IP в окне фиксированной длины
type Limiter struct {
	mu      sync.Mutex
	limit   int
	clients map[string]*clientWindow
	swept   time.Time
	now     func() time.Time
}

func NewLimiter(rpm int) *Limiter {
	return &Limiter{
		limit:   rpm,
		clients: make(map[string]*clientWindow),
		now:     time.Now,
	}
}

func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// allow регистрирует запрос и возвращает остаток и момент сброса окна
func (l *Limiter) allow(ip string) (bool, int, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	info, ok := l.clients[ip]
	if !ok || now.After(info.resetAt) {
		info = &clientWindow{resetAt: now.Add(rateWindow)}
		l.clients[ip] = info
	}
	if info.count >= l.limit {
		return false, 0, info.resetAt
	}
	info.count++
	return true, l.limit - info.count, info.resetAt
}

// sweep раз в окно выбрасывает клиентов с истёкшим окном
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.swept) < rateWindow {
		return
	}
	for ip, info := range l.clients {
		if now.After(info.resetAt) {
			delete(l.clients, ip)
		}
	}
	l.swept = now
}

func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, remaining, resetAt := l.allow(clientIP(r))

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !ok {
			retryAfter := int(math.Ceil(resetAt.Sub(l.now()).Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeError(w, r, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Слишком много запросов. Попробуйте позже.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit ограничивает число запросов с одного IP за минуту
func RateLimit(rpm int) func(http.Handler) http.Handler {
	return NewLimiter(rpm).Middleware
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
