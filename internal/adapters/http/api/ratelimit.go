package api

import (
	"errors"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned once a client exhausts its sign-in budget.
var ErrRateLimited = errors.New("too many sign-in attempts")

const visitorTTL = 10 * time.Minute

// SignInLimiter throttles sign-in attempts per client IP. It is shared by
// the JSON API and the login page so both draw from one budget.
type SignInLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	now       func() time.Time
	lastPrune time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewSignInLimiter allows perMinute attempts per IP with the given burst.
// A non-positive perMinute returns nil, which disables limiting.
func NewSignInLimiter(perMinute, burst int) *SignInLimiter {
	if perMinute <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &SignInLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    burst,
		now:      time.Now,
	}
}

// Allow reports whether the client behind r may attempt a sign-in, and if
// not, how long until it may.
func (l *SignInLimiter) Allow(r *http.Request) (bool, time.Duration) {
	if l == nil {
		return true, 0
	}
	now := l.now()
	lim := l.visitor(ClientIP(r), now)
	res := lim.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Minute
	}
	if d := res.DelayFrom(now); d > 0 {
		res.CancelAt(now)
		return false, d
	}
	return true, 0
}

func (l *SignInLimiter) visitor(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastPrune) > visitorTTL {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > visitorTTL {
				delete(l.visitors, k)
			}
		}
		l.lastPrune = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// RateLimitMiddleware rejects POSTs over budget with 429 and Retry-After.
func RateLimitMiddleware(l *SignInLimiter, next http.HandlerFunc) http.HandlerFunc {
	if l == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if ok, wait := l.Allow(r); !ok {
				w.Header().Set("Retry-After", RetryAfter(wait))
				writeError(w, http.StatusTooManyRequests, "rate_limited", ErrRateLimited)
				return
			}
		}
		next(w, r)
	}
}

// RetryAfter renders d as whole seconds, rounded up.
func RetryAfter(d time.Duration) string {
	return strconv.Itoa(int(math.Ceil(d.Seconds())))
}

// ClientIP returns the host part of r.RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
