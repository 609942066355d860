package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/shophub/api/responses"
	pkgerrors "github.com/angelmondragon/shophub/pkg/errors"
	"github.com/angelmondragon/shophub/pkg/logger"
)

const maxRateLimitBody = 64 << 10

// rateLimiterStore is satisfied by *redis.Client, which namespaces the scope into a key.
type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// AuthRateLimitPolicy caps attempts per client IP and per (hashed) email inside a fixed window.
// A zero limit disables that dimension. A zero window disables the policy.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{name: name, window: window, ipLimit: ipLimit, emailLimit: emailLimit}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

func (p AuthRateLimitPolicy) scope(dimension, value string) string {
	return p.name + ":" + dimension + ":" + value
}

// counter is one throttled dimension resolved for a request.
type counter struct {
	dimension string
	value     string
	limit     int
}

// AuthRateLimit guards login and register with fixed window counters that expire with the window.
func AuthRateLimit(policy AuthRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			counters, err := policy.counters(r)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable request body"))
				return
			}
			for _, c := range counters {
				allowed, count, err := store.FixedWindowAllow(ctx, policy.scope(c.dimension, c.value), int64(c.limit), policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if !allowed {
					policy.reject(ctx, logg, w, c, count)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// counters reads the body only when the email dimension is on and restores it for the handler.
func (p AuthRateLimitPolicy) counters(r *http.Request) ([]counter, error) {
	var out []counter
	if p.ipLimit > 0 {
		if ip := clientIP(r); ip != "" {
			out = append(out, counter{dimension: "ip", value: ip, limit: p.ipLimit})
		}
	}
	if p.emailLimit > 0 && r.Body != nil {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxRateLimitBody))
		if err != nil {
			return nil, err
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		if email := emailFromBody(body); email != "" {
			out = append(out, counter{dimension: "email", value: hashValue(email), limit: p.emailLimit})
		}
	}
	return out, nil
}

func (p AuthRateLimitPolicy) reject(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, c counter, count int64) {
	seconds := int(p.window.Seconds())
	if logg != nil {
		valueField := c.dimension
		if c.dimension == "email" {
			valueField = "email_hash"
		}
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"policy":         p.name,
			"scope":          c.dimension,
			valueField:       c.value,
			"attempts":       count,
			"limit":          c.limit,
			"window_seconds": seconds,
		}), "auth.rate_limit.blocked")
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
}

// clientIP trusts the first X-Forwarded-For hop, then X-Real-IP, then the socket address.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// emailFromBody returns the lowercased email field of a JSON auth form, or "".
func emailFromBody(payload []byte) string {
	var form struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(payload, &form) != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(form.Email))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
