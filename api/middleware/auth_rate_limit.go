package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Wijeboy/CYD-shop-sub000/api/responses"
	pkgerrors "github.com/Wijeboy/CYD-shop-sub000/pkg/errors"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/logger"
	pkgredis "github.com/Wijeboy/CYD-shop-sub000/pkg/redis"
)

const maxCredentialBodyBytes = 64 << 10

// AuthRateLimitPolicy caps login or registration attempts per client IP and
// per submitted email inside a fixed window. A zero limit disables that
// dimension.
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
	return AuthRateLimitPolicy{
		name:       name,
		window:     window,
		ipLimit:    ipLimit,
		emailLimit: emailLimit,
	}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

// attemptBucket is one counter an attempt is charged against.
type attemptBucket struct {
	dimension string
	subject   string
	limit     int
}

func (p AuthRateLimitPolicy) scope(b attemptBucket) string {
	return b.dimension + ":" + p.name + ":" + b.subject
}

// AuthRateLimit rejects credential submissions with 429 once any bucket for
// the caller is exhausted. The request body is restored for the handler.
func AuthRateLimit(policy AuthRateLimitPolicy, limiter pkgredis.RateLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			buckets, err := policy.bucketsFor(w, r)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unable to read request body"))
				return
			}

			for _, bucket := range buckets {
				allowed, attempts, err := limiter.FixedWindowAllow(ctx, policy.scope(bucket), int64(bucket.limit), policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if allowed {
					continue
				}

				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{
						"policy":    policy.name,
						"dimension": bucket.dimension,
						"subject":   bucket.subject,
						"attempts":  attempts,
						"limit":     bucket.limit,
					})
					logg.Warn(logCtx, "auth.rate_limit.blocked")
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(policy.window.Seconds())))
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bucketsFor lists the counters this request is charged against. Emails are
// hashed so raw addresses never land in redis keys or logs.
func (p AuthRateLimitPolicy) bucketsFor(w http.ResponseWriter, r *http.Request) ([]attemptBucket, error) {
	var buckets []attemptBucket
	if p.ipLimit > 0 {
		if ip := clientIP(r); ip != "" {
			buckets = append(buckets, attemptBucket{dimension: "ip", subject: ip, limit: p.ipLimit})
		}
	}

	if p.emailLimit > 0 && r.Body != nil {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCredentialBodyBytes))
		if err != nil {
			return nil, err
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		if email := submittedEmail(body); email != "" {
			sum := sha256.Sum256([]byte(email))
			buckets = append(buckets, attemptBucket{dimension: "email", subject: hex.EncodeToString(sum[:]), limit: p.emailLimit})
		}
	}
	return buckets, nil
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func submittedEmail(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Email))
}
