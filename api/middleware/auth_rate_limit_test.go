package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/Wijeboy/CYD-shop-sub000/pkg/errors"
)

type countingLimiter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newCountingLimiter() *countingLimiter {
	return &countingLimiter{counts: map[string]int64{}}
}

func (c *countingLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if c.err != nil {
		return false, 0, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[scope]++
	return c.counts[scope] <= limit, c.counts[scope], nil
}

func credentialRequest(remoteAddr, email string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"`+email+`","password":"pw"}`))
	req.RemoteAddr = remoteAddr
	return req
}

func okStatusHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestAuthRateLimitLimits(t *testing.T) {
	cases := []struct {
		name      string
		ipLimit   int
		mailLimit int
		requests  []*http.Request
		want      []int
	}{
		{
			name:      "email cap applies across addresses",
			mailLimit: 2,
			requests: []*http.Request{
				credentialRequest("1.1.1.1:1", "shopper@example.com"),
				credentialRequest("2.2.2.2:1", "Shopper@Example.com"),
				credentialRequest("3.3.3.3:1", " shopper@example.com "),
			},
			want: []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests},
		},
		{
			name:    "ip cap applies across emails",
			ipLimit: 1,
			requests: []*http.Request{
				credentialRequest("5.6.7.8:1", "a@example.com"),
				credentialRequest("5.6.7.8:2", "b@example.com"),
			},
			want: []int{http.StatusOK, http.StatusTooManyRequests},
		},
		{
			name:      "separate subjects do not share counters",
			ipLimit:   1,
			mailLimit: 1,
			requests: []*http.Request{
				credentialRequest("9.9.9.1:1", "a@example.com"),
				credentialRequest("9.9.9.2:1", "b@example.com"),
			},
			want: []int{http.StatusOK, http.StatusOK},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			policy := NewAuthRateLimitPolicy("login", time.Minute, tc.ipLimit, tc.mailLimit)
			handler := AuthRateLimit(policy, newCountingLimiter(), nil)(http.HandlerFunc(okStatusHandler))

			for i, req := range tc.requests {
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, req)
				assert.Equal(t, tc.want[i], rec.Code, "request %d", i)
			}
		})
	}
}

func TestAuthRateLimitBlockedResponse(t *testing.T) {
	limiter := newCountingLimiter()
	handler := AuthRateLimit(NewAuthRateLimitPolicy("register", time.Minute, 1, 0), limiter, nil)(http.HandlerFunc(okStatusHandler))

	handler.ServeHTTP(httptest.NewRecorder(), credentialRequest("5.6.7.8:1", "a@example.com"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, credentialRequest("5.6.7.8:1", "a@example.com"))

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, string(pkgerrors.CodeRateLimit), errorCode(t, rec))
	assert.Contains(t, limiter.counts, "ip:register:5.6.7.8")
}

func TestAuthRateLimitRestoresBodyAndHashesEmail(t *testing.T) {
	limiter := newCountingLimiter()
	var seen string
	handler := AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 0, 5), limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		seen = string(body)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, credentialRequest("1.2.3.4:5", "tester@example.com"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, seen, `"email":"tester@example.com"`)
	for scope := range limiter.counts {
		assert.NotContains(t, scope, "tester@example.com", "raw emails must not reach redis keys")
	}
}

func TestAuthRateLimitDependencyFailure(t *testing.T) {
	limiter := newCountingLimiter()
	limiter.err = errors.New("redis down")
	handler := AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 1, 1), limiter, nil)(http.HandlerFunc(okStatusHandler))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, credentialRequest("1.2.3.4:5", "a@example.com"))
	assert.Equal(t, string(pkgerrors.CodeDependency), errorCode(t, rec))
}

func TestAuthRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	handler := AuthRateLimit(NewAuthRateLimitPolicy("login", 0, 1, 1), newCountingLimiter(), nil)(http.HandlerFunc(okStatusHandler))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:4000"
	req.Header.Set("X-Forwarded-For", " 203.0.113.9 , 10.0.0.2")
	assert.Equal(t, "203.0.113.9", clientIP(req))

	req.Header.Del("X-Forwarded-For")
	req.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", clientIP(req))

	req.Header.Del("X-Real-IP")
	assert.Equal(t, "10.0.0.1", clientIP(req))
}
