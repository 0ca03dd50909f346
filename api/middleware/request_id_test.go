package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/Wijeboy/CYD-shop-sub000/pkg/logger"
)

func serveRequestID(t *testing.T, incoming string) (header, fromCtx string) {
	t.Helper()
	h := RequestID(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = RequestIDFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if incoming != "" {
		req.Header.Set(requestIDHeader, incoming)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp.Header().Get(requestIDHeader), fromCtx
}

func TestRequestIDPropagatesCallerValue(t *testing.T) {
	header, fromCtx := serveRequestID(t, "edge-42")
	if header != "edge-42" || fromCtx != "edge-42" {
		t.Fatalf("expected caller id, got header=%q ctx=%q", header, fromCtx)
	}
}

func TestRequestIDGeneratesWhenMissingOrInvalid(t *testing.T) {
	for _, incoming := range []string{"", "has space", strings.Repeat("a", maxRequestIDLength+1)} {
		header, fromCtx := serveRequestID(t, incoming)
		if _, err := uuid.Parse(header); err != nil {
			t.Fatalf("incoming %q: expected generated uuid, got %q", incoming, header)
		}
		if fromCtx != header {
			t.Fatalf("context id %q does not match header %q", fromCtx, header)
		}
	}
}
