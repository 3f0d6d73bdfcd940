package daemon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestGetCorrelationID(t *testing.T) {
	ctx := context.WithValue(context.Background(), CorrelationIDKey, "abc-123")
	if got := GetCorrelationID(ctx); got != "abc-123" {
		t.Errorf("GetCorrelationID() = %q, want %q", got, "abc-123")
	}

	if got := GetCorrelationID(context.Background()); got != "" {
		t.Errorf("GetCorrelationID() on empty context = %q, want empty", got)
	}
}

func TestCorrelationIDMiddlewareGeneratesID(t *testing.T) {
	var captured string
	handler := correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetCorrelationID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if captured == "" {
		t.Fatal("correlation ID should be generated")
	}
	if _, err := uuid.Parse(captured); err != nil {
		t.Errorf("generated ID %q is not a valid UUID: %v", captured, err)
	}
	if rec.Header().Get(CorrelationIDHeader) != captured {
		t.Error("correlation ID should be echoed in the response header")
	}
}

func TestCorrelationIDMiddlewarePropagatesExistingID(t *testing.T) {
	var captured string
	handler := correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetCorrelationID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(CorrelationIDHeader, "existing-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if captured != "existing-id" {
		t.Errorf("captured ID = %q, want the incoming header value", captured)
	}
}

func TestLoggingMiddlewareCapturesStatus(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusNotFound, http.StatusInternalServerError} {
		handler := loggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != status {
			t.Errorf("status = %d, want %d", rec.Code, status)
		}
	}
}

func TestRecoveryMiddlewareCatchesPanic(t *testing.T) {
	handler := recoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestMiddlewareChain(t *testing.T) {
	var captured string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetCorrelationID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := recoveryMiddleware(correlationIDMiddleware(loggingMiddleware(inner)))

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if captured == "" {
		t.Error("correlation ID should flow through the chain")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
