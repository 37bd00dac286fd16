package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	ml := NewMemoryLimiter()
	defer ml.Stop()
	now := time.Unix(1000, 0)
	ml.now = func() time.Time { return now }

	for want := 1; want <= 3; want++ {
		count, retry, err := ml.ConsumeRateLimit(context.Background(), "payments", "alice", 2, time.Minute)
		if err != nil || count != want || retry != 60 {
			t.Fatalf("hit %d: got (%d, %d, %v)", want, count, retry, err)
		}
	}

	if count, _, _ := ml.ConsumeRateLimit(context.Background(), "payments", "bob", 2, time.Minute); count != 1 {
		t.Fatalf("expected separate counter for bob, got %d", count)
	}

	now = now.Add(time.Minute)
	if count, _, _ := ml.ConsumeRateLimit(context.Background(), "payments", "alice", 2, time.Minute); count != 1 {
		t.Fatalf("expected counter to reset after the window, got %d", count)
	}
}

type limiterStub struct {
	count   int
	retry   int
	err     error
	subject string
}

func (s *limiterStub) ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (int, int, error) {
	s.subject = subject
	return s.count, s.retry, s.err
}

func TestRateLimitBySubject(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tests := []struct {
		name       string
		stub       *limiterStub
		subject    string
		wantStatus int
		wantKey    string
	}{
		{name: "under limit", stub: &limiterStub{count: 1, retry: 30}, subject: "alice", wantStatus: http.StatusOK, wantKey: "alice"},
		{name: "at limit", stub: &limiterStub{count: 2, retry: 30}, subject: "alice", wantStatus: http.StatusOK, wantKey: "alice"},
		{name: "over limit", stub: &limiterStub{count: 3, retry: 30}, subject: "alice", wantStatus: http.StatusTooManyRequests, wantKey: "alice"},
		{name: "limiter error fails open", stub: &limiterStub{err: errors.New("redis down")}, subject: "alice", wantStatus: http.StatusOK, wantKey: "alice"},
		{name: "anonymous falls back to ip", stub: &limiterStub{count: 1}, wantStatus: http.StatusOK, wantKey: "ip:203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RateLimitBySubject(tt.stub, "payments", 2, time.Minute, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/payments", nil)
			req.RemoteAddr = "203.0.113.9:5555"
			if tt.subject != "" {
				req = req.WithContext(context.WithValue(req.Context(), SubjectKey, tt.subject))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.stub.subject != tt.wantKey {
				t.Fatalf("expected limiter key %q, got %q", tt.wantKey, tt.stub.subject)
			}
			if rec.Code == http.StatusTooManyRequests && rec.Header().Get("Retry-After") != "30" {
				t.Fatalf("expected Retry-After header, got %q", rec.Header().Get("Retry-After"))
			}
		})
	}
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")
	if got := getClientIP(req); got != "198.51.100.1" {
		t.Fatalf("expected first forwarded address, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[::1]:8080"
	if got := getClientIP(req); got != "[::1]" {
		t.Fatalf("expected host part of RemoteAddr, got %q", got)
	}
}
