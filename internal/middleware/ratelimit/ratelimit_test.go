package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_Allow(t *testing.T) {
	rl := NewLimiter(Config{Limit: 3, Window: time.Minute})
	defer rl.Stop()

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if ok, _ := rl.Allow("k-alice"); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	now = now.Add(20 * time.Second)
	ok, wait := rl.Allow("k-alice")
	if ok {
		t.Error("fourth request within the window should be limited")
	}
	if wait != 40*time.Second {
		t.Errorf("wait = %v, want 40s", wait)
	}
	if ok, _ := rl.Allow("k-bob"); !ok {
		t.Error("other keys must have their own window")
	}

	// steady traffic does not extend the window
	now = now.Add(41 * time.Second)
	if ok, _ := rl.Allow("k-alice"); !ok {
		t.Error("request after the window should be allowed")
	}

	if s := rl.Stats(); s.Rejected != 1 || s.Keys != 2 {
		t.Errorf("Stats() = %+v, want 1 rejected and 2 keys", s)
	}
}

func TestLimiter_Sweep(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	defer rl.Stop()

	now := time.Now()
	rl.now = func() time.Time { return now }
	rl.Allow("old")

	now = now.Add(90 * time.Second)
	rl.Allow("fresh")

	if removed := rl.sweep(); removed != 1 {
		t.Errorf("sweep() removed %d, want 1", removed)
	}
	if s := rl.Stats(); s.Keys != 1 {
		t.Errorf("Keys = %d, want 1", s.Keys)
	}
}

func TestLimiter_Middleware(t *testing.T) {
	rl := NewLimiter(Config{Limit: 1, Window: time.Minute})
	defer rl.Stop()

	h := rl.Middleware(func(r *http.Request) string { return r.RemoteAddr }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests && rec.Header().Get("Retry-After") == "" {
			t.Error("limited response should carry Retry-After")
		}
	}

	if codes[0] != http.StatusNoContent || codes[1] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v, want [204 429]", codes)
	}
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		wait time.Duration
		want string
	}{
		{0, "1"},
		{300 * time.Millisecond, "1"},
		{time.Second, "1"},
		{59*time.Second + time.Millisecond, "60"},
	}
	for _, tt := range tests {
		if got := retryAfter(tt.wait); got != tt.want {
			t.Errorf("retryAfter(%v) = %s, want %s", tt.wait, got, tt.want)
		}
	}
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	rl.Stop()
	rl.Stop()
}
