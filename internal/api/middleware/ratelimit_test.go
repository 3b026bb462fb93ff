package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

func TestRateLimit_PerIP(t *testing.T) {
	e := echo.New()
	mw := RateLimit(rate.Every(time.Hour), 2, time.Minute)
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		if err := h(e.NewContext(req, rec)); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := call("10.0.0.1"); code != http.StatusOK {
			t.Fatalf("call %d: expected 200, got %d", i, code)
		}
	}
	if code := call("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", code)
	}
	if code := call("10.0.0.2"); code != http.StatusOK {
		t.Fatalf("other client throttled: %d", code)
	}
}

func TestIPLimiter_EvictsIdle(t *testing.T) {
	l := &ipLimiter{limit: rate.Every(time.Hour), burst: 1, ttl: time.Minute, entries: map[string]*limiterEntry{}}
	now := time.Now()

	if !l.allow("a", now) {
		t.Fatalf("first call denied")
	}
	if l.allow("a", now) {
		t.Fatalf("second call allowed")
	}
	l.allow("b", now.Add(2*time.Minute))
	if _, ok := l.entries["a"]; ok {
		t.Fatalf("idle entry not evicted")
	}
}
