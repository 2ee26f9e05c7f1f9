package shield

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"markpin/dbopen"

	_ "modernc.org/sqlite"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
	})
}

func TestSecurityHeaders(t *testing.T) {
	// WHAT: Every response carries the configured header set.
	h := SecurityHeaders(DefaultHeaders())(okHandler())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/markup/projects", nil))

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "no-referrer",
	} {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if w.Header().Get("Content-Security-Policy") == "" {
		t.Error("CSP header missing")
	}
}

func TestMaxJSONBodyRejectsOversize(t *testing.T) {
	// WHAT: A JSON body over the cap fails the read inside the handler.
	var readErr error
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		for {
			if _, err := r.Body.Read(buf); err != nil {
				if !errors.Is(err, io.EOF) {
					readErr = err
				}
				return
			}
		}
	})
	h := MaxJSONBody(16)(inner)

	req := httptest.NewRequest("POST", "/api/markup/ingest", strings.NewReader(strings.Repeat("x", 64)))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if readErr == nil {
		t.Error("oversize body read succeeded, want MaxBytesReader error")
	}
}

func newTestLimiter(t *testing.T, maxRequests int) *RateLimiter {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	_, err := db.Exec(
		`INSERT INTO rate_limits (endpoint, max_requests, window_seconds, enabled) VALUES (?,?,?,1)`,
		"POST /api/markup/ingest", maxRequests, 60)
	if err != nil {
		t.Fatalf("insert rule: %v", err)
	}
	return NewRateLimiter(db, "/health")
}

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	// WHAT: The request after the limit gets 429 with Retry-After; a different
	// IP keeps its own budget.
	rl := newTestLimiter(t, 2)
	h := rl.Middleware(okHandler())

	send := func(ip string) int {
		req := httptest.NewRequest("POST", "/api/markup/ingest", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	if send("10.0.0.1") != 200 || send("10.0.0.1") != 200 {
		t.Fatal("requests under the limit blocked")
	}
	if code := send("10.0.0.1"); code != 429 {
		t.Errorf("over-limit status = %d, want 429", code)
	}
	if code := send("10.0.0.2"); code != 200 {
		t.Errorf("other IP status = %d, want 200", code)
	}
}

func TestRateLimiterIgnoresUnknownEndpoints(t *testing.T) {
	// WHAT: Endpoints without a rule are unlimited.
	rl := newTestLimiter(t, 1)
	h := rl.Middleware(okHandler())

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", "/api/markup/projects", nil))
		if w.Code != 200 {
			t.Fatalf("request %d blocked without a rule", i)
		}
	}
}

func TestRateLimiterExcludesPrefixes(t *testing.T) {
	// WHAT: Excluded prefixes bypass the limiter even with a matching rule.
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	if _, err := db.Exec(
		`INSERT INTO rate_limits (endpoint, max_requests, window_seconds, enabled) VALUES ('GET /health', 1, 60, 1)`); err != nil {
		t.Fatalf("insert rule: %v", err)
	}
	rl := NewRateLimiter(db, "/health")
	h := rl.Middleware(okHandler())

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
		if w.Code != 200 {
			t.Fatalf("health check %d blocked", i)
		}
	}
}

func TestExtractIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.1:9999"
	if ip := ExtractIP(req); ip != "192.0.2.1" {
		t.Errorf("remote addr ip = %q", ip)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 192.0.2.1")
	if ip := ExtractIP(req); ip != "203.0.113.5" {
		t.Errorf("forwarded ip = %q", ip)
	}
}
