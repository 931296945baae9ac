package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"playverse/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestContentTypeValidation(t *testing.T) {
	h := ContentTypeValidation(logger.Discard())(okHandler())

	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		want        int
	}{
		{"json", http.MethodPost, "application/json; charset=utf-8", "{}", http.StatusOK},
		{"form callback", http.MethodPost, "application/x-www-form-urlencoded", "a=b", http.StatusOK},
		{"multipart upload", http.MethodPost, "multipart/form-data; boundary=x", "--x", http.StatusOK},
		{"xml rejected", http.MethodPost, "application/xml", "<a/>", http.StatusUnsupportedMediaType},
		{"empty body post", http.MethodPost, "", "", http.StatusOK},
		{"get ignored", http.MethodGet, "text/plain", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/events", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestMaxRequestSize(t *testing.T) {
	h := MaxRequestSize(10, 100)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", 50)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("json body over limit: status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", 50)))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("upload within upload limit: status = %d", rec.Code)
	}
}

func TestBookingPhoneExtractor_RestoresBody(t *testing.T) {
	body := `{"name":"Asha","phone":" 9876543210 "}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/abc/book", strings.NewReader(body))

	if got := BookingPhoneExtractor(req); got != "9876543210" {
		t.Errorf("phone = %q", got)
	}
	rest, _ := io.ReadAll(req.Body)
	if string(rest) != body {
		t.Errorf("body not restored: %q", rest)
	}

	other := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	other.Header.Set("X-Phone-Number", "123")
	if got := BookingPhoneExtractor(other); got != "123" {
		t.Errorf("header fallback = %q", got)
	}
}

func TestPhoneRateLimiter_Allow(t *testing.T) {
	rl := NewPhoneRateLimiter(2, time.Minute, nil, logger.Discard())
	defer rl.Stop()

	if !rl.Allow("1") || !rl.Allow("1") {
		t.Fatalf("first two requests should pass")
	}
	if rl.Allow("1") {
		t.Errorf("third request should be limited")
	}
	if !rl.Allow("2") {
		t.Errorf("other phones are independent")
	}
	if !rl.Allow("") {
		t.Errorf("requests without phone are not limited")
	}
}

func TestIdempotency_ReplaysPerRoute(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	h := Idempotency(store, IdempotencyOptions{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/events/1/book", nil)
		req.Header.Set("Idempotency-Key", "k1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated || rec.Body.String() != "ok" {
			t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
		}
	}
	if calls != 1 {
		t.Errorf("handler called %d times, want 1", calls)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/2/book", nil)
	req.Header.Set("Idempotency-Key", "k1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if calls != 2 {
		t.Errorf("same key on another route should not replay")
	}
}

func TestIdempotency_Scope(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		key        string
		wantCalls  int
		wantReplay bool
	}{
		{name: "booking replayed", method: http.MethodPost, path: "/api/v1/events/1/book", key: "k1", wantCalls: 1, wantReplay: true},
		{name: "no key", method: http.MethodPost, path: "/api/v1/events/1/book", wantCalls: 2},
		{name: "blank key", method: http.MethodPost, path: "/api/v1/events/1/book", key: "  ", wantCalls: 2},
		{name: "reads never stored", method: http.MethodGet, path: "/api/v1/event-exports/excel", key: "k1", wantCalls: 2},
		{name: "gateway webhook", method: http.MethodPost, path: "/api/v1/payments/payu/webhook", key: "k1", wantCalls: 2},
		{name: "gateway redirect", method: http.MethodPost, path: "/api/v1/payments/payu/success", key: "k1", wantCalls: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewInMemoryIdempotencyStore(time.Minute)
			defer store.Stop()

			calls := 0
			h := Idempotency(store, IdempotencyOptions{SkipPrefixes: []string{"/api/v1/payments/"}})(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					calls++
					w.WriteHeader(http.StatusOK)
				}))

			var last *httptest.ResponseRecorder
			for i := 0; i < 2; i++ {
				req := httptest.NewRequest(tt.method, tt.path, nil)
				if tt.key != "" {
					req.Header.Set(DefaultIdempotencyHeader, tt.key)
				}
				last = httptest.NewRecorder()
				h.ServeHTTP(last, req)
			}

			if calls != tt.wantCalls {
				t.Errorf("handler called %d times, want %d", calls, tt.wantCalls)
			}
			if replayed := last.Header().Get(ReplayedHeader) == "true"; replayed != tt.wantReplay {
				t.Errorf("replayed = %v, want %v", replayed, tt.wantReplay)
			}
		})
	}
}

func TestIdempotency_FailuresAreNotStored(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	h := Idempotency(store, IdempotencyOptions{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/events/1/book", nil)
		req.Header.Set(DefaultIdempotencyHeader, "retry-after-fix")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	if calls != 2 {
		t.Errorf("handler called %d times, want 2 (the 400 is retried, the 201 replayed)", calls)
	}
}

func TestCleanupInterval(t *testing.T) {
	for ttl, want := range map[time.Duration]time.Duration{
		0:                time.Hour,
		10 * time.Minute: 10 * time.Minute,
		24 * time.Hour:   time.Hour,
	} {
		if got := cleanupInterval(ttl); got != want {
			t.Errorf("cleanupInterval(%s) = %s, want %s", ttl, got, want)
		}
	}
}

func TestRequestLogging_PropagatesRequestID(t *testing.T) {
	var seen string
	h := RequestLogging(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "abc" || rec.Header().Get(RequestIDHeader) != "abc" {
		t.Errorf("request id not propagated: ctx=%q header=%q", seen, rec.Header().Get(RequestIDHeader))
	}
}

func TestAdminAuth(t *testing.T) {
	const secret = "test-secret"
	auth := NewAdminAuth(secret, "admin", logger.Discard())
	handle := auth.Protect(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if _, ok := r.Context().Value(AdminClaimsKey).(*AdminClaims); !ok {
			t.Errorf("claims missing from context")
		}
		w.WriteHeader(http.StatusOK)
	})

	future := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	past := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}

	valid, _ := IssueAdminToken(secret, "admin", "ops", future)
	wrongRole, _ := IssueAdminToken(secret, "viewer", "ops", future)
	expired, _ := IssueAdminToken(secret, "admin", "ops", past)
	wrongSecret, _ := IssueAdminToken("other", "admin", "ops", future)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + valid, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"wrong role", "Bearer " + wrongRole, http.StatusForbidden},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + wrongSecret, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/venues", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handle(rec, req, nil)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
