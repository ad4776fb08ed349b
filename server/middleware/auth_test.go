package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestV1RequestIDMiddleware(t *testing.T) {
	var seen string
	handler := V1RequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetRequestID(r.Context())
		if !ok {
			t.Error("expected request ID in context")
		}
		seen = id
	}))

	ids := make(map[string]bool)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		header := rec.Header().Get("X-Request-ID")
		if header == "" {
			t.Fatal("expected X-Request-ID header")
		}
		if header != seen {
			t.Errorf("context ID %q does not match header %q", seen, header)
		}
		if ids[header] {
			t.Errorf("duplicate request ID %q", header)
		}
		ids[header] = true
	}
}

func TestGenerateRequestIDUnique(t *testing.T) {
	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := generateRequestID()
		if id == "" {
			t.Fatal("expected non-empty request ID")
		}
		if ids[id] {
			t.Fatalf("duplicate request ID %q after %d draws", id, i)
		}
		ids[id] = true
	}
}
