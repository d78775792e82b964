package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWithRequestIDGeneratesWhenAbsent(t *testing.T) {
	var seen string
	handler := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromRequest(r)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Fatal("request id not generated")
	}
	if got := rec.Header().Get("X-Request-Id"); got != seen {
		t.Fatalf("response header id = %q, want %q", got, seen)
	}
}

func TestWithRequestIDPropagatesIncoming(t *testing.T) {
	var seen string
	handler := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromRequest(r)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "upstream-id")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "upstream-id" {
		t.Fatalf("request id = %q, want upstream-id", seen)
	}
}
