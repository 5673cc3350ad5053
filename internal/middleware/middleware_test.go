package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoggerPassesThrough(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})

	handler := Logger(DefaultLoggingConfig())(next)

	req := httptest.NewRequest("GET", "/api/formats", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatal("wrapped handler was not called")
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
}

func TestLoggerSkipPaths(t *testing.T) {
	config := LoggingConfig{SkipPaths: []string{"/internal"}}
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	handler := Logger(config)(next)
	req := httptest.NewRequest("GET", "/internal/debug", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Error("skipped path did not reach the wrapped handler")
	}
}

func TestMetricsPassesThrough(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	handler := Metrics(DefaultMetricsConfig())(next)

	tests := []struct {
		name string
		path string
	}{
		{name: "recorded path", path: "/api/convert"},
		{name: "skipped metrics path", path: "/metrics"},
		{name: "skipped health path", path: "/healthz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", tt.path, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusCreated {
				t.Errorf("status = %d, want 201", rec.Code)
			}
		})
	}
}

func TestSanitizeLogField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain string unchanged",
			input: "GET /api/convert",
			want:  "GET /api/convert",
		},
		{
			name:  "newlines become spaces",
			input: "line1\nline2\rline3",
			want:  "line1 line2 line3",
		},
		{
			name:  "ansi escapes stripped",
			input: "red\x1b[31mtext",
			want:  "red[31mtext",
		},
		{
			name:  "null bytes stripped",
			input: "a\x00b",
			want:  "ab",
		},
		{
			name:  "tabs preserved",
			input: "a\tb",
			want:  "a\tb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeLogField(tt.input); got != tt.want {
				t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
