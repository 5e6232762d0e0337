package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JonMunkholm/regioncompare/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.RemoteAddr))
	})
}

func TestAPIKeyAuth(t *testing.T) {
	tests := []struct {
		name    string
		require bool
		keys    []string
		header  string
		want    int
	}{
		{"disabled", false, nil, "", http.StatusOK},
		{"missing key", true, []string{"k1"}, "", http.StatusUnauthorized},
		{"wrong key", true, []string{"k1"}, "nope", http.StatusForbidden},
		{"valid key", true, []string{"k1", "k2"}, "k2", http.StatusOK},
		{"no keys configured", true, nil, "k1", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.SecurityConfig{RequireAPIKey: tt.require, APIKeys: tt.keys}
			h := APIKeyAuth(cfg)(okHandler())

			req := httptest.NewRequest(http.MethodGet, "/api/regions", nil)
			if tt.header != "" {
				req.Header.Set(APIKeyHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		realIP  string
		xff     string
		want    string
	}{
		{"untrusted keeps addr", nil, "203.0.113.5:1234", "1.2.3.4", "", "203.0.113.5:1234"},
		{"trusted cidr uses x-real-ip", []string{"10.0.0.0/8"}, "10.1.2.3:80", "1.2.3.4", "", "1.2.3.4"},
		{"trusted bare ip uses xff", []string{"127.0.0.1"}, "127.0.0.1:80", "", "5.6.7.8, 10.0.0.1", "5.6.7.8"},
		{"invalid header ignored", []string{"10.0.0.0/8"}, "10.1.2.3:80", "garbage", "", "10.1.2.3:80"},
		{"invalid cidr skipped", []string{"not-an-ip"}, "10.1.2.3:80", "1.2.3.4", "", "10.1.2.3:80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := TrustedRealIP(tt.trusted)(okHandler())
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if got := rec.Body.String(); got != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLogger_CapturesStatus(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
	if rec.Body.String() != "short and stout" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestResponseWriter_CountsBytes(t *testing.T) {
	ww := &responseWriter{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
	ww.Write([]byte("abc"))
	ww.Write([]byte("de"))
	ww.WriteHeader(http.StatusInternalServerError)

	if ww.bytes != 5 {
		t.Errorf("bytes = %d, want 5", ww.bytes)
	}
	if ww.status != http.StatusOK {
		t.Errorf("status = %d, want %d after late WriteHeader", ww.status, http.StatusOK)
	}
}
