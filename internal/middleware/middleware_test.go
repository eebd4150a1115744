// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestFormRateLimit(t *testing.T) {
	h := FormRateLimit(0.001, 2)(okHandler)

	post := func(ip string) int {
		r := httptest.NewRequest(http.MethodPost, "/candidates", nil)
		r.RemoteAddr = ip + ":4000"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, r)
		return rr.Code
	}

	for i := range 2 {
		if got := post("192.0.2.1"); got != http.StatusOK {
			t.Fatalf("post %d = %d", i, got)
		}
	}
	if got := post("192.0.2.1"); got != http.StatusTooManyRequests {
		t.Fatalf("third post = %d, want 429", got)
	}
	if got := post("192.0.2.2"); got != http.StatusOK {
		t.Fatalf("other client = %d, want 200", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		name     string
		isDev    bool
		path     string
		wantHSTS bool
		wantCSP  bool
	}{
		{"production", false, "/", true, true},
		{"development", true, "/", false, true},
		{"excluded prefix", false, "/files/abc", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSecurityHeadersConfig(tt.isDev)
			cfg.ExcludePaths = []string{"/files/"}
			rr := httptest.NewRecorder()
			SecurityHeaders(cfg)(okHandler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if got := rr.Header().Get("Strict-Transport-Security") != ""; got != tt.wantHSTS {
				t.Errorf("HSTS present = %v, want %v", got, tt.wantHSTS)
			}
			csp := rr.Header().Get("Content-Security-Policy")
			if (csp != "") != tt.wantCSP {
				t.Errorf("CSP = %q", csp)
			}
			if tt.wantCSP && !strings.Contains(csp, "object-src 'none'") {
				t.Errorf("CSP missing object-src: %q", csp)
			}
		})
	}
}

func TestTimeout(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
		_, _ = w.Write([]byte("late"))
	})

	rr := httptest.NewRecorder()
	Timeout(20*time.Millisecond)(slow).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}

	upload := httptest.NewRequest(http.MethodPost, "/apply", nil)
	upload.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rr = httptest.NewRecorder()
	Timeout(time.Nanosecond)(okHandler).ServeHTTP(rr, upload)
	if rr.Code != http.StatusOK {
		t.Fatalf("multipart status = %d, want 200", rr.Code)
	}
}

func TestTimeout_StartedResponseStopsAtDeadline(t *testing.T) {
	lateErr := make(chan error, 1)
	streaming := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("first"))
		<-r.Context().Done()
		// Give the middleware time to return before writing again.
		time.Sleep(20 * time.Millisecond)
		_, err := w.Write([]byte("late"))
		lateErr <- err
	})

	rr := httptest.NewRecorder()
	Timeout(20*time.Millisecond)(streaming).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	select {
	case err := <-lateErr:
		if err != http.ErrHandlerTimeout {
			t.Errorf("late write error = %v, want ErrHandlerTimeout", err)
		}
	case <-time.After(time.Second):
		t.Fatal("handler never finished")
	}
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want the handler's 200", rr.Code)
	}
	if got := rr.Body.String(); got != "first" {
		t.Errorf("body = %q, want only the write before the deadline", got)
	}
}

func TestStripTrailingSlash(t *testing.T) {
	tests := []struct {
		method, target, wantLoc string
		wantCode                int
	}{
		{http.MethodGet, "/", "", http.StatusOK},
		{http.MethodGet, "/jobs", "", http.StatusOK},
		{http.MethodGet, "/jobs/", "/jobs", http.StatusMovedPermanently},
		{http.MethodGet, "/apply/?job=welder", "/apply?job=welder", http.StatusMovedPermanently},
		{http.MethodGet, "//evil.example/", "/evil.example", http.StatusMovedPermanently},
		{http.MethodPost, "/candidates/", "", http.StatusOK},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		StripTrailingSlash(okHandler).ServeHTTP(rr, httptest.NewRequest(tt.method, tt.target, nil))
		if rr.Code != tt.wantCode || rr.Header().Get("Location") != tt.wantLoc {
			t.Errorf("%s %s: code %d loc %q, want %d %q",
				tt.method, tt.target, rr.Code, rr.Header().Get("Location"), tt.wantCode, tt.wantLoc)
		}
	}
}

func TestCSRF(t *testing.T) {
	cfg := DefaultCSRFConfig([]byte("12345678901234567890123456789012"), false, []string{"staff.example.com"})
	h := SkipCSRF("/api/contact")(CSRF(cfg)(okHandler))

	crossSite := func(path string) int {
		r := httptest.NewRequest(http.MethodPost, path, nil)
		r.Header.Set("Sec-Fetch-Site", "cross-site")
		r.Header.Set("Origin", "https://attacker.example")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, r)
		return rr.Code
	}

	if got := crossSite("/candidates"); got != http.StatusForbidden {
		t.Errorf("cross-site form post = %d, want 403", got)
	}
	if got := crossSite("/api/contact"); got != http.StatusOK {
		t.Errorf("relay = %d, want 200", got)
	}

	r := httptest.NewRequest(http.MethodPost, "/candidates", nil)
	r.Header.Set("Sec-Fetch-Site", "same-origin")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	if rr.Code != http.StatusOK {
		t.Errorf("same-origin post = %d, want 200", rr.Code)
	}
}

func TestDefaultCSRFConfig_Development(t *testing.T) {
	cfg := DefaultCSRFConfig(nil, true, []string{"staff.example.com"})
	want := map[string]bool{"staff.example.com": true, "localhost:8080": true, "127.0.0.1:8080": true}
	if len(cfg.TrustedOrigins) != len(want) {
		t.Fatalf("TrustedOrigins = %v", cfg.TrustedOrigins)
	}
	for _, o := range cfg.TrustedOrigins {
		if !want[o] || strings.Contains(o, "://") {
			t.Errorf("unexpected origin %q", o)
		}
	}
}
