package middleware

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestNewResponseWriter(t *testing.T) {
	w := httptest.NewRecorder()
	rw := newResponseWriter(w)

	if rw.statusCode != http.StatusOK {
		t.Errorf("Expected default status code 200, got %d", rw.statusCode)
	}
	if rw.bytesWritten != 0 {
		t.Errorf("Expected bytesWritten to be 0, got %d", rw.bytesWritten)
	}
	if rw.wroteHeader {
		t.Error("Expected wroteHeader to be false initially")
	}
}

func TestResponseWriterWriteHeader(t *testing.T) {
	w := httptest.NewRecorder()
	rw := newResponseWriter(w)

	rw.WriteHeader(http.StatusNotFound)
	if rw.statusCode != http.StatusNotFound {
		t.Errorf("Expected status code 404, got %d", rw.statusCode)
	}

	// Second call is ignored
	rw.WriteHeader(http.StatusInternalServerError)
	if rw.statusCode != http.StatusNotFound {
		t.Error("Status code should not change after first WriteHeader")
	}
}

func TestResponseWriterWrite(t *testing.T) {
	w := httptest.NewRecorder()
	rw := newResponseWriter(w)

	data := []byte("test data")
	n, err := rw.Write(data)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n != len(data) {
		t.Errorf("Expected to write %d bytes, wrote %d", len(data), n)
	}
	if rw.bytesWritten != int64(len(data)) {
		t.Errorf("Expected bytesWritten to be %d, got %d", len(data), rw.bytesWritten)
	}
	if !rw.wroteHeader {
		t.Error("Expected wroteHeader to be true after Write")
	}
}

func TestDefaultLoggingConfig(t *testing.T) {
	config := DefaultLoggingConfig()

	if len(config.SkipPaths) != 0 {
		t.Errorf("Expected empty SkipPaths, got %d items", len(config.SkipPaths))
	}
	if config.LogImageRequests {
		t.Error("Expected LogImageRequests to be false by default")
	}
	if !config.LogHealthChecks {
		t.Error("Expected LogHealthChecks to be true by default")
	}
}

func TestLoggerMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		config        LoggingConfig
		expectLogging bool
	}{
		{
			name:          "Logs regular requests",
			path:          "/api/pictures",
			config:        DefaultLoggingConfig(),
			expectLogging: true,
		},
		{
			name:          "Skips thumbnails by default",
			path:          "/api/thumbnail/0b8f9c4e-7d7e-4f6a-9a55-3f1c2e1d0a11",
			config:        DefaultLoggingConfig(),
			expectLogging: false,
		},
		{
			name:          "Logs previews when enabled",
			path:          "/api/preview/0b8f9c4e-7d7e-4f6a-9a55-3f1c2e1d0a11",
			config:        LoggingConfig{LogImageRequests: true},
			expectLogging: true,
		},
		{
			name:          "Logs health checks when enabled",
			path:          "/health",
			config:        LoggingConfig{LogHealthChecks: true},
			expectLogging: true,
		},
		{
			name:          "Skips health checks when disabled",
			path:          "/health",
			config:        LoggingConfig{LogHealthChecks: false},
			expectLogging: false,
		},
		{
			name:          "Skips configured paths",
			path:          "/metrics",
			config:        LoggingConfig{SkipPaths: []string{"/metrics"}, LogHealthChecks: true},
			expectLogging: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)
			handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("ok"))
			})

			req := httptest.NewRequest(http.MethodGet, tt.path, http.NoBody)
			w := httptest.NewRecorder()
			Logger(tt.config)(handler).ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("Expected status 200, got %d", w.Code)
			}
			logged := strings.Contains(buf.String(), tt.path)
			if logged != tt.expectLogging {
				t.Errorf("logged = %v, want %v (output %q)", logged, tt.expectLogging, buf.String())
			}
		})
	}
}

func TestLogLineFields(t *testing.T) {
	buf := captureLog(t)
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	req := httptest.NewRequest(http.MethodPost, "/api/import?x=1", http.NoBody)
	req.Header.Set("User-Agent", "curl test")
	req.Header.Set("X-Forwarded-For", "10.1.2.3, 10.0.0.1")
	Logger(DefaultLoggingConfig())(handler).ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	if !strings.Contains(line, "#Fields: date time c-ip") {
		t.Errorf("log %q missing the fields directive", line)
	}
	for _, want := range []string{"10.1.2.3", "POST", "/api/import", "x=1", " 201 11 ", "application/json", `"curl test"`} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q missing %q", line, want)
		}
	}
}

func TestSanitizeLogField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a\nb", "a b"},
		{"a\r\nb", "a  b"},
		{"nul\x00byte", "nulbyte"},
		{"\x1b[31mred", "[31mred"},
		{"tab\tok", "tab\tok"},
	}

	for _, tt := range tests {
		if got := sanitizeLogField(tt.in); got != tt.want {
			t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded list", map[string]string{"X-Forwarded-For": "1.1.1.1, 2.2.2.2"}, "9.9.9.9:1", "1.1.1.1"},
		{"forwarded single", map[string]string{"X-Forwarded-For": " 1.1.1.1 "}, "9.9.9.9:1", "1.1.1.1"},
		{"real ip", map[string]string{"X-Real-IP": "3.3.3.3"}, "9.9.9.9:1", "3.3.3.3"},
		{"remote addr", nil, "9.9.9.9:1234", "9.9.9.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultMetricsConfig(t *testing.T) {
	config := DefaultMetricsConfig()

	for _, path := range []string{"/metrics", "/health", "/healthz", "/livez"} {
		found := false
		for _, skip := range config.SkipPaths {
			if skip == path {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected %q to be in default SkipPaths", path)
		}
	}
}

func TestMetricsMiddlewareStatusCode(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"200 OK", http.StatusOK},
		{"202 Accepted", http.StatusAccepted},
		{"400 Bad Request", http.StatusBadRequest},
		{"404 Not Found", http.StatusNotFound},
		{"409 Conflict", http.StatusConflict},
		{"500 Internal Server Error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.statusCode)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/pictures", http.NoBody)
			w := httptest.NewRecorder()
			Metrics(MetricsConfig{})(handler).ServeHTTP(w, req)

			if w.Code != tt.statusCode {
				t.Errorf("Expected status code %d, got %d", tt.statusCode, w.Code)
			}
		})
	}
}

func TestMetricsMiddlewareSkipPaths(t *testing.T) {
	called := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called++
		w.WriteHeader(http.StatusOK)
	})
	wrapped := Metrics(DefaultMetricsConfig())(handler)

	for _, path := range []string{"/metrics", "/health", "/api/directories"} {
		wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, http.NoBody))
	}

	if called != 3 {
		t.Errorf("handler called %d times, want 3", called)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"Picture", "/api/pictures/0b8f9c4e-7d7e-4f6a-9a55-3f1c2e1d0a11", "/api/pictures/{id}"},
		{"Picture field", "/api/pictures/0b8f9c4e-7d7e-4f6a-9a55-3f1c2e1d0a11/rating", "/api/pictures/{id}/rating"},
		{"Thumbnail", "/api/thumbnail/0B8F9C4E-7D7E-4F6A-9A55-3F1C2E1D0A11", "/api/thumbnail/{id}"},
		{"Listing", "/api/pictures", "/api/pictures"},
		{"Not an id", "/api/pictures/not-a-uuid", "/api/pictures/not-a-uuid"},
		{"Root", "/", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizePath(tt.path); got != tt.expected {
				t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}
