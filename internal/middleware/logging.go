package middleware

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// responseWriter records the status and size of a response for the access log.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

// Flush lets image delivery flush through the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// LoggingConfig holds configuration for the logging middleware
type LoggingConfig struct {
	// SkipPaths are path prefixes that are never logged.
	SkipPaths []string
	// LogImageRequests logs thumbnail and preview fetches, which a browsing
	// client issues once per grid cell.
	LogImageRequests bool
	LogHealthChecks  bool
}

// DefaultLoggingConfig returns a sensible default configuration
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:        []string{},
		LogImageRequests: false,
		LogHealthChecks:  true,
	}
}

var healthCheckPaths = map[string]bool{
	"/health":  true,
	"/healthz": true,
	"/livez":   true,
}

var imagePrefixes = []string{"/api/thumbnail/", "/api/preview/"}

// w3cFields is the field directive for every access log line.
const w3cFields = "date time c-ip cs-method cs-uri-stem cs-uri-query sc-status sc-bytes time-taken sc(Content-Type) cs(User-Agent) cs(Referer)"

// W3CLogger writes access log lines in W3C Extended Log Format.
type W3CLogger struct {
	config      LoggingConfig
	serviceName string
	header      sync.Once
}

// NewW3CLogger creates a new W3C format logger
func NewW3CLogger(config LoggingConfig, serviceName string) *W3CLogger {
	return &W3CLogger{config: config, serviceName: serviceName}
}

// Logger returns HTTP logging middleware using W3C Extended Log Format
func Logger(config LoggingConfig) func(http.Handler) http.Handler {
	logger := NewW3CLogger(config, "PhotoCatalog/1.0")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if logger.skip(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapped := newResponseWriter(w)
			next.ServeHTTP(wrapped, r)
			logger.logRequest(r, wrapped, time.Since(start))
		})
	}
}

func (l *W3CLogger) skip(path string) bool {
	for _, prefix := range l.config.SkipPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	if !l.config.LogHealthChecks && healthCheckPaths[path] {
		return true
	}
	if !l.config.LogImageRequests {
		for _, prefix := range imagePrefixes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
	}
	return false
}

func (l *W3CLogger) logRequest(r *http.Request, rw *responseWriter, duration time.Duration) {
	l.header.Do(func() {
		log.Printf("#Software: %s", l.serviceName)
		log.Printf("#Fields: %s", w3cFields)
	})

	now := time.Now().UTC()
	fields := []string{
		now.Format("2006-01-02"),
		now.Format("15:04:05"),
		orDash(sanitizeLogField(getClientIP(r))),
		orDash(sanitizeLogField(r.Method)),
		orDash(sanitizeLogField(r.URL.Path)),
		orDash(sanitizeLogField(r.URL.RawQuery)),
		strconv.Itoa(rw.statusCode),
		strconv.FormatInt(rw.bytesWritten, 10),
		strconv.FormatInt(duration.Milliseconds(), 10),
		orDash(rw.Header().Get("Content-Type")),
		orDash(escapeW3CField(sanitizeLogField(r.Header.Get("User-Agent")))),
		orDash(sanitizeLogField(r.Header.Get("Referer"))),
	}

	//nolint:gosec // G706: every request-derived field passes through sanitizeLogField.
	log.Println(strings.Join(fields, " "))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// sanitizeLogField removes control characters that could forge log lines or
// inject terminal escapes. Newlines become spaces; tabs are kept.
func sanitizeLogField(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r':
			b.WriteRune(' ')
		case r == '\t':
			b.WriteRune(r)
		case r < 0x20:
			// NUL, ESC and the other C0 controls are dropped.
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// escapeW3CField quotes a value containing whitespace or quotes, doubling
// embedded quotes.
func escapeW3CField(s string) string {
	if strings.ContainsAny(s, " \t\"") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
