package streaming

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"
)

// stalledWriter never completes a write until released.
type stalledWriter struct {
	*httptest.ResponseRecorder
	release chan struct{}
}

func (s *stalledWriter) Write(p []byte) (int, error) {
	<-s.release
	return len(p), nil
}

func newStalledWriter(t *testing.T) *stalledWriter {
	t.Helper()
	s := &stalledWriter{ResponseRecorder: httptest.NewRecorder(), release: make(chan struct{})}
	t.Cleanup(func() { close(s.release) })
	return s
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.WriteTimeout != 30*time.Second {
		t.Errorf("Expected WriteTimeout=30s, got %v", config.WriteTimeout)
	}
	if config.ChunkSize != 64*1024 {
		t.Errorf("Expected ChunkSize=64KB, got %d", config.ChunkSize)
	}
}

func TestTimeoutWriterWrite(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		size      int
		wantFlush bool
	}{
		{"default", DefaultConfig(), 9, true},
		{"chunked", Config{WriteTimeout: time.Second, ChunkSize: 10}, 95, true},
		{"no timeout", Config{}, 1000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tw := NewTimeoutWriter(context.Background(), w, tt.config)
			defer tw.Close()

			data := bytes.Repeat([]byte("x"), tt.size)
			n, err := tw.Write(data)
			if err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if n != len(data) {
				t.Errorf("Expected to write %d bytes, wrote %d", len(data), n)
			}
			if !bytes.Equal(w.Body.Bytes(), data) {
				t.Errorf("body length %d, want %d", w.Body.Len(), len(data))
			}
			if w.Flushed != tt.wantFlush {
				t.Errorf("Flushed = %v, want %v", w.Flushed, tt.wantFlush)
			}

			written, _ := tw.Stats()
			if written != int64(len(data)) {
				t.Errorf("Stats bytes = %d, want %d", written, len(data))
			}
		})
	}
}

func TestTimeoutWriterClose(t *testing.T) {
	tw := NewTimeoutWriter(context.Background(), httptest.NewRecorder(), DefaultConfig())

	if err := tw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if _, err := tw.Write([]byte("late")); !errors.Is(err, ErrStreamCanceled) {
		t.Errorf("Write after Close = %v, want ErrStreamCanceled", err)
	}
}

func TestTimeoutWriterClientGone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tw := NewTimeoutWriter(ctx, httptest.NewRecorder(), DefaultConfig())
	defer tw.Close()

	cancel()

	if _, err := tw.Write([]byte("data")); !errors.Is(err, ErrClientGone) {
		t.Errorf("Write = %v, want ErrClientGone", err)
	}
}

func TestTimeoutWriterDeadline(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	tw := NewTimeoutWriter(ctx, httptest.NewRecorder(), DefaultConfig())
	defer tw.Close()

	if _, err := tw.Write([]byte("data")); !errors.Is(err, ErrStreamCanceled) {
		t.Errorf("Write = %v, want ErrStreamCanceled", err)
	}
}

func TestTimeoutWriterWriteTimeout(t *testing.T) {
	w := newStalledWriter(t)
	tw := NewTimeoutWriter(context.Background(), w, Config{WriteTimeout: 20 * time.Millisecond})
	defer tw.Close()

	start := time.Now()
	if _, err := tw.Write([]byte("data")); !errors.Is(err, ErrWriteTimeout) {
		t.Fatalf("Write = %v, want ErrWriteTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Write took %v", elapsed)
	}

	if _, err := tw.Write([]byte("more")); !errors.Is(err, ErrStreamCanceled) {
		t.Errorf("Write after timeout = %v, want ErrStreamCanceled", err)
	}
}

func TestServeBytes(t *testing.T) {
	w := httptest.NewRecorder()
	body := bytes.Repeat([]byte{0xFF, 0xD8}, 50000)

	if err := ServeBytes(context.Background(), w, "image/jpeg", body, DefaultConfig()); err != nil {
		t.Fatalf("ServeBytes: %v", err)
	}

	if got := w.Header().Get("Content-Type"); got != "image/jpeg" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Header().Get("Content-Length"); got != "100000" {
		t.Errorf("Content-Length = %q, want 100000", got)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if !bytes.Equal(w.Body.Bytes(), body) {
		t.Error("body mismatch")
	}
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	errs := []error{ErrWriteTimeout, ErrClientGone, ErrStreamCanceled}
	for i, a := range errs {
		for j, b := range errs {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v matches %v", a, b)
			}
		}
	}
}
