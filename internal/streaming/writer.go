package streaming

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"photo-catalog/internal/logging"
)

// Sentinel errors for image delivery.
var (
	// ErrWriteTimeout indicates that a single write exceeded the configured
	// timeout, usually because the client reads too slowly.
	ErrWriteTimeout = errors.New("write timeout exceeded")

	// ErrClientGone indicates that the request context was canceled before
	// the body was delivered.
	ErrClientGone = errors.New("client disconnected")

	// ErrStreamCanceled indicates that the writer was closed or timed out
	// earlier and refuses further writes.
	ErrStreamCanceled = errors.New("stream canceled")
)

// Config configures a TimeoutWriter.
type Config struct {
	// WriteTimeout bounds each chunk written to the client.
	WriteTimeout time.Duration
	// ChunkSize splits large bodies so cancellation is noticed between
	// chunks (0 = write as received).
	ChunkSize int
}

// DefaultConfig returns the settings used for thumbnails and previews.
func DefaultConfig() Config {
	return Config{
		WriteTimeout: 30 * time.Second,
		ChunkSize:    64 * 1024,
	}
}

// TimeoutWriter wraps an http.ResponseWriter so a stalled client cannot hold
// a handler forever. The server runs without a global write timeout because
// imports execute inside the request, so image bodies are bounded here.
type TimeoutWriter struct {
	w            http.ResponseWriter
	ctx          context.Context
	cancel       context.CancelFunc
	config       Config
	startTime    time.Time
	bytesWritten int64
	mu           sync.Mutex
	closed       bool
	flusher      http.Flusher
}

// NewTimeoutWriter creates a writer that stops when ctx is done.
func NewTimeoutWriter(ctx context.Context, w http.ResponseWriter, config Config) *TimeoutWriter {
	writerCtx, cancel := context.WithCancel(ctx)

	tw := &TimeoutWriter{
		w:         w,
		ctx:       writerCtx,
		cancel:    cancel,
		config:    config,
		startTime: time.Now(),
	}
	if flusher, ok := w.(http.Flusher); ok {
		tw.flusher = flusher
	}
	return tw
}

// Write implements io.Writer. p must not be modified until Write returns,
// and after an ErrWriteTimeout it must not be modified at all.
func (tw *TimeoutWriter) Write(p []byte) (int, error) {
	tw.mu.Lock()
	closed := tw.closed
	tw.mu.Unlock()
	if closed {
		return 0, ErrStreamCanceled
	}

	total := 0
	for len(p) > 0 {
		if err := tw.ctx.Err(); err != nil {
			return total, tw.contextError()
		}

		chunk := len(p)
		if tw.config.ChunkSize > 0 {
			chunk = min(chunk, tw.config.ChunkSize)
		}

		n, err := tw.writeWithTimeout(p[:chunk])
		total += n
		if err != nil {
			return total, err
		}
		p = p[chunk:]

		if tw.flusher != nil {
			tw.flusher.Flush()
		}
	}
	return total, nil
}

func (tw *TimeoutWriter) writeWithTimeout(p []byte) (int, error) {
	if tw.config.WriteTimeout <= 0 {
		n, err := tw.w.Write(p)
		tw.addBytes(n)
		return n, err
	}

	type writeResult struct {
		n   int
		err error
	}
	resultCh := make(chan writeResult, 1)

	go func() {
		n, err := tw.w.Write(p)
		resultCh <- writeResult{n, err}
	}()

	timer := time.NewTimer(tw.config.WriteTimeout)
	defer timer.Stop()

	select {
	case result := <-resultCh:
		tw.addBytes(result.n)
		return result.n, result.err
	case <-timer.C:
		tw.mu.Lock()
		tw.closed = true
		tw.mu.Unlock()
		tw.cancel()
		return 0, ErrWriteTimeout
	case <-tw.ctx.Done():
		return 0, tw.contextError()
	}
}

func (tw *TimeoutWriter) addBytes(n int) {
	tw.mu.Lock()
	tw.bytesWritten += int64(n)
	tw.mu.Unlock()
}

func (tw *TimeoutWriter) contextError() error {
	if errors.Is(tw.ctx.Err(), context.Canceled) {
		tw.mu.Lock()
		closed := tw.closed
		tw.mu.Unlock()
		if closed {
			return ErrStreamCanceled
		}
		return ErrClientGone
	}
	return ErrStreamCanceled
}

// Close marks the writer as closed. It is safe to call more than once.
func (tw *TimeoutWriter) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.closed {
		return nil
	}
	tw.closed = true
	tw.cancel()
	return nil
}

// Stats returns the bytes delivered and the time since the writer was created.
func (tw *TimeoutWriter) Stats() (bytesWritten int64, duration time.Duration) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.bytesWritten, time.Since(tw.startTime)
}

// ServeBytes writes body as the response with the given content type,
// bounding every chunk by config.WriteTimeout.
func ServeBytes(ctx context.Context, w http.ResponseWriter, contentType string, body []byte, config Config) error {
	tw := NewTimeoutWriter(ctx, w, config)
	defer func() {
		if err := tw.Close(); err != nil {
			logging.Warn("Failed to close timeout writer: %v", err)
		}
	}()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("X-Content-Type-Options", "nosniff")

	_, err := io.Copy(tw, bytes.NewReader(body))

	bytesWritten, duration := tw.Stats()
	logging.Debug("Image delivered: %d bytes in %v", bytesWritten, duration)

	return err
}
