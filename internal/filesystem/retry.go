package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"photo-catalog/internal/logging"
)

// VolumeResolver maps file paths to known volume names for metric labeling.
// It uses longest-prefix matching on absolute paths.
type VolumeResolver struct {
	// sorted by path length descending
	mounts []volumeMount
}

type volumeMount struct {
	path string // absolute path with trailing slash
	name string
}

// NewVolumeResolver creates a resolver from a map of volume name to path.
//
//	NewVolumeResolver(map[string]string{
//	    "library": "/photos",
//	    "source":  "/mnt/card",
//	})
func NewVolumeResolver(volumes map[string]string) *VolumeResolver {
	mounts := make([]volumeMount, 0, len(volumes))
	for name, path := range volumes {
		absPath, err := filepath.Abs(path)
		if err != nil {
			absPath = path
		}
		if !strings.HasSuffix(absPath, "/") {
			absPath += "/"
		}
		mounts = append(mounts, volumeMount{path: absPath, name: name})
	}

	sort.Slice(mounts, func(i, j int) bool {
		return len(mounts[i].path) > len(mounts[j].path)
	})

	return &VolumeResolver{mounts: mounts}
}

// Resolve returns the volume name for a given file path, or "unknown".
func (vr *VolumeResolver) Resolve(path string) string {
	if vr == nil {
		return "unknown"
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "unknown"
	}

	for _, mount := range vr.mounts {
		if strings.HasPrefix(absPath+"/", mount.path) {
			return mount.name
		}
	}

	return "unknown"
}

var defaultResolver *VolumeResolver

// SetDefaultVolumeResolver sets the package-level volume resolver.
// Call this once at startup after loading configuration.
func SetDefaultVolumeResolver(vr *VolumeResolver) {
	defaultResolver = vr
}

// RetryConfig configures retry behavior for filesystem operations
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// VolumeResolver overrides the package-level resolver for this operation.
	VolumeResolver *VolumeResolver
}

// DefaultRetryConfig returns sensible defaults for NFS retry behavior
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

func (c *RetryConfig) resolveVolume(path string) string {
	if c.VolumeResolver != nil {
		return c.VolumeResolver.Resolve(path)
	}
	return defaultResolver.Resolve(path)
}

// isNFSStaleError checks if an error is an NFS stale file handle error
func isNFSStaleError(err error) bool {
	if err == nil {
		return false
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.ESTALE
	}

	return false
}

// withRetry runs fn until it succeeds, fails with a non-ESTALE error, or the
// retry budget is spent. Backoff doubles after each stale attempt up to
// MaxBackoff.
func withRetry[T any](op, path string, config RetryConfig, fn func() (T, error)) (T, error) {
	start := time.Now()
	volume := config.resolveVolume(path)
	obs := observe()
	defer func() {
		obs.ObserveRetryDuration(op, volume, time.Since(start).Seconds())
	}()

	var zero T
	var lastErr error
	backoff := config.InitialBackoff

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		v, err := fn()
		if err == nil {
			if attempt > 0 {
				logging.Info("NFS %s succeeded on retry %d for %s", op, attempt, path)
				obs.ObserveRetrySuccess(op, volume)
			}
			return v, nil
		}

		lastErr = err
		if !isNFSStaleError(err) {
			return zero, err
		}

		obs.ObserveStaleError(op, volume)

		if attempt < config.MaxRetries {
			obs.ObserveRetryAttempt(op, volume)
			logging.Debug("NFS %s stale file handle for %s, retrying in %v (attempt %d/%d)",
				op, path, backoff, attempt+1, config.MaxRetries)
			time.Sleep(backoff)

			backoff *= 2
			if backoff > config.MaxBackoff {
				backoff = config.MaxBackoff
			}
		}
	}

	logging.Warn("NFS %s failed after %d retries for %s: %v", op, config.MaxRetries, path, lastErr)
	obs.ObserveRetryFailure(op, volume)
	return zero, lastErr
}

// StatWithRetry performs os.Stat with retry logic for NFS stale file handle errors
func StatWithRetry(path string, config RetryConfig) (os.FileInfo, error) {
	return withRetry("stat", path, config, func() (os.FileInfo, error) {
		return os.Stat(path)
	})
}

// OpenWithRetry performs os.Open with retry logic for NFS stale file handle errors
func OpenWithRetry(path string, config RetryConfig) (*os.File, error) {
	return withRetry("open", path, config, func() (*os.File, error) {
		return os.Open(path)
	})
}

// CreateExclusiveWithRetry creates path for writing and fails with an error
// satisfying errors.Is(err, fs.ErrExist) if it already exists.
func CreateExclusiveWithRetry(path string, perm os.FileMode, config RetryConfig) (*os.File, error) {
	return withRetry("create", path, config, func() (*os.File, error) {
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	})
}
