package filesystem

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// CopyFileExclusive copies src to dst without ever overwriting an existing
// file. A partially written dst is removed on failure. It returns the number
// of bytes copied.
func CopyFileExclusive(src, dst string, config RetryConfig) (int64, error) {
	in, err := OpenWithRetry(src, config)
	if err != nil {
		return 0, fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}

	out, err := CreateExclusiveWithRetry(dst, info.Mode().Perm(), config)
	if err != nil {
		return 0, fmt.Errorf("create destination: %w", err)
	}

	n, err := io.Copy(out, in)
	if err == nil {
		err = out.Sync()
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		if rmErr := os.Remove(dst); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = errors.Join(err, fmt.Errorf("remove partial copy: %w", rmErr))
		}
		return n, fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}

	return n, nil
}

// Exists reports whether path exists. Errors other than not-exist are
// returned so callers do not mistake an unreadable path for a free one.
func Exists(path string, config RetryConfig) (bool, error) {
	_, err := StatWithRetry(path, config)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
