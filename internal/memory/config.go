package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"photo-catalog/internal/logging"
)

// DefaultMemoryRatio is the share of the container limit given to the Go heap.
// The remainder covers decode buffers held outside the heap and goroutine stacks.
const DefaultMemoryRatio = 0.85

// ConfigResult holds the result of memory configuration
type ConfigResult struct {
	Configured bool
	// Source is "GOMEMLIMIT", "MEMORY_LIMIT", or "none"
	Source         string
	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// ConfigureFromEnv sets GOMEMLIMIT from a container memory limit.
// Call this early in main() before significant allocations.
//
// Environment variables:
//   - GOMEMLIMIT: takes precedence when set
//   - MEMORY_LIMIT: container memory limit in bytes
//   - MEMORY_RATIO: share of MEMORY_LIMIT for the Go heap (default 0.85)
func ConfigureFromEnv() ConfigResult {
	return configure(os.Getenv)
}

func configure(getenv func(string) string) ConfigResult {
	result := ConfigResult{Source: "none"}

	if goMemLimitEnv := getenv("GOMEMLIMIT"); goMemLimitEnv != "" {
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			result.Configured = true
			result.Source = "GOMEMLIMIT"
			result.GoMemLimit = limit
		}
		logging.Info("GOMEMLIMIT set via environment: %s", goMemLimitEnv)
		return result
	}

	memLimitStr := getenv("MEMORY_LIMIT")
	if memLimitStr == "" {
		logging.Debug("MEMORY_LIMIT not set, GOMEMLIMIT will not be configured automatically")
		return result
	}

	memLimit, err := strconv.ParseInt(memLimitStr, 10, 64)
	if err != nil || memLimit <= 0 {
		logging.Warn("Ignoring invalid MEMORY_LIMIT %q", memLimitStr)
		return result
	}

	ratio := parseRatio(getenv("MEMORY_RATIO"))
	goMemLimit := int64(float64(memLimit) * ratio)
	debug.SetMemoryLimit(goMemLimit)

	result.Configured = true
	result.Source = "MEMORY_LIMIT"
	result.ContainerLimit = memLimit
	result.GoMemLimit = goMemLimit
	result.Ratio = ratio

	logging.Info("Configured GOMEMLIMIT: %s (%.1f%% of %s container limit)",
		FormatBytes(goMemLimit), ratio*100, FormatBytes(memLimit))

	return result
}

func parseRatio(s string) float64 {
	if s == "" {
		return DefaultMemoryRatio
	}
	r, err := strconv.ParseFloat(s, 64)
	if err != nil {
		logging.Warn("Failed to parse MEMORY_RATIO %q: %v, using default %.2f", s, err, DefaultMemoryRatio)
		return DefaultMemoryRatio
	}
	if r <= 0 || r > 1.0 {
		logging.Warn("MEMORY_RATIO %q out of range (0.0-1.0), using default %.2f", s, DefaultMemoryRatio)
		return DefaultMemoryRatio
	}
	return r
}

// FormatBytes formats a byte count as a human-readable string.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
