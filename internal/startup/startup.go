package startup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"

	"photo-catalog/internal/logging"
	"photo-catalog/internal/memory"
	"photo-catalog/internal/preview"
	"photo-catalog/internal/thumbnail"
	"photo-catalog/internal/workers"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// DatabaseFile is the catalog file name inside DatabaseDir.
const DatabaseFile = "catalog.db"

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Config holds all application configuration
type Config struct {
	LibraryDir       string `yaml:"library_dir"`
	DatabaseDir      string `yaml:"database_dir"`
	TransferWorkers  int    `yaml:"transfer_workers"`
	ThumbnailWorkers int    `yaml:"thumbnail_workers"`
	ThumbnailSize    int    `yaml:"thumbnail_size"`
	PreviewCacheSize int    `yaml:"preview_cache_size"`
	Port             string `yaml:"port"`
	MetricsEnabled   bool   `yaml:"metrics_enabled"`
	LogHealthChecks  bool   `yaml:"log_health_checks"`

	// Derived
	DatabasePath string `yaml:"-"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() Config {
	return Config{
		LibraryDir:       "/library",
		DatabaseDir:      "/database",
		TransferWorkers:  workers.DefaultTransferConcurrency,
		ThumbnailWorkers: workers.ForCPU(0),
		ThumbnailSize:    thumbnail.DefaultSize,
		PreviewCacheSize: preview.DefaultCapacity,
		Port:             "8080",
		MetricsEnabled:   true,
		LogHealthChecks:  true,
	}
}

// DatabaseConnections returns the pool size the catalog needs so that both
// worker pools can write while readers are served.
func (c *Config) DatabaseConnections() int {
	return workers.ConnectionBudget(c.TransferWorkers, c.ThumbnailWorkers)
}

// LoadConfig builds the configuration from defaults, then the YAML file at
// path when path is not empty, then environment variables. It resolves
// directories to absolute paths and makes sure the database directory exists
// and is writable.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		logging.Debug("Loaded configuration file %s", path)
	}

	applyEnv(&config)

	if err := config.validate(); err != nil {
		return nil, err
	}

	var err error
	config.LibraryDir, err = filepath.Abs(config.LibraryDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve library directory path: %w", err)
	}
	config.DatabaseDir, err = filepath.Abs(config.DatabaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	config.DatabasePath = filepath.Join(config.DatabaseDir, DatabaseFile)

	if err := ensureDirectory(config.DatabaseDir, "database"); err != nil {
		return nil, fmt.Errorf("database directory error: %w", err)
	}
	logging.Debug("  Testing database directory write access...")
	if err := testWriteAccess(config.DatabaseDir); err != nil {
		return nil, fmt.Errorf("database directory is not writable (required for database): %w", err)
	}

	return &config, nil
}

func applyEnv(c *Config) {
	c.LibraryDir = getEnv("LIBRARY_DIR", c.LibraryDir)
	c.DatabaseDir = getEnv("DATABASE_DIR", c.DatabaseDir)
	c.TransferWorkers = getEnvInt("TRANSFER_WORKERS", c.TransferWorkers)
	c.ThumbnailWorkers = getEnvInt("THUMBNAIL_WORKERS", c.ThumbnailWorkers)
	c.ThumbnailSize = getEnvInt("THUMBNAIL_SIZE", c.ThumbnailSize)
	c.PreviewCacheSize = getEnvInt("PREVIEW_CACHE_SIZE", c.PreviewCacheSize)
	c.Port = getEnv("PORT", c.Port)
	c.MetricsEnabled = getEnvBool("METRICS_ENABLED", c.MetricsEnabled)
	c.LogHealthChecks = getEnvBool("LOG_HEALTH_CHECKS", c.LogHealthChecks)
}

func (c *Config) validate() error {
	var errs []error
	if c.LibraryDir == "" {
		errs = append(errs, errors.New("library directory is empty"))
	}
	if c.DatabaseDir == "" {
		errs = append(errs, errors.New("database directory is empty"))
	}
	for name, v := range map[string]int{
		"transfer_workers":   c.TransferWorkers,
		"thumbnail_workers":  c.ThumbnailWorkers,
		"thumbnail_size":     c.ThumbnailSize,
		"preview_cache_size": c.PreviewCacheSize,
	} {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, v))
		}
	}
	if port, err := strconv.Atoi(c.Port); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %q", c.Port))
	}
	return errors.Join(errs...)
}

// LogConfig prints the banner, system information and configuration.
func LogConfig(c *Config) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  LIBRARY_DIR:         %s", c.LibraryDir)
	logging.Info("  DATABASE_DIR:        %s", c.DatabaseDir)
	logging.Info("  TRANSFER_WORKERS:    %d", c.TransferWorkers)
	logging.Info("  THUMBNAIL_WORKERS:   %d", c.ThumbnailWorkers)
	logging.Info("  THUMBNAIL_SIZE:      %d", c.ThumbnailSize)
	logging.Info("  PREVIEW_CACHE_SIZE:  %d", c.PreviewCacheSize)
	logging.Info("  PORT:                %s", c.Port)
	logging.Info("  METRICS_ENABLED:     %v", c.MetricsEnabled)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", c.LogHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())
	logging.Info("  Database file:       %s", c.DatabasePath)
	logging.Info("  Database pool:       %d connections", c.DatabaseConnections())

	if err := ensureDirectory(c.LibraryDir, "library"); err != nil {
		logging.Warn("  Library directory issue: %v", err)
	}
}

// LogMemoryConfig logs how GOMEMLIMIT was configured.
func LogMemoryConfig(result memory.ConfigResult) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("MEMORY")
	logging.Info("------------------------------------------------------------")

	switch result.Source {
	case "GOMEMLIMIT":
		logging.Info("  GOMEMLIMIT:      %s (from environment)", memory.FormatBytes(result.GoMemLimit))
	case "MEMORY_LIMIT":
		logging.Info("  Container limit: %s", memory.FormatBytes(result.ContainerLimit))
		logging.Info("  GOMEMLIMIT:      %s (%.0f%%)", memory.FormatBytes(result.GoMemLimit), result.Ratio*100)
	default:
		logging.Info("  No memory limit configured, decode backpressure disabled")
	}
}

// LogDatabaseInit logs database initialization
func LogDatabaseInit(duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DATABASE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Database initialized in %v", duration)
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   route.GetName(),
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes at debug level
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}
			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
		}
	}

	if logHealthChecks {
		logging.Info("  Health check logging: ON")
	} else {
		logging.Info("  Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// LogServerStarted logs successful server start
func LogServerStarted(port string, metricsEnabled bool, startup time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", startup)
	logging.Info("  Application:     http://localhost:%s", port)
	if metricsEnabled {
		logging.Info("  Metrics:         http://localhost:%s/metrics", port)
	} else {
		logging.Info("  Metrics:         DISABLED")
	}
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

func printBanner() {
	banner := `
------------------------------------------------------------
    ____  __          __           ______      __        __
   / __ \/ /_  ____  / /_____     / ____/___ _/ /_____ _/ /___  ____ _
  / /_/ / __ \/ __ \/ __/ __ \   / /   / __ '/ __/ __ '/ / __ \/ __ '/
 / ____/ / / / /_/ / /_/ /_/ /  / /___/ /_/ / /_/ /_/ / / /_/ / /_/ /
/_/   /_/ /_/\____/\__/\____/   \____/\__,_/\__/\__,_/_/\____/\__, /
                                                             /____/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		logging.Warn("Invalid positive integer for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
