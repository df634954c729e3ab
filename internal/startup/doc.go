// Package startup handles configuration loading and startup/shutdown logging.
//
// # Configuration
//
// [LoadConfig] starts from [DefaultConfig], applies an optional YAML file and
// then environment variables, so the environment always wins:
//
//   - LIBRARY_DIR: root of the managed picture library (default: /library)
//   - DATABASE_DIR: directory holding catalog.db (default: /database)
//   - TRANSFER_WORKERS: concurrent import copies (default: 16)
//   - THUMBNAIL_WORKERS: concurrent thumbnail renders (default: one per CPU)
//   - THUMBNAIL_SIZE: edge of the thumbnail box in pixels (default: 240)
//   - PREVIEW_CACHE_SIZE: decoded previews kept in memory (default: 20)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_ENABLED: serve Prometheus metrics on /metrics (default: true)
//   - LOG_HEALTH_CHECKS: log health check requests (default: true)
//   - LOG_LEVEL: debug, info, warn or error (default: info)
//   - MEMORY_LIMIT, MEMORY_RATIO, GOMEMLIMIT: see package memory
//
// The YAML keys are the lower-case forms of the variables above, for example
// library_dir and transfer_workers. A .env file in the working directory is
// loaded into the environment by the command line before LoadConfig runs.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
//
// # Lifecycle Logging
//
//   - [LogConfig]: banner, system information and effective configuration
//   - [LogMemoryConfig]: memory limit configuration
//   - [LogDatabaseInit]: database initialization timing
//   - [LogHTTPRoutes]: registered HTTP routes (debug level)
//   - [LogServerStarted]: server endpoints and startup duration
//   - [LogShutdownInitiated], [LogShutdownComplete]: graceful shutdown
package startup
