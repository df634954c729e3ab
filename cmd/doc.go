// Package cmd implements the photo-catalog command line.
//
// Every subcommand loads its configuration in the root's persistent pre-run:
// a .env file in the working directory, then the optional --config YAML file,
// then environment variables.
//
// # Commands
//
//   - import <source>: copy new pictures into <library>/YYYY/YYYY-MM-DD/
//   - add <directory>: catalog pictures where they are
//   - thumbnails [--all]: generate missing thumbnails, or all of them
//   - directories: list catalogued directories
//   - export <directory> [--selection Pick]: copy selected pictures out
//   - serve: run the HTTP API until interrupted
//
// # Environment Variables
//
//   - LIBRARY_DIR: library root (default: /library)
//   - DATABASE_DIR: directory holding catalog.db (default: /database)
//   - TRANSFER_WORKERS: concurrent copies during import and export (default: 16)
//   - THUMBNAIL_WORKERS: concurrent thumbnail renders (default: CPU count)
//   - THUMBNAIL_SIZE: thumbnail bounding box in pixels (default: 240)
//   - PREVIEW_CACHE_SIZE: decoded previews kept in memory (default: 20)
//   - PORT: HTTP port for serve (default: 8080)
//   - METRICS_ENABLED: expose /metrics (default: true)
//   - LOG_HEALTH_CHECKS: log health probe requests (default: true)
//   - LOG_LEVEL: debug, info, warn or error
//   - GOMEMLIMIT, MEMORY_LIMIT, MEMORY_RATIO: heap limit for serve
//
// # Output
//
// Results are printed as aligned text when stdout is a terminal and as JSON
// otherwise. --output forces either format.
//
// # Graceful Shutdown
//
// serve stops on SIGINT or SIGTERM: the HTTP server drains (30s timeout),
// background thumbnail jobs are cancelled and awaited, then the metrics
// collector, memory monitor and catalog are closed.
package cmd
