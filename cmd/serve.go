package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"photo-catalog/internal/database"
	"photo-catalog/internal/filesystem"
	"photo-catalog/internal/handlers"
	"photo-catalog/internal/importer"
	"photo-catalog/internal/logging"
	"photo-catalog/internal/memory"
	"photo-catalog/internal/metrics"
	"photo-catalog/internal/middleware"
	"photo-catalog/internal/preview"
	"photo-catalog/internal/startup"
	"photo-catalog/internal/thumbnail"
)

const shutdownTimeout = 30 * time.Second

// server bundles the long-running components so shutdown can stop them in order.
type server struct {
	http      *http.Server
	handlers  *handlers.Handlers
	collector *metrics.Collector
	monitor   *memory.Monitor
	db        *database.Database
}

func newServeCmd(a *app) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog API, thumbnails and previews over HTTP",
		Example: `  # Start on the configured port (default 8080)
  photo-catalog serve

  # Start on a custom port
  photo-catalog serve --port 3000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port != "" {
				a.config.Port = port
			}
			return a.serve(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides PORT)")

	return cmd
}

func (a *app) serve(ctx context.Context) error {
	startTime := time.Now()
	config := a.config

	startup.LogMemoryConfig(memory.ConfigureFromEnv())
	startup.LogConfig(config)

	dbStart := time.Now()
	db, err := a.openCatalog(ctx)
	if err != nil {
		return err
	}
	startup.LogDatabaseInit(time.Since(dbStart))

	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		filesystem.SetObserver(metrics.NewFilesystemObserver())
	}

	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()

	collector := metrics.NewCollector(db, time.Minute)
	collector.Start()

	im := importer.New(db, config.LibraryDir, config.TransferWorkers)
	pipeline := thumbnail.New(db, thumbnail.Options{
		Concurrency: config.ThumbnailWorkers,
		Size:        config.ThumbnailSize,
		Monitor:     monitor,
	})
	previews := preview.New(db, config.PreviewCacheSize).WithMonitor(monitor)

	h := handlers.New(db, im, pipeline, previews)
	router := h.Router(config.MetricsEnabled)
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(router)
	if config.MetricsEnabled {
		handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	}

	srv := &server{
		http: &http.Server{
			Addr:              ":" + config.Port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			// Imports run inside the request.
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		handlers:  h,
		collector: collector,
		monitor:   monitor,
		db:        db,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	startup.LogServerStarted(config.Port, config.MetricsEnabled, time.Since(startTime))

	select {
	case <-ctx.Done():
		startup.LogShutdownInitiated("interrupt")
		srv.shutdown()
		return nil
	case err := <-serverErr:
		srv.shutdown()
		return err
	}
}

func (s *server) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := s.http.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Stopping background jobs")
	s.handlers.Shutdown()
	startup.LogShutdownStepComplete("Background jobs stopped")

	startup.LogShutdownStep("Stopping metrics collector")
	s.collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	startup.LogShutdownStep("Stopping memory monitor")
	s.monitor.Stop()
	startup.LogShutdownStepComplete("Memory monitor stopped")

	startup.LogShutdownStep("Closing catalog")
	closeCatalog(s.db)
	startup.LogShutdownStepComplete("Catalog closed")

	startup.LogShutdownComplete()
}
