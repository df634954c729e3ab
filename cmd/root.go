package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"photo-catalog/internal/database"
	"photo-catalog/internal/filesystem"
	"photo-catalog/internal/logging"
	"photo-catalog/internal/startup"
)

// app carries what every subcommand needs once the root has run.
type app struct {
	configPath string
	logLevel   string
	output     string

	config *startup.Config
}

// NewRootCmd builds the photo-catalog command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "photo-catalog",
		Short: "Import, catalog and browse a date-organized photo library",
		Long: `photo-catalog copies pictures from memory cards and other source
directories into a library organized by capture date, keeps a SQLite catalog
of everything in the library, and serves thumbnails and previews over HTTP.

Configuration is read from an optional YAML file, then from the environment
(a .env file in the working directory is loaded first).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return a.init()
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to a YAML configuration file")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")
	cmd.PersistentFlags().StringVarP(&a.output, "output", "o", "auto", "Output format: auto, text or json")

	cmd.AddCommand(
		newImportCmd(a),
		newAddCmd(a),
		newThumbnailsCmd(a),
		newDirectoriesCmd(a),
		newExportCmd(a),
		newServeCmd(a),
	)

	return cmd
}

func (a *app) init() error {
	if a.logLevel != "" {
		level, err := logging.ParseLevel(a.logLevel)
		if err != nil {
			return err
		}
		logging.SetLevel(level)
	}

	config, err := startup.LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	a.config = config

	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"library": config.LibraryDir,
	}))
	return nil
}

// withSource adds the directory an import reads from to the volume labels.
func (a *app) withSource(source string) {
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"library": a.config.LibraryDir,
		"source":  source,
	}))
}

func (a *app) openCatalog(ctx context.Context) (*database.Database, error) {
	db, err := database.New(ctx, database.Options{
		Path:         a.config.DatabasePath,
		MaxOpenConns: a.config.DatabaseConnections(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return db, nil
}

// closeCatalog closes db, logging rather than returning the error so it can
// be deferred.
func closeCatalog(db *database.Database) {
	if err := db.Close(); err != nil {
		logging.Warn("Failed to close catalog: %v", err)
	}
}
