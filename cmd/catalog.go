package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"photo-catalog/internal/database"
	"photo-catalog/internal/importer"
	"photo-catalog/internal/memory"
	"photo-catalog/internal/thumbnail"
)

func newImportCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <source>",
		Short: "Copy new pictures from a source directory into the library",
		Long: `Scans <source> for pictures, copies every picture the catalog does not
already know into <library>/YYYY/YYYY-MM-DD/ by capture date, and records them in
the catalog. Existing files are never overwritten and sources are never changed.`,
		Example: `  # Show what would be copied
  photo-catalog import /media/card --dry-run

  # Import with JSON output
  photo-catalog import /media/card -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := newPrinter(cmd.OutOrStdout(), a.output)
			if err != nil {
				return err
			}
			source, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			db, err := a.openCatalog(cmd.Context())
			if err != nil {
				return err
			}
			defer closeCatalog(db)

			a.withSource(source)
			im := importer.New(db, a.config.LibraryDir, a.config.TransferWorkers)

			if dryRun {
				plan, err := im.Preview(cmd.Context(), source)
				if err != nil {
					return err
				}
				return out.plan(plan)
			}

			report, err := im.Import(cmd.Context(), source)
			if err != nil {
				return err
			}
			return finish(out, report)
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print the import plan without copying anything")

	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <directory>",
		Short: "Catalog the pictures in a directory without moving them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := newPrinter(cmd.OutOrStdout(), a.output)
			if err != nil {
				return err
			}
			dir, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			db, err := a.openCatalog(cmd.Context())
			if err != nil {
				return err
			}
			defer closeCatalog(db)

			a.withSource(dir)
			report, err := importer.New(db, a.config.LibraryDir, a.config.TransferWorkers).
				AddDirectory(cmd.Context(), dir)
			if err != nil {
				return err
			}
			return finish(out, report)
		},
	}
}

func newThumbnailsCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "thumbnails",
		Short: "Generate missing thumbnails, or regenerate all of them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := newPrinter(cmd.OutOrStdout(), a.output)
			if err != nil {
				return err
			}

			db, err := a.openCatalog(cmd.Context())
			if err != nil {
				return err
			}
			defer closeCatalog(db)

			monitor := memory.NewMonitor(memory.DefaultConfig())
			monitor.Start()
			defer monitor.Stop()

			mode := thumbnail.ModeMissing
			if all {
				mode = thumbnail.ModeAll
			}
			pipeline := thumbnail.New(db, thumbnail.Options{
				Concurrency: a.config.ThumbnailWorkers,
				Size:        a.config.ThumbnailSize,
				Monitor:     monitor,
			})

			res, err := pipeline.Sync(cmd.Context(), mode)
			if printErr := out.thumbnails(res); printErr != nil && err == nil {
				err = printErr
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Regenerate every thumbnail, not only missing ones")

	return cmd
}

func newDirectoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "directories",
		Short: "List the directories that hold catalogued pictures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := newPrinter(cmd.OutOrStdout(), a.output)
			if err != nil {
				return err
			}

			db, err := a.openCatalog(cmd.Context())
			if err != nil {
				return err
			}
			defer closeCatalog(db)

			dirs, err := db.ListDistinctDirectories(cmd.Context())
			if err != nil {
				return err
			}
			return out.directories(dirs)
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var selection string

	cmd := &cobra.Command{
		Use:   "export <directory>",
		Short: "Copy pictures with a given selection into a directory",
		Example: `  # Copy every pick into ./picks
  photo-catalog export ./picks --selection Pick`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := newPrinter(cmd.OutOrStdout(), a.output)
			if err != nil {
				return err
			}
			sel, err := database.ParseSelection(selection)
			if err != nil {
				return err
			}
			target, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			db, err := a.openCatalog(cmd.Context())
			if err != nil {
				return err
			}
			defer closeCatalog(db)

			report, err := importer.Export(cmd.Context(), db, sel, target, a.config.TransferWorkers)
			if err != nil {
				return err
			}
			return finish(out, report)
		},
	}

	cmd.Flags().StringVarP(&selection, "selection", "s", string(database.SelectionPick), "Selection to export (Pick, Ordinary, Ignore)")

	return cmd
}

// finish prints report, then fails the command if any transfer failed.
func finish(out *printer, report importer.Report) error {
	if err := out.report(report); err != nil {
		return err
	}
	return failedTransfers(report)
}

// failedTransfers turns per-entry failures into a non-zero exit once the
// report has been printed.
func failedTransfers(report importer.Report) error {
	if report.Failed == 0 {
		return nil
	}
	return fmt.Errorf("%d transfers failed: %w", report.Failed, report.Err)
}
