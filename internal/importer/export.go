package importer

import (
	"context"
	"fmt"
	"path/filepath"

	"photo-catalog/internal/database"
	"photo-catalog/internal/logging"
)

// SelectionLister lists catalogued pictures by selection state.
type SelectionLister interface {
	ListPicturesBySelection(ctx context.Context, selection database.Selection) ([]database.Picture, error)
}

// Export copies every picture with the given selection, companion included,
// into target. Existing files in target are never overwritten. Two pictures
// sharing a filename are exported once.
func Export(ctx context.Context, catalog SelectionLister, selection database.Selection, target string, concurrency int) (Report, error) {
	pictures, err := catalog.ListPicturesBySelection(ctx, selection)
	if err != nil {
		return Report{}, fmt.Errorf("list %s pictures: %w", selection, err)
	}
	logging.Info("Exporting %d %s pictures to %s", len(pictures), selection, target)

	plan := BuildPlan(ExistenceIndex{}, pictures, func(p database.Picture) (string, error) {
		return filepath.Join(target, p.Filename), nil
	})

	// No catalog writes happen during an export.
	executor := NewExecutor(nil, concurrency)
	report := summarize(executor.Transfer(ctx, plan.Entries))
	report.Excluded = plan.Excluded

	logging.Info("Export finished: %d copied, %d conflicts, %d failed",
		report.Copied, report.Conflicts, report.Failed)
	return report, nil
}
