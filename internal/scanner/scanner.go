package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"path/filepath"
	"strings"

	"photo-catalog/internal/database"
	"photo-catalog/internal/logging"
	"photo-catalog/internal/media"
	"photo-catalog/internal/mediatypes"
	"photo-catalog/internal/metrics"
)

// Group is one primary image and, optionally, the extension of its raw
// companion.
type Group struct {
	Primary string
	// Companion is the raw extension without the dot, or "".
	Companion string
}

// WalkError reports a path the scanner could not read.
type WalkError struct {
	Path string
	Err  error
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Path, e.Err)
}

func (e *WalkError) Unwrap() error {
	return e.Err
}

// MetadataReader extracts capture metadata from a primary image.
type MetadataReader func(path string) (media.Metadata, error)

// Scanner walks directory trees and groups primary images with their raw
// companions.
type Scanner struct {
	readMetadata MetadataReader
}

// New creates a Scanner that reads EXIF metadata with media.ReadMetadata.
func New() *Scanner {
	return &Scanner{readMetadata: media.ReadMetadata}
}

// NewWithReader creates a Scanner with a custom metadata reader.
func NewWithReader(reader MetadataReader) *Scanner {
	return &Scanner{readMetadata: reader}
}

// pending is the group being assembled from consecutive entries.
type pending struct {
	key       string
	primary   string
	companion string
}

// errStop ends the walk early when the consumer stops iterating.
var errStop = errors.New("stop")

// Groups walks root in lexical order and yields one Group per base name that
// has a primary image. Entries whose names start with a dot are skipped, as
// are files that are neither primary nor companion.
//
// Grouping depends on lexical order: files sharing a base name are adjacent.
// A raw file seen before its JPEG starts the group and the JPEG becomes the
// primary when it arrives. Members beyond one primary and one companion are
// rejected with a warning. Groups that never receive a primary are dropped.
//
// Read errors are yielded as *WalkError. If the consumer keeps iterating
// the unreadable directory is skipped.
func (s *Scanner) Groups(root string) iter.Seq2[Group, error] {
	return func(yield func(Group, error) bool) {
		var cur *pending

		flush := func() bool {
			if cur == nil {
				return true
			}
			p := cur
			cur = nil
			if p.primary == "" {
				logging.Debug("Dropping raw-only file %s.%s", p.key, p.companion)
				metrics.ScannerGroupsTotal.WithLabelValues("raw_only").Inc()
				return true
			}
			metrics.ScannerGroupsTotal.WithLabelValues("picture").Inc()
			return yield(Group{Primary: p.primary, Companion: p.companion}, nil)
		}

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if !yield(Group{}, &WalkError{Path: path, Err: err}) {
					return errStop
				}
				if path == root {
					return errStop
				}
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}

			if path != root && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}

			ext := filepath.Ext(path)
			class := mediatypes.Classify(ext)
			if class == mediatypes.FileTypeOther {
				return nil
			}
			key := strings.TrimSuffix(path, ext)

			if cur != nil && cur.key == key {
				attach(cur, path, ext, class)
				return nil
			}

			if !flush() {
				return errStop
			}
			cur = &pending{key: key}
			attach(cur, path, ext, class)
			return nil
		})

		if errors.Is(err, errStop) {
			return
		}
		if err != nil {
			if !yield(Group{}, &WalkError{Path: root, Err: err}) {
				return
			}
		}
		flush()
	}
}

// attach adds one file to the group being assembled.
func attach(p *pending, path, ext string, class mediatypes.FileType) {
	switch class {
	case mediatypes.FileTypePrimary:
		if p.primary == "" {
			p.primary = path
			return
		}
	case mediatypes.FileTypeCompanion:
		if p.companion == "" {
			p.companion = strings.TrimPrefix(ext, ".")
			return
		}
	}

	logging.Warn("Ignoring %s: %s already has a primary image and a companion", path, p.key)
	metrics.ScannerGroupsTotal.WithLabelValues("rejected_member").Inc()
}

// Scan walks root and returns one catalog picture per group, in traversal
// order. Each picture gets a fresh identifier and its capture time from the
// metadata reader; pictures whose metadata cannot be read are kept with no
// capture time. Unreadable subdirectories are logged and skipped; failure
// to read root itself is returned.
func (s *Scanner) Scan(ctx context.Context, root string) ([]database.Picture, error) {
	var groups []Group
	for g, err := range s.Groups(root) {
		if err != nil {
			var we *WalkError
			if errors.As(err, &we) && we.Path != root {
				logging.Warn("Skipping unreadable path: %v", err)
				continue
			}
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}

	logging.Info("Scanned %s: %d pictures", root, len(groups))

	pictures := make([]database.Picture, 0, len(groups))
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p := database.NewPicture(g.Primary)
		if g.Companion != "" {
			companion := g.Companion
			p.RawExtension = &companion
		}

		md, err := s.readMetadata(g.Primary)
		if err != nil {
			logging.Warn("Failed to read metadata for %s: %v", g.Primary, err)
			metrics.ScannerMetadataErrors.Inc()
		} else {
			p.CaptureTime = md.CaptureTime
		}

		pictures = append(pictures, p)
	}

	return pictures, nil
}
