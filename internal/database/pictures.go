package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"photo-catalog/internal/metrics"
)

// listColumns leaves the thumbnail blob out and reports its presence instead.
const listColumns = `id, directory, filename, raw_extension, capture_time, rating, flag,
	hidden, selection, directory_id, thumbnail IS NOT NULL`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanPicture reads the listColumns projection, optionally followed by the
// thumbnail blob when withThumbnail is set.
func scanPicture(row rowScanner, withThumbnail bool) (Picture, error) {
	var (
		p           Picture
		rawExt      sql.NullString
		captureTime sql.NullString
		rating      sql.NullInt64
		flag        sql.NullString
		directoryID uuid.NullUUID
		selection   string
	)

	dest := []any{
		&p.ID, &p.Directory, &p.Filename, &rawExt, &captureTime, &rating, &flag,
		&p.Hidden, &selection, &directoryID, &p.HasThumbnail,
	}
	if withThumbnail {
		dest = append(dest, &p.Thumbnail)
	}
	if err := row.Scan(dest...); err != nil {
		return p, err
	}

	p.Selection = Selection(selection)
	if rawExt.Valid {
		p.RawExtension = &rawExt.String
	}
	if captureTime.Valid {
		t, err := time.ParseInLocation(captureTimeLayout, captureTime.String, time.Local)
		if err != nil {
			return p, fmt.Errorf("picture %s: capture time %q: %w", p.ID, captureTime.String, err)
		}
		p.CaptureTime = &t
	}
	if rating.Valid {
		r := int(rating.Int64)
		p.Rating = &r
	}
	if flag.Valid {
		f := Flag(flag.String)
		p.Flag = &f
	}
	if directoryID.Valid {
		id := directoryID.UUID
		p.DirectoryID = &id
	}
	return p, nil
}

func (d *Database) queryPictures(ctx context.Context, query string, args ...any) ([]Picture, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var pictures []Picture
	for rows.Next() {
		p, err := scanPicture(rows, false)
		if err != nil {
			return nil, err
		}
		pictures = append(pictures, p)
	}
	return pictures, rows.Err()
}

// escapeLike escapes LIKE wildcards in s using backslash.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// ListPicturesUnder returns every picture whose directory is prefix or any
// directory below it.
func (d *Database) ListPicturesUnder(ctx context.Context, prefix string) (pictures []Picture, err error) {
	start := time.Now()
	defer func() { recordQuery("list_pictures_under", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	prefix = filepath.Clean(prefix)
	pattern := escapeLike(strings.TrimSuffix(prefix, "/")) + "/%"

	return d.queryPictures(ctx, `
		SELECT `+listColumns+`
		FROM pictures
		WHERE directory = ? OR directory LIKE ? ESCAPE '\'
		ORDER BY directory, filename
	`, prefix, pattern)
}

// ListDirectoryPictures returns the pictures stored directly in dir, newest
// first. Pictures without a capture time sort last.
func (d *Database) ListDirectoryPictures(ctx context.Context, dir string) (pictures []Picture, err error) {
	start := time.Now()
	defer func() { recordQuery("list_directory_pictures", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.queryPictures(ctx, `
		SELECT `+listColumns+`
		FROM pictures
		WHERE directory = ?
		ORDER BY capture_time DESC, filename DESC
	`, filepath.Clean(dir))
}

// ListPicturesForThumbnails returns the pictures without a thumbnail, or all
// pictures when all is set.
func (d *Database) ListPicturesForThumbnails(ctx context.Context, all bool) (pictures []Picture, err error) {
	start := time.Now()
	defer func() { recordQuery("list_thumbnail_candidates", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	query := `SELECT ` + listColumns + ` FROM pictures`
	if !all {
		query += ` WHERE thumbnail IS NULL`
	}
	query += ` ORDER BY directory, filename`

	return d.queryPictures(ctx, query)
}

// ListPicturesBySelection returns the pictures in the given selection state.
func (d *Database) ListPicturesBySelection(ctx context.Context, selection Selection) (pictures []Picture, err error) {
	start := time.Now()
	defer func() { recordQuery("list_by_selection", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.queryPictures(ctx, `
		SELECT `+listColumns+`
		FROM pictures
		WHERE selection = ?
		ORDER BY directory, filename
	`, string(selection))
}

// GetPicture returns one picture including its thumbnail blob.
func (d *Database) GetPicture(ctx context.Context, id uuid.UUID) (p Picture, err error) {
	start := time.Now()
	defer func() { recordQuery("get_picture", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(ctx, `
		SELECT `+listColumns+`, thumbnail
		FROM pictures
		WHERE id = ?
	`, id)

	p, err = scanPicture(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("picture %s: %w", id, ErrNotFound)
	}
	return p, err
}

// InsertPictures inserts pictures in a single transaction. Identifiers must
// be assigned by the caller. Either every picture is inserted or none is.
func (d *Database) InsertPictures(ctx context.Context, pictures []Picture) (err error) {
	if len(pictures) == 0 {
		return nil
	}

	start := time.Now()
	defer func() { recordQuery("insert_pictures", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	err = d.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO pictures (id, directory, filename, raw_extension, short_hash, full_hash,
				capture_time, rating, flag, hidden, selection, thumbnail, directory_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		for i := range pictures {
			p := &pictures[i]
			if p.ID == uuid.Nil {
				return fmt.Errorf("insert %s: picture has no identifier", p.Path())
			}
			selection := p.Selection
			if selection == "" {
				selection = SelectionOrdinary
			}
			if _, err := stmt.ExecContext(ctx,
				p.ID,
				p.Directory,
				p.Filename,
				nullString(p.RawExtension),
				nullBytes(p.ShortHash),
				nullBytes(p.FullHash),
				formatCaptureTime(p.CaptureTime),
				nullInt(p.Rating),
				nullFlag(p.Flag),
				p.Hidden,
				string(selection),
				nullBytes(p.Thumbnail),
				nullUUID(p.DirectoryID),
			); err != nil {
				return fmt.Errorf("insert %s: %w", p.Path(), err)
			}
		}
		return nil
	})
	if err == nil {
		metrics.DBRowsAffected.WithLabelValues("insert_pictures").Observe(float64(len(pictures)))
	}
	return err
}

// UpdateField sets one field of one picture and leaves every other column
// untouched. The value must match the field:
//
//	selection  Selection or string
//	rating     int, *int or nil (0-5)
//	flag       Flag, *Flag, string or nil
//	hidden     bool
//	thumbnail  []byte or nil
func (d *Database) UpdateField(ctx context.Context, id uuid.UUID, field Field, value any) (err error) {
	start := time.Now()
	defer func() { recordQuery("update_field", start, err) }()

	column, arg, err := fieldArgument(field, value)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// column comes from a fixed set in fieldArgument.
	result, err := d.db.ExecContext(ctx, `UPDATE pictures SET `+column+` = ? WHERE id = ?`, arg, id)
	if err != nil {
		return fmt.Errorf("update %s of %s: %w", field, id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("update %s of %s: %w", field, id, ErrNotFound)
	}
	return nil
}

// fieldArgument validates value for field and returns the column name and
// the driver value to store.
func fieldArgument(field Field, value any) (string, any, error) {
	invalid := func() error {
		return fmt.Errorf("%s value %v (%T): %w", field, value, value, ErrInvalidValue)
	}

	switch field {
	case FieldSelection:
		var s string
		switch v := value.(type) {
		case Selection:
			s = string(v)
		case string:
			s = v
		default:
			return "", nil, invalid()
		}
		sel, err := ParseSelection(s)
		if err != nil {
			return "", nil, err
		}
		return "selection", string(sel), nil

	case FieldRating:
		var r *int
		switch v := value.(type) {
		case nil:
		case int:
			r = &v
		case *int:
			r = v
		default:
			return "", nil, invalid()
		}
		if r == nil {
			return "rating", nil, nil
		}
		if *r < 0 || *r > MaxRating {
			return "", nil, invalid()
		}
		return "rating", *r, nil

	case FieldFlag:
		var s *string
		switch v := value.(type) {
		case nil:
		case Flag:
			str := string(v)
			s = &str
		case *Flag:
			if v != nil {
				str := string(*v)
				s = &str
			}
		case string:
			s = &v
		default:
			return "", nil, invalid()
		}
		if s == nil {
			return "flag", nil, nil
		}
		f, err := ParseFlag(*s)
		if err != nil {
			return "", nil, err
		}
		return "flag", string(f), nil

	case FieldHidden:
		b, ok := value.(bool)
		if !ok {
			return "", nil, invalid()
		}
		return "hidden", b, nil

	case FieldThumbnail:
		switch v := value.(type) {
		case nil:
			return "thumbnail", nil, nil
		case []byte:
			return "thumbnail", nullBytes(v), nil
		default:
			return "", nil, invalid()
		}
	}

	return "", nil, fmt.Errorf("field %q: %w", field, ErrUnknownField)
}

func formatCaptureTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(captureTimeLayout)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFlag(f *Flag) sql.NullString {
	if f == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*f), Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

// nullBytes maps a nil slice to SQL NULL rather than an empty blob.
func nullBytes(b []byte) any {
	if b == nil {
		return nil
	}
	return b
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
