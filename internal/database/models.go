package database

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no row matches the requested identifier.
	ErrNotFound = errors.New("picture not found")
	// ErrUnknownField is returned by UpdateField for fields that cannot be
	// updated individually.
	ErrUnknownField = errors.New("unknown picture field")
	// ErrInvalidValue is returned when a value does not fit the field.
	ErrInvalidValue = errors.New("invalid field value")
)

// Selection is the triage state of a picture.
type Selection string

const (
	SelectionIgnore   Selection = "Ignore"
	SelectionOrdinary Selection = "Ordinary"
	SelectionPick     Selection = "Pick"
)

// ParseSelection validates a selection name.
func ParseSelection(s string) (Selection, error) {
	switch sel := Selection(s); sel {
	case SelectionIgnore, SelectionOrdinary, SelectionPick:
		return sel, nil
	}
	return "", fmt.Errorf("selection %q: %w", s, ErrInvalidValue)
}

// Flag is an optional colour tag.
type Flag string

const (
	FlagRed    Flag = "Red"
	FlagGreen  Flag = "Green"
	FlagBlue   Flag = "Blue"
	FlagYellow Flag = "Yellow"
	FlagPurple Flag = "Purple"
)

// ParseFlag validates a flag colour.
func ParseFlag(s string) (Flag, error) {
	switch f := Flag(s); f {
	case FlagRed, FlagGreen, FlagBlue, FlagYellow, FlagPurple:
		return f, nil
	}
	return "", fmt.Errorf("flag %q: %w", s, ErrInvalidValue)
}

// MaxRating is the highest star rating a picture can carry.
const MaxRating = 5

// Field names a picture column that can be updated on its own.
type Field string

const (
	FieldSelection Field = "selection"
	FieldRating    Field = "rating"
	FieldFlag      Field = "flag"
	FieldHidden    Field = "hidden"
	FieldThumbnail Field = "thumbnail"
)

// ParseField validates a field name.
func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldSelection, FieldRating, FieldFlag, FieldHidden, FieldThumbnail:
		return f, nil
	}
	return "", fmt.Errorf("field %q: %w", s, ErrUnknownField)
}

// Picture is one catalogued photograph: a primary JPEG and an optional raw
// companion sharing its base name.
type Picture struct {
	ID           uuid.UUID  `json:"id"`
	Directory    string     `json:"directory"`
	Filename     string     `json:"filename"`
	RawExtension *string    `json:"rawExtension,omitempty"`
	CaptureTime  *time.Time `json:"captureTime,omitempty"`
	// ShortHash and FullHash are reserved for content-based dedup and are
	// never populated.
	ShortHash   []byte     `json:"-"`
	FullHash    []byte     `json:"-"`
	Selection   Selection  `json:"selection"`
	Hidden      bool       `json:"hidden"`
	Flag        *Flag      `json:"flag,omitempty"`
	Rating      *int       `json:"rating,omitempty"`
	Thumbnail   []byte     `json:"-"`
	DirectoryID *uuid.UUID `json:"directoryId,omitempty"`

	// HasThumbnail is filled by queries that leave the Thumbnail blob out.
	HasThumbnail bool `json:"hasThumbnail"`
}

// NewPicture returns a picture with a fresh identifier for the file at path.
func NewPicture(path string) Picture {
	return Picture{
		ID:        uuid.New(),
		Directory: filepath.Dir(path),
		Filename:  filepath.Base(path),
		Selection: SelectionOrdinary,
	}
}

// Path returns the full path of the primary file.
func (p *Picture) Path() string {
	return filepath.Join(p.Directory, p.Filename)
}

// CompanionPath returns the full path of the raw companion, or "" if the
// picture has none.
func (p *Picture) CompanionPath() string {
	if p.RawExtension == nil {
		return ""
	}
	return CompanionPathFor(p.Path(), *p.RawExtension)
}

// SetPath moves the picture to path, splitting it into directory and filename.
func (p *Picture) SetPath(path string) {
	p.Directory = filepath.Dir(path)
	p.Filename = filepath.Base(path)
}

// CompanionPathFor returns primary with its extension replaced by ext.
func CompanionPathFor(primary, ext string) string {
	base := primary[:len(primary)-len(filepath.Ext(primary))]
	return base + "." + ext
}

// Directory is a row of the directories table.
type Directory struct {
	ID       uuid.UUID  `json:"id"`
	Path     string     `json:"path"`
	ParentID *uuid.UUID `json:"parentId,omitempty"`
}
