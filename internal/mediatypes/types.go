package mediatypes

// FileType classifies a file found while scanning a directory.
type FileType string

const (
	// FileTypePrimary is a displayable image that anchors a picture record.
	FileTypePrimary FileType = "primary"
	// FileTypeCompanion is a raw sibling of a primary image.
	FileTypeCompanion FileType = "companion"
	// FileTypeOther is anything the catalog ignores.
	FileTypeOther FileType = "other"
)

// PrimaryExtensions lists the extensions accepted as primary images.
// Matching is case-sensitive; only these exact spellings are accepted.
var PrimaryExtensions = map[string]bool{
	".jpg": true,
	".JPG": true,
}

// CompanionExtensions lists the raw formats recorded as companions.
var CompanionExtensions = map[string]bool{
	".raw": true,
	".RAW": true,
	".ARW": true,
	".arw": true,
	".raf": true,
	".RAF": true,
	".CR2": true,
	".cr2": true,
	".NEF": true,
	".nef": true,
	".DNG": true,
	".dng": true,
}

// Classify returns the FileType for an extension as returned by filepath.Ext,
// including the leading dot.
func Classify(ext string) FileType {
	switch {
	case PrimaryExtensions[ext]:
		return FileTypePrimary
	case CompanionExtensions[ext]:
		return FileTypeCompanion
	default:
		return FileTypeOther
	}
}
