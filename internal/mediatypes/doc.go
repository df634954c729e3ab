// Package mediatypes classifies files by extension for the catalog.
//
// A picture is anchored by a primary JPEG. Raw files that share its base name
// are recorded as companions. Matching is case-sensitive: "a.jpg" and "a.JPG"
// are primaries, "a.Jpg" and "a.png" are ignored.
//
//	switch mediatypes.Classify(filepath.Ext(name)) {
//	case mediatypes.FileTypePrimary:
//	case mediatypes.FileTypeCompanion:
//	}
//
// The package has no dependencies beyond the standard library so it can be
// imported anywhere without creating cycles.
package mediatypes
