// Package thumbnail keeps the thumbnails stored in the catalog in step with
// the pictures on disk.
//
// A Pipeline selects either the pictures that have no thumbnail yet or every
// picture, renders each into a small upright JPEG and writes it back through
// a single-field catalog update. Rendering runs on a bounded worker pool and
// pauses while the memory monitor reports pressure.
package thumbnail
