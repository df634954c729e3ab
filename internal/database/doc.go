// Package database provides the SQLite picture catalog.
//
// It stores:
//   - Pictures, keyed by a UUID assigned at discovery and unique by
//     (directory, filename)
//   - Directories, each linked to its parent
//   - Run bookkeeping such as the time of the last import
//
// Pictures are stored with directory and filename split so that
// ListPicturesUnder can match a directory and everything below it.
// InsertPictures writes a whole import batch in one transaction, and
// UpdateField changes exactly one column of one picture.
//
// The database uses WAL mode. The connection pool must be at least as large
// as the busiest worker pool plus the readers running beside it; see
// workers.ConnectionBudget.
package database
