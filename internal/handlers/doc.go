// Package handlers provides HTTP request handlers for the photo catalog API.
//
// It includes handlers for:
//   - Directory and picture listing
//   - Single-field picture updates (selection, rating, flag, hidden)
//   - Stored thumbnails and full-resolution previews
//   - Import, catalog-in-place and thumbnail synchronization triggers
//   - Health checks and version information
package handlers
