// Package preview holds recently viewed pictures decoded at full resolution.
//
// Decoding a camera JPEG takes far longer than serving one, so the Cache keeps
// the last few upright images in memory and evicts the least recently used
// one once it is full. Entries are keyed by picture id; a cached image whose
// catalog path has since changed is dropped with PathChanged.
package preview
