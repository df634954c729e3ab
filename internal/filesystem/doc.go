/*
Package filesystem wraps the filesystem operations used by the catalog with
retry logic for NFS stale file handle errors.

Libraries and import sources often live on network mounts. When an NFS
server reshuffles exports, open and stat calls can fail with ESTALE even
though the file is intact. StatWithRetry, OpenWithRetry and
CreateExclusiveWithRetry retry those failures with exponential backoff and
fail immediately on any other error.

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())

CopyFileExclusive builds on these to copy a picture into the library with
O_EXCL semantics, so an existing destination is never overwritten.

Retry metrics are reported through an Observer registered with SetObserver.
Paths are labeled by volume using a VolumeResolver, typically configured
with the "library" and "source" roots.
*/
package filesystem
