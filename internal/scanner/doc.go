// Package scanner discovers pictures on disk.
//
// A picture is a primary JPEG plus at most one raw companion with the same
// base name, for example IMG_0001.jpg and IMG_0001.CR2. The scanner walks a
// tree in lexical order so that such siblings arrive next to each other,
// groups them, and reads capture metadata for each group.
//
//	pictures, err := scanner.New().Scan(ctx, "/mnt/card/DCIM")
//
// Groups exposes the lazy sequence of groups for callers that do not need
// metadata.
package scanner
