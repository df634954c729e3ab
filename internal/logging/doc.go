// Package logging provides the leveled logger used across the photo catalog.
//
// Messages are written through the standard library logger with a bracketed
// level prefix:
//
//	[INFO] Imported 42 pictures into /srv/photos
//	[WARN] Destination exists, skipping copy: /srv/photos/2024/2024-03-01/a.jpg
//
// The initial level comes from the environment. DEBUG=1 forces debug output,
// otherwise LOG_LEVEL selects one of debug, info, warn or error (default info).
// Command-line tools may replace the level at any time with SetLevel.
package logging
