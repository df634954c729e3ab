// Package media reads picture metadata and decodes picture files.
//
// ReadMetadata extracts the capture time and orientation from a file's EXIF
// block. The capture time is taken from DateTimeOriginal, then
// DateTimeDigitized, then DateTime. Files without EXIF, or without a usable
// date, leave the capture time unset.
//
// Decode returns pixels as stored in the file. ApplyOrientation maps the
// eight EXIF orientations onto flips and rotations so callers can resize
// first and orient the smaller image afterwards. LoadUpright combines the
// two for full resolution display with a pixel budget.
package media
