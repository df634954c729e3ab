package mediatypes

import (
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		want FileType
	}{
		{name: "lower jpg", ext: ".jpg", want: FileTypePrimary},
		{name: "upper JPG", ext: ".JPG", want: FileTypePrimary},
		{name: "mixed case jpg", ext: ".Jpg", want: FileTypeOther},
		{name: "jpeg spelling", ext: ".jpeg", want: FileTypeOther},
		{name: "lower raw", ext: ".raw", want: FileTypeCompanion},
		{name: "sony ARW", ext: ".ARW", want: FileTypeCompanion},
		{name: "canon cr2", ext: ".cr2", want: FileTypeCompanion},
		{name: "nikon NEF", ext: ".NEF", want: FileTypeCompanion},
		{name: "fuji raf", ext: ".raf", want: FileTypeCompanion},
		{name: "adobe DNG", ext: ".DNG", want: FileTypeCompanion},
		{name: "mixed case Cr2", ext: ".Cr2", want: FileTypeOther},
		{name: "png", ext: ".png", want: FileTypeOther},
		{name: "sidecar", ext: ".xmp", want: FileTypeOther},
		{name: "no extension", ext: "", want: FileTypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.ext); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.ext, got, tt.want)
			}
		})
	}
}

func TestCompanionExtensionsHaveNoPrimaryOverlap(t *testing.T) {
	for ext := range CompanionExtensions {
		if PrimaryExtensions[ext] {
			t.Errorf("extension %q is both primary and companion", ext)
		}
	}
}
