// Package naming derives output paths and display titles from media
// filenames.
package naming

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const outputSuffix = "_described"

var titleCaser = cases.Title(language.Und, cases.NoLower)

// DefaultOutputPath returns the conventional export target for a video:
// the source path with "_described" appended to the stem.
func DefaultOutputPath(videoPath string) string {
	ext := filepath.Ext(videoPath)
	stem := strings.TrimSuffix(videoPath, ext)
	return stem + outputSuffix + ext
}

// DisplayTitle turns a media filename into a human-readable title: the
// extension is dropped and separators become spaces.
func DisplayTitle(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem = strings.NewReplacer("_", " ", ".", " ", "-", " ").Replace(stem)
	stem = strings.Join(strings.Fields(stem), " ")
	if stem == "" {
		return ""
	}
	return titleCaser.String(stem)
}
