package util

import (
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeFileChars = regexp.MustCompile(`[\\/:*?"<>|\s]+`)

// SanitizeFileName replaces characters that are unsafe in file names with
// underscores and trims the result.
func SanitizeFileName(name string) string {
	cleaned := unsafeFileChars.ReplaceAllString(strings.TrimSpace(name), "_")
	cleaned = strings.Trim(cleaned, "._")
	if cleaned == "" {
		return "untitled"
	}
	return cleaned
}

// ChangeFileExtension swaps the extension of path for newExt (with dot).
func ChangeFileExtension(path string, newExt string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + newExt
}
