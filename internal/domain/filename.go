package domain

import (
	"path/filepath"
	"regexp"
	"strings"
)

// maxFilenameBase caps the base name length (in runes) before the extension.
const maxFilenameBase = 55

// filenameDisallowed matches everything outside the allow-list: word
// characters, the Arabic block, dash and whitespace.
var filenameDisallowed = regexp.MustCompile(`[^\w\x{0600}-\x{06FF}\-\s]`)

// SanitizeFilename converts a media title into a safe, bounded filename.
// Disallowed characters become underscores, the base is capped at 55 runes,
// and degenerate results fall back to the provided generic name. The
// function is stable under re-application.
func SanitizeFilename(name, fallback string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	base = filenameDisallowed.ReplaceAllString(base, "_")
	if runes := []rune(base); len(runes) > maxFilenameBase {
		base = string(runes[:maxFilenameBase])
	}

	safe := strings.TrimSpace(base) + ext
	if len(safe) < 5 {
		return fallback
	}
	return safe
}
