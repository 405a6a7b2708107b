package domain

import (
	"fmt"
	"strings"
)

// UnknownTitle is used when no configured selector yields a title.
const UnknownTitle = "Unknown_Title"

// SanitizeTitle replaces filesystem-unsafe characters per the configured
// replacement map, collapses whitespace runs to single spaces, and trims the
// ends. Applying it to an already-sanitized title returns the same string.
func SanitizeTitle(title string, replacements map[string]string) string {
	for unsafe, repl := range replacements {
		title = strings.ReplaceAll(title, unsafe, repl)
	}
	return strings.Join(strings.Fields(title), " ")
}

// BuildFilename formats the final filename from the cursor position and the
// sanitized title. The format string takes season, episode, title in that
// order, e.g. "S%02d-E%02d-%s.mp4".
func BuildFilename(format string, season, episode int, title string) string {
	return fmt.Sprintf(format, season, episode, title)
}
