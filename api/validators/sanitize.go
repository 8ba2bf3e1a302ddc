package validators

import "strings"

// SanitizeString normalizes free-text movement fields: surrounding whitespace
// is dropped and the result is clamped to maxLen bytes. A non-positive maxLen
// disables the clamp.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
