package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims s and collapses every run of whitespace into a
// single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else if unicode.IsPrint(r) {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// NormalizeRoomID trims a room id. Ids are compared case-sensitively.
func NormalizeRoomID(roomID string) string {
	return strings.TrimSpace(roomID)
}

// NormalizeRoomNumber drops every whitespace rune, so " B 204" and "B204"
// name the same unit. Case is kept.
func NormalizeRoomNumber(number string) string {
	return strings.Join(strings.Fields(number), "")
}

func NormalizeReason(reason string) string {
	return TrimAndNormalize(reason)
}
