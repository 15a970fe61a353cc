package server

import (
	"strings"
	"unicode/utf8"
)

// IsValidName reports whether name can be shown to other players: it must
// not be blank and must fit in maxLen characters.
func IsValidName(name string, maxLen int) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	return utf8.RuneCountInString(name) <= maxLen
}
