package utils

import "strings"

// IsValidPhoneNumber accepts exactly 11 ASCII digits.
func IsValidPhoneNumber(phone string) bool {
	if len(phone) != 11 {
		return false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// TruncateWords keeps the first n space separated words and appends "..." when cut.
func TruncateWords(text string, n int) string {
	words := strings.Split(text, " ")
	if len(words) <= n {
		return text
	}
	return strings.Join(words[:n], " ") + "..."
}
