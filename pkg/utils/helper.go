package utils

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParseInt converts string to int with default value
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	if result < 1 {
		return defaultValue
	}

	return result
}

// MaskEmail keeps the first two characters of the local part: al••••••@x.com
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	local, domain := email[:at], email[at:]

	keep := 2
	if n := utf8.RuneCountInString(local); n < keep {
		keep = n
	}
	prefix := string([]rune(local)[:keep])

	return prefix + "••••••" + domain
}

// NormalizeEmail lowercases and trims an address before lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
