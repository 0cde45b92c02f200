package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateID returns a new unique identifier string
func GenerateID() string {
	return uuid.New().String()
}

// ShortID returns the first n hex characters of a random UUID
func ShortID(n int) string {
	hex := strings.ReplaceAll(GenerateID(), "-", "")
	if n <= 0 || n > len(hex) {
		return hex
	}
	return hex[:n]
}
