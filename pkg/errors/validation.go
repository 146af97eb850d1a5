package errors

import (
	"strings"
	"unicode"
)

// Canvas limits shared by the CLI and the HTTP API.
const (
	MaxCanvasSide = 8192
	MaxWordLength = 256
)

// ValidateCanvas checks that canvas dimensions are positive and within
// MaxCanvasSide on both axes.
func ValidateCanvas(width, height int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidCanvas, "canvas must be at least 1x1, got %dx%d", width, height)
	}
	if width > MaxCanvasSide || height > MaxCanvasSide {
		return New(ErrCodeInvalidCanvas, "canvas too large: %dx%d (max %d per side)", width, height, MaxCanvasSide)
	}
	return nil
}

// ValidateFrequency checks a single (word, count) pair.
//
// The validation rules are:
//   - No empty words
//   - No control characters
//   - Maximum length of MaxWordLength bytes
//   - Count must be at least 1
func ValidateFrequency(word string, count int) error {
	if word == "" {
		return New(ErrCodeInvalidInput, "word cannot be empty")
	}
	if len(word) > MaxWordLength {
		return New(ErrCodeInvalidInput, "word too long (max %d bytes): %.32q...", MaxWordLength, word)
	}
	for _, r := range word {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "word contains control characters: %q", word)
		}
	}
	if count <= 0 {
		return New(ErrCodeInvalidFrequency, "word %q has non-positive count %d", word, count)
	}
	return nil
}

// ValidatePath validates a user supplied file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// ValidateCacheKey rejects keys that could escape a file-backed cache
// namespace.
func ValidateCacheKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "cache key cannot be empty")
	}
	for _, pattern := range []string{"..", "\x00", "\\"} {
		if strings.Contains(key, pattern) {
			return New(ErrCodeInvalidInput, "cache key contains invalid characters: %q", pattern)
		}
	}
	return nil
}
