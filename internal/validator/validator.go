// Package validator provides input validation and sanitization functions
// for upload mapping configuration and uploaded file names.
package validator

import (
	"errors"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation errors
var (
	ErrInvalidMappingName = errors.New("invalid mapping name format")
	ErrInvalidServiceID   = errors.New("invalid service id format")
	ErrInvalidDestination = errors.New("invalid upload destination")
	ErrInputTooLong       = errors.New("input exceeds maximum length")
	ErrEmptyInput         = errors.New("input cannot be empty")
)

// Regex patterns for validation
var (
	// Mapping names: lowercase alphanumeric and underscores, e.g. "document_file"
	mappingNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_]{0,63}$`)

	// Service ids: dotted identifiers, e.g. "namer.uniqid"
	serviceIDRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]{0,127}$`)
)

// ValidateMappingName validates the name of an upload mapping.
// Returns nil if valid, or an appropriate error.
func ValidateMappingName(name string) error {
	if name == "" {
		return ErrEmptyInput
	}
	if len(name) > 64 {
		return ErrInputTooLong
	}
	if !mappingNameRegex.MatchString(name) {
		return ErrInvalidMappingName
	}
	return nil
}

// ValidateServiceID validates a namer or directory namer service id.
// An empty id is valid and means "not configured".
func ValidateServiceID(id string) error {
	if id == "" {
		return nil
	}
	if len(id) > 128 {
		return ErrInputTooLong
	}
	if !serviceIDRegex.MatchString(id) {
		return ErrInvalidServiceID
	}
	return nil
}

// ValidateDestination checks that an upload destination is a relative
// path that stays inside the storage root.
func ValidateDestination(dest string) error {
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return ErrEmptyInput
	}
	if strings.ContainsRune(dest, '\\') || strings.HasPrefix(dest, "/") {
		return ErrInvalidDestination
	}
	for _, segment := range strings.Split(path.Clean(dest), "/") {
		if segment == ".." {
			return ErrInvalidDestination
		}
	}
	return nil
}

// Pagination constants
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ValidatePagination validates and sanitizes pagination parameters.
// Returns sanitized limit and offset values.
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

// SanitizeFilename removes dangerous characters from filename.
// Prevents path traversal and removes control characters.
func SanitizeFilename(filename string) string {
	// Remove path separators to prevent path traversal
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")
	filename = strings.ReplaceAll(filename, "..", "_")

	// Remove null bytes
	filename = strings.ReplaceAll(filename, "\x00", "")

	filename = stripControl(filename)

	filename = strings.TrimSpace(filename)

	// Limit length to 255 characters (common filesystem limit)
	if utf8.RuneCountInString(filename) > 255 {
		runes := []rune(filename)
		filename = string(runes[:255])
	}

	// Fallback for empty filename
	if filename == "" {
		return "unnamed"
	}

	return filename
}

// SanitizeString removes potentially dangerous characters and enforces length limits.
// Removes control characters and trims whitespace.
func SanitizeString(input string, maxLength int) string {
	input = stripControl(input)

	input = strings.TrimSpace(input)

	// Enforce maximum length if specified
	if maxLength > 0 && utf8.RuneCountInString(input) > maxLength {
		runes := []rune(input)
		input = string(runes[:maxLength])
	}

	return input
}

// stripControl removes ASCII control characters (0-31 and 127)
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}
