package errors

import (
	"math"
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// maxTileIDLength bounds tile IDs so they stay usable as cache-key and SVG id parts.
const maxTileIDLength = 128

var tileIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

// ValidateTileID checks that id is non-empty, short, and made of
// letters, digits and ._:- only.
func ValidateTileID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidBoard, "tile id cannot be empty")
	}
	if len(id) > maxTileIDLength {
		return New(ErrCodeInvalidBoard, "tile id too long (max %d characters)", maxTileIDLength)
	}
	if !tileIDRegex.MatchString(id) {
		return New(ErrCodeInvalidBoard, "invalid tile id: %q", id)
	}
	return nil
}

// ValidateDimension checks that v is a positive finite extent. name is used
// in the message.
func ValidateDimension(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return New(ErrCodeInvalidOptions, "%s must be a positive number, got %v", name, v)
	}
	return nil
}

// ValidateSpacing checks that v is a non-negative finite gap.
func ValidateSpacing(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return New(ErrCodeInvalidOptions, "%s must be zero or positive, got %v", name, v)
	}
	return nil
}

// ValidatePath validates a relative file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths
//   - No path traversal sequences (..)
//   - No backslashes
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}
	return nil
}

// ValidateURL checks that rawURL parses and uses http or https with a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL has no host")
	}
	return nil
}
