package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// DocumentExtensions lists the source file extensions the importer understands.
var DocumentExtensions = map[string]bool{
	".json": true,
	".toml": true,
}

// ValidateDocumentPath validates the path of a rulebook source file.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
//   - Extension must be one of DocumentExtensions
func ValidateDocumentPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "document path cannot be empty")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "document path contains invalid characters")
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !DocumentExtensions[ext] {
		return New(ErrCodeInvalidFormat, "unsupported document extension %q (must be .json or .toml)", ext)
	}

	return nil
}

// ValidateRedisURL validates a redis connection URL.
// It ensures the URL has a redis scheme (redis, rediss or unix).
func ValidateRedisURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidConfig, "redis URL cannot be empty")
	}

	for _, scheme := range []string{"redis://", "rediss://", "unix://"} {
		if strings.HasPrefix(rawURL, scheme) {
			return nil
		}
	}
	return New(ErrCodeInvalidConfig, "redis URL must use redis, rediss or unix scheme")
}

// ValidateListenAddr validates a host:port listen address for the preview server.
func ValidateListenAddr(addr string) error {
	if addr == "" {
		return New(ErrCodeInvalidConfig, "listen address cannot be empty")
	}
	i := strings.LastIndex(addr, ":")
	if i < 0 || i == len(addr)-1 {
		return New(ErrCodeInvalidConfig, "listen address %q must include a port", addr)
	}
	for _, r := range addr[i+1:] {
		if !unicode.IsDigit(r) {
			return New(ErrCodeInvalidConfig, "listen address %q has a non-numeric port", addr)
		}
	}
	return nil
}
