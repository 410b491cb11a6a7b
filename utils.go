package aicreat

import (
	"fmt"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsValidPath validates that a path string meets the requirements for an upload path.
// It checks that the path:
//   - is not empty, ".", or "/"
//   - is relative (does not start with "/")
//   - does not end with "/"
//   - does not contain ".." (path traversal)
//   - does not contain "//" (empty segments)
//   - does not contain invalid characters: \ ? # ~
//   - is valid UTF-8
//   - does not contain "." segments (/., /./, or ending with /.)
//   - does not contain null bytes, control characters (< 0x20), DEL (0x7f), or whitespace
//
// Returns true if the path is valid, false otherwise.
func IsValidPath(p string) bool {
	if p == "" || p == "/" || p == "." {
		return false
	}

	if p[0] == '/' {
		return false
	}

	if strings.HasSuffix(p, "/") {
		return false
	}

	if strings.Contains(p, "..") {
		return false
	}

	if strings.Contains(p, "//") {
		return false
	}

	if strings.ContainsAny(p, `\?#~`) {
		return false
	}

	if !utf8.ValidString(p) {
		return false
	}

	if p == "/." || strings.Contains(p, "/./") || strings.HasSuffix(p, "/.") {
		return false
	}

	for _, r := range p {
		if r == 0 || r < 0x20 || r == 0x7f || unicode.IsSpace(r) {
			return false
		}
	}

	return true
}

// CleanFilename reduces a client-supplied filename to a safe single path segment.
// Directory components are dropped and whitespace or reserved characters are
// replaced with underscores. Returns ErrInvalidInput if nothing usable remains.
func CleanFilename(name string) (string, error) {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))

	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || unicode.IsSpace(r) || strings.ContainsRune(`?#~/`, r) {
			return '_'
		}
		return r
	}, strings.ToValidUTF8(name, "_"))

	for strings.Contains(cleaned, "..") {
		cleaned = strings.ReplaceAll(cleaned, "..", ".")
	}

	if !IsValidPath(cleaned) || strings.Trim(cleaned, "._") == "" {
		return "", fmt.Errorf("clean filename %q: %w", name, ErrInvalidInput)
	}
	return cleaned, nil
}
