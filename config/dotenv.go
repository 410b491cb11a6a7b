package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
)

// DefaultOverrideFile is the conventional override file in the working directory.
const DefaultOverrideFile = ".env"

// LoadOverrideFile copies KEY=VALUE lines from path into the process
// environment. Keys that are already set are left untouched, so explicit
// environment variables always win over the file.
//
// Values are taken literally: "$" is never expanded, and one pair of
// matching surrounding quotes is removed (see unquote). A missing file is not an error.
// Blank lines, comments, and lines without a key are skipped.
func LoadOverrideFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("no override file", "file", path)
			return nil
		}
		return fmt.Errorf("read override file: %w", err)
	}

	applied := 0
	for n, line := range strings.Split(string(data), "\n") {
		key, value, ok := parseOverrideLine(line)
		if !ok {
			if trimmed := strings.TrimSpace(line); trimmed != "" && !strings.HasPrefix(trimmed, "#") {
				slog.Debug("skipping malformed override line", "file", path, "line", n+1)
			}
			continue
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("set %s from override file: %w", key, err)
		}
		applied++
	}

	slog.Debug("applied override file", "file", path, "keys", applied)
	return nil
}

// parseOverrideLine splits one override line into key and value.
// ok is false for blank lines, comments, and lines without "=" or a key.
func parseOverrideLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")

	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}

	return key, unquote(strings.TrimSpace(value)), true
}

// unquote removes one pair of matching surrounding quotes. Inside double
// quotes a backslash escapes the next character, matching what
// godotenv.Write produces; "$" is still never expanded.
func unquote(value string) string {
	if len(value) < 2 {
		return value
	}
	first, last := value[0], value[len(value)-1]
	switch {
	case first != last:
		return value
	case first == '\'':
		return value[1 : len(value)-1]
	case first == '"':
		return unescape(value[1 : len(value)-1])
	}
	return value
}

func unescape(value string) string {
	if !strings.Contains(value, `\`) {
		return value
	}
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c != '\\' || i == len(value)-1 {
			b.WriteByte(c)
			continue
		}
		i++
		switch value[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(value[i])
		}
	}
	return b.String()
}
