package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// SecureFilename strips characters that are unsafe in a stored filename and
// normalises separators. Spaces become underscores, slashes become dashes.
func SecureFilename(filename string) string {
	trimmed := strings.TrimSpace(filename)
	trimmed = strings.ReplaceAll(trimmed, " ", "_")
	trimmed = strings.ReplaceAll(trimmed, "/", "-")
	trimmed = strings.ReplaceAll(trimmed, "\\", "-")

	builder := strings.Builder{}
	builder.Grow(len(trimmed))
	for i := 0; i < len(trimmed); i++ {
		ch := trimmed[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
			builder.WriteByte(ch)
		case ch == '.', ch == '-', ch == '_', ch == '@', ch == '+':
			builder.WriteByte(ch)
		}
	}
	// A name reduced to dots would escape the user directory
	cleaned := strings.Trim(builder.String(), ".")
	return cleaned
}

// Extension returns the lower-cased extension without the leading dot, or an
// empty string when the filename has none.
func Extension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

// UserPath places a filename inside the owner's directory.
func UserPath(userID uint, filename string) string {
	return path.Join(fmt.Sprintf("%d", userID), filename)
}

// UniquePath returns a path under the user's directory that does not collide
// with an existing object. On collision a counter is appended to the base
// name: name.ext, name_1.ext, name_2.ext, ...
func UniquePath(ctx context.Context, store Storage, userID uint, filename string) (string, error) {
	safe := SecureFilename(filename)
	if safe == "" {
		return "", fmt.Errorf("filename %q reduces to nothing after sanitising", filename)
	}

	base := safe
	ext := ""
	if idx := strings.LastIndex(safe, "."); idx > 0 {
		base = safe[:idx]
		ext = safe[idx:]
	}

	candidate := safe
	for counter := 1; ; counter++ {
		p := UserPath(userID, candidate)
		exists, err := store.Exists(ctx, p)
		if err != nil {
			return "", fmt.Errorf("check path %s: %w", p, err)
		}
		if !exists {
			return p, nil
		}
		candidate = fmt.Sprintf("%s_%d%s", base, counter, ext)
	}
}
