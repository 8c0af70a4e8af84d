package pathutil

import (
	"path/filepath"
	"strings"
)

// NormalizePath converts Windows-style separators to the current platform's separator
// and cleans the resulting path.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}

	replaced := strings.ReplaceAll(p, "\\", "/")
	return filepath.Clean(filepath.FromSlash(replaced))
}

// LibraryRelative returns the path to target relative to the library directory.
// The returned path always uses forward slashes.
func LibraryRelative(libraryDir, target string) (string, error) {
	base := NormalizePath(libraryDir)
	cleanedTarget := NormalizePath(target)

	rel, err := filepath.Rel(base, cleanedTarget)
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(rel), nil
}

// Within resolves a slash separated relative path under root. It reports false
// when the path escapes root.
func Within(root, rel string) (string, bool) {
	if rel == "" || filepath.IsAbs(filepath.FromSlash(rel)) || strings.HasPrefix(rel, "/") {
		return "", false
	}

	base := NormalizePath(root)
	joined := filepath.Join(base, NormalizePath(rel))
	check, err := LibraryRelative(base, joined)
	if err != nil || check == ".." || strings.HasPrefix(check, "../") {
		return "", false
	}
	return joined, true
}
