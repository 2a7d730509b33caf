// +build windows

package filesystem

import (
	"path/filepath"
	"strings"
)

// directoryKey returns a stable identity for a directory (Windows), following
// symlinks so every link to the same directory shares one key.
func directoryKey(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", err
	}
	// NTFS paths are case-insensitive
	return strings.ToLower(resolved), nil
}
