// +build !windows

package filesystem

import (
	"fmt"
	"os"
	"syscall"
)

// directoryKey returns a stable identity for a directory (Unix), following
// symlinks so every link to the same directory shares one key.
func directoryKey(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	stat := info.Sys().(*syscall.Stat_t)
	// Device and inode identify the directory across all of its names
	return fmt.Sprintf("%d:%d", stat.Dev, stat.Ino), nil
}
