package models

// FileEntry describes one entry handed to the walk callback
type FileEntry struct {
	Path      string // Absolute path
	Name      string // Base name
	IsDir     bool   // Entry is a directory (symlinks resolved)
	IsSymlink bool   // Entry itself is a symbolic link
}
