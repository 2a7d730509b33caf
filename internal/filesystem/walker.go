package filesystem

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/davehng/ScanForDllInstances/internal/config"
	"github.com/davehng/ScanForDllInstances/pkg/models"
	"go.uber.org/zap"
)

// Walker walks a directory tree breadth-first and reports entries to a callback
type Walker struct {
	config  *config.Config
	logger  *zap.Logger
	exclude map[string]bool
}

// NewWalker creates a new filesystem walker
func NewWalker(cfg *config.Config, logger *zap.Logger) *Walker {
	// Build exclude map for fast lookup
	exclude := make(map[string]bool)
	for _, dir := range cfg.Exclude {
		exclude[dir] = true
	}

	return &Walker{
		config:  cfg,
		logger:  logger,
		exclude: exclude,
	}
}

// Walk visits the tree under root breadth-first. Each dequeued directory is
// reported to the callback first, then its files in listing order; its
// subdirectories are enqueued after all files have been seen, so an entire
// level is visited before the next level starts. Directories are identified
// by directoryKey so a symlink cycle never revisits a physical directory.
func (w *Walker) Walk(root string, callback func(*models.FileEntry) error) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve start path %s: %w", root, err)
	}

	rootKey, err := directoryKey(absRoot)
	if err != nil {
		return fmt.Errorf("failed to access start path %s: %w", absRoot, err)
	}

	visited := map[string]bool{rootKey: true}
	queue := []string{absRoot}

	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		subdirs, err := w.visitDirectory(dir, visited, callback)
		if err != nil {
			return err
		}

		queue = append(queue, subdirs...)
	}

	return nil
}

// visitDirectory reports one directory and its files, and returns the
// subdirectory paths accepted for the queue. Listing failures follow the
// skip_errors policy; callback errors always stop the walk.
func (w *Walker) visitDirectory(dir string, visited map[string]bool, callback func(*models.FileEntry) error) ([]string, error) {
	if err := callback(&models.FileEntry{Path: dir, Name: filepath.Base(dir), IsDir: true}); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if w.config.SkipErrors {
			w.logger.Warn("Skipping unreadable directory",
				zap.String("path", dir),
				zap.Error(err))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list directory %s: %w", dir, err)
	}

	var subdirs []*models.FileEntry
	for _, entry := range entries {
		name := entry.Name()
		if name == "." || name == ".." {
			continue
		}

		candidate := &models.FileEntry{
			Path:      filepath.Join(dir, name),
			Name:      name,
			IsDir:     entry.IsDir(),
			IsSymlink: entry.Type()&os.ModeSymlink != 0,
		}

		// Classify symlinks by their resolved target; broken links fall
		// through as files.
		if candidate.IsSymlink {
			if info, statErr := os.Stat(candidate.Path); statErr == nil {
				candidate.IsDir = info.IsDir()
			}
		}

		if candidate.IsDir {
			subdirs = append(subdirs, candidate)
			continue
		}

		if err := callback(candidate); err != nil {
			return nil, err
		}
	}

	return w.acceptSubdirs(subdirs, visited)
}

// acceptSubdirs filters found subdirectories against the exclude list and
// the visited set, marking accepted paths visited at enqueue time.
func (w *Walker) acceptSubdirs(subdirs []*models.FileEntry, visited map[string]bool) ([]string, error) {
	var accepted []string
	for _, sub := range subdirs {
		if w.exclude[sub.Name] {
			w.logger.Debug("Skipping excluded directory", zap.String("path", sub.Path))
			continue
		}

		key, err := directoryKey(sub.Path)
		if err != nil {
			if w.config.SkipErrors {
				w.logger.Warn("Skipping inaccessible directory",
					zap.String("path", sub.Path),
					zap.Error(err))
				continue
			}
			return nil, fmt.Errorf("failed to access directory %s: %w", sub.Path, err)
		}

		if visited[key] {
			w.logger.Debug("Skipping already visited directory", zap.String("path", sub.Path))
			continue
		}

		visited[key] = true
		accepted = append(accepted, sub.Path)
	}

	return accepted, nil
}
