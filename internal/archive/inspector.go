package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/davehng/ScanForDllInstances/internal/peinfo"
	"github.com/davehng/ScanForDllInstances/pkg/models"
	"go.uber.org/zap"
)

// textAttribute is bit 0 of an entry's internal file attributes, set by the
// producing tool when the entry is text rather than binary
const textAttribute = 0x0001

// Inspector looks inside zip archives for entries matching target names
type Inspector struct {
	reader peinfo.Reader
	logger *zap.Logger
}

// NewInspector creates a new archive inspector
func NewInspector(reader peinfo.Reader, logger *zap.Logger) *Inspector {
	return &Inspector{
		reader: reader,
		logger: logger,
	}
}

// Inspect enumerates the archive and emits one record per entry whose stored
// name ends with one of the targets. Directory entries and text-flagged
// entries are skipped. A matching entry is extracted to a temporary file so
// the version reader can parse it; the temporary file never survives the
// call. The first failing entry aborts the whole archive.
func (in *Inspector) Inspect(archivePath string, targets []string, emit func(models.VersionRecord)) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer r.Close()

	attrs, err := readInternalAttrs(archivePath)
	if err != nil {
		return fmt.Errorf("failed to read central directory of %s: %w", archivePath, err)
	}
	if len(attrs) != len(r.File) {
		return fmt.Errorf("central directory of %s lists %d entries, reader found %d",
			archivePath, len(attrs), len(r.File))
	}

	in.logger.Debug("Inspecting archive",
		zap.String("path", archivePath),
		zap.Int("entries", len(r.File)))

	for i, entry := range r.File {
		if entry.FileInfo().IsDir() || strings.HasSuffix(entry.Name, "/") {
			continue
		}
		if attrs[i]&textAttribute != 0 {
			in.logger.Debug("Skipping text-flagged entry", zap.String("entry", entry.Name))
			continue
		}
		if !matchesAny(entry.Name, targets) {
			continue
		}

		record, err := in.extractAndRead(archivePath, entry)
		if err != nil {
			return err
		}
		emit(record)
	}

	return nil
}

// matchesAny reports whether the stored entry name ends with any target. The
// check is a raw suffix comparison, so directory prefixes inside the archive
// never prevent a match.
func matchesAny(entryName string, targets []string) bool {
	for _, target := range targets {
		if strings.HasSuffix(entryName, target) {
			return true
		}
	}
	return false
}

// extractAndRead copies one entry into a temporary file, reads its version
// metadata, and builds the record under the archive-qualified display path.
func (in *Inspector) extractAndRead(archivePath string, entry *zip.File) (models.VersionRecord, error) {
	rc, err := entry.Open()
	if err != nil {
		return models.VersionRecord{}, fmt.Errorf("failed to open entry %s: %w", entry.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return models.VersionRecord{}, fmt.Errorf("failed to read entry %s: %w", entry.Name, err)
	}

	tmp, err := os.CreateTemp("", "scanfordll-*"+filepath.Ext(entry.Name))
	if err != nil {
		return models.VersionRecord{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return models.VersionRecord{}, fmt.Errorf("failed to write temp file %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return models.VersionRecord{}, fmt.Errorf("failed to write temp file %s: %w", tmpPath, err)
	}

	in.logger.Debug("Extracted entry",
		zap.String("entry", entry.Name),
		zap.String("temp", tmpPath))

	info, err := in.reader.ReadFile(tmpPath)
	if err != nil {
		return models.VersionRecord{}, fmt.Errorf("failed to read version info of %s: %w", entry.Name, err)
	}

	return models.VersionRecord{
		Path:           DisplayPath(archivePath, entry.Name),
		ProductVersion: info.ProductVersion,
		FileVersion:    info.FileVersion,
	}, nil
}

// DisplayPath joins an archive path and an entry name with the host
// separator, normalizing whichever separators the entry name was stored with.
func DisplayPath(archivePath, entryName string) string {
	sep := string(os.PathSeparator)
	name := strings.ReplaceAll(entryName, "/", sep)
	name = strings.ReplaceAll(name, "\\", sep)
	return archivePath + sep + name
}
