package peinfo

import (
	"fmt"

	peparser "github.com/saferwall/pe"
	"go.uber.org/zap"
)

// Info holds the version strings embedded in a binary's version resource
type Info struct {
	ProductVersion string
	FileVersion    string
}

// Reader extracts version metadata from a binary on disk
type Reader interface {
	// ReadFile parses the file at path and returns its version strings.
	// A parseable binary without a version resource yields empty strings
	// and no error; a file that cannot be parsed yields an error.
	ReadFile(path string) (Info, error)
}

// FileReader reads version resources from PE files
type FileReader struct {
	logger *zap.Logger
}

// NewFileReader creates a new PE version reader
func NewFileReader(logger *zap.Logger) *FileReader {
	return &FileReader{
		logger: logger,
	}
}

// ReadFile parses the PE file at path and returns the ProductVersion and
// FileVersion entries of its VS_VERSIONINFO string table.
func (r *FileReader) ReadFile(path string) (Info, error) {
	f, err := peparser.New(path, &peparser.Options{})
	if err != nil {
		return Info{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if err := f.Parse(); err != nil {
		return Info{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	versions, err := f.ParseVersionResources()
	if err != nil {
		// Absent or damaged version resources are not an error; the
		// binary simply carries no version strings.
		r.logger.Debug("No version resources",
			zap.String("path", path),
			zap.Error(err))
		return Info{}, nil
	}

	return Info{
		ProductVersion: versions["ProductVersion"],
		FileVersion:    versions["FileVersion"],
	}, nil
}
