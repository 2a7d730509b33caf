package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/davehng/ScanForDllInstances/internal/archive"
	"github.com/davehng/ScanForDllInstances/internal/config"
	"github.com/davehng/ScanForDllInstances/internal/filesystem"
	"github.com/davehng/ScanForDllInstances/internal/peinfo"
	"github.com/davehng/ScanForDllInstances/internal/report"
	"github.com/davehng/ScanForDllInstances/pkg/models"
	"go.uber.org/zap"
)

// Scanner is the main scan engine
type Scanner struct {
	config    *config.Config
	logger    *zap.Logger
	walker    *filesystem.Walker
	inspector *archive.Inspector
	reader    peinfo.Reader
	sink      report.Sink
	targets   []string
	summary   *models.ScanSummary
}

// NewScanner creates a new scanner instance
func NewScanner(cfg *config.Config, sink report.Sink, summary *models.ScanSummary, logger *zap.Logger) *Scanner {
	return &Scanner{
		config:  cfg,
		logger:  logger,
		sink:    sink,
		summary: summary,
		reader:  peinfo.NewFileReader(logger),
	}
}

// SetVersionReader replaces the reader used to extract version metadata
func (s *Scanner) SetVersionReader(r peinfo.Reader) {
	s.reader = r
}

// Scan walks the tree under root and streams every matching binary to the
// sink. The scan aborts on the first error unless skip_errors is set; an
// aborted scan never finalizes the sink.
func (s *Scanner) Scan(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("failed to access scan path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("scan path is not a directory: %s", root)
	}

	targets, err := s.config.ResolveTargets()
	if err != nil {
		return err
	}
	s.targets = targets

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve scan path: %w", err)
	}

	s.logger.Info("Starting scan",
		zap.String("path", absRoot),
		zap.Strings("targets", targets))

	// Initialize
	s.summary.StartTime = time.Now()
	s.summary.ScanPath = absRoot
	s.summary.Targets = targets

	s.walker = filesystem.NewWalker(s.config, s.logger)
	s.inspector = archive.NewInspector(s.reader, s.logger)

	s.sink.BeforeScan()

	if err := s.walker.Walk(absRoot, s.processEntry); err != nil {
		return err
	}

	// Finalize results
	s.summary.EndTime = time.Now()
	s.summary.Duration = s.summary.EndTime.Sub(s.summary.StartTime)

	if err := s.sink.AfterScan(); err != nil {
		return fmt.Errorf("failed to finalize output: %w", err)
	}

	s.logger.Info("Scan completed",
		zap.Duration("duration", s.summary.Duration),
		zap.Int("matches_found", s.summary.MatchesFound),
		zap.Int("files_seen", s.summary.TotalFiles))

	return nil
}

// processEntry handles a single walk entry. A file can both match a target
// by name and be inspected as an archive; the two checks are independent.
func (s *Scanner) processEntry(entry *models.FileEntry) error {
	if entry.IsDir {
		s.summary.TotalDirs++
		s.logger.Debug("Entering directory", zap.String("path", entry.Path))
		return nil
	}

	s.summary.TotalFiles++

	if s.matchesTarget(entry.Name) {
		if err := s.emitFile(entry.Path); err != nil {
			return err
		}
	}

	if strings.EqualFold(filepath.Ext(entry.Name), ".zip") {
		if err := s.inspectArchive(entry.Path); err != nil {
			return err
		}
	}

	return nil
}

// matchesTarget checks a base name against the configured targets
func (s *Scanner) matchesTarget(name string) bool {
	for _, target := range s.targets {
		if name == target {
			return true
		}
	}
	return false
}

// emitFile reads version metadata from a matched file and emits a record
func (s *Scanner) emitFile(path string) error {
	info, err := s.reader.ReadFile(path)
	if err != nil {
		if s.config.SkipErrors {
			s.logger.Warn("Skipping unreadable file",
				zap.String("path", path),
				zap.Error(err))
			s.summary.SkippedErrors++
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	s.emitRecord(models.VersionRecord{
		Path:           path,
		ProductVersion: info.ProductVersion,
		FileVersion:    info.FileVersion,
	})
	return nil
}

// inspectArchive looks inside a zip file for matching entries
func (s *Scanner) inspectArchive(path string) error {
	s.summary.ArchivesInspected++

	if err := s.inspector.Inspect(path, s.targets, s.emitRecord); err != nil {
		if s.config.SkipErrors {
			s.logger.Warn("Skipping unreadable archive",
				zap.String("path", path),
				zap.Error(err))
			s.summary.SkippedErrors++
			return nil
		}
		return fmt.Errorf("failed to inspect %s: %w", path, err)
	}
	return nil
}

// emitRecord counts a match and hands it to the sink
func (s *Scanner) emitRecord(record models.VersionRecord) {
	s.summary.MatchesFound++
	s.logger.Debug("Match",
		zap.String("path", record.Path),
		zap.String("product_version", record.ProductVersion),
		zap.String("file_version", record.FileVersion))
	s.sink.OnMatch(record)
}
