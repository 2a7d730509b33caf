package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/davehng/ScanForDllInstances/internal/config"
	"github.com/davehng/ScanForDllInstances/pkg/models"
	"go.uber.org/zap"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorGreen  = "\033[32m"
	colorOrange = "\033[38;5;208m"
	colorGray   = "\033[38;5;245m"
)

// Sink receives the scan lifecycle and renders matched records
type Sink interface {
	// BeforeScan runs once before the first directory is visited.
	BeforeScan()
	// OnMatch receives each record in discovery order.
	OnMatch(record models.VersionRecord)
	// AfterScan runs once after the walk completes normally. It flushes
	// buffered output and surfaces any deferred write error. An aborted
	// scan never reaches it.
	AfterScan() error
}

// New selects the sink for the configured format. Output goes to
// cfg.OutputFile when set, otherwise to stdout; sinks that received a file
// close it in AfterScan.
func New(cfg *config.Config, summary *models.ScanSummary, logger *zap.Logger) (Sink, error) {
	var out io.Writer = os.Stdout
	var file *os.File
	if cfg.OutputFile != "" {
		f, err := os.Create(cfg.OutputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file: %w", err)
		}
		out = f
		file = f
	}

	logger.Debug("Initializing result sink",
		zap.String("format", cfg.Format),
		zap.String("output", cfg.OutputFile))

	switch cfg.Format {
	case "", "csv":
		return NewCSVSink(out, file), nil
	case "json":
		return NewJSONSink(out, file, summary), nil
	case "table":
		return NewTableSink(out, file, summary), nil
	case "verbose":
		return NewVerboseSink(out), nil
	default:
		if file != nil {
			file.Close()
		}
		return nil, fmt.Errorf("unknown output format: %s", cfg.Format)
	}
}

// FormatDuration formats duration to a human-readable string with max 2 decimal places
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	} else if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	} else if d < time.Hour {
		mins := int(d.Minutes())
		secs := d.Seconds() - float64(mins*60)
		return fmt.Sprintf("%dm%.2fs", mins, secs)
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) - hours*60
	secs := d.Seconds() - float64(hours*3600) - float64(mins*60)
	return fmt.Sprintf("%dh%dm%.2fs", hours, mins, secs)
}
