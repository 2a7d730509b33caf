package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/davehng/ScanForDllInstances/pkg/models"
)

// TableSink accumulates records and renders a colored summary with an
// aligned match table once the scan completes
type TableSink struct {
	out     io.Writer
	file    *os.File
	summary *models.ScanSummary
	records []models.VersionRecord
}

// NewTableSink creates a table sink writing to out. A non-nil file is closed
// by AfterScan.
func NewTableSink(out io.Writer, file *os.File, summary *models.ScanSummary) *TableSink {
	return &TableSink{
		out:     out,
		file:    file,
		summary: summary,
	}
}

// BeforeScan does nothing; the table is rendered at the end
func (s *TableSink) BeforeScan() {}

// OnMatch buffers one record
func (s *TableSink) OnMatch(record models.VersionRecord) {
	s.records = append(s.records, record)
}

// AfterScan renders the summary block and the match table
func (s *TableSink) AfterScan() error {
	fmt.Fprintln(s.out)
	fmt.Fprintf(s.out, "%s%sSCAN COMPLETE%s\n", colorBold, colorOrange, colorReset)
	fmt.Fprintln(s.out)
	fmt.Fprintf(s.out, "  %sPath:%s      %s\n", colorGray, colorReset, s.summary.ScanPath)
	fmt.Fprintf(s.out, "  %sTargets:%s   %s\n", colorGray, colorReset, strings.Join(s.summary.Targets, ", "))
	fmt.Fprintf(s.out, "  %sDirs:%s      %d\n", colorGray, colorReset, s.summary.TotalDirs)
	fmt.Fprintf(s.out, "  %sFiles:%s     %d\n", colorGray, colorReset, s.summary.TotalFiles)
	fmt.Fprintf(s.out, "  %sArchives:%s  %d\n", colorGray, colorReset, s.summary.ArchivesInspected)
	fmt.Fprintf(s.out, "  %sDuration:%s  %s\n", colorGray, colorReset, FormatDuration(s.summary.Duration))
	fmt.Fprintln(s.out)

	if len(s.records) == 0 {
		fmt.Fprintf(s.out, "  %s%s✓ No matching binaries found%s\n", colorBold, colorGreen, colorReset)
		fmt.Fprintln(s.out)
		return s.close()
	}

	fmt.Fprintf(s.out, "  %s%sMATCHES: %d%s\n", colorBold, colorOrange, len(s.records), colorReset)
	fmt.Fprintln(s.out)

	tw := tabwriter.NewWriter(s.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  PATH\tPRODUCT VERSION\tFILE VERSION")
	for _, record := range s.records {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n",
			record.Path, orDash(record.ProductVersion), orDash(record.FileVersion))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	fmt.Fprintln(s.out)

	return s.close()
}

func (s *TableSink) close() error {
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

// orDash substitutes a dash for missing version strings so table columns
// stay readable
func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
