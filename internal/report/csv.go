package report

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/davehng/ScanForDllInstances/pkg/models"
)

// CSVSink streams one quoted line per record. Fields are wrapped in double
// quotes with no escaping of the field contents; downstream consumers of
// this output depend on the exact historical layout, so encoding/csv with
// its RFC 4180 quoting must not be used here.
type CSVSink struct {
	w    *bufio.Writer
	file *os.File
}

// NewCSVSink creates a CSV sink writing to out. A non-nil file is closed by
// AfterScan.
func NewCSVSink(out io.Writer, file *os.File) *CSVSink {
	return &CSVSink{
		w:    bufio.NewWriter(out),
		file: file,
	}
}

// BeforeScan writes the column header
func (s *CSVSink) BeforeScan() {
	fmt.Fprintln(s.w, "Path,ProductVersion,FileVersion")
}

// OnMatch writes one record line
func (s *CSVSink) OnMatch(record models.VersionRecord) {
	fmt.Fprintf(s.w, "\"%s\",\"%s\",\"%s\"\n",
		record.Path, record.ProductVersion, record.FileVersion)
}

// AfterScan flushes buffered lines
func (s *CSVSink) AfterScan() error {
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}
