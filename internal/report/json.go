package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/davehng/ScanForDllInstances/pkg/models"
)

// JSONSink accumulates records and writes a single indented document with
// the scan summary once the scan completes
type JSONSink struct {
	out     io.Writer
	file    *os.File
	summary *models.ScanSummary
	records []models.VersionRecord
}

// JSONReport combines the scan summary with the matched records
type JSONReport struct {
	Summary *models.ScanSummary    `json:"summary"`
	Records []models.VersionRecord `json:"records"`
}

// NewJSONSink creates a JSON sink writing to out. A non-nil file is closed
// by AfterScan.
func NewJSONSink(out io.Writer, file *os.File, summary *models.ScanSummary) *JSONSink {
	return &JSONSink{
		out:     out,
		file:    file,
		summary: summary,
		records: []models.VersionRecord{},
	}
}

// BeforeScan does nothing; the document is written in one piece at the end
func (s *JSONSink) BeforeScan() {}

// OnMatch buffers one record
func (s *JSONSink) OnMatch(record models.VersionRecord) {
	s.records = append(s.records, record)
}

// AfterScan writes the report document
func (s *JSONSink) AfterScan() error {
	report := &JSONReport{
		Summary: s.summary,
		Records: s.records,
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if _, err := s.out.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}
