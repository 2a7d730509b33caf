package report

import (
	"fmt"
	"io"

	"github.com/davehng/ScanForDllInstances/pkg/models"
)

// VerboseSink prints one plain diagnostic line per match and nothing else:
// no header before the scan and no completion output after it
type VerboseSink struct {
	out io.Writer
}

// NewVerboseSink creates a verbose sink writing to out
func NewVerboseSink(out io.Writer) *VerboseSink {
	return &VerboseSink{out: out}
}

// BeforeScan does nothing
func (s *VerboseSink) BeforeScan() {}

// OnMatch prints the match line
func (s *VerboseSink) OnMatch(record models.VersionRecord) {
	fmt.Fprintf(s.out, "found %s product=%s file=%s\n",
		record.Path, record.ProductVersion, record.FileVersion)
}

// AfterScan does nothing
func (s *VerboseSink) AfterScan() error {
	return nil
}
