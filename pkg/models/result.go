package models

import "time"

// ScanSummary contains the counters for a single scan run
type ScanSummary struct {
	// Summary
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	ScanPath  string        `json:"scan_path"`
	Targets   []string      `json:"targets"`

	// Counters
	TotalDirs         int `json:"total_dirs"`
	TotalFiles        int `json:"total_files"`
	ArchivesInspected int `json:"archives_inspected"`
	MatchesFound      int `json:"matches_found"`
	SkippedErrors     int `json:"skipped_errors"`
}
