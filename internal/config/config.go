package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the scanner configuration
type Config struct {
	// Target settings
	Target      string   `mapstructure:"target"`       // file name to search for
	TargetsFile string   `mapstructure:"targets_file"` // optional YAML manifest with multiple targets
	Exclude     []string `mapstructure:"exclude"`      // directory names to skip

	// Scan settings
	SkipErrors bool `mapstructure:"skip_errors"` // log unreadable entries and keep going

	// Output settings
	Format     string `mapstructure:"format"`      // csv, json, table
	OutputFile string `mapstructure:"output_file"` // output file path, stdout if empty
}

// DefaultTarget is the file name searched for when no target is configured.
const DefaultTarget = "HDWA.AFS.Client.dll"

// LoadConfig loads configuration from environment variables and defaults
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("target", DefaultTarget)
	v.SetDefault("targets_file", "")
	v.SetDefault("exclude", []string{})
	v.SetDefault("skip_errors", false)
	v.SetDefault("format", "csv")
	v.SetDefault("output_file", "")

	// Read environment variables
	v.SetEnvPrefix("SCANFORDLL")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ResolveTargets returns the list of file names the scan looks for.
// A targets manifest, when configured, replaces the single target.
func (c *Config) ResolveTargets() ([]string, error) {
	if c.TargetsFile != "" {
		return LoadTargets(c.TargetsFile)
	}

	target := strings.TrimSpace(c.Target)
	if target == "" {
		return nil, fmt.Errorf("no target file name configured")
	}

	return []string{target}, nil
}
