package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// TargetsFile represents a YAML targets manifest
type TargetsFile struct {
	Targets []string `yaml:"targets"`
}

// LoadTargets loads target file names from a YAML manifest
func LoadTargets(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read targets file: %w", err)
	}

	var manifest TargetsFile
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse targets file %s: %w", path, err)
	}

	targets := make([]string, 0, len(manifest.Targets))
	for _, t := range manifest.Targets {
		t = strings.TrimSpace(t)
		if t == "" {
			return nil, fmt.Errorf("targets file %s contains an empty target name", path)
		}
		targets = append(targets, t)
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("targets file %s lists no targets", path)
	}

	return targets, nil
}
