package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/davehng/ScanForDllInstances/internal/config"
	"github.com/davehng/ScanForDllInstances/internal/core"
	"github.com/davehng/ScanForDllInstances/internal/report"
	"github.com/davehng/ScanForDllInstances/pkg/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ANSI colors
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGray  = "\033[38;5;245m"
)

var (
	version = "1.0.0"
	logger  *zap.Logger
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "scanfordll",
		Short: "ScanForDllInstances - Find deployed assembly versions across a directory tree",
		Long: `Searches a directory tree, including the contents of zip archives, for
copies of a target DLL and reports the product and file version embedded
in each one.`,
		Version: version,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	// Global verbose flag
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print one line per match and enable verbose logging")

	// Add commands
	rootCmd.AddCommand(scanCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// scanCmd creates the scan command
func scanCmd() *cobra.Command {
	var (
		target      string
		targetsFile string
		exclude     []string
		skipErrors  bool
		format      string
		outputFile  string
	)

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a directory tree for target binaries",
		Long: `Breadth-first scan of a directory for files matching the target name,
including matching entries inside .zip archives. Every match is reported
with its embedded ProductVersion and FileVersion.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			// Validate flags before doing anything
			if err := validateFlags(format); err != nil {
				fmt.Printf("\n  %s✗ Invalid parameter:%s %s\n\n", colorRed, colorReset, err.Error())
				return err
			}

			// Initialize logger based on verbose flag
			var err error
			if verbose {
				logger, err = zap.NewDevelopment()
			} else {
				// Silent logger - only errors
				cfg := zap.Config{
					Level:            zap.NewAtomicLevelAt(zapcore.ErrorLevel),
					Encoding:         "json",
					OutputPaths:      []string{"stderr"},
					ErrorOutputPaths: []string{"stderr"},
					EncoderConfig:    zap.NewProductionEncoderConfig(),
				}
				logger, err = cfg.Build()
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
				return err
			}
			defer logger.Sync()

			// Load configuration
			cfg, err := config.LoadConfig()
			if err != nil {
				logger.Error("Failed to load config", zap.Error(err))
				return err
			}

			// Override config with CLI flags
			if target != "" {
				cfg.Target = target
			}
			if targetsFile != "" {
				cfg.TargetsFile = targetsFile
			}
			if len(exclude) > 0 {
				cfg.Exclude = exclude
			}
			if skipErrors {
				cfg.SkipErrors = true
			}
			if format != "" {
				cfg.Format = format
			}
			if outputFile != "" {
				cfg.OutputFile = outputFile
			}
			if verbose {
				cfg.Format = "verbose"
			}

			summary := &models.ScanSummary{}
			sink, err := report.New(cfg, summary, logger)
			if err != nil {
				logger.Error("Failed to initialize output", zap.Error(err))
				return err
			}

			scanner := core.NewScanner(cfg, sink, summary, logger)
			if err := scanner.Scan(path); err != nil {
				logger.Error("Scan failed", zap.Error(err))
				return err
			}

			if cfg.OutputFile != "" {
				fmt.Printf("  %sReport:%s %s\n", colorGray, colorReset, cfg.OutputFile)
			}

			return nil
		},
	}

	// Flags
	cmd.Flags().StringVarP(&target, "target", "t", "", "File name to search for (default: "+config.DefaultTarget+")")
	cmd.Flags().StringVar(&targetsFile, "targets-file", "", "YAML manifest listing target file names")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Directory names to exclude (comma-separated)")
	cmd.Flags().BoolVar(&skipErrors, "skip-errors", false, "Log unreadable entries and continue instead of aborting")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: csv, json, table (default: csv)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (default: stdout)")

	return cmd
}

// validateFlags validates CLI flag values
func validateFlags(format string) error {
	if format != "" {
		validFormats := []string{"csv", "json", "table"}
		if !contains(validFormats, format) {
			return fmt.Errorf("--format must be one of: %s (got: %s)", strings.Join(validFormats, ", "), format)
		}
	}

	return nil
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
