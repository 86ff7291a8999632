// =============================================================================
// XLSX Record Reader - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands (like 'read', 'layout') are
// attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (recordreader)
//   ├── readCmd (recordreader read)
//   ├── layoutCmd (recordreader layout)
//   └── versionCmd (recordreader version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the main configuration before any subcommand runs
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/xlsx-record-reader/internal/config"
	"github.com/ginjaninja78/xlsx-record-reader/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// mainConfig is loaded by the root command before any subcommand runs.
var mainConfig *config.MainConfig

// runID identifies this invocation in logs, reports and the summary.
var runID string

// logCloser releases the log file when the command ends.
var logCloser io.Closer

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "recordreader",
	Short: "XLSX Record Reader - Extract typed records from users-and-roles workbooks",
	Long: `XLSX Record Reader reads spreadsheet workbooks with a fixed layout of
sheets, checks every header and cell, and writes one report per workbook with
the valid records and a precise message for every problem found.

Key Features:
  - Declarative sheet layouts with header checks
  - Per-cell validation with sheet, row and cell references
  - Concurrent processing of many workbooks
  - YAML, JSON or XML reports
  - Automatic archival of fully valid workbooks

Example Usage:
  recordreader read                     # Read all workbooks in the input directory
  recordreader read book.xlsx           # Read one workbook
  recordreader read --config ./my.yaml  # Use a custom configuration file
  recordreader layout                   # Show the expected workbook layout`,

	SilenceUsage: true,

	// PersistentPreRunE loads the configuration and sets up logging for every
	// subcommand.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initialize()
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// initialize loads the main configuration and installs the default logger.
// A missing configuration file is not an error: the defaults apply.
func initialize() error {
	cfg, found, err := config.LoadMainConfigOrDefault(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}
	mainConfig = cfg

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}

	closer, err := logging.Setup(logging.Options{
		Level:      level,
		Format:     cfg.LogFormat,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	logCloser = closer

	runID = uuid.NewString()

	if found {
		slog.Debug("loaded configuration", "path", cfgFile)
	} else {
		slog.Debug("configuration file not found, using defaults", "path", cfgFile)
	}
	return nil
}
