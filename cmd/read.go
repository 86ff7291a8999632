// =============================================================================
// XLSX Record Reader - Read Command
// =============================================================================
//
// This file defines the 'read' command, which is the main command for
// extracting records from workbooks. It orchestrates the whole run.
//
// COMMAND USAGE:
//   recordreader read [files...] [flags]
//
// FLAGS:
//   --dry-run   : Read and report to the console without writing or moving files
//   --format    : Report format (yaml, json, xml), overrides report_format
//   --password  : Password of encrypted workbooks
//   --archive   : Archive fully valid workbooks, overrides archive_on_success
//
// PROCESSING PIPELINE:
//   1. Build the workbook layout, applying sheet row overrides
//   2. Discover workbooks in the input directory (when no files are given)
//   3. Read every workbook concurrently and write its report
//   4. Archive fully valid workbooks
//   5. Print and write the processing summary
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/xlsx-record-reader/internal/config"
	"github.com/ginjaninja78/xlsx-record-reader/internal/processor"
	"github.com/ginjaninja78/xlsx-record-reader/internal/report"
	"github.com/ginjaninja78/xlsx-record-reader/internal/usuarios"
	"github.com/ginjaninja78/xlsx-record-reader/internal/xlsxreader"
	"github.com/ginjaninja78/xlsx-record-reader/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun reads workbooks without writing reports or moving files.
var dryRun bool

// reportFormat overrides the configured report format.
var reportFormat string

// password opens encrypted workbooks.
var password string

// archive overrides archive_on_success.
var archive bool

// =============================================================================
// READ COMMAND DEFINITION
// =============================================================================

// readCmd represents the 'read' command.
var readCmd = &cobra.Command{
	Use:   "read [files...]",
	Short: "Read workbooks and write a report for each",
	Long: `The read command reads the given workbooks, or every workbook in the input
directory when none are given, and writes one report per workbook to the
output directory.

Each workbook is read independently, and errors in one workbook do not affect
the others. Within a workbook, every sheet is read even when another sheet
fails, and every row error names the sheet, the row and the cell.

On a fully valid workbook:
  - The report lists every record
  - The workbook is moved to the input archive when archiving is enabled

On a workbook with errors:
  - The report lists the valid records and every error
  - The workbook stays in the input directory`,

	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("archive") {
			archive = mainConfig.ArchiveOnSuccess
		}
		return runRead(cmd.Context(), args)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Read workbooks without writing reports or moving files")
	readCmd.Flags().StringVar(&reportFormat, "format", "", "Report format: yaml, json or xml (default from config)")
	readCmd.Flags().StringVar(&password, "password", "", "Password of encrypted workbooks")
	readCmd.Flags().BoolVar(&archive, "archive", false, "Archive fully valid workbooks (default from config)")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runRead orchestrates the read pipeline.
func runRead(parent context.Context, args []string) error {
	startTime := time.Now()
	logger := slog.Default().With("run_id", runID)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	// =========================================================================
	// STEP 1: BUILD LAYOUT
	// =========================================================================

	layout, err := buildLayout(mainConfig)
	if err != nil {
		return fmt.Errorf("invalid sheet configuration: %w", err)
	}

	formatName := mainConfig.ReportFormat
	if reportFormat != "" {
		formatName = reportFormat
	}
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}

	opts := []xlsxreader.Option{xlsxreader.WithLogger(logger)}
	if password != "" {
		opts = append(opts, xlsxreader.WithPassword(password))
	}
	reader := xlsxreader.New(layout, opts...)

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	files := newFileManager(mainConfig)
	if !dryRun {
		if err := files.EnsureDirectories(archive); err != nil {
			return err
		}
	}

	paths := args
	if len(paths) == 0 {
		paths, err = files.DiscoverWorkbooks()
		if err != nil {
			return err
		}
	}

	if len(paths) == 0 {
		fmt.Println("No workbooks found in the input directory.")
		return nil
	}

	logger.Info("starting run", "files", len(paths), "format", string(format), "dry_run", dryRun)
	fmt.Printf("Found %d workbook(s) to read\n", len(paths))

	// =========================================================================
	// STEP 3: PROCESS FILES CONCURRENTLY
	// =========================================================================

	proc := processor.New(reader, files, processor.Options{
		Format:           format,
		NameFormat:       mainConfig.ReportNameFormat,
		ArchiveOnSuccess: archive,
		DryRun:           dryRun,
		RunID:            runID,
		Logger:           logger,
	})
	results := proc.RunAll(ctx, paths, mainConfig.MaxConcurrency)

	// =========================================================================
	// STEP 4: PRINT SUMMARY
	// =========================================================================

	summary := processor.Summarize(runID, startTime, time.Now(), results)
	printResults(results)
	printSummary(summary)

	if !dryRun {
		summaryPath, err := files.WriteSummaryLog(summary)
		if err != nil {
			logger.Warn("failed to write summary", "error", err)
		} else {
			fmt.Printf("Summary written to %s\n", summaryPath)
		}
	}

	if summary.FailedFiles > 0 || summary.FilesWithErrors > 0 {
		return fmt.Errorf("%d of %d workbook(s) had errors", summary.FailedFiles+summary.FilesWithErrors, summary.TotalFiles)
	}
	return ctx.Err()
}

// buildLayout applies the configured sheet row overrides to the
// users-and-roles layout.
func buildLayout(cfg *config.MainConfig) (*usuarios.Layout, error) {
	var opts []usuarios.LayoutOption
	for name, o := range cfg.Sheets {
		opts = append(opts, usuarios.WithRows(name, o.HeaderRow, o.FirstDataRow))
	}
	return usuarios.NewLayout(opts...)
}

// newFileManager builds the file manager for the configured directories.
func newFileManager(cfg *config.MainConfig) *utils.FileManager {
	files := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir)
	files.UseTimestampSubdirs = cfg.ArchiveDateSubdirs
	return files
}

// =============================================================================
// OUTPUT
// =============================================================================

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	warnMark = color.New(color.FgYellow).Sprint("!")
	failMark = color.New(color.FgRed).Sprint("✗")
)

// printResults prints one line per workbook, followed by its errors.
func printResults(results []processor.Result) {
	for _, r := range results {
		name := filepath.Base(r.FilePath)
		switch {
		case r.Error != nil:
			fmt.Printf("  %s %s: %v\n", failMark, name, r.Error)
		case r.Success:
			fmt.Printf("  %s %s: %d record(s)%s\n", okMark, name, r.Stats.Records, target(r))
		default:
			fmt.Printf("  %s %s: %d record(s), %d error(s)%s\n", warnMark, name, r.Stats.Records, r.Stats.Errors, target(r))
			for _, msg := range r.Workbook.Messages() {
				fmt.Printf("      %s\n", msg)
			}
			for _, sheet := range r.Workbook.Sheets {
				for _, issue := range sheet.Issues() {
					fmt.Printf("      [%s] %s\n", sheet.SheetName(), issue.Error())
				}
			}
		}
	}
}

func target(r processor.Result) string {
	if r.ReportFile == "" {
		return ""
	}
	return " -> " + r.ReportFile
}

// printSummary prints the totals of the run.
func printSummary(s utils.ProcessingSummary) {
	title := color.New(color.Bold)
	title.Println("\n=== Read Complete ===")
	fmt.Printf("Total files:     %d\n", s.TotalFiles)
	color.Green("Valid:           %d", s.ValidFiles)
	if s.FilesWithErrors > 0 {
		color.Yellow("With errors:     %d", s.FilesWithErrors)
	} else {
		fmt.Printf("With errors:     %d\n", s.FilesWithErrors)
	}
	if s.FailedFiles > 0 {
		color.Red("Failed:          %d", s.FailedFiles)
	} else {
		fmt.Printf("Failed:          %d\n", s.FailedFiles)
	}
	fmt.Printf("Records:         %d\n", s.TotalRecords)
	fmt.Printf("Time elapsed:    %s\n", s.EndTime.Sub(s.StartTime).Round(time.Millisecond))
}
