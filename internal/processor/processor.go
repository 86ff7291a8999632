// =============================================================================
// XLSX Record Reader - Processor Module
// =============================================================================
//
// This module orchestrates the handling of a single workbook, from reading it
// to writing its report.
//
// PROCESSING PIPELINE:
//   1. Read the workbook with the configured layout
//   2. Build the report document
//   3. Encode and write the report to the output directory
//   4. Archive the workbook when it was read without any error
//
// CONCURRENCY:
//   A Processor holds only configuration, so one instance can process many
//   files at once. RunAll bounds the number of files in flight.
//
// =============================================================================

package processor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ginjaninja78/xlsx-record-reader/internal/report"
	"github.com/ginjaninja78/xlsx-record-reader/internal/xlsxreader"
	"github.com/ginjaninja78/xlsx-record-reader/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single workbook.
type Result struct {
	// FilePath is the path to the workbook that was processed.
	FilePath string

	// ReportFile is the path to the written report.
	// This is empty on a dry run or when writing failed.
	ReportFile string

	// ArchivePath is where the workbook was moved, if it was archived.
	ArchivePath string

	// Success indicates that the workbook was read without any error.
	Success bool

	// Error is set when the workbook could not be opened or the report
	// could not be written. Row and sheet errors do not set it.
	Error error

	// Workbook is the full read result.
	Workbook xlsxreader.WorkbookResult

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// SheetsRead is the number of sheets that produced an outcome.
	SheetsRead int

	// Records is the number of valid records across all sheets.
	Records int

	// Errors is the number of workbook and sheet errors.
	Errors int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// PROCESSOR STRUCTURE
// =============================================================================

// Options configures a Processor.
type Options struct {
	// Format is the report encoding. Default: YAML.
	Format report.Format

	// NameFormat is the report file name pattern, see
	// utils.FileManager.GenerateReportFileName.
	NameFormat string

	// ArchiveOnSuccess moves fully valid workbooks to the archive directory.
	ArchiveOnSuccess bool

	// DryRun reads workbooks but writes and moves nothing.
	DryRun bool

	// RunID is written into every report.
	RunID string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Processor reads workbooks and writes their reports.
type Processor struct {
	reader *xlsxreader.Reader
	files  *utils.FileManager
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Processor.
//
// PARAMETERS:
//   - reader: Reads workbooks of the expected layout.
//   - files: Resolves report and archive locations.
//   - opts: Output settings.
func New(reader *xlsxreader.Reader, files *utils.FileManager, opts Options) *Processor {
	if opts.Format == "" {
		opts.Format = report.FormatYAML
	}
	if opts.NameFormat == "" {
		opts.NameFormat = "{book}_{timestamp}"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RunID != "" {
		logger = logger.With("run_id", opts.RunID)
	}
	return &Processor{reader: reader, files: files, opts: opts, logger: logger, now: time.Now}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the processing pipeline for one workbook.
func (p *Processor) Run(path string) Result {
	startTime := p.now()
	result := Result{FilePath: path}
	logger := p.logger.With("file", path)

	// =========================================================================
	// STEP 1: READ WORKBOOK
	// =========================================================================

	logger.Info("processing workbook")

	wb := p.reader.ReadFile(path)
	result.Workbook = wb
	result.Success = wb.Valid()

	var openErr *xlsxreader.OpenError
	for _, err := range wb.Errors {
		if errors.As(err, &openErr) {
			result.Error = err
			break
		}
	}

	// =========================================================================
	// STEP 2: BUILD REPORT
	// =========================================================================

	doc := report.Build(wb, p.opts.RunID, startTime)
	result.Stats.SheetsRead = len(wb.Sheets)
	result.Stats.Records, result.Stats.Errors = doc.Totals()

	for _, sheet := range wb.Sheets {
		for _, issue := range sheet.Issues() {
			logger.Warn("sheet error", "sheet", sheet.SheetName(), "error", issue)
		}
	}
	for _, err := range wb.Errors {
		logger.Warn("workbook error", "error", err)
	}

	// =========================================================================
	// STEP 3: WRITE REPORT
	// =========================================================================

	if p.opts.DryRun {
		logger.Info("dry run, report not written", "records", result.Stats.Records, "errors", result.Stats.Errors)
		result.Stats.ProcessingTime = p.now().Sub(startTime)
		return result
	}

	reportPath, err := p.writeReport(doc, path)
	if err != nil {
		logger.Error("failed to write report", "error", err)
		result.Error = errors.Join(result.Error, err)
		result.Success = false
		result.Stats.ProcessingTime = p.now().Sub(startTime)
		return result
	}
	result.ReportFile = reportPath
	logger.Info("wrote report", "report", reportPath, "records", result.Stats.Records, "errors", result.Stats.Errors)

	// =========================================================================
	// STEP 4: ARCHIVE WORKBOOK
	// =========================================================================

	if result.Success && p.opts.ArchiveOnSuccess {
		archivePath, err := p.files.ArchiveInputFile(path)
		if err != nil {
			// A failed move leaves the workbook in the input directory.
			logger.Warn("failed to archive workbook", "error", err)
		} else {
			result.ArchivePath = archivePath
			logger.Debug("archived workbook", "archive", archivePath)
		}
	}

	result.Stats.ProcessingTime = p.now().Sub(startTime)
	return result
}

// writeReport encodes doc and writes it to the output directory. Reports with
// the same name get a numbered variant instead of replacing each other.
func (p *Processor) writeReport(doc report.Document, inputPath string) (string, error) {
	data, err := report.Marshal(doc, p.opts.Format)
	if err != nil {
		return "", err
	}

	name := p.files.GenerateReportFileName(p.opts.NameFormat, inputPath, p.opts.Format.Extension())
	reportPath, err := p.files.WriteReport(name, data)
	if err != nil {
		return "", err
	}

	return reportPath, nil
}

// =============================================================================
// BATCH PROCESSING
// =============================================================================

// RunAll processes paths with at most concurrency files in flight. Results
// are returned in the order of paths. Files not yet started when ctx is
// cancelled get a Result carrying ctx.Err().
func (p *Processor) RunAll(ctx context.Context, paths []string, concurrency int) []Result {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]Result, len(paths))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, path := range paths {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			results[i] = Result{FilePath: path, Error: ctx.Err()}
			continue
		}

		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = p.Run(path)
		}(i, path)
	}

	wg.Wait()
	return results
}

// Summarize folds results into a processing summary.
func Summarize(runID string, start, end time.Time, results []Result) utils.ProcessingSummary {
	summary := utils.ProcessingSummary{
		RunID:      runID,
		StartTime:  start,
		EndTime:    end,
		TotalFiles: len(results),
	}

	for _, r := range results {
		summary.TotalSheets += r.Stats.SheetsRead
		summary.TotalRecords += r.Stats.Records
		summary.TotalErrors += r.Stats.Errors

		switch {
		case r.Error != nil:
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    r.FilePath,
				ErrorMessage: r.Error.Error(),
			})
			continue
		case r.Success:
			summary.ValidFiles++
		default:
			summary.FilesWithErrors++
		}

		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:   r.FilePath,
			ReportFile:  r.ReportFile,
			ArchivePath: r.ArchivePath,
			Sheets:      r.Stats.SheetsRead,
			Records:     r.Stats.Records,
			Errors:      r.Stats.Errors,
			ProcessTime: r.Stats.ProcessingTime,
		})
	}

	return summary
}
