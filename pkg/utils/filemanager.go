// =============================================================================
// XLSX Record Reader - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the reader, including:
//   - Workbook discovery in the input directory
//   - File archival (moving fully valid workbooks)
//   - Report file naming
//   - Processing summary generation
//   - Directory management
//
// ARCHIVAL STRATEGY:
//   - A workbook is moved to input_archive only when it was read without any
//     error and archiving is enabled
//   - Workbooks with errors stay where they are, next to their report
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WorkbookExtensions are the spreadsheet package types that can be read.
var WorkbookExtensions = []string{".xlsx", ".xlsm", ".xltx", ".xltm"}

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the reader.
type FileManager struct {
	// InputDir is scanned for workbooks.
	InputDir string

	// OutputDir receives reports and summaries.
	OutputDir string

	// InputArchiveDir receives archived workbooks.
	InputArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Set from the archive_date_subdirs configuration key.
	// Example: input_archive/2024/01/15/book.xlsx
	UseTimestampSubdirs bool

	// now is replaced in tests.
	now func() time.Time
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:        inputDir,
		OutputDir:       outputDir,
		InputArchiveDir: inputArchiveDir,
		now:             time.Now,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates all required directories if they don't exist.
//
// PARAMETERS:
//   - archive: Whether the archive directory is needed.
func (fm *FileManager) EnsureDirectories(archive bool) error {
	dirs := []string{fm.InputDir, fm.OutputDir}
	if archive {
		dirs = append(dirs, fm.InputArchiveDir)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// IsWorkbook reports whether path has a readable spreadsheet extension and is
// not an office lock file ("~$book.xlsx").
func IsWorkbook(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		return false
	}
	return slices.Contains(WorkbookExtensions, strings.ToLower(filepath.Ext(base)))
}

// DiscoverWorkbooks lists the workbooks directly inside the input directory,
// sorted by name.
//
// RETURNS:
//   - A slice of file paths.
//   - An error if the directory cannot be read.
func (fm *FileManager) DiscoverWorkbooks() ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var result []string
	for _, entry := range entries {
		if entry.IsDir() || !IsWorkbook(entry.Name()) {
			continue
		}
		result = append(result, filepath.Join(fm.InputDir, entry.Name()))
	}

	// os.ReadDir already returns entries sorted by file name.
	return result, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file to the archive directory.
//
// PARAMETERS:
//   - filePath: The path to the file to archive.
//
// RETURNS:
//   - The path to the archived file.
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	archivePath := fm.getArchivePath(fm.InputArchiveDir, filePath)

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// If rename fails (e.g., cross-device), try copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// getArchivePath constructs the archive path for a file.
func (fm *FileManager) getArchivePath(archiveDir, filePath string) string {
	fileName := filepath.Base(filePath)

	if fm.UseTimestampSubdirs {
		now := fm.clock()
		return filepath.Join(
			archiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
			fileName,
		)
	}

	return filepath.Join(archiveDir, fileName)
}

func (fm *FileManager) clock() time.Time {
	if fm.now == nil {
		return time.Now()
	}
	return fm.now()
}

// =============================================================================
// REPORT FILE NAMING
// =============================================================================

// GenerateReportFileName generates a unique report file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (HHMMSS)
//               {book}      - Input file name (without extension)
//   - inputPath: The workbook the report belongs to.
//   - extension: The report extension, with the leading dot.
//
// EXAMPLE:
//   format: "{book}_{timestamp}_{uuid}"
//   inputPath: "input/usuarios.xlsx"
//   extension: ".yaml"
//   output: "usuarios_20240115_143022_a1b2c3d4-e5f6-7890-abcd-ef1234567890.yaml"
func (fm *FileManager) GenerateReportFileName(format, inputPath, extension string) string {
	now := fm.clock()
	base := filepath.Base(inputPath)
	book := strings.TrimSuffix(base, filepath.Ext(base))

	result := strings.NewReplacer(
		"{uuid}", uuid.New().String(),
		"{timestamp}", now.Format("20060102_150405"),
		"{date}", now.Format("20060102"),
		"{time}", now.Format("150405"),
		"{book}", book,
	).Replace(format)

	if !strings.HasSuffix(strings.ToLower(result), strings.ToLower(extension)) {
		result += extension
	}

	return result
}

// ReportPath joins a report file name to the output directory.
func (fm *FileManager) ReportPath(name string) string {
	return filepath.Join(fm.OutputDir, name)
}

// maxNameAttempts bounds the numbered variants tried by WriteReport.
const maxNameAttempts = 1000

// WriteReport writes data to a new file called name in the output directory.
// An existing file is never replaced: when name is taken, "_2", "_3", ... is
// inserted before the extension until a free name is found.
//
// RETURNS:
//   - The path of the written report.
//   - An error if no free name was found or writing fails.
func (fm *FileManager) WriteReport(name string, data []byte) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for attempt := 1; attempt <= maxNameAttempts; attempt++ {
		candidate := name
		if attempt > 1 {
			candidate = fmt.Sprintf("%s_%d%s", stem, attempt, ext)
		}
		reportPath := fm.ReportPath(candidate)

		file, err := os.OpenFile(reportPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create report: %w", err)
		}

		_, err = file.Write(data)
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return "", fmt.Errorf("failed to write report: %w", err)
		}
		return reportPath, nil
	}

	return "", fmt.Errorf("failed to write report: no free name for %s after %d attempts", name, maxNameAttempts)
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	RunID           string
	StartTime       time.Time
	EndTime         time.Time
	TotalFiles      int
	ValidFiles      int
	FilesWithErrors int
	FailedFiles     int
	TotalSheets     int
	TotalRecords    int
	TotalErrors     int
	ProcessedFiles  []ProcessedFileInfo
	FailedFilesList []FailedFileInfo
}

// ProcessedFileInfo describes a workbook whose report was written.
type ProcessedFileInfo struct {
	InputFile   string
	ReportFile  string
	ArchivePath string
	Sheets      int
	Records     int
	Errors      int
	ProcessTime time.Duration
}

// FailedFileInfo describes a workbook that produced no usable report.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
}

// WriteSummaryLog writes a processing summary to a text file in the output
// directory.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func (fm *FileManager) WriteSummaryLog(summary ProcessingSummary) (string, error) {
	summaryFileName := fmt.Sprintf("processing_summary_%s.txt", summary.StartTime.Format("20060102_150405"))
	summaryPath := filepath.Join(fm.OutputDir, summaryFileName)

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(writer, "XLSX Record Reader - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Total Files:        %d\n"+
		"  Valid:              %d\n"+
		"  With Errors:        %d\n"+
		"  Failed:             %d\n"+
		"  Sheets Read:        %d\n"+
		"  Records:            %d\n"+
		"  Errors:             %d\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.TotalFiles,
		summary.ValidFiles,
		summary.FilesWithErrors,
		summary.FailedFiles,
		summary.TotalSheets,
		summary.TotalRecords,
		summary.TotalErrors)

	if len(summary.ProcessedFiles) > 0 {
		writer.WriteString("Processed Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(writer, "  Input:        %s\n", pf.InputFile)
			fmt.Fprintf(writer, "  Report:       %s\n", pf.ReportFile)
			if pf.ArchivePath != "" {
				fmt.Fprintf(writer, "  Archived:     %s\n", pf.ArchivePath)
			}
			fmt.Fprintf(writer, "  Sheets:       %d\n", pf.Sheets)
			fmt.Fprintf(writer, "  Records:      %d\n", pf.Records)
			fmt.Fprintf(writer, "  Errors:       %d\n", pf.Errors)
			fmt.Fprintf(writer, "  Process Time: %s\n\n", pf.ProcessTime.String())
		}
	}

	if len(summary.FailedFilesList) > 0 {
		writer.WriteString("Failed Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(writer, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(writer, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
