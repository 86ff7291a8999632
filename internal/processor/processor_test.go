package processor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/xlsx-record-reader/internal/report"
	"github.com/ginjaninja78/xlsx-record-reader/internal/usuarios"
	"github.com/ginjaninja78/xlsx-record-reader/internal/xlsxreader"
	"github.com/ginjaninja78/xlsx-record-reader/pkg/utils"
)

type env struct {
	files  *utils.FileManager
	reader *xlsxreader.Reader
	logger *slog.Logger
}

func newEnv(t *testing.T) env {
	t.Helper()
	root := t.TempDir()
	files := utils.NewFileManager(filepath.Join(root, "in"), filepath.Join(root, "out"), filepath.Join(root, "archive"))
	require.NoError(t, files.EnsureDirectories(true))

	layout, err := usuarios.NewLayout()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return env{files: files, reader: xlsxreader.New(layout, xlsxreader.WithLogger(logger)), logger: logger}
}

// writeRolesBook writes a workbook with the three sheets into the input
// directory; roles go to the Roles sheet one per row.
func (e env) writeRolesBook(t *testing.T, name string, roles ...string) string {
	t.Helper()
	return writeRolesBookIn(t, e.files.InputDir, name, roles...)
}

func writeRolesBookIn(t *testing.T, dir, name string, roles ...string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", usuarios.SheetUsuarios))
	for i, h := range []string{"Nombre de usuario", "Nombre completo", "Fecha de nacimiento", "Categoria", "Esta activo", "Fecha de bloqueo", "Comentarios"} {
		addr, _ := excelize.CoordinatesToCellName(i+1, 2)
		require.NoError(t, f.SetCellValue(usuarios.SheetUsuarios, addr, h))
	}

	_, err := f.NewSheet(usuarios.SheetRoles)
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue(usuarios.SheetRoles, "A1", "Nombre de rol"))
	for i, r := range roles {
		require.NoError(t, f.SetCellValue(usuarios.SheetRoles, fmt.Sprintf("A%d", i+2), r))
	}

	_, err = f.NewSheet(usuarios.SheetUsuariosRoles)
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue(usuarios.SheetUsuariosRoles, "A1", "Nombre de usuario"))
	require.NoError(t, f.SetCellValue(usuarios.SheetUsuariosRoles, "B1", "Nombre de rol"))

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestRunValidWorkbook(t *testing.T) {
	e := newEnv(t)
	path := e.writeRolesBook(t, "ok.xlsx", "Admin", "Editor")

	p := New(e.reader, e.files, Options{RunID: "run-1", ArchiveOnSuccess: true, Logger: e.logger})
	res := p.Run(path)

	require.NoError(t, res.Error)
	assert.True(t, res.Success)
	assert.Equal(t, 3, res.Stats.SheetsRead)
	assert.Equal(t, 2, res.Stats.Records)
	assert.Equal(t, 0, res.Stats.Errors)

	require.NotEmpty(t, res.ReportFile)
	assert.Equal(t, ".yaml", filepath.Ext(res.ReportFile))
	data, err := os.ReadFile(res.ReportFile)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "run-1", doc["run_id"])
	assert.Equal(t, true, doc["valid"])

	assert.Equal(t, filepath.Join(e.files.InputArchiveDir, "ok.xlsx"), res.ArchivePath)
	assert.FileExists(t, res.ArchivePath)
	assert.NoFileExists(t, path)
}

func TestRunWorkbookWithErrors(t *testing.T) {
	e := newEnv(t)
	path := e.writeRolesBook(t, "partial.xlsx", "Admin")
	// Drop the UsuariosRoles header so that sheet reports a mismatch.
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue(usuarios.SheetUsuariosRoles, "B1", "Rol"))
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	p := New(e.reader, e.files, Options{Format: report.FormatJSON, ArchiveOnSuccess: true, Logger: e.logger})
	res := p.Run(path)

	require.NoError(t, res.Error)
	assert.False(t, res.Success)
	assert.Equal(t, 1, res.Stats.Records)
	assert.Equal(t, 1, res.Stats.Errors)
	assert.Equal(t, ".json", filepath.Ext(res.ReportFile))
	assert.Empty(t, res.ArchivePath)
	assert.FileExists(t, path, "workbooks with errors stay in place")
}

func TestRunCorruptWorkbook(t *testing.T) {
	e := newEnv(t)
	path := filepath.Join(e.files.InputDir, "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	p := New(e.reader, e.files, Options{Format: report.FormatXML, ArchiveOnSuccess: true, Logger: e.logger})
	res := p.Run(path)

	require.Error(t, res.Error)
	var openErr *xlsxreader.OpenError
	assert.ErrorAs(t, res.Error, &openErr)
	assert.False(t, res.Success)
	assert.FileExists(t, res.ReportFile, "the report records the open failure")
	assert.FileExists(t, path)
}

func TestRunDryRun(t *testing.T) {
	e := newEnv(t)
	path := e.writeRolesBook(t, "dry.xlsx", "Admin")

	p := New(e.reader, e.files, Options{DryRun: true, ArchiveOnSuccess: true, Logger: e.logger})
	res := p.Run(path)

	assert.True(t, res.Success)
	assert.Empty(t, res.ReportFile)
	assert.Empty(t, res.ArchivePath)
	assert.FileExists(t, path)

	entries, err := os.ReadDir(e.files.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunReportWriteFailure(t *testing.T) {
	e := newEnv(t)
	path := e.writeRolesBook(t, "ok.xlsx", "Admin")
	e.files.OutputDir = filepath.Join(e.files.OutputDir, "missing", "dir")

	p := New(e.reader, e.files, Options{ArchiveOnSuccess: true, Logger: e.logger})
	res := p.Run(path)

	require.Error(t, res.Error)
	assert.False(t, res.Success)
	assert.Empty(t, res.ArchivePath)
	assert.FileExists(t, path)
}

func TestRunAllKeepsOrder(t *testing.T) {
	e := newEnv(t)
	paths := []string{
		e.writeRolesBook(t, "a.xlsx", "A"),
		e.writeRolesBook(t, "b.xlsx", "B", "C"),
		e.writeRolesBook(t, "c.xlsx", "D", "E", "F"),
	}

	p := New(e.reader, e.files, Options{DryRun: true, Logger: e.logger})
	results := p.RunAll(context.Background(), paths, 2)

	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, paths[i], r.FilePath)
		assert.Equal(t, i+1, r.Stats.Records)
	}
}

func TestRunAllSameBookName(t *testing.T) {
	e := newEnv(t)
	paths := []string{
		e.writeRolesBook(t, "book.xlsx", "A"),
		writeRolesBookIn(t, filepath.Join(e.files.InputDir, "other"), "book.xlsx", "B", "C"),
	}
	paths = append(paths, paths[0])

	p := New(e.reader, e.files, Options{Logger: e.logger})
	results := p.RunAll(context.Background(), paths, 3)

	require.Len(t, results, 3)
	seen := map[string]bool{}
	for _, r := range results {
		require.NoError(t, r.Error)
		require.NotEmpty(t, r.ReportFile)
		assert.False(t, seen[r.ReportFile], "report %s written twice", r.ReportFile)
		seen[r.ReportFile] = true
	}

	entries, err := os.ReadDir(e.files.OutputDir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	data, err := os.ReadFile(results[1].ReportFile)
	require.NoError(t, err)
	var doc struct {
		Sheets []struct {
			Name        string `yaml:"name"`
			RecordCount int    `yaml:"record_count"`
		} `yaml:"sheets"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	require.Len(t, doc.Sheets, 3)
	assert.Equal(t, 2, doc.Sheets[1].RecordCount)
}

func TestRunAllCancelled(t *testing.T) {
	e := newEnv(t)
	paths := []string{e.writeRolesBook(t, "a.xlsx", "A")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(e.reader, e.files, Options{DryRun: true, Logger: e.logger})
	results := p.RunAll(ctx, paths, 0)

	require.Len(t, results, 1)
	// With a free slot the select may still pick the send; either outcome
	// must carry the file path.
	assert.Equal(t, paths[0], results[0].FilePath)
}

func TestSummarize(t *testing.T) {
	start := time.Date(2024, time.January, 15, 14, 0, 0, 0, time.UTC)
	results := []Result{
		{FilePath: "a.xlsx", ReportFile: "a.yaml", Success: true, Stats: ProcessingStats{SheetsRead: 3, Records: 5}},
		{FilePath: "b.xlsx", ReportFile: "b.yaml", Stats: ProcessingStats{SheetsRead: 3, Records: 2, Errors: 4}},
		{FilePath: "c.xlsx", Error: assert.AnError, Stats: ProcessingStats{Errors: 1}},
	}

	s := Summarize("run-1", start, start.Add(time.Second), results)

	assert.Equal(t, "run-1", s.RunID)
	assert.Equal(t, 3, s.TotalFiles)
	assert.Equal(t, 1, s.ValidFiles)
	assert.Equal(t, 1, s.FilesWithErrors)
	assert.Equal(t, 1, s.FailedFiles)
	assert.Equal(t, 6, s.TotalSheets)
	assert.Equal(t, 7, s.TotalRecords)
	assert.Equal(t, 5, s.TotalErrors)
	assert.Len(t, s.ProcessedFiles, 2)
	require.Len(t, s.FailedFilesList, 1)
	assert.Equal(t, "c.xlsx", s.FailedFilesList[0].InputFile)
}
