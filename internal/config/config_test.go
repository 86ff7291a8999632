package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "./input", cfg.InputDir)
	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, "./input_archive", cfg.InputArchiveDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 10, cfg.LogMaxSizeMB)
	assert.Equal(t, "yaml", cfg.ReportFormat)
	assert.Equal(t, "{book}_{timestamp}", cfg.ReportNameFormat)
	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.False(t, cfg.ArchiveOnSuccess)
	assert.False(t, cfg.ArchiveDateSubdirs)
	assert.Empty(t, cfg.LogFile)
}

func TestParseMainConfig(t *testing.T) {
	cfg, err := ParseMainConfig([]byte(`
input_dir: /data/in
output_dir: /data/out
log_level: DEBUG
log_format: json
log_file: /var/log/recordreader.log
log_max_backups: 3
report_format: xml
report_name_format: "{book}_{uuid}"
max_concurrency: 2
archive_on_success: true
archive_date_subdirs: true
sheets:
  Roles:
    header_row: 2
    first_data_row: 3
`))
	require.NoError(t, err)

	assert.Equal(t, "/data/in", cfg.InputDir)
	assert.Equal(t, "/data/out", cfg.OutputDir)
	assert.Equal(t, "./input_archive", cfg.InputArchiveDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "/var/log/recordreader.log", cfg.LogFile)
	assert.Equal(t, 3, cfg.LogMaxBackups)
	assert.Equal(t, "xml", cfg.ReportFormat)
	assert.Equal(t, "{book}_{uuid}", cfg.ReportNameFormat)
	assert.Equal(t, 2, cfg.MaxConcurrency)
	assert.True(t, cfg.ArchiveOnSuccess)
	assert.True(t, cfg.ArchiveDateSubdirs)
	assert.Equal(t, map[string]SheetOverride{"Roles": {HeaderRow: 2, FirstDataRow: 3}}, cfg.Sheets)
}

func TestParseMainConfigCollectsAllProblems(t *testing.T) {
	_, err := ParseMainConfig([]byte(`
log_level: loud
log_format: xml
report_format: csv
report_name_format: "out/{book}"
max_concurrency: -1
log_max_age_days: -5
sheets:
  Usuarios:
    header_row: -1
    first_data_row: -2
`))
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, `log_level "loud"`)
	assert.Contains(t, msg, `log_format "xml"`)
	assert.Contains(t, msg, `report_format "csv"`)
	assert.Contains(t, msg, "path separators")
	assert.Contains(t, msg, "max_concurrency must be at least 1")
	assert.Contains(t, msg, "log rotation settings")
	assert.Contains(t, msg, "sheets.Usuarios.header_row")
	assert.Contains(t, msg, "sheets.Usuarios.first_data_row")
}

func TestParseMainConfigBadYAML(t *testing.T) {
	_, err := ParseMainConfig([]byte("input_dir: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadMainConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("report_format: json\n"), 0o644))

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.ReportFormat)

	_, err = LoadMainConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadMainConfigOrDefault(t *testing.T) {
	cfg, found, err := LoadMainConfigOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_concurrency: 0\nlog_level: nope\n"), 0o644))

	_, found, err = LoadMainConfigOrDefault(path)
	assert.True(t, found)
	assert.Error(t, err)
}
