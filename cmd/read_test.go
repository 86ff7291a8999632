package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/xlsx-record-reader/internal/config"
	"github.com/ginjaninja78/xlsx-record-reader/internal/usuarios"
	"github.com/ginjaninja78/xlsx-record-reader/internal/xlsxreader"
)

func TestBuildLayoutDefaults(t *testing.T) {
	layout, err := buildLayout(config.Default())
	require.NoError(t, err)

	spec := layout.Usuarios.Spec()
	assert.Equal(t, 2, spec.HeaderRow)
	assert.Equal(t, 3, spec.FirstDataRow)
	assert.Equal(t, 1, layout.Roles.Spec().HeaderRow)
}

func TestBuildLayoutOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.Sheets = map[string]config.SheetOverride{
		usuarios.SheetRoles: {HeaderRow: 4, FirstDataRow: 6},
	}

	layout, err := buildLayout(cfg)
	require.NoError(t, err)

	spec := layout.Roles.Spec()
	assert.Equal(t, 4, spec.HeaderRow)
	assert.Equal(t, 6, spec.FirstDataRow)
	assert.Equal(t, 2, layout.Usuarios.Spec().HeaderRow)
}

func TestNewFileManager(t *testing.T) {
	cfg := config.Default()
	cfg.InputDir = filepath.Join("data", "in")
	cfg.OutputDir = filepath.Join("data", "out")
	cfg.InputArchiveDir = filepath.Join("data", "archive")

	files := newFileManager(cfg)
	assert.Equal(t, cfg.InputDir, files.InputDir)
	assert.Equal(t, cfg.OutputDir, files.OutputDir)
	assert.Equal(t, cfg.InputArchiveDir, files.InputArchiveDir)
	assert.False(t, files.UseTimestampSubdirs)

	cfg.ArchiveDateSubdirs = true
	assert.True(t, newFileManager(cfg).UseTimestampSubdirs)
}

func TestBuildLayoutUnknownSheet(t *testing.T) {
	cfg := config.Default()
	cfg.Sheets = map[string]config.SheetOverride{"Permisos": {HeaderRow: 2}}

	_, err := buildLayout(cfg)
	assert.ErrorIs(t, err, xlsxreader.ErrInvalidConfig)
}
