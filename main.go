// =============================================================================
// XLSX Record Reader - Main Entry Point
// =============================================================================
//
// This is the main entry point for the XLSX Record Reader CLI application.
// It delegates command execution to the cmd package.
//
// USAGE:
//   recordreader read      - Read all workbooks in the input directory
//   recordreader layout    - Display the expected workbook layout
//   recordreader version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/                 : CLI command definitions (Cobra)
//   - internal/xlsxreader/ : Declarative sheet and workbook reading
//   - internal/usuarios/   : The users-and-roles workbook layout
//   - internal/processor/  : Per-workbook pipeline and batch runs
//   - internal/report/     : Report documents and their encodings
//   - pkg/utils/           : File discovery, archival and summaries
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/xlsx-record-reader/cmd"
)

func main() {
	cmd.Execute()
}
