// =============================================================================
// XLSX Record Reader - Layout Command
// =============================================================================
//
// This file defines the 'layout' command, which prints the sheets a workbook
// must contain, with their header labels and rows, after the sheet overrides
// from the configuration are applied.
//
// COMMAND USAGE:
//   recordreader layout
//
// =============================================================================

package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// layoutCmd represents the 'layout' command.
var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Display the expected workbook layout",
	Long:  `Display every sheet the reader expects, its header labels and the rows where headers and data start.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		layout, err := buildLayout(mainConfig)
		if err != nil {
			return fmt.Errorf("invalid sheet configuration: %w", err)
		}

		name := color.New(color.FgCyan, color.Bold)
		for _, sheet := range layout.Sheets() {
			spec := sheet.Spec()
			name.Printf("%s\n", spec.Name)
			fmt.Printf("  Header row:     %d\n", spec.HeaderRow)
			fmt.Printf("  First data row: %d\n", spec.FirstDataRow)
			fmt.Printf("  Headers:        %s\n\n", strings.Join(spec.Headers, " | "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(layoutCmd)
}
