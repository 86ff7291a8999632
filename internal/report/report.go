// =============================================================================
// XLSX Record Reader - Report Module
// =============================================================================
//
// This module turns the result of reading one workbook into a report document
// and encodes it as YAML, JSON or XML.
//
// REPORT STRUCTURE (XML shown; YAML and JSON carry the same fields):
//
//   <workbook runId="..." source="book.xlsx" generatedAt="..." valid="false">
//     <errors>                              <!-- workbook-level errors -->
//       <error>open workbook ...</error>
//     </errors>
//     <sheet name="Roles" records="2">
//       <errors>                            <!-- sheet errors, in order -->
//         <error>record at row 4 has errors: ...</error>
//       </errors>
//       <record row="2">                    <!-- one per valid record -->
//         <data>
//           <NombreDeRol>Admin</NombreDeRol>
//         </data>
//       </record>
//     </sheet>
//   </workbook>
//
// The record payload is encoded from the record struct's own xml, json and
// yaml tags.
//
// =============================================================================

package report

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/xlsx-record-reader/internal/xlsxreader"
)

// =============================================================================
// FORMAT
// =============================================================================

// Format is a report encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// ParseFormat accepts "yaml", "json" or "xml" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatYAML, FormatJSON, FormatXML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown report format %q", s)
	}
}

// Extension returns the file extension for f, with the leading dot.
func (f Format) Extension() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return "." + string(f)
}

// =============================================================================
// DOCUMENT STRUCTURE
// =============================================================================

// Document is the report of one workbook.
type Document struct {
	XMLName xml.Name `xml:"workbook" json:"-" yaml:"-"`

	// RunID identifies the CLI run that produced the report.
	RunID string `xml:"runId,attr,omitempty" json:"run_id,omitempty" yaml:"run_id,omitempty"`

	Source      string    `xml:"source,attr" json:"source" yaml:"source"`
	GeneratedAt time.Time `xml:"generatedAt,attr" json:"generated_at" yaml:"generated_at"`
	Valid       bool      `xml:"valid,attr" json:"valid" yaml:"valid"`

	// Errors are the workbook-level errors.
	Errors []string `xml:"errors>error,omitempty" json:"errors,omitempty" yaml:"errors,omitempty"`

	Sheets []SheetReport `xml:"sheet" json:"sheets" yaml:"sheets"`
}

// SheetReport is the part of the report for one sheet.
type SheetReport struct {
	Name        string   `xml:"name,attr" json:"name" yaml:"name"`
	RecordCount int      `xml:"records,attr" json:"record_count" yaml:"record_count"`
	Errors      []string `xml:"errors>error,omitempty" json:"errors,omitempty" yaml:"errors,omitempty"`
	Records     []Record `xml:"record" json:"records" yaml:"records"`
}

// Record is one valid record with its worksheet row.
type Record struct {
	Row  int `xml:"row,attr" json:"row" yaml:"row"`
	Data any `xml:"data" json:"data" yaml:"data"`
}

// Totals counts the records and errors of a document.
func (d Document) Totals() (records, errs int) {
	errs = len(d.Errors)
	for _, s := range d.Sheets {
		records += s.RecordCount
		errs += len(s.Errors)
	}
	return records, errs
}

// =============================================================================
// BUILDING AND ENCODING
// =============================================================================

// Build creates the report document for res.
//
// PARAMETERS:
//   - res: The workbook result.
//   - runID: Identifier of the run, may be empty.
//   - now: Generation time written into the report.
func Build(res xlsxreader.WorkbookResult, runID string, now time.Time) Document {
	doc := Document{
		RunID:       runID,
		Source:      res.Source,
		GeneratedAt: now,
		Valid:       res.Valid(),
		Errors:      res.Messages(),
	}

	for _, sheet := range res.Sheets {
		values := sheet.Values()
		rows := sheet.Rows()

		sr := SheetReport{
			Name:        sheet.SheetName(),
			RecordCount: len(values),
			Records:     make([]Record, len(values)),
		}
		for _, err := range sheet.Issues() {
			sr.Errors = append(sr.Errors, err.Error())
		}
		for i, v := range values {
			sr.Records[i] = Record{Data: v}
			if i < len(rows) {
				sr.Records[i].Row = rows[i]
			}
		}
		doc.Sheets = append(doc.Sheets, sr)
	}

	return doc
}

// Marshal encodes doc in the given format.
func Marshal(doc Document, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to encode YAML report: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode YAML report: %w", err)
		}
		return buf.Bytes(), nil

	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode JSON report: %w", err)
		}
		return append(data, '\n'), nil

	case FormatXML:
		data, err := xml.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode XML report: %w", err)
		}
		out := make([]byte, 0, len(xml.Header)+len(data)+1)
		out = append(out, xml.Header...)
		out = append(out, data...)
		return append(out, '\n'), nil

	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}
