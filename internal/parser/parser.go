package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParsedTable is the transient output of parsing one uploaded file.
// Values stay strings until normalization.
type ParsedTable struct {
	Headers []string
	Rows    []map[string]string
}

func (t *ParsedTable) RowCount() int {
	return len(t.Rows)
}

// ParseError marks terminal parse failures; the upload must not be retried in place.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Reason
}

// Parse turns raw delimited text into headers plus ordered row records.
// The first non-blank line is the header row. Rows are split positionally
// against the headers: missing trailing fields become empty strings, extra
// fields are dropped, and rows whose fields are all empty are discarded.
func Parse(rawText string) (*ParsedTable, error) {
	var lines []string
	for _, line := range strings.Split(rawText, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) < 2 {
		return nil, &ParseError{Reason: "file must contain a header row and at least one data row"}
	}

	headers := splitFields(lines[0])
	if len(headers) == 0 {
		return nil, &ParseError{Reason: "header row is empty"}
	}

	rows := make([]map[string]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := splitFields(line)

		row := make(map[string]string, len(headers))
		empty := true
		for i, h := range headers {
			v := ""
			if i < len(fields) {
				v = fields[i]
			}
			if v != "" {
				empty = false
			}
			row[h] = v
		}
		if empty {
			continue
		}
		rows = append(rows, row)
	}

	return &ParsedTable{Headers: headers, Rows: rows}, nil
}

// ParseWorkbook reads the first sheet of an XLS/XLSX file into the same
// shape Parse produces for CSV text.
func ParseWorkbook(data []byte) (*ParsedTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("cannot open workbook: %v", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Reason: "workbook has no sheets"}
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("cannot read sheet %q: %v", sheets[0], err)}
	}

	// Re-serialize through the CSV path so blank-line, padding and
	// empty-row rules stay identical for both formats.
	var sb strings.Builder
	for _, row := range cells {
		for i, cell := range row {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strings.ReplaceAll(cell, ",", " "))
		}
		sb.WriteByte('\n')
	}
	return Parse(sb.String())
}

// Serialize renders headers and rows back into the delimited text Parse accepts.
func Serialize(headers []string, rows []map[string]string) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(headers, ","))
	sb.WriteByte('\n')
	for _, row := range rows {
		for i, h := range headers {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(row[h])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func splitFields(line string) []string {
	parts := strings.Split(line, ",")
	fields := make([]string, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.Trim(p, `"`)
		fields[i] = strings.TrimSpace(p)
	}
	return fields
}

// DuplicateHeaders reports header names that appear more than once; duplicates
// make positional mapping ambiguous and are surfaced as suggestions upstream.
func DuplicateHeaders(headers []string) []string {
	seen := make(map[string]int, len(headers))
	for _, h := range headers {
		seen[h]++
	}
	var dups []string
	for _, h := range headers {
		if seen[h] > 1 {
			dups = append(dups, h)
			seen[h] = 0
		}
	}
	return dups
}
