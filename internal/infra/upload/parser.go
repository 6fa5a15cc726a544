package upload

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrMissingHeader     = errors.New("file has no header row")
)

// Table is a parsed upload: the header row and one map per data row keyed by header.
type Table struct {
	Headers []string
	Rows    []map[string]string
}

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks the parser from the file extension.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt", ".tsv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
}

// Parse reads the whole file. Any structural error fails the parse; nothing partial is returned.
func Parse(filename string, r io.Reader) (*Table, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatXLSX:
		return ParseXLSX(r)
	default:
		comma := ','
		if strings.EqualFold(filepath.Ext(filename), ".tsv") {
			comma = '\t'
		}
		return ParseCSV(r, comma)
	}
}

func ParseCSV(r io.Reader, comma rune) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read delimited file: %w", err)
	}
	return buildTable(records)
}

func ParseXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrMissingHeader
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return buildTable(records)
}

func buildTable(records [][]string) (*Table, error) {
	if len(records) == 0 || isBlank(records[0]) {
		return nil, ErrMissingHeader
	}

	headers := uniqueHeaders(records[0])
	table := &Table{Headers: headers, Rows: make([]map[string]string, 0, len(records)-1)}

	for _, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = record[i]
			} else {
				row[h] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// uniqueHeaders strips a UTF-8 BOM, names empty columns and suffixes repeated names.
// Names present in the file keep their spelling; generated names never collide with them.
func uniqueHeaders(raw []string) []string {
	cleaned := make([]string, len(raw))
	reserved := make(map[string]bool, len(raw))
	for i, h := range raw {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		cleaned[i] = h
		if strings.TrimSpace(h) != "" {
			reserved[h] = true
		}
	}

	taken := make(map[string]bool, len(raw))
	out := make([]string, len(raw))
	for i, h := range cleaned {
		switch {
		case strings.TrimSpace(h) == "":
			h = freeName(fmt.Sprintf("column_%d", i+1), reserved, taken)
		case taken[h]:
			h = freeName(h, reserved, taken)
		}
		taken[h] = true
		out[i] = h
	}
	return out
}

// freeName returns base, or base_N for the smallest N >= 2, unused by any header.
func freeName(base string, reserved, taken map[string]bool) string {
	if !reserved[base] && !taken[base] {
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", base, n)
		if !reserved[candidate] && !taken[candidate] {
			return candidate
		}
	}
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// TemplateHeaders are the canonical columns written into downloadable templates.
var TemplateHeaders = []string{"name", "phone", "email"}

// Template renders an empty upload template. It returns the file name, content type and body.
func Template(format Format) (string, string, []byte, error) {
	switch format {
	case FormatCSV:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write(TemplateHeaders); err != nil {
			return "", "", nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return "", "", nil, err
		}
		return "contacts_template.csv", "text/csv", buf.Bytes(), nil

	case FormatXLSX:
		f := excelize.NewFile()
		defer func() { _ = f.Close() }()

		const sheet = "Contacts"
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return "", "", nil, fmt.Errorf("failed to name sheet: %w", err)
		}
		header := make([]interface{}, len(TemplateHeaders))
		for i, h := range TemplateHeaders {
			header[i] = h
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return "", "", nil, fmt.Errorf("failed to write header: %w", err)
		}
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err == nil {
			_ = f.SetRowStyle(sheet, 1, 1, style)
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return "", "", nil, fmt.Errorf("failed to write spreadsheet: %w", err)
		}
		return "contacts_template.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes(), nil
	}
	return "", "", nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}
