package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// Table parsed spreadsheet content. Rows are padded or truncated to the
// header width so row[i] always lines up with Headers[i].
type Table struct {
	Headers []string
	Rows    [][]string
}

// ParseTabular reads a CSV or XLSX file into a Table. The format is picked
// from the file extension. maxRows of 0 means unlimited data rows.
func ParseTabular(fileName string, data []byte, maxRows int) (*Table, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return parseCSV(data, maxRows)
	case ".xlsx":
		return parseXLSX(data, maxRows)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// DetectHeaders returns the header row and up to five preview rows, enough
// for a mapping editor to offer column choices.
func DetectHeaders(fileName string, data []byte) ([]string, [][]string, error) {
	table, err := ParseTabular(fileName, data, 5)
	if err != nil {
		return nil, nil, err
	}
	return table.Headers, table.Rows, nil
}

func parseCSV(data []byte, maxRows int) (*Table, error) {
	// Files exported from legacy tooling arrive GBK encoded
	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode file encoding: %w", err)
		}
		data = decoded
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	table := &Table{Headers: headers}
	for {
		if maxRows > 0 && len(table.Rows) >= maxRows {
			break
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(table.Rows)+2, err)
		}
		table.Rows = append(table.Rows, normalizeRow(record, len(headers)))
	}
	return table, nil
}

func parseXLSX(data []byte, maxRows int) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	// Rows are streamed so a bounded read never loads the whole sheet
	iter, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	defer iter.Close()

	var table *Table
	for iter.Next() {
		cells, err := iter.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
		}
		if table == nil {
			headers := make([]string, len(cells))
			for i, h := range cells {
				headers[i] = strings.TrimSpace(h)
			}
			table = &Table{Headers: headers}
			continue
		}
		table.Rows = append(table.Rows, normalizeRow(cells, len(table.Headers)))
		if maxRows > 0 && len(table.Rows) >= maxRows {
			break
		}
	}
	if table == nil {
		return nil, fmt.Errorf("file is empty")
	}
	return table, nil
}

func normalizeRow(record []string, width int) []string {
	row := make([]string, width)
	for i := 0; i < width && i < len(record); i++ {
		row[i] = strings.TrimSpace(record[i])
	}
	return row
}

// HeaderIndex column name to position lookup. Names match exactly; headers
// are already whitespace-trimmed during parsing.
func (t *Table) HeaderIndex() map[string]int {
	idx := make(map[string]int, len(t.Headers))
	for i, h := range t.Headers {
		idx[h] = i
	}
	return idx
}
