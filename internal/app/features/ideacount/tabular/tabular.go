// Package tabular reads an uploaded spreadsheet (CSV or XLSX) into rows keyed
// by header name. It does no domain validation; callers decide which columns
// they need.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrTooManyRows       = errors.New("file has too many rows")
	ErrUnsupportedFormat = errors.New("unsupported file format; upload .csv or .xlsx")
)

// Options tunes parsing.
type Options struct {
	MaxRows int // 0 means unlimited
}

// DefaultOptions returns the limits used by the import endpoint.
func DefaultOptions() Options {
	return Options{MaxRows: MaxRows}
}

// Record is one data row. Line is the 1-based line (CSV) or row (XLSX) in the
// source file.
type Record struct {
	Line   int
	Values map[string]string
}

// Get returns the trimmed cell for column, or "" when absent.
func (r Record) Get(column string) string {
	return r.Values[column]
}

// IsEmpty reports whether every cell is empty.
func (r Record) IsEmpty() bool {
	for _, v := range r.Values {
		if v != "" {
			return false
		}
	}
	return true
}

// Batch is a parsed file: the header columns and the data rows under them.
type Batch struct {
	Columns []string
	Rows    []Record
}

// HasColumn reports whether the header contains column.
func (b Batch) HasColumn(column string) bool {
	for _, c := range b.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Parse picks the reader from the file extension: .xlsx/.xlsm go through
// excelize, .xls is rejected, everything else is read as CSV.
func Parse(filename string, r io.Reader, opts Options) (Batch, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return ParseXLSX(r, opts)
	case ".xls":
		return Batch{}, ErrUnsupportedFormat
	default:
		return ParseCSV(r, opts)
	}
}

// ParseCSV reads a CSV whose first row is the header.
// A malformed line rejects the whole file.
func ParseCSV(r io.Reader, opts Options) (Batch, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow ragged rows
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return Batch{}, nil // empty file
	}
	if err != nil {
		return Batch{}, fmt.Errorf("read header: %w", err)
	}

	b := newBuilder(header, opts)
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Batch{}, fmt.Errorf("read row: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if err := b.add(rec, line); err != nil {
			return Batch{}, err
		}
	}
	return b.batch, nil
}

// ParseXLSX reads the first sheet of a workbook whose first row is the header.
func ParseXLSX(r io.Reader, opts Options) (Batch, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Batch{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Batch{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Batch{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return Batch{}, nil
	}

	b := newBuilder(rows[0], opts)
	for i, rec := range rows[1:] {
		if err := b.add(rec, i+2); err != nil {
			return Batch{}, err
		}
	}
	return b.batch, nil
}

type builder struct {
	batch   Batch
	index   []string // column name per cell position, "" to ignore
	maxRows int
}

func newBuilder(header []string, opts Options) *builder {
	b := &builder{maxRows: opts.MaxRows}
	seen := make(map[string]bool, len(header))
	b.index = make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		name := strings.ToLower(strings.TrimSpace(h))
		if name == "" || seen[name] {
			continue // first occurrence of a duplicate header wins
		}
		seen[name] = true
		b.index[i] = name
		b.batch.Columns = append(b.batch.Columns, name)
	}
	return b
}

func (b *builder) add(cells []string, line int) error {
	if b.maxRows > 0 && len(b.batch.Rows) >= b.maxRows {
		return ErrTooManyRows
	}
	values := make(map[string]string, len(b.batch.Columns))
	for _, c := range b.batch.Columns {
		values[c] = ""
	}
	for i, cell := range cells {
		if i >= len(b.index) || b.index[i] == "" {
			continue
		}
		values[b.index[i]] = strings.TrimSpace(cell)
	}
	b.batch.Rows = append(b.batch.Rows, Record{Line: line, Values: values})
	return nil
}
