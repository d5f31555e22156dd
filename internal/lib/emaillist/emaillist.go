package emaillist

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
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptySheet        = errors.New("workbook has no sheets")
)

// Parse extracts the addresses from a .csv or .xlsx file, picking the format
// by the file name's extension.
func Parse(filename string, r io.Reader) ([]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return ParseCSV(r)
	case ".xlsx", ".xlsm":
		return ParseXLSX(r)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
}

// ParseCSV returns every cell holding an address, in file order and without
// repeats. Header cells never contain '@' and so drop out on their own.
func ParseCSV(r io.Reader) ([]string, error) {
	const op = "emaillist.ParseCSV"

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	c := newCollector()

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		c.add(record)
	}

	return c.emails, nil
}

// ParseXLSX does what ParseCSV does for the first sheet of a workbook.
func ParseXLSX(r io.Reader) ([]string, error) {
	const op = "emaillist.ParseXLSX"

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptySheet)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c := newCollector()
	for _, row := range rows {
		c.add(row)
	}

	return c.emails, nil
}

type collector struct {
	seen   map[string]struct{}
	emails []string
}

func newCollector() *collector {
	return &collector{
		seen:   make(map[string]struct{}),
		emails: []string{},
	}
}

func (c *collector) add(cells []string) {
	for _, cell := range cells {
		cell = strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff"))
		if !strings.Contains(cell, "@") {
			continue
		}

		if _, ok := c.seen[cell]; ok {
			continue
		}

		c.seen[cell] = struct{}{}
		c.emails = append(c.emails, cell)
	}
}
