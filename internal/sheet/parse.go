package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// Parse reads CSV text whose first line names the columns and returns one
// Record per following line.
//
// Row shape rules:
//   - duplicate header names collapse into one key; the rightmost cell wins
//   - short rows null-fill the missing columns
//   - long rows keep the overflow under ExtraKey
//   - blank lines are skipped
//
// A document with no header line at all returns ErrEmptyBody.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(cleanReader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyBody
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns, slot := indexHeader(header)
	table := &Table{
		Columns: columns,
		Records: make([]Record, 0),
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(table.Records)+1, err)
		}
		table.Records = append(table.Records, buildRecord(header, columns, slot, row))
	}

	return table, nil
}

// indexHeader returns the unique column names and, for each header position,
// the index of its column.
func indexHeader(header []string) ([]string, []int) {
	seen := make(map[string]int, len(header))
	columns := make([]string, 0, len(header))
	slot := make([]int, len(header))

	for i, name := range header {
		idx, ok := seen[name]
		if !ok {
			idx = len(columns)
			seen[name] = idx
			columns = append(columns, name)
		}
		slot[i] = idx
	}
	return columns, slot
}

func buildRecord(header, columns []string, slot []int, row []string) Record {
	cells := make([]Cell, len(columns))
	for i, name := range columns {
		cells[i].Column = name
	}

	for i := range header {
		c := &cells[slot[i]]
		if i < len(row) {
			c.Value = row[i]
			c.Missing = false
		} else {
			c.Value = ""
			c.Missing = true
		}
	}

	rec := Record{Cells: cells}
	if len(row) > len(header) {
		rec.Extra = append([]string(nil), row[len(header):]...)
	}
	return rec
}
