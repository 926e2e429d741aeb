// Package sheet fetches a spreadsheet published as CSV and turns it into
// ordered row records ready for JSON encoding.
//
// The flow for one request is:
//
//	Relay.Load -> Fetcher.Fetch -> Parse -> Result
//
// Every failure is folded into a Result with a fixed Kind so the HTTP layer
// can map it to a status code without inspecting error strings.
package sheet

import (
	"bytes"
	"encoding/json"
)

// ExtraKey holds the cells of a row that runs past the header.
const ExtraKey = "_extra"

// Cell is one column value within a Record.
type Cell struct {
	Column string
	Value  string

	// Missing is set when the row ended before this column. It encodes as null.
	Missing bool
}

// Record is one data line keyed by header names, in header order.
type Record struct {
	Cells []Cell

	// Extra collects cells beyond the last header column, if any.
	Extra []string
}

// Get returns the value for column and whether it was present in the row.
func (r Record) Get(column string) (string, bool) {
	for _, c := range r.Cells {
		if c.Column == column {
			return c.Value, !c.Missing
		}
	}
	return "", false
}

// MarshalJSON writes the record as a JSON object whose keys follow header
// order. Cell text is not HTML-escaped, so URLs keep their ampersands.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	// put encodes v and drops the newline Encode appends.
	put := func(v any) error {
		if err := enc.Encode(v); err != nil {
			return err
		}
		buf.Truncate(buf.Len() - 1)
		return nil
	}

	buf.WriteByte('{')
	for i, c := range r.Cells {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := put(c.Column); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if c.Missing {
			buf.WriteString("null")
			continue
		}
		if err := put(c.Value); err != nil {
			return nil, err
		}
	}

	if r.Extra != nil {
		if len(r.Cells) > 0 {
			buf.WriteByte(',')
		}
		if err := put(ExtraKey); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := put(r.Extra); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Table is the parsed form of one CSV document.
type Table struct {
	// Columns are the unique header names in first-seen order.
	Columns []string
	Records []Record
}
