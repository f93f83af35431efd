package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ReadCSV reads a headed CSV document into a Table, inferring cell types:
// integers, floats, booleans and ISO 8601 timestamps/dates are converted,
// empty cells become nulls, everything else stays a string. Inference is
// per cell, so a column fed inconsistent data surfaces as mixed-type during
// validation instead of being silently coerced. Rows shorter than the
// header are padded with nulls; rows wider than the header are an error.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}
	cols := make([]Column, len(header))
	for i, name := range header {
		cols[i] = Column{Name: strings.TrimSpace(name)}
	}
	row := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read row: %w", err)
		}
		row++
		// Short rows pad with nulls; a row wider than the header means a
		// malformed file, not missing data.
		if len(rec) > len(cols) {
			return nil, fmt.Errorf("csv: row %d has %d cells, header declares %d", row, len(rec), len(cols))
		}
		for i := range cols {
			if i < len(rec) {
				cols[i].Values = append(cols[i].Values, parseCell(rec[i]))
			} else {
				cols[i].Values = append(cols[i].Values, nil)
			}
		}
	}
	return New(cols...)
}

func parseCell(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return s
}
