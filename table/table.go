// Package table provides the in-memory columnar dataset the validator and
// exporter operate on. Columns hold generic values (nil marks a null), so a
// column can carry mixed concrete types the way a spreadsheet does; DType
// reports the observed storage category, and ValueType the concrete type of
// a single value.
package table

import (
	"fmt"
	"strings"
	"time"

	"github.com/trailpack/trailpack/datapackage"
)

// DType is the observed storage category of a column.
type DType int

const (
	Empty    DType = iota // no non-null values
	String
	Integer
	Number // float, or mixed int/float
	Boolean
	Datetime
	Mixed // more than one concrete category
)

func (d DType) String() string {
	switch d {
	case String:
		return "string"
	case Integer:
		return "integer"
	case Number:
		return "number"
	case Boolean:
		return "boolean"
	case Datetime:
		return "datetime"
	case Mixed:
		return "mixed"
	default:
		return "empty"
	}
}

// ValueType names the concrete type of a single cell value: "string",
// "integer", "number", "boolean" or "datetime". Nil values yield "".
func ValueType(v any) string {
	switch v.(type) {
	case nil:
		return ""
	case string:
		return "string"
	case int, int32, int64:
		return "integer"
	case float32, float64:
		return "number"
	case bool:
		return "boolean"
	case time.Time:
		return "datetime"
	default:
		return "string"
	}
}

// Column is a named, ordered list of values. A nil value is a null.
type Column struct {
	Name   string
	Values []any
}

// DType computes the column's storage category from its non-null values.
// Integer and float values together promote to Number; any other mix of
// categories is Mixed.
func (c Column) DType() DType {
	seen := map[string]bool{}
	for _, v := range c.Values {
		if v == nil {
			continue
		}
		seen[ValueType(v)] = true
	}
	switch len(seen) {
	case 0:
		return Empty
	case 1:
		for t := range seen {
			return dtypeOf(t)
		}
	case 2:
		if seen["integer"] && seen["number"] {
			return Number
		}
	}
	return Mixed
}

func dtypeOf(valueType string) DType {
	switch valueType {
	case "string":
		return String
	case "integer":
		return Integer
	case "number":
		return Number
	case "boolean":
		return Boolean
	case "datetime":
		return Datetime
	default:
		return Empty
	}
}

// NullCount returns the number of null values.
func (c Column) NullCount() int {
	n := 0
	for _, v := range c.Values {
		if v == nil {
			n++
		}
	}
	return n
}

// NullFraction returns the fraction of null values, 0 for an empty column.
func (c Column) NullFraction() float64 {
	if len(c.Values) == 0 {
		return 0
	}
	return float64(c.NullCount()) / float64(len(c.Values))
}

// Table is an ordered collection of equally long columns.
type Table struct {
	cols []Column
}

// New builds a Table, rejecting duplicate column names and ragged columns.
func New(cols ...Column) (*Table, error) {
	names := map[string]bool{}
	rows := -1
	for _, c := range cols {
		if c.Name == "" {
			return nil, fmt.Errorf("table: column without a name")
		}
		if names[c.Name] {
			return nil, fmt.Errorf("table: duplicate column %q", c.Name)
		}
		names[c.Name] = true
		if rows < 0 {
			rows = len(c.Values)
		} else if len(c.Values) != rows {
			return nil, fmt.Errorf("table: column %q has %d values, want %d", c.Name, len(c.Values), rows)
		}
	}
	return &Table{cols: cols}, nil
}

// Columns returns the columns in order.
func (t *Table) Columns() []Column { return t.cols }

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.cols {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return len(t.cols[0].Values)
}

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.cols) }

// DuplicateRowCount returns how many rows are exact duplicates of an
// earlier row.
func (t *Table) DuplicateRowCount() int {
	rows := t.NumRows()
	if rows == 0 {
		return 0
	}
	seen := make(map[string]bool, rows)
	dups := 0
	var b strings.Builder
	for i := 0; i < rows; i++ {
		b.Reset()
		for _, c := range t.cols {
			fmt.Fprintf(&b, "%#v\x1f", c.Values[i])
		}
		key := b.String()
		if seen[key] {
			dups++
		}
		seen[key] = true
	}
	return dups
}

// DuplicateRowFraction returns the duplicate count as a fraction of all rows.
func (t *Table) DuplicateRowFraction() float64 {
	rows := t.NumRows()
	if rows == 0 {
		return 0
	}
	return float64(t.DuplicateRowCount()) / float64(rows)
}

// FieldTypeOf maps an observed column category to the declared field type
// used when inferring a schema from data.
func FieldTypeOf(d DType) datapackage.FieldType {
	switch d {
	case Integer:
		return datapackage.FieldInteger
	case Number:
		return datapackage.FieldNumber
	case Boolean:
		return datapackage.FieldBoolean
	case Datetime:
		return datapackage.FieldDatetime
	default:
		return datapackage.FieldString
	}
}
