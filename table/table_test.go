package table_test

import (
	"testing"
	"time"

	"github.com/trailpack/trailpack/datapackage"
	"github.com/trailpack/trailpack/table"
)

func TestColumnDType(t *testing.T) {
	ts := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		values []any
		want   table.DType
	}{
		{"all null", []any{nil, nil}, table.Empty},
		{"strings", []any{"a", nil, "b"}, table.String},
		{"integers", []any{int64(1), int64(2)}, table.Integer},
		{"floats", []any{1.5, 2.5}, table.Number},
		{"int and float promote", []any{int64(1), 2.5}, table.Number},
		{"booleans", []any{true, false}, table.Boolean},
		{"timestamps", []any{ts, nil}, table.Datetime},
		{"int and string mix", []any{int64(1), "x"}, table.Mixed},
		{"bool and float mix", []any{true, 1.5}, table.Mixed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := table.Column{Name: "c", Values: tc.values}
			if got := c.DType(); got != tc.want {
				t.Fatalf("DType() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNullStats(t *testing.T) {
	c := table.Column{Name: "c", Values: []any{nil, "a", nil, "b"}}
	if got := c.NullCount(); got != 2 {
		t.Errorf("NullCount() = %d", got)
	}
	if got := c.NullFraction(); got != 0.5 {
		t.Errorf("NullFraction() = %v", got)
	}
	empty := table.Column{Name: "e"}
	if got := empty.NullFraction(); got != 0 {
		t.Errorf("empty NullFraction() = %v", got)
	}
}

func TestNewRejectsBadShapes(t *testing.T) {
	if _, err := table.New(
		table.Column{Name: "a", Values: []any{1}},
		table.Column{Name: "a", Values: []any{2}},
	); err == nil {
		t.Error("duplicate names must be rejected")
	}
	if _, err := table.New(
		table.Column{Name: "a", Values: []any{1, 2}},
		table.Column{Name: "b", Values: []any{1}},
	); err == nil {
		t.Error("ragged columns must be rejected")
	}
	if _, err := table.New(table.Column{Values: []any{1}}); err == nil {
		t.Error("unnamed columns must be rejected")
	}
}

func TestDuplicateRows(t *testing.T) {
	tbl, err := table.New(
		table.Column{Name: "a", Values: []any{int64(1), int64(1), int64(2), int64(1)}},
		table.Column{Name: "b", Values: []any{"x", "x", "y", "x"}},
	)
	if err != nil {
		t.Fatal(err)
	}
	if got := tbl.DuplicateRowCount(); got != 2 {
		t.Errorf("DuplicateRowCount() = %d, want 2", got)
	}
	if got := tbl.DuplicateRowFraction(); got != 0.5 {
		t.Errorf("DuplicateRowFraction() = %v, want 0.5", got)
	}

	// Values that print alike but differ in type are not duplicates.
	typed, err := table.New(table.Column{Name: "a", Values: []any{int64(1), "1"}})
	if err != nil {
		t.Fatal(err)
	}
	if got := typed.DuplicateRowCount(); got != 0 {
		t.Errorf("typed DuplicateRowCount() = %d, want 0", got)
	}
}

func TestFieldTypeOf(t *testing.T) {
	tests := []struct {
		in   table.DType
		want datapackage.FieldType
	}{
		{table.Integer, datapackage.FieldInteger},
		{table.Number, datapackage.FieldNumber},
		{table.Boolean, datapackage.FieldBoolean},
		{table.Datetime, datapackage.FieldDatetime},
		{table.String, datapackage.FieldString},
		{table.Mixed, datapackage.FieldString},
		{table.Empty, datapackage.FieldString},
	}
	for _, tc := range tests {
		if got := table.FieldTypeOf(tc.in); got != tc.want {
			t.Errorf("FieldTypeOf(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
