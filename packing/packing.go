// Package packing writes tables to Parquet with the package descriptor
// embedded in the file, and reads such files back. A packed file is
// self-describing: the schema metadata carries the full descriptor under
// the "datapackage.json" key, so data and documentation cannot drift apart.
package packing

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/apache/arrow/go/v11/arrow"
	"github.com/apache/arrow/go/v11/arrow/array"
	"github.com/apache/arrow/go/v11/arrow/memory"
	"github.com/apache/arrow/go/v11/parquet"
	"github.com/apache/arrow/go/v11/parquet/compress"
	"github.com/apache/arrow/go/v11/parquet/file"
	"github.com/apache/arrow/go/v11/parquet/pqarrow"

	"github.com/trailpack/trailpack/datapackage"
	"github.com/trailpack/trailpack/table"
)

// MetadataKey is the schema-metadata key holding the JSON descriptor.
const MetadataKey = "datapackage.json"

// MediatypeParquet is the IANA media type for Parquet resources.
const MediatypeParquet = "application/vnd.apache.parquet"

// Write encodes the table as a Parquet file on w with the package
// descriptor embedded in the stored schema metadata.
func Write(w io.Writer, tbl *table.Table, pkg *datapackage.DataPackage) error {
	descriptor, err := pkg.Descriptor()
	if err != nil {
		return fmt.Errorf("packing: encode descriptor: %w", err)
	}
	schema, err := arrowSchema(tbl, descriptor)
	if err != nil {
		return err
	}
	rec, err := buildRecord(schema, tbl)
	if err != nil {
		return err
	}
	defer rec.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	// WithStoreSchema keeps the Arrow schema, metadata included, in the file
	// footer so readers recover the descriptor.
	arrProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())
	// The parquet writer closes its sink when it implements io.Closer; wrap
	// w so Close ownership stays with the caller.
	fw, err := pqarrow.NewFileWriter(schema, struct{ io.Writer }{w}, props, arrProps)
	if err != nil {
		return fmt.Errorf("packing: open writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return fmt.Errorf("packing: write record: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("packing: close writer: %w", err)
	}
	return nil
}

// WriteFile writes the packed Parquet file at path.
func WriteFile(path string, tbl *table.Table, pkg *datapackage.DataPackage) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, tbl, pkg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read decodes a packed Parquet file: the table plus the embedded
// descriptor. A file without a descriptor yields a nil package, not an
// error, so plain Parquet files remain readable.
func Read(ctx context.Context, r parquet.ReaderAtSeeker) (*table.Table, *datapackage.DataPackage, error) {
	pf, err := file.NewParquetReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("packing: open reader: %w", err)
	}
	defer pf.Close()

	ar, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{BatchSize: 1024}, memory.DefaultAllocator)
	if err != nil {
		return nil, nil, fmt.Errorf("packing: arrow reader: %w", err)
	}
	at, err := ar.ReadTable(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("packing: read table: %w", err)
	}
	defer at.Release()

	var pkg *datapackage.DataPackage
	md := at.Schema().Metadata()
	if idx := md.FindKey(MetadataKey); idx >= 0 {
		pkg, err = datapackage.ParseDescriptor([]byte(md.Values()[idx]))
		if err != nil {
			return nil, nil, fmt.Errorf("packing: parse descriptor: %w", err)
		}
	} else if kv := pf.MetaData().KeyValueMetadata(); kv != nil {
		if v := kv.FindValue(MetadataKey); v != nil {
			pkg, err = datapackage.ParseDescriptor([]byte(*v))
			if err != nil {
				return nil, nil, fmt.Errorf("packing: parse descriptor: %w", err)
			}
		}
	}

	tbl, err := fromArrow(at)
	if err != nil {
		return nil, nil, err
	}
	return tbl, pkg, nil
}

// ReadFile reads a packed Parquet file from disk.
func ReadFile(ctx context.Context, path string) (*table.Table, *datapackage.DataPackage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return Read(ctx, f)
}

func arrowSchema(tbl *table.Table, descriptor []byte) (*arrow.Schema, error) {
	fields := make([]arrow.Field, 0, tbl.NumCols())
	for _, col := range tbl.Columns() {
		var dt arrow.DataType
		switch col.DType() {
		case table.Integer:
			dt = arrow.PrimitiveTypes.Int64
		case table.Number:
			dt = arrow.PrimitiveTypes.Float64
		case table.Boolean:
			dt = arrow.FixedWidthTypes.Boolean
		case table.Datetime:
			dt = arrow.FixedWidthTypes.Timestamp_us
		default:
			// strings, empty and mixed columns all serialize as strings
			dt = arrow.BinaryTypes.String
		}
		fields = append(fields, arrow.Field{Name: col.Name, Type: dt, Nullable: true})
	}
	md := arrow.NewMetadata([]string{MetadataKey}, []string{string(descriptor)})
	return arrow.NewSchema(fields, &md), nil
}

func buildRecord(schema *arrow.Schema, tbl *table.Table) (arrow.Record, error) {
	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	for i, col := range tbl.Columns() {
		fb := builder.Field(i)
		for _, val := range col.Values {
			if val == nil {
				fb.AppendNull()
				continue
			}
			if err := appendValue(fb, val); err != nil {
				return nil, fmt.Errorf("packing: column %q: %w", col.Name, err)
			}
		}
	}
	return builder.NewRecord(), nil
}

func appendValue(fb array.Builder, val any) error {
	switch b := fb.(type) {
	case *array.Int64Builder:
		i, ok := asInt64(val)
		if !ok {
			return fmt.Errorf("value %v is not an integer", val)
		}
		b.Append(i)
	case *array.Float64Builder:
		f, ok := asFloat64(val)
		if !ok {
			return fmt.Errorf("value %v is not a number", val)
		}
		b.Append(f)
	case *array.BooleanBuilder:
		v, ok := val.(bool)
		if !ok {
			return fmt.Errorf("value %v is not a boolean", val)
		}
		b.Append(v)
	case *array.TimestampBuilder:
		t, ok := val.(time.Time)
		if !ok {
			return fmt.Errorf("value %v is not a timestamp", val)
		}
		b.Append(arrow.Timestamp(t.UnixMicro()))
	case *array.StringBuilder:
		if s, ok := val.(string); ok {
			b.Append(s)
		} else {
			b.Append(fmt.Sprintf("%v", val))
		}
	default:
		return fmt.Errorf("unsupported builder %T", fb)
	}
	return nil
}

func asInt64(val any) (int64, bool) {
	switch v := val.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}

func asFloat64(val any) (float64, bool) {
	switch v := val.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func fromArrow(at arrow.Table) (*table.Table, error) {
	cols := make([]table.Column, 0, int(at.NumCols()))
	for ci := 0; ci < int(at.NumCols()); ci++ {
		name := at.Schema().Field(ci).Name
		values := make([]any, 0, int(at.NumRows()))
		for _, chunk := range at.Column(ci).Data().Chunks() {
			vals, err := chunkValues(chunk)
			if err != nil {
				return nil, fmt.Errorf("packing: column %q: %w", name, err)
			}
			values = append(values, vals...)
		}
		cols = append(cols, table.Column{Name: name, Values: values})
	}
	return table.New(cols...)
}

func chunkValues(chunk arrow.Array) ([]any, error) {
	out := make([]any, 0, chunk.Len())
	switch arr := chunk.(type) {
	case *array.Int64:
		for i := 0; i < arr.Len(); i++ {
			if arr.IsNull(i) {
				out = append(out, nil)
			} else {
				out = append(out, arr.Value(i))
			}
		}
	case *array.Float64:
		for i := 0; i < arr.Len(); i++ {
			if arr.IsNull(i) {
				out = append(out, nil)
			} else {
				out = append(out, arr.Value(i))
			}
		}
	case *array.Boolean:
		for i := 0; i < arr.Len(); i++ {
			if arr.IsNull(i) {
				out = append(out, nil)
			} else {
				out = append(out, arr.Value(i))
			}
		}
	case *array.Timestamp:
		unit := arrow.Microsecond
		if tt, ok := arr.DataType().(*arrow.TimestampType); ok {
			unit = tt.Unit
		}
		for i := 0; i < arr.Len(); i++ {
			if arr.IsNull(i) {
				out = append(out, nil)
			} else {
				out = append(out, timestampToTime(arr.Value(i), unit))
			}
		}
	case *array.String:
		for i := 0; i < arr.Len(); i++ {
			if arr.IsNull(i) {
				out = append(out, nil)
			} else {
				out = append(out, arr.Value(i))
			}
		}
	default:
		return nil, fmt.Errorf("unsupported array type %T", chunk)
	}
	return out, nil
}

func timestampToTime(ts arrow.Timestamp, unit arrow.TimeUnit) time.Time {
	switch unit {
	case arrow.Second:
		return time.Unix(int64(ts), 0).UTC()
	case arrow.Millisecond:
		return time.UnixMilli(int64(ts)).UTC()
	case arrow.Nanosecond:
		return time.Unix(0, int64(ts)).UTC()
	default:
		return time.UnixMicro(int64(ts)).UTC()
	}
}
