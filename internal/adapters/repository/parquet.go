package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/compress"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"

	"github.com/okian/pitchtrack/internal/domain/model"
)

const (
	parquetExt   = ".parquet"
	colDate      = "date"
	colCategory  = "category"
	rowGroupSize = 64 * 1024
)

// ParquetStore writes one Parquet file per subject under dir. Columns are
// date (date32), category (utf8) and one nullable float64 per schema measure.
type ParquetStore struct {
	dir string
	mem memory.Allocator
}

// NewParquetStore creates dir if needed.
func NewParquetStore(dir string) (*ParquetStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &ParquetStore{dir: dir, mem: memory.NewGoAllocator()}, nil
}

func (s *ParquetStore) path(key string) string { return filepath.Join(s.dir, key+parquetExt) }

func (s *ParquetStore) Load(ctx context.Context, key string) (model.Batch, error) {
	if err := validKey(key); err != nil {
		return model.Batch{}, err
	}
	f, err := os.Open(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return model.Batch{}, ErrNotFound
	}
	if err != nil {
		return model.Batch{}, fmt.Errorf("open %s: %w", key, err)
	}
	defer f.Close()

	tbl, err := pqarrow.ReadTable(ctx, f, parquet.NewReaderProperties(s.mem), pqarrow.ArrowReadProperties{}, s.mem)
	if err != nil {
		return model.Batch{}, fmt.Errorf("%w: %s: %w", ErrCorrupt, key, err)
	}
	defer tbl.Release()
	return batchFromTable(tbl)
}

func (s *ParquetStore) Replace(_ context.Context, key string, b model.Batch) error {
	if err := validKey(key); err != nil {
		return err
	}
	rec := recordFromBatch(s.mem, b)
	defer rec.Release()
	tbl := array.NewTableFromRecords(rec.Schema(), []arrow.Record{rec})
	defer tbl.Release()

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	if err := pqarrow.WriteTable(tbl, tmp, rowGroupSize, props, pqarrow.DefaultWriterProps()); err != nil {
		tmp.Close()
		return fmt.Errorf("write parquet: %w", err)
	}
	// WriteTable closes the sink when it is an io.Closer.
	if err := tmp.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

func (s *ParquetStore) Keys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list data dir: %w", err)
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), parquetExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(e.Name(), parquetExt))
	}
	slices.Sort(keys)
	return keys, nil
}

func (s *ParquetStore) Close() error { return nil }

func arrowSchema(schema model.Schema) *arrow.Schema {
	fields := []arrow.Field{
		{Name: colDate, Type: arrow.FixedWidthTypes.Date32},
		{Name: colCategory, Type: arrow.BinaryTypes.String},
	}
	for _, m := range schema.Measures() {
		fields = append(fields, arrow.Field{Name: m.String(), Type: arrow.PrimitiveTypes.Float64, Nullable: true})
	}
	return arrow.NewSchema(fields, nil)
}

func recordFromBatch(mem memory.Allocator, b model.Batch) arrow.Record {
	measures := b.Schema.Measures()
	rb := array.NewRecordBuilder(mem, arrowSchema(b.Schema))
	defer rb.Release()

	dates := rb.Field(0).(*array.Date32Builder)
	cats := rb.Field(1).(*array.StringBuilder)
	for _, o := range b.Observations {
		dates.Append(arrow.Date32FromTime(o.Date))
		cats.Append(o.Category)
		for i, m := range measures {
			fb := rb.Field(i + 2).(*array.Float64Builder)
			if v := o.Get(m); v.Valid {
				fb.Append(v.Float)
			} else {
				fb.AppendNull()
			}
		}
	}
	return rb.NewRecord()
}

func batchFromTable(tbl arrow.Table) (model.Batch, error) {
	var b model.Batch
	sch := tbl.Schema()

	column := func(name string) ([]arrow.Array, bool) {
		idx := sch.FieldIndices(name)
		if len(idx) == 0 {
			return nil, false
		}
		return tbl.Column(idx[0]).Data().Chunks(), true
	}

	dateChunks, ok := column(colDate)
	if !ok {
		return b, fmt.Errorf("%w: missing %s column", ErrCorrupt, colDate)
	}
	catChunks, ok := column(colCategory)
	if !ok {
		return b, fmt.Errorf("%w: missing %s column", ErrCorrupt, colCategory)
	}

	b.Observations = make([]model.Observation, 0, tbl.NumRows())
	for _, chunk := range dateChunks {
		dates, ok := chunk.(*array.Date32)
		if !ok {
			return b, fmt.Errorf("%w: %s is %s", ErrCorrupt, colDate, chunk.DataType())
		}
		for i := 0; i < dates.Len(); i++ {
			b.Observations = append(b.Observations, model.Observation{Date: model.Date(dates.Value(i).ToTime())})
		}
	}

	row := 0
	for _, chunk := range catChunks {
		cats, ok := chunk.(*array.String)
		if !ok {
			return b, fmt.Errorf("%w: %s is %s", ErrCorrupt, colCategory, chunk.DataType())
		}
		for i := 0; i < cats.Len() && row < len(b.Observations); i++ {
			b.Observations[row].Category = cats.Value(i)
			row++
		}
	}

	for _, m := range model.Measures() {
		chunks, ok := column(m.String())
		if !ok {
			continue
		}
		b.Schema[m] = true
		row := 0
		for _, chunk := range chunks {
			vals, ok := chunk.(*array.Float64)
			if !ok {
				return b, fmt.Errorf("%w: %s is %s", ErrCorrupt, m, chunk.DataType())
			}
			for i := 0; i < vals.Len() && row < len(b.Observations); i++ {
				if vals.IsValid(i) {
					b.Observations[row].Set(m, model.Some(vals.Value(i)))
				}
				row++
			}
		}
	}
	return b, nil
}
