// Package csvtable streams delimited files as header-keyed rows. The first
// record defines the column names; every following record becomes a map from
// column name to raw string value. Files are never buffered whole.
package csvtable

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Row maps column names to the raw string value observed in one record.
// Columns missing from a short record are absent from the map; lookups for
// them yield the empty string.
type Row map[string]string

// Reader is a lazy, finite, non-restartable row sequence over a delimited
// source. The header is consumed when the Reader is constructed.
type Reader struct {
	cr     *csv.Reader
	header []string
}

// NewReader wraps src and consumes its header record. A completely empty
// source yields a Reader with no columns and no rows rather than an error.
func NewReader(src io.Reader) (*Reader, error) {
	cr := csv.NewReader(src)
	// Tolerate ragged records; width differences are handled per row.
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err == io.EOF {
		return &Reader{cr: cr, header: nil}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header failed: %w", err)
	}

	cols := make([]string, len(header))
	copy(cols, header)
	return &Reader{cr: cr, header: cols}, nil
}

// Columns returns the header fields in original order. Duplicate names are
// preserved as they appeared; no de-duplication happens here.
func (r *Reader) Columns() []string {
	return r.header
}

// Next returns the next row, or io.EOF once the source is exhausted.
func (r *Reader) Next() (Row, error) {
	record, err := r.cr.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("read csv record failed: %w", err)
	}

	row := make(Row, len(r.header))
	for i, name := range r.header {
		if i < len(record) {
			row[name] = record[i]
		}
	}
	return row, nil
}

// ReadColumns consumes src only far enough to learn its header. This is the
// upload-time column extraction path; the row data is never materialized.
func ReadColumns(src io.Reader) ([]string, error) {
	r, err := NewReader(src)
	if err != nil {
		return nil, err
	}
	cols := r.Columns()
	if cols == nil {
		cols = []string{}
	}
	return cols, nil
}
