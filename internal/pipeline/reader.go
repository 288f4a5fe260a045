package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// RawRecord is one untrusted row from an import source, fields still in
// their textual form. Index is the zero-based record position in the source,
// preserved so rejections can point at the offending row.
type RawRecord struct {
	Index       int
	Date        string
	Merchant    string
	Description string
	Amount      string
	Direction   string
}

// Format describes the shape of a bank CSV export. Column lookups are by
// header name, case-insensitive, so column order does not matter.
type Format struct {
	Delimiter         rune
	DateColumn        string
	MerchantColumn    string
	DescriptionColumn string
	AmountColumn      string
	DirectionColumn   string
	DateLayouts       []string
	DecimalComma      bool
	DebitMarkers      []string
}

// DefaultFormat matches the ING bank export: semicolon-separated, compact
// dates, comma decimals and a separate Debit/credit column.
func DefaultFormat() Format {
	return Format{
		Delimiter:         ';',
		DateColumn:        "Date",
		MerchantColumn:    "Name / Description",
		DescriptionColumn: "Notifications",
		AmountColumn:      "Amount (EUR)",
		DirectionColumn:   "Debit/credit",
		DateLayouts:       []string{"20060102", "2006-01-02", "02-01-2006"},
		DecimalComma:      true,
		DebitMarkers:      []string{"debit", "af"},
	}
}

// Reader streams raw records out of a CSV source one at a time, so an import
// can be cancelled between records without reading the whole file first.
type Reader struct {
	csv     *csv.Reader
	columns map[string]int
	format  Format
	index   int
}

// NewReader wraps a CSV source and consumes its header row. An unreadable
// source or a header missing the date or amount column fails here, once,
// before any record is processed.
func NewReader(source io.Reader, format Format) (*Reader, error) {
	cr := csv.NewReader(source)
	cr.Comma = format.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading import header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, required := range []string{format.DateColumn, format.AmountColumn} {
		if _, ok := columns[strings.ToLower(required)]; !ok {
			return nil, fmt.Errorf("import header is missing column %q", required)
		}
	}

	return &Reader{csv: cr, columns: columns, format: format}, nil
}

// Next returns the next raw record, or io.EOF when the source is exhausted.
// A row the CSV layer cannot parse is returned as an error alongside the
// record index so the caller can reject it and keep going.
func (r *Reader) Next() (*RawRecord, error) {
	row, err := r.csv.Read()
	if err == io.EOF {
		return nil, io.EOF
	}

	index := r.index
	r.index++

	if err != nil {
		return &RawRecord{Index: index}, fmt.Errorf("record %d: %w", index, err)
	}

	return &RawRecord{
		Index:       index,
		Date:        r.field(row, r.format.DateColumn),
		Merchant:    r.field(row, r.format.MerchantColumn),
		Description: r.field(row, r.format.DescriptionColumn),
		Amount:      r.field(row, r.format.AmountColumn),
		Direction:   r.field(row, r.format.DirectionColumn),
	}, nil
}

func (r *Reader) field(row []string, column string) string {
	if column == "" {
		return ""
	}
	i, ok := r.columns[strings.ToLower(column)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
