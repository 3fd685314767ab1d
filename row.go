package txnimport

import (
	"strings"

	"github.com/pkg/errors"
)

// nullMarkers are cell values which are read as "no value". The set matches
// the markers commonly produced by spreadsheet and dataframe exports.
var nullMarkers = map[string]struct{}{
	"":         {},
	"NA":       {},
	"N/A":      {},
	"n/a":      {},
	"NaN":      {},
	"nan":      {},
	"-NaN":     {},
	"-nan":     {},
	"NULL":     {},
	"null":     {},
	"None":     {},
	"<NA>":     {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
}

// IsNull reports whether a raw cell value should be treated as missing.
func IsNull(val string) bool {
	_, ok := nullMarkers[strings.TrimSpace(val)]
	return ok
}

// Header is the ordered list of column names of a source. It is shared by
// every Row read from that source.
type Header struct {
	names []string
	index map[string]int
}

// NewHeader validates names and builds a Header from them. Column names must
// be non-empty and unique.
func NewHeader(names []string) (*Header, error) {
	h := &Header{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, errors.Errorf("column %d in header has an empty name", i)
		}
		if j, ok := h.index[name]; ok {
			return nil, errors.Errorf("column %d in header duplicates column %d: '%s'", i, j, name)
		}
		h.names[i] = name
		h.index[name] = i
	}
	return h, nil
}

// Names returns a copy of the column names in source order.
func (h *Header) Names() []string {
	return append([]string(nil), h.names...)
}

// Has reports whether the header contains column.
func (h *Header) Has(column string) bool {
	_, ok := h.index[column]
	return ok
}

// Len returns the number of columns.
func (h *Header) Len() int {
	return len(h.names)
}

// Row is one data record from a Source.
type Row struct {
	// Position is the 0-based index of the row among the data rows of the
	// source. It is the only input to the synthetic fallback values.
	Position int

	// Err is set when the record could not be parsed. Such a row carries no
	// values and is skipped by the Importer.
	Err error

	header *Header
	values []string
}

// NewRow returns a Row at position pos whose values correspond to header's
// columns. Missing trailing values are treated as null.
func NewRow(header *Header, pos int, values []string) *Row {
	return &Row{
		Position: pos,
		header:   header,
		values:   values,
	}
}

// Header returns the header the row was read under.
func (r *Row) Header() *Header {
	return r.header
}

// Has reports whether the row's source has a column named column, whether or
// not the row holds a value for it.
func (r *Row) Has(column string) bool {
	return r.header != nil && r.header.Has(column)
}

// Get returns the raw value of column. ok is false if the column doesn't
// exist or its value is null.
func (r *Row) Get(column string) (val string, ok bool) {
	if r.header == nil {
		return "", false
	}
	i, exists := r.header.index[column]
	if !exists || i >= len(r.values) {
		return "", false
	}
	val = r.values[i]
	if IsNull(val) {
		return "", false
	}
	return val, true
}
