// Package fake generates synthetic transaction CSV files in the layouts the
// importer understands.
package fake

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pilosa/txnimport"
	"github.com/pilosa/txnimport/fake/gen"
	"github.com/pkg/errors"
)

// Schema names a CSV layout.
type Schema string

// Supported layouts.
const (
	// SchemaGeneric is the layout of common fraud detection datasets.
	SchemaGeneric Schema = "generic"
	// SchemaBanking is the layout of bank account transaction exports.
	SchemaBanking Schema = "banking"
)

var (
	genericHeader = []string{"transaction_id", "customer_id", "amount", "category", "merchant_name", "location", "timestamp", "is_fraud"}
	bankingHeader = []string{"TransactionID", "AccountID", "TransactionAmount", "TransactionDate", "TransactionType", "Location", "MerchantID", "Channel", "AccountBalance", "PreviousTransactionDate"}

	cities     = []string{"Austin", "Boston", "Chicago", "Denver", "Houston", "Miami", "Portland", "San Diego", "Seattle", "Tucson"}
	merchants  = []string{"fraud_Kirlin and Sons", "fraud_Sporer-Keebler", "fraud_Haley Group", "fraud_Johnston-Casper", "fraud_Rippin, Kub and Mann"}
	channels   = []string{"ATM", "Online", "Branch"}
	txnTypes   = []string{"Debit", "Credit"}
	timeLayout = "2006-01-02 15:04:05"
)

// Config controls what a Writer generates.
type Config struct {
	Schema Schema
	Seed   int64

	// Start is the time of the earliest transaction.
	Start time.Time

	// Customers is the number of distinct customers or accounts.
	Customers int

	// FraudRate is the fraction of transactions flagged as fraud.
	FraudRate float64

	// NullRate is the fraction of cells left empty in columns the importer
	// can fill in itself.
	NullRate float64
}

// Writer writes synthetic transactions as CSV.
type Writer struct {
	cfg    Config
	g      *gen.Generator
	w      *csv.Writer
	header []string
	n      int
}

// NewWriter returns a Writer generating cfg.Schema rows to w.
func NewWriter(w io.Writer, cfg Config) (*Writer, error) {
	var header []string
	switch cfg.Schema {
	case SchemaGeneric:
		header = genericHeader
	case SchemaBanking:
		header = bankingHeader
	default:
		return nil, errors.Errorf("unknown schema '%s'", cfg.Schema)
	}
	if cfg.Customers < 1 {
		cfg.Customers = 1000
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &Writer{
		cfg:    cfg,
		g:      gen.NewGenerator(cfg.Seed),
		w:      csv.NewWriter(w),
		header: header,
	}, nil
}

// Write writes the header, if it hasn't been written yet, followed by n
// transactions.
func (w *Writer) Write(n int) error {
	if w.n == 0 {
		if err := w.w.Write(w.header); err != nil {
			return errors.Wrap(err, "writing header")
		}
	}
	for i := 0; i < n; i++ {
		var rec []string
		if w.cfg.Schema == SchemaBanking {
			rec = w.banking()
		} else {
			rec = w.generic()
		}
		if err := w.w.Write(rec); err != nil {
			return errors.Wrapf(err, "writing transaction %d", w.n)
		}
		w.n++
	}
	w.w.Flush()
	return errors.Wrap(w.w.Error(), "flushing")
}

// maybe returns val, or an empty cell at the configured null rate.
func (w *Writer) maybe(val string) string {
	if w.cfg.NullRate > 0 && w.g.Chance(w.cfg.NullRate) {
		return ""
	}
	return val
}

func (w *Writer) generic() []string {
	ts := w.g.Time(w.cfg.Start, 10*time.Minute)
	fraud := "0"
	if w.g.Chance(w.cfg.FraudRate) {
		fraud = "1"
	}
	return []string{
		w.maybe(fmt.Sprintf("T%08d", w.n)),
		w.maybe(fmt.Sprintf("C%05d", w.g.Uint64(w.cfg.Customers))),
		w.maybe(strconv.FormatFloat(w.g.Amount(45), 'f', 2, 64)),
		w.maybe(w.g.Pick(txnimport.MerchantCategories)),
		w.maybe(w.g.Pick(merchants)),
		w.maybe(w.g.Pick(cities)),
		w.maybe(ts.Format(timeLayout)),
		w.maybe(fraud),
	}
}

func (w *Writer) banking() []string {
	ts := w.g.Time(w.cfg.Start, time.Hour)
	prev := ts.Add(-time.Duration(w.g.Intn(30*24)+1) * time.Hour)
	return []string{
		w.maybe(fmt.Sprintf("TX%06d", w.n+1)),
		w.maybe(fmt.Sprintf("AC%05d", w.g.Uint64(w.cfg.Customers))),
		w.maybe(strconv.FormatFloat(w.g.Amount(250), 'f', 2, 64)),
		w.maybe(ts.Format(timeLayout)),
		w.maybe(w.g.Pick(txnTypes)),
		w.maybe(w.g.Pick(cities)),
		fmt.Sprintf("M%03d", w.g.Intn(100)),
		w.g.Pick(channels),
		w.maybe(strconv.FormatFloat(w.g.Amount(5000), 'f', 2, 64)),
		prev.Format(timeLayout),
	}
}
