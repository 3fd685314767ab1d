// Package gen writes synthetic transaction CSV files for trying out and
// load testing the importer.
package gen

import (
	"bufio"
	"io"
	"os"
	"time"

	"github.com/pilosa/txnimport/fake"
	"github.com/pkg/errors"
)

// Main holds the options for generating a transaction CSV.
type Main struct {
	Schema    string  `help:"Layout of the generated file: generic or banking."`
	Num       int     `help:"Number of transactions to generate."`
	Seed      int64   `help:"Random seed for generating data. -1 will use current nanosecond."`
	Out       string  `help:"File to write. '-' writes to stdout."`
	Customers int     `help:"Number of distinct customers or accounts."`
	FraudRate float64 `help:"Fraction of transactions flagged as fraud."`
	NullRate  float64 `help:"Fraction of cells left empty."`

	Stdout io.Writer `flag:"-"`
}

// NewMain returns a new Main.
func NewMain() *Main {
	return &Main{
		Schema:    string(fake.SchemaGeneric),
		Num:       10000,
		Seed:      1,
		Out:       "transactions.csv",
		Customers: 1000,
		FraudRate: 0.01,
		Stdout:    os.Stdout,
	}
}

// Run generates the file.
func (m *Main) Run() (err error) {
	if m.Num < 0 {
		return errors.Errorf("can't generate %d transactions", m.Num)
	}
	if m.Seed == -1 {
		m.Seed = time.Now().UnixNano()
	}

	out := m.Stdout
	if m.Out != "-" {
		f, err := os.Create(m.Out)
		if err != nil {
			return errors.Wrap(err, "creating output file")
		}
		defer func() {
			if cerr := f.Close(); err == nil && cerr != nil {
				err = errors.Wrap(cerr, "closing output file")
			}
		}()
		out = f
	}
	bw := bufio.NewWriter(out)

	w, err := fake.NewWriter(bw, fake.Config{
		Schema:    fake.Schema(m.Schema),
		Seed:      m.Seed,
		Customers: m.Customers,
		FraudRate: m.FraudRate,
		NullRate:  m.NullRate,
	})
	if err != nil {
		return errors.Wrap(err, "getting writer")
	}
	if err := w.Write(m.Num); err != nil {
		return errors.Wrap(err, "generating transactions")
	}
	return errors.Wrap(bw.Flush(), "flushing output")
}
