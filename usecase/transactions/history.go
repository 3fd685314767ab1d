package transactions

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pilosa/txnimport/boltdb"
	"github.com/pkg/errors"
)

// HistoryMain lists recorded import runs.
type HistoryMain struct {
	History string `help:"Bolt file runs were recorded in."`
	Limit   int    `help:"Maximum number of runs to list. 0 lists all."`

	Stdout io.Writer `flag:"-"`
}

// NewHistoryMain returns a HistoryMain with the default options.
func NewHistoryMain() *HistoryMain {
	return &HistoryMain{
		History: "txnimport.db",
		Limit:   20,
		Stdout:  os.Stdout,
	}
}

// Run prints the recorded runs, newest first.
func (m *HistoryMain) Run() error {
	if _, err := os.Stat(m.History); err != nil {
		return errors.Wrap(err, "checking history file")
	}
	hist, err := boltdb.NewHistory(m.History)
	if err != nil {
		return errors.Wrap(err, "opening run history")
	}
	defer hist.Close()

	runs, err := hist.Runs(m.Limit)
	if err != nil {
		return errors.Wrap(err, "reading runs")
	}
	for _, r := range runs {
		fmt.Fprintf(m.Stdout, "%s %-11s index=%s successful=%d failed=%d verified=%d skipped=%d took=%s source=%s\n",
			r.Started.Format(time.RFC3339), r.State, r.Index, r.Successful, r.Failed, r.Verified, r.RowsSkipped,
			r.Duration.Round(time.Millisecond), r.Source)
		if r.Err != "" {
			fmt.Fprintf(m.Stdout, "    error: %s\n", r.Err)
		}
	}
	return nil
}
