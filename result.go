package txnimport

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
)

// State is the stage an import has reached.
type State int

// States an import moves through. Any failure before StateLoading moves the
// import to StateAborted. Once loading has begun, failures are only counted.
const (
	StateInit State = iota
	StateConnected
	StateProvisioned
	StateLoading
	StateVerified
	StateAborted
)

var stateNames = map[State]string{
	StateInit:        "INIT",
	StateConnected:   "CONNECTED",
	StateProvisioned: "PROVISIONED",
	StateLoading:     "LOADING",
	StateVerified:    "VERIFIED",
	StateAborted:     "ABORTED",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	for st, name := range stateNames {
		if name == string(text) {
			*s = st
			return nil
		}
	}
	return errors.Errorf("unknown state '%s'", text)
}

// Result summarizes one import run.
type Result struct {
	Index       string        `json:"index"`
	Source      string        `json:"source"`
	Destination string        `json:"destination"`
	Started     time.Time     `json:"started"`
	Duration    time.Duration `json:"duration"`
	State       State         `json:"state"`

	RowsRead      int `json:"rows_read"`
	RowsSkipped   int `json:"rows_skipped"`
	Batches       int `json:"batches"`
	FailedBatches int `json:"failed_batches"`

	// Successful and Failed count documents as reported by the bulk
	// responses. Verified is the document count the index reported
	// afterwards.
	Successful int   `json:"successful"`
	Failed     int   `json:"failed"`
	Verified   int64 `json:"verified"`

	Sample json.RawMessage `json:"sample,omitempty"`
	Err    string          `json:"error,omitempty"`
}

// WriteSummary writes the human readable end of run report.
func (r *Result) WriteSummary(w io.Writer) error {
	var err error
	p := func(format string, v ...interface{}) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, v...)
		}
	}
	p("==================================================\n")
	p("Import completed\n")
	p("  index:                 %s\n", r.Index)
	p("  destination:           %s\n", r.Destination)
	p("  successfully imported: %d documents\n", r.Successful)
	p("  failed imports:        %d documents\n", r.Failed)
	p("  total in index:        %d documents\n", r.Verified)
	if r.RowsSkipped > 0 {
		p("  skipped rows:          %d\n", r.RowsSkipped)
	}
	if int64(r.Successful) != r.Verified {
		p("  note: index holds %d documents but %d were reported imported\n", r.Verified, r.Successful)
	}
	p("  elapsed:               %s\n", r.Duration.Round(time.Millisecond))
	return errors.Wrap(err, "writing summary")
}
