package txnimport

import (
	"context"
	"encoding/json"
)

// Error is a constant error type.
type Error string

func (e Error) Error() string { return string(e) }

// Errors which end an import early. Compare against errors.Cause(err).
const (
	ErrSourceNotFound = Error("source not found")
	ErrUnauthorized   = Error("destination rejected credentials")
	ErrNoDocuments    = Error("no documents to import")
)

// Source is a CSV input read as a whole.
type Source interface {
	// Open makes sure the input exists and can be read. It returns an error
	// whose cause is ErrSourceNotFound if the input doesn't exist.
	Open() error

	// Rows reads every data row. A row whose line couldn't be parsed has a
	// non-nil Err and is still returned so positions stay contiguous.
	Rows() ([]*Row, error)

	// Close releases the underlying input.
	Close() error

	String() string
}

// ClusterInfo identifies the search cluster a Destination talks to.
type ClusterInfo struct {
	Name    string
	Version string
}

// LoadResult is the outcome of loading one batch.
type LoadResult struct {
	Succeeded int
	Failed    int

	// Err is set when the whole batch failed, e.g. a transport error or a
	// non-2xx response.
	Err error
}

// Pinger checks a destination is reachable and accepts our credentials.
type Pinger interface {
	Ping(ctx context.Context) (ClusterInfo, error)
}

// Provisioner recreates the destination index from scratch.
type Provisioner interface {
	Provision(ctx context.Context) error
}

// Loader indexes batches of documents.
type Loader interface {
	Load(ctx context.Context, batch *Batch) LoadResult
}

// Verifier reports what the destination index holds after loading.
type Verifier interface {
	Refresh(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
	Sample(ctx context.Context) (json.RawMessage, error)
}

// Destination is an index in a search cluster.
type Destination interface {
	Pinger
	Provisioner
	Loader
	Verifier

	// Index returns the name of the target index.
	Index() string

	String() string
}

// Recorder keeps a history of import runs.
type Recorder interface {
	RecordRun(res *Result) error
}
