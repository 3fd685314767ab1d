package mock

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pilosa/txnimport"
	"github.com/pkg/errors"
)

// Destination is an in-memory txnimport.Destination which records the calls
// made to it.
type Destination struct {
	PingErr      error
	ProvisionErr error
	RefreshErr   error
	CountErr     error

	// LoadFunc, if set, decides the outcome of each batch. By default every
	// document succeeds.
	LoadFunc func(batch *txnimport.Batch) txnimport.LoadResult

	mu      sync.Mutex
	calls   []string
	batches []*txnimport.Batch
	stored  []txnimport.Document
}

var _ txnimport.Destination = &Destination{}

func (d *Destination) record(call string) {
	d.mu.Lock()
	d.calls = append(d.calls, call)
	d.mu.Unlock()
}

// Calls returns the names of the methods called so far, in order.
func (d *Destination) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// Batches returns every batch passed to Load.
func (d *Destination) Batches() []*txnimport.Batch {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*txnimport.Batch(nil), d.batches...)
}

// Ping implements txnimport.Pinger.
func (d *Destination) Ping(ctx context.Context) (txnimport.ClusterInfo, error) {
	d.record("Ping")
	if d.PingErr != nil {
		return txnimport.ClusterInfo{}, d.PingErr
	}
	return txnimport.ClusterInfo{Name: "mock", Version: "0.0.0"}, nil
}

// Provision implements txnimport.Provisioner.
func (d *Destination) Provision(ctx context.Context) error {
	d.record("Provision")
	if d.ProvisionErr != nil {
		return d.ProvisionErr
	}
	d.mu.Lock()
	d.stored = nil
	d.mu.Unlock()
	return nil
}

// Load implements txnimport.Loader. The first Succeeded documents of the
// batch are stored.
func (d *Destination) Load(ctx context.Context, batch *txnimport.Batch) txnimport.LoadResult {
	d.record("Load")
	lr := txnimport.LoadResult{Succeeded: batch.Len()}
	if d.LoadFunc != nil {
		lr = d.LoadFunc(batch)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.batches = append(d.batches, batch)
	if lr.Succeeded > batch.Len() {
		lr.Succeeded = batch.Len()
	}
	d.stored = append(d.stored, batch.Docs[:lr.Succeeded]...)
	return lr
}

// Refresh implements txnimport.Verifier.
func (d *Destination) Refresh(ctx context.Context) error {
	d.record("Refresh")
	return d.RefreshErr
}

// Count implements txnimport.Verifier.
func (d *Destination) Count(ctx context.Context) (int64, error) {
	d.record("Count")
	if d.CountErr != nil {
		return 0, d.CountErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.stored)), nil
}

// Sample implements txnimport.Verifier.
func (d *Destination) Sample(ctx context.Context) (json.RawMessage, error) {
	d.record("Sample")
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.stored) == 0 {
		return nil, errors.New("no documents")
	}
	b, err := json.Marshal(d.stored[0])
	return b, errors.Wrap(err, "encoding sample")
}

// Index implements txnimport.Destination.
func (d *Destination) Index() string {
	return "mock_index"
}

func (d *Destination) String() string {
	return "mock://destination"
}

// Recorder is a txnimport.Recorder keeping results in memory.
type Recorder struct {
	Err     error
	Results []txnimport.Result
}

// RecordRun implements txnimport.Recorder.
func (r *Recorder) RecordRun(res *txnimport.Result) error {
	if r.Err != nil {
		return r.Err
	}
	r.Results = append(r.Results, *res)
	return nil
}
