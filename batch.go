package txnimport

import "github.com/pkg/errors"

// DefaultBatchSize is the number of documents sent per bulk request.
const DefaultBatchSize = 1000

// Batch is an ordered group of documents loaded in one bulk request.
type Batch struct {
	// Seq is the 1-based sequence number of the batch within a run.
	Seq  int
	Docs []Document
}

// Len returns the number of documents in the batch.
func (b *Batch) Len() int {
	return len(b.Docs)
}

// Batcher groups documents into batches of a fixed size, preserving order.
type Batcher struct {
	size int
	seq  int
	cur  *Batch
}

// NewBatcher returns a Batcher producing batches of size documents.
func NewBatcher(size int) (*Batcher, error) {
	if size < 1 {
		return nil, errors.Errorf("batch size must be at least 1, got %d", size)
	}
	return &Batcher{size: size}, nil
}

// Add appends doc to the batch being built. If that fills the batch, the
// full batch is returned and the next Add starts a new one.
func (b *Batcher) Add(doc Document) *Batch {
	if b.cur == nil {
		b.seq++
		b.cur = &Batch{Seq: b.seq, Docs: make([]Document, 0, b.size)}
	}
	b.cur.Docs = append(b.cur.Docs, doc)
	if len(b.cur.Docs) < b.size {
		return nil
	}
	full := b.cur
	b.cur = nil
	return full
}

// Flush returns the partially filled batch, or nil if there is none.
func (b *Batcher) Flush() *Batch {
	partial := b.cur
	b.cur = nil
	return partial
}
