package txnimport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
)

// Config holds the settings of an import run.
type Config struct {
	// BatchSize is the number of documents per bulk request.
	BatchSize int

	// ConnectTimeout bounds the initial connectivity check.
	ConnectTimeout time.Duration

	// Refresh makes the index searchable before it is counted.
	Refresh bool
}

// Importer moves the rows of a Source into a Destination.
type Importer struct {
	Normalizer *Normalizer
	Stats      Statter
	Log        Logger

	// Out receives the summary and the sample document.
	Out io.Writer

	// History, if set, is given the Result of every run, aborted or not.
	History Recorder

	cfg Config
	src Source
	dst Destination
}

// NewImporter returns an Importer for src and dst. Its Normalizer uses the
// default field table and may be replaced before Run.
func NewImporter(cfg Config, src Source, dst Destination) (*Importer, error) {
	if cfg.BatchSize < 1 {
		return nil, errors.Errorf("batch size must be at least 1, got %d", cfg.BatchSize)
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	norm, err := NewNormalizer()
	if err != nil {
		return nil, errors.Wrap(err, "getting normalizer")
	}
	return &Importer{
		Normalizer: norm,
		Stats:      NopStatter{},
		Log:        NopLogger{},
		Out:        os.Stdout,
		cfg:        cfg,
		src:        src,
		dst:        dst,
	}, nil
}

// Run performs the import. An error is returned if the import could not
// start loading. Once loading has begun, failed batches and documents are
// counted in the Result rather than returned.
func (m *Importer) Run(ctx context.Context) (res *Result, err error) {
	res = &Result{
		Index:       m.dst.Index(),
		Source:      m.src.String(),
		Destination: m.dst.String(),
		Started:     time.Now().UTC(),
		State:       StateInit,
	}
	defer func() {
		res.Duration = time.Since(res.Started)
		if err != nil {
			if res.State < StateLoading {
				res.State = StateAborted
			}
			res.Err = err.Error()
		}
		if m.History != nil {
			if herr := m.History.RecordRun(res); herr != nil {
				m.Log.Errorf("recording run: %v", herr)
			}
		}
	}()

	if err := m.src.Open(); err != nil {
		return res, errors.Wrap(err, "opening source")
	}
	defer m.src.Close()

	pctx, cancel := context.WithTimeout(ctx, m.cfg.ConnectTimeout)
	info, err := m.dst.Ping(pctx)
	cancel()
	if err != nil {
		return res, errors.Wrap(err, "checking connectivity")
	}
	m.Log.Printf("connected to %s, cluster %s, version %s", m.dst, info.Name, info.Version)
	m.advance(res, StateConnected)

	if err := m.dst.Provision(ctx); err != nil {
		return res, errors.Wrap(err, "provisioning index")
	}
	m.Log.Printf("created index %s", m.dst.Index())
	m.advance(res, StateProvisioned)

	rows, err := m.src.Rows()
	if err != nil {
		return res, errors.Wrap(err, "reading source")
	}
	res.RowsRead = len(rows)
	m.Stats.Count(StatRowsRead, int64(len(rows)), 1)
	m.Log.Printf("read %d rows from %s", len(rows), m.src)

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		doc, err := m.normalize(row)
		if err != nil {
			m.Log.Errorf("skipping row %d: %v", row.Position, err)
			res.RowsSkipped++
			m.Stats.Count(StatRowsSkipped, 1, 1)
			continue
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return res, ErrNoDocuments
	}

	m.advance(res, StateLoading)
	if err := m.load(ctx, res, docs); err != nil {
		return res, err
	}

	m.verify(ctx, res)
	m.advance(res, StateVerified)
	res.Duration = time.Since(res.Started)
	if err := res.WriteSummary(m.Out); err != nil {
		m.Log.Errorf("%v", err)
	}
	m.writeSample(res.Sample)
	return res, nil
}

func (m *Importer) advance(res *Result, s State) {
	m.Log.Debugf("import state %s -> %s", res.State, s)
	res.State = s
}

// normalize converts one row. A row that failed to parse, or whose
// normalization panics, yields an error.
func (m *Importer) normalize(row *Row) (doc Document, err error) {
	if row.Err != nil {
		return doc, row.Err
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("normalizing: %v", r)
		}
	}()
	return m.Normalizer.Normalize(row), nil
}

func (m *Importer) load(ctx context.Context, res *Result, docs []Document) error {
	batcher, err := NewBatcher(m.cfg.BatchSize)
	if err != nil {
		return errors.Wrap(err, "getting batcher")
	}
	for _, doc := range docs {
		if batch := batcher.Add(doc); batch != nil {
			if err := m.loadBatch(ctx, res, batch); err != nil {
				return err
			}
		}
	}
	if batch := batcher.Flush(); batch != nil {
		return m.loadBatch(ctx, res, batch)
	}
	return nil
}

func (m *Importer) loadBatch(ctx context.Context, res *Result, batch *Batch) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "interrupted before batch %d", batch.Seq)
	}
	start := time.Now()
	lr := m.dst.Load(ctx, batch)
	m.Stats.Timing(StatBulkDuration, time.Since(start), 1)

	res.Batches++
	res.Successful += lr.Succeeded
	res.Failed += lr.Failed
	m.Stats.Count(StatBatches, 1, 1)
	m.Stats.Count(StatDocsIndexed, int64(lr.Succeeded), 1)
	m.Stats.Count(StatDocsFailed, int64(lr.Failed), 1)
	if lr.Err != nil {
		res.FailedBatches++
		m.Stats.Count(StatBatchesFailed, 1, 1)
		m.Log.Errorf("batch %d failed: %v", batch.Seq, lr.Err)
		return nil
	}
	m.Log.Printf("batch %d: imported %d documents, %d failed", batch.Seq, lr.Succeeded, lr.Failed)
	return nil
}

func (m *Importer) verify(ctx context.Context, res *Result) {
	if m.cfg.Refresh {
		if err := m.dst.Refresh(ctx); err != nil {
			m.Log.Errorf("refreshing index: %v", err)
		}
	}
	n, err := m.dst.Count(ctx)
	if err != nil {
		m.Log.Errorf("counting documents: %v", err)
		n = 0
	}
	res.Verified = n
	m.Stats.Gauge(StatVerified, float64(n), 1)

	sample, err := m.dst.Sample(ctx)
	if err != nil {
		m.Log.Debugf("fetching sample document: %v", err)
		return
	}
	res.Sample = sample
}

func (m *Importer) writeSample(sample json.RawMessage) {
	if len(sample) == 0 {
		return
	}
	buf := &bytes.Buffer{}
	if err := json.Indent(buf, sample, "", "  "); err != nil {
		m.Log.Debugf("indenting sample document: %v", err)
		return
	}
	fmt.Fprintf(m.Out, "\nsample document:\n%s\n", buf.Bytes())
}
