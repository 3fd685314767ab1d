// Package transactions wires a CSV source, the normalizer and an
// Elasticsearch destination into a complete import.
package transactions

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pilosa/txnimport"
	"github.com/pilosa/txnimport/aws/s3"
	"github.com/pilosa/txnimport/boltdb"
	"github.com/pilosa/txnimport/csv"
	"github.com/pilosa/txnimport/elastic"
	"github.com/pilosa/txnimport/statsd"
	"github.com/pilosa/txnimport/termstat"
	"github.com/pkg/errors"
)

// Main holds the options for importing a transaction CSV into
// Elasticsearch.
type Main struct {
	Host           string        `help:"URL of the Elasticsearch cluster."`
	Username       string        `help:"Username for basic auth."`
	Password       string        `help:"Password for basic auth."`
	Index          string        `help:"Name of the index to (re)create and load."`
	File           string        `help:"CSV to import: a local path, an http(s) URL or s3://bucket/key."`
	Region         string        `help:"AWS region used for s3 input."`
	BatchSize      int           `help:"Number of documents per bulk request."`
	ConnectTimeout time.Duration `help:"Timeout for the initial connectivity check."`
	SkipVerify     bool          `help:"Skip verification of the cluster's TLS certificate. Ignored when root-cert is set."`
	RootCert       string        `help:"Path to a CA certificate to verify the cluster with."`
	ClientCert     string        `help:"Path to a client certificate to present to the cluster."`
	ClientKey      string        `help:"Path to the key of client-cert."`
	Refresh        bool          `help:"Refresh the index before counting the imported documents."`
	Seed           int64         `help:"Seed for synthetic timestamps. -1 seeds from the clock."`
	AliasFile      string        `help:"JSON file mapping extra source columns to document fields."`
	History        string        `help:"Bolt file runs are recorded in. Empty disables the history."`
	Statsd         string        `help:"host:port of a StatsD agent to send stats to. Empty disables."`
	Progress       bool          `help:"Show running totals on stderr while importing."`
	Verbose        bool          `help:"Enable debug logging."`

	// Transport, if set, replaces the HTTP transport used to reach the
	// cluster.
	Transport http.RoundTripper `flag:"-"`

	Stdout io.Writer `flag:"-"`
	Stderr io.Writer `flag:"-"`
}

// NewMain returns a Main with the default options.
func NewMain() *Main {
	return &Main{
		Host:           "https://localhost:9220",
		Username:       "elastic",
		Index:          elastic.DefaultIndex,
		File:           "transactions.csv",
		Region:         "us-east-1",
		BatchSize:      txnimport.DefaultBatchSize,
		ConnectTimeout: 10 * time.Second,
		SkipVerify:     true,
		Seed:           1,
		Progress:       true,

		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

func (m *Main) logger() txnimport.Logger {
	l := log.New(m.Stderr, "", log.LstdFlags)
	if m.Verbose {
		return txnimport.VerboseLogger{Logger: l}
	}
	return txnimport.StdLogger{Logger: l}
}

// Run performs the import and returns its Result. The Result is non-nil
// whenever the import got as far as starting.
func (m *Main) Run(ctx context.Context) (*txnimport.Result, error) {
	logger := m.logger()
	logger.Debugf("options: %+v", m.redacted())

	src, err := m.source(logger)
	if err != nil {
		return nil, errors.Wrap(err, "getting source")
	}

	dst, err := elastic.NewClient(elastic.Config{
		URL:      m.Host,
		Username: m.Username,
		Password: m.Password,
		Index:    m.Index,
		TLS: elastic.TLSConfig{
			CertificatePath:    m.ClientCert,
			CertificateKeyPath: m.ClientKey,
			CACertPath:         m.RootCert,
			SkipVerify:         m.SkipVerify,
		},
		Transport: m.Transport,
	}, elastic.WithLogger(logger))
	if err != nil {
		return nil, errors.Wrap(err, "getting elasticsearch client")
	}

	normOpts := []txnimport.NormalizerOption{txnimport.OptNormalizerSeed(m.Seed)}
	if m.AliasFile != "" {
		config, err := csv.LoadConfig(m.AliasFile)
		if err != nil {
			return nil, errors.Wrap(err, "loading alias file")
		}
		aliases, err := config.Aliases()
		if err != nil {
			return nil, errors.Wrap(err, "reading alias file")
		}
		normOpts = append(normOpts, txnimport.OptNormalizerAliases(aliases))
	}
	norm, err := txnimport.NewNormalizer(normOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "getting normalizer")
	}

	imp, err := txnimport.NewImporter(txnimport.Config{
		BatchSize:      m.BatchSize,
		ConnectTimeout: m.ConnectTimeout,
		Refresh:        m.Refresh,
	}, src, dst)
	if err != nil {
		return nil, errors.Wrap(err, "getting importer")
	}
	imp.Normalizer = norm
	imp.Log = logger
	imp.Out = m.Stdout

	stats := txnimport.MultiStatter{}
	if m.Progress {
		ts := termstat.NewCollector(m.Stderr, 2*time.Second)
		defer ts.Close()
		stats = append(stats, ts)
	}
	if m.Statsd != "" {
		sc, err := statsd.NewStatsClient(m.Statsd, "index:"+m.Index)
		if err != nil {
			return nil, errors.Wrap(err, "getting statsd client")
		}
		sc.SetLogger(logger)
		defer sc.Close()
		stats = append(stats, sc)
	}
	if len(stats) > 0 {
		imp.Stats = stats
	}

	if m.History != "" {
		hist, err := boltdb.NewHistory(m.History)
		if err != nil {
			return nil, errors.Wrap(err, "opening run history")
		}
		defer hist.Close()
		imp.History = hist
	}

	return imp.Run(ctx)
}

func (m *Main) source(logger txnimport.Logger) (*csv.Source, error) {
	if strings.HasPrefix(m.File, "s3://") {
		opener, err := s3.NewOpener(m.File, m.Region)
		if err != nil {
			return nil, errors.Wrap(err, "getting s3 opener")
		}
		return csv.NewSource(csv.WithOpenStringer(opener), csv.WithLogger(logger))
	}
	return csv.NewSource(csv.WithURL(m.File), csv.WithLogger(logger))
}

// redacted returns a copy of m which is safe to log.
func (m *Main) redacted() Main {
	c := *m
	if c.Password != "" {
		c.Password = "********"
	}
	return c
}
