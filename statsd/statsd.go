// Package statsd sends import stats to a StatsD agent.
package statsd

import (
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/pilosa/txnimport"
)

const (
	// prefix is prepended to each metric event name
	prefix = "txnimport."

	// bufferLen is the stats client buffer size.
	bufferLen = 1024
)

var _ txnimport.Statter = &StatsClient{}

// StatsClient is a txnimport.Statter backed by a DataDog StatsD client.
type StatsClient struct {
	client *statsd.Client
	tags   []string
	logger txnimport.Logger
}

// NewStatsClient returns a StatsClient sending to the agent at host, which
// is a host:port pair. tags are added to every metric.
func NewStatsClient(host string, tags ...string) (*StatsClient, error) {
	c, err := statsd.NewBuffered(host, bufferLen)
	if err != nil {
		return nil, err
	}
	return &StatsClient{
		client: c,
		tags:   tags,
		logger: txnimport.NopLogger{},
	}, nil
}

// Close flushes buffered metrics and closes the client.
func (c *StatsClient) Close() error {
	return c.client.Close()
}

// SetLogger sets the logger send errors are reported to.
func (c *StatsClient) SetLogger(logger txnimport.Logger) {
	c.logger = logger
}

func (c *StatsClient) Count(name string, value int64, rate float64, tags ...string) {
	if err := c.client.Count(prefix+name, value, c.with(tags), rate); err != nil {
		c.logger.Printf("statsd.StatsClient.Count error: %s", err)
	}
}

func (c *StatsClient) Gauge(name string, value float64, rate float64, tags ...string) {
	if err := c.client.Gauge(prefix+name, value, c.with(tags), rate); err != nil {
		c.logger.Printf("statsd.StatsClient.Gauge error: %s", err)
	}
}

func (c *StatsClient) Timing(name string, value time.Duration, rate float64, tags ...string) {
	if err := c.client.Timing(prefix+name, value, c.with(tags), rate); err != nil {
		c.logger.Printf("statsd.StatsClient.Timing error: %s", err)
	}
}

func (c *StatsClient) with(tags []string) []string {
	if len(tags) == 0 {
		return c.tags
	}
	return append(append(make([]string, 0, len(c.tags)+len(tags)), c.tags...), tags...)
}
