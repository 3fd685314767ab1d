// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

// Package elastic implements the import destination on top of an
// Elasticsearch cluster.
package elastic

import (
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/pilosa/txnimport"
	"github.com/pkg/errors"
)

// DefaultIndex is the index transactions are loaded into.
const DefaultIndex = "bank_transactions"

// Config holds what is needed to reach the cluster.
type Config struct {
	URL      string
	Username string
	Password string
	Index    string
	TLS      TLSConfig

	// Transport replaces the HTTP transport built from TLS.
	Transport http.RoundTripper
}

// Client is a txnimport.Destination backed by an Elasticsearch index.
type Client struct {
	es    *elasticsearch.Client
	url   string
	user  string
	index string
	def   IndexDefinition

	log txnimport.Logger
}

var _ txnimport.Destination = &Client{}

// Option configures a Client.
type Option func(c *Client)

// WithLogger sets the logger used for per-document failures and other
// details.
func WithLogger(log txnimport.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithIndexDefinition replaces TransactionIndex as the definition the index
// is created with.
func WithIndexDefinition(def IndexDefinition) Option {
	return func(c *Client) {
		c.def = def
	}
}

// NewClient returns a Client for the cluster at cfg.URL. Nothing is sent to
// the cluster until the first call.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("no cluster URL")
	}
	if cfg.Index == "" {
		cfg.Index = DefaultIndex
	}
	if cfg.Index != strings.ToLower(cfg.Index) || strings.ContainsAny(cfg.Index, `/\*?"<>| ,#`) {
		return nil, errors.Errorf("invalid index name '%s'", cfg.Index)
	}
	transport := cfg.Transport
	if transport == nil {
		tlsConfig, err := GetTLSConfig(&cfg.TLS)
		if err != nil {
			return nil, errors.Wrap(err, "getting TLS config")
		}
		transport = &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: tlsConfig,
		}
	}
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    []string{cfg.URL},
		Username:     cfg.Username,
		Password:     cfg.Password,
		Transport:    transport,
		DisableRetry: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating elasticsearch client")
	}
	c := &Client{
		es:    es,
		url:   cfg.URL,
		user:  cfg.Username,
		index: cfg.Index,
		def:   TransactionIndex(),
		log:   txnimport.NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Index returns the name of the target index.
func (c *Client) Index() string {
	return c.index
}

func (c *Client) String() string {
	return c.url
}

type infoResponse struct {
	ClusterName string `json:"cluster_name"`
	Version     struct {
		Number string `json:"number"`
	} `json:"version"`
}

// Ping checks the cluster can be reached and accepts the configured
// credentials. A 401 response yields an error whose cause is
// txnimport.ErrUnauthorized.
func (c *Client) Ping(ctx context.Context) (txnimport.ClusterInfo, error) {
	res, err := c.es.Info(c.es.Info.WithContext(ctx))
	if err != nil {
		return txnimport.ClusterInfo{}, errors.Wrapf(err, "connecting to %s", c.url)
	}
	defer closeBody(res)
	if res.StatusCode == http.StatusUnauthorized {
		return txnimport.ClusterInfo{}, errors.Wrapf(txnimport.ErrUnauthorized, "connecting to %s as '%s'", c.url, c.user)
	}
	if res.IsError() {
		return txnimport.ClusterInfo{}, responseError(res, "connecting to "+c.url)
	}
	info := infoResponse{}
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		return txnimport.ClusterInfo{}, errors.Wrap(err, "decoding cluster info")
	}
	return txnimport.ClusterInfo{Name: info.ClusterName, Version: info.Version.Number}, nil
}

type errorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

// responseError describes a non-2xx response, including the error type and
// reason when the cluster sent them.
func responseError(res *esapi.Response, action string) error {
	body, _ := ioutil.ReadAll(io.LimitReader(res.Body, 4096))
	e := errorResponse{}
	if json.Unmarshal(body, &e) == nil && e.Error.Type != "" {
		return errors.Errorf("%s: status %d: %s: %s", action, res.StatusCode, e.Error.Type, e.Error.Reason)
	}
	return errors.Errorf("%s: status %d: %s", action, res.StatusCode, strings.TrimSpace(string(body)))
}

// closeBody drains and closes a response body so the connection can be
// reused.
func closeBody(res *esapi.Response) {
	_, _ = io.Copy(ioutil.Discard, res.Body)
	res.Body.Close()
}
