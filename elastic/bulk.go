package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/pilosa/txnimport"
	"github.com/pkg/errors"
)

type bulkAction struct {
	Index bulkMeta `json:"index"`
}

type bulkMeta struct {
	Index string `json:"_index"`
	ID    string `json:"_id"`
}

// EncodeBulk writes the NDJSON body of a bulk request indexing docs into
// index. Each document is keyed by its transaction ID.
func EncodeBulk(index string, docs []txnimport.Document) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	for i := range docs {
		if err := enc.Encode(bulkAction{Index: bulkMeta{Index: index, ID: docs[i].TransactionID}}); err != nil {
			return nil, errors.Wrapf(err, "encoding action for %s", docs[i].TransactionID)
		}
		if err := enc.Encode(&docs[i]); err != nil {
			return nil, errors.Wrapf(err, "encoding document %s", docs[i].TransactionID)
		}
	}
	return buf.Bytes(), nil
}

type bulkResponse struct {
	Errors bool                  `json:"errors"`
	Items  []map[string]bulkItem `json:"items"`
}

type bulkItem struct {
	ID     string `json:"_id"`
	Status int    `json:"status"`
	Error  *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error,omitempty"`
}

// Load indexes the documents of batch in a single bulk request. A transport
// error, a non-2xx response or an unreadable response fails the whole batch.
// Otherwise documents are failed individually by the errors reported for
// them.
func (c *Client) Load(ctx context.Context, batch *txnimport.Batch) txnimport.LoadResult {
	n := batch.Len()
	failAll := func(err error) txnimport.LoadResult {
		return txnimport.LoadResult{Failed: n, Err: err}
	}
	body, err := EncodeBulk(c.index, batch.Docs)
	if err != nil {
		return failAll(errors.Wrap(err, "encoding bulk request"))
	}

	// The bulk request is built by hand so that its content type is
	// exactly NDJSON.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/_bulk", bytes.NewReader(body))
	if err != nil {
		return failAll(errors.Wrap(err, "building bulk request"))
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	hres, err := c.es.Perform(req)
	if err != nil {
		return failAll(errors.Wrap(err, "sending bulk request"))
	}
	res := &esapi.Response{StatusCode: hres.StatusCode, Header: hres.Header, Body: hres.Body}
	defer closeBody(res)
	if res.IsError() {
		return failAll(responseError(res, "bulk request"))
	}

	br := bulkResponse{}
	if err := json.NewDecoder(res.Body).Decode(&br); err != nil {
		return failAll(errors.Wrap(err, "decoding bulk response"))
	}
	if !br.Errors {
		return txnimport.LoadResult{Succeeded: n}
	}

	lr := txnimport.LoadResult{}
	for _, item := range br.Items {
		for _, it := range item {
			if it.Error != nil {
				lr.Failed++
				c.log.Errorf("indexing document %s: %s: %s", it.ID, it.Error.Type, it.Error.Reason)
				continue
			}
			lr.Succeeded++
		}
	}
	if missing := n - lr.Succeeded - lr.Failed; missing > 0 {
		c.log.Errorf("bulk response for batch %d is missing %d items", batch.Seq, missing)
		lr.Failed += missing
	}
	return lr
}
