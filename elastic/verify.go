package elastic

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// Refresh makes everything indexed so far visible to searches.
func (c *Client) Refresh(ctx context.Context) error {
	res, err := c.es.Indices.Refresh(
		c.es.Indices.Refresh.WithIndex(c.index),
		c.es.Indices.Refresh.WithContext(ctx),
	)
	if err != nil {
		return errors.Wrapf(err, "refreshing index %s", c.index)
	}
	defer closeBody(res)
	if res.IsError() {
		return responseError(res, "refreshing index "+c.index)
	}
	return nil
}

// Count returns the number of documents in the index.
func (c *Client) Count(ctx context.Context) (int64, error) {
	res, err := c.es.Count(
		c.es.Count.WithIndex(c.index),
		c.es.Count.WithContext(ctx),
	)
	if err != nil {
		return 0, errors.Wrapf(err, "counting index %s", c.index)
	}
	defer closeBody(res)
	if res.IsError() {
		return 0, responseError(res, "counting index "+c.index)
	}
	cr := struct {
		Count int64 `json:"count"`
	}{}
	if err := json.NewDecoder(res.Body).Decode(&cr); err != nil {
		return 0, errors.Wrap(err, "decoding count response")
	}
	return cr.Count, nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Sample returns the source of one document from the index.
func (c *Client) Sample(ctx context.Context) (json.RawMessage, error) {
	res, err := c.es.Search(
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithSize(1),
		c.es.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "searching index %s", c.index)
	}
	defer closeBody(res)
	if res.IsError() {
		return nil, responseError(res, "searching index "+c.index)
	}
	sr := searchResponse{}
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, errors.Wrap(err, "decoding search response")
	}
	if len(sr.Hits.Hits) == 0 {
		return nil, errors.Errorf("index %s returned no documents", c.index)
	}
	return sr.Hits.Hits[0].Source, nil
}
