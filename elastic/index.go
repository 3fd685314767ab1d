package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pilosa/txnimport"
	"github.com/pkg/errors"
)

// IndexDefinition is the body of an index creation request.
type IndexDefinition struct {
	Mappings Mappings      `json:"mappings"`
	Settings IndexSettings `json:"settings"`
}

// Mappings maps field names to their storage types.
type Mappings struct {
	Properties map[string]Property `json:"properties"`
}

// Property is the mapping of a single field.
type Property struct {
	Type   string `json:"type"`
	Format string `json:"format,omitempty"`
}

// IndexSettings are the static settings of an index.
type IndexSettings struct {
	NumberOfShards   int `json:"number_of_shards"`
	NumberOfReplicas int `json:"number_of_replicas"`
}

// timestampFormats lists the date formats the timestamp field accepts, one
// or more per layout txnimport.ParseTimestamp understands, since timestamps
// are indexed as read from the source. Fractions of 3 or 6 digits are
// accepted where the layout has seconds.
var timestampFormats = strings.Join([]string{
	"strict_date_optional_time",
	"yyyy-MM-dd HH:mm:ssXXX",
	"yyyy-MM-dd HH:mm:ss.SSSXXX",
	"yyyy-MM-dd HH:mm:ss.SSSSSSXXX",
	"yyyy-MM-dd HH:mm:ss.SSSSSS",
	"yyyy-MM-dd HH:mm:ss.SSS",
	"yyyy-MM-dd HH:mm:ss",
	"yyyy-MM-dd HH:mm",
	"MM/dd/yyyy HH:mm:ss.SSS",
	"MM/dd/yyyy HH:mm:ss",
	"MM/dd/yyyy HH:mm",
	"MM/dd/yyyy",
	"yyyy/MM/dd HH:mm:ss.SSS",
	"yyyy/MM/dd HH:mm:ss",
	"epoch_millis",
}, "||")

// TransactionIndex returns the definition of a transaction index: one shard
// and no replicas.
func TransactionIndex() IndexDefinition {
	return IndexDefinition{
		Mappings: Mappings{
			Properties: map[string]Property{
				txnimport.FieldTransactionID:    {Type: "keyword"},
				txnimport.FieldCustomerID:       {Type: "keyword"},
				txnimport.FieldAmount:           {Type: "float"},
				txnimport.FieldMerchantCategory: {Type: "keyword"},
				txnimport.FieldTimestamp:        {Type: "date", Format: timestampFormats},
				txnimport.FieldHour:             {Type: "integer"},
				txnimport.FieldDayOfWeek:        {Type: "integer"},
				txnimport.FieldIsFraud:          {Type: "boolean"},
				txnimport.FieldLocation:         {Type: "keyword"},
				txnimport.FieldMerchantName:     {Type: "text"},
				txnimport.FieldAccountBalance:   {Type: "float"},
				txnimport.FieldPreviousAmount:   {Type: "float"},
			},
		},
		Settings: IndexSettings{
			NumberOfShards:   1,
			NumberOfReplicas: 0,
		},
	}
}

// Provision deletes the index if it exists and creates it again, empty, from
// the client's index definition. Only a failure to create the index is an
// error.
func (c *Client) Provision(ctx context.Context) error {
	res, err := c.es.Indices.Delete([]string{c.index}, c.es.Indices.Delete.WithContext(ctx))
	if err != nil {
		return errors.Wrapf(err, "deleting index %s", c.index)
	}
	switch {
	case res.StatusCode == http.StatusNotFound:
		c.log.Debugf("index %s did not exist", c.index)
	case res.IsError():
		c.log.Printf("%v", responseError(res, "deleting index "+c.index))
	default:
		c.log.Debugf("deleted index %s", c.index)
	}
	closeBody(res)

	body, err := json.Marshal(c.def)
	if err != nil {
		return errors.Wrap(err, "encoding index definition")
	}
	res, err = c.es.Indices.Create(c.index,
		c.es.Indices.Create.WithBody(bytes.NewReader(body)),
		c.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return errors.Wrapf(err, "creating index %s", c.index)
	}
	defer closeBody(res)
	if res.IsError() {
		return responseError(res, "creating index "+c.index)
	}
	return nil
}
