package csv

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Config describes source columns beyond the built-in aliases. It is read
// from a JSON file such as:
//
//	{
//	  "source-fields": {
//	    "txn_amount": {"target-field": "amount"},
//	    "card_holder": {"target-field": "customer_id"}
//	  }
//	}
type Config struct {
	SourceFields map[string]SourceField `json:"source-fields"`
}

// SourceField maps one source column.
type SourceField struct {
	// TargetField is the document field that this source column feeds.
	TargetField string `json:"target-field"`
}

// NewConfig returns an empty Config.
func NewConfig() *Config {
	return &Config{
		SourceFields: make(map[string]SourceField),
	}
}

// LoadConfig decodes the Config file at path.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening config file")
	}
	defer f.Close()
	config := NewConfig()
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(config); err != nil {
		return nil, errors.Wrap(err, "decoding config file")
	}
	return config, nil
}

// Aliases returns the target field of each source column, keyed by column.
func (c *Config) Aliases() (map[string]string, error) {
	aliases := make(map[string]string, len(c.SourceFields))
	for column, sf := range c.SourceFields {
		if sf.TargetField == "" {
			return nil, errors.Errorf("source field '%s' has no target-field", column)
		}
		aliases[column] = sf.TargetField
	}
	return aliases, nil
}
