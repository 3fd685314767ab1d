package fake_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/pilosa/txnimport"
	"github.com/pilosa/txnimport/fake"
)

func generate(t *testing.T, cfg fake.Config, n int) [][]string {
	t.Helper()
	buf := &bytes.Buffer{}
	w, err := fake.NewWriter(buf, cfg)
	if err != nil {
		t.Fatalf("getting writer: %v", err)
	}
	if err := w.Write(n); err != nil {
		t.Fatalf("writing: %v", err)
	}
	recs, err := csv.NewReader(buf).ReadAll()
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	return recs
}

func TestWriterSchemas(t *testing.T) {
	for _, schema := range []fake.Schema{fake.SchemaGeneric, fake.SchemaBanking} {
		recs := generate(t, fake.Config{Schema: schema, Seed: 1, FraudRate: 0.1}, 50)
		if len(recs) != 51 {
			t.Fatalf("%s: expected header and 50 rows, got %d records", schema, len(recs))
		}

		h, err := txnimport.NewHeader(recs[0])
		if err != nil {
			t.Fatalf("%s: invalid header: %v", schema, err)
		}
		n, err := txnimport.NewNormalizer()
		if err != nil {
			t.Fatalf("getting normalizer: %v", err)
		}
		for i, rec := range recs[1:] {
			doc := n.Normalize(txnimport.NewRow(h, i, rec))
			if doc.TransactionID != rec[0] {
				t.Fatalf("%s row %d: transaction id %s not read from %v", schema, i, doc.TransactionID, rec)
			}
			if doc.Amount <= 0 && rec[2] != "0.00" {
				t.Fatalf("%s row %d: amount not read from %v", schema, i, rec)
			}
			if doc.Timestamp != rec[3] && doc.Timestamp != rec[6] {
				t.Fatalf("%s row %d: timestamp not read from %v", schema, i, rec)
			}
			if doc.Location == nil {
				t.Fatalf("%s row %d: location not read from %v", schema, i, rec)
			}
		}
	}
}

func TestWriterDeterministic(t *testing.T) {
	cfg := fake.Config{Schema: fake.SchemaGeneric, Seed: 42, NullRate: 0.2}
	a := generate(t, cfg, 100)
	b := generate(t, cfg, 100)
	for i := range a {
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				t.Fatalf("record %d differs: %v vs %v", i, a[i], b[i])
			}
		}
	}

	empty := 0
	for _, rec := range a[1:] {
		for _, cell := range rec {
			if cell == "" {
				empty++
			}
		}
	}
	if empty == 0 {
		t.Fatal("expected some empty cells with a null rate")
	}
}

func TestWriterUnknownSchema(t *testing.T) {
	if _, err := fake.NewWriter(&bytes.Buffer{}, fake.Config{Schema: "ledger"}); err == nil {
		t.Fatal("expected error for unknown schema")
	}
}
