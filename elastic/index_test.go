package elastic_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/pilosa/txnimport"
	"github.com/pilosa/txnimport/elastic"
	"github.com/pilosa/txnimport/test"
)

func TestProvisionTwice(t *testing.T) {
	f := test.NewFakeElastic()
	defer f.Close()
	c := newClient(t, f, "", "")
	ctx := context.Background()

	test.ErrNil(t, c.Provision(ctx), "first provision")
	first := f.Definition("txns")
	f.AddDoc("txns", "TXN_1", json.RawMessage(`{"amount":1}`))

	test.ErrNil(t, c.Provision(ctx), "second provision")
	test.MustBe(t, string(f.Definition("txns")), string(first), "definition")
	test.MustBe(t, len(f.Docs("txns")), 0, "docs after reprovision")

	got := elastic.IndexDefinition{}
	test.ErrNil(t, json.Unmarshal(first, &got), "decoding definition")
	test.MustBe(t, got, elastic.TransactionIndex())

	calls := f.Calls()
	want := []test.Call{
		{Method: http.MethodDelete, Path: "/txns"},
		{Method: http.MethodPut, Path: "/txns"},
		{Method: http.MethodDelete, Path: "/txns"},
		{Method: http.MethodPut, Path: "/txns"},
	}
	test.MustBe(t, calls, want)
}

func TestTransactionIndexMapping(t *testing.T) {
	def := elastic.TransactionIndex()
	types := map[string]string{}
	for name, p := range def.Mappings.Properties {
		types[name] = p.Type
	}
	test.MustBe(t, types, map[string]string{
		"transaction_id":    "keyword",
		"customer_id":       "keyword",
		"amount":            "float",
		"merchant_category": "keyword",
		"timestamp":         "date",
		"hour":              "integer",
		"day_of_week":       "integer",
		"is_fraud":          "boolean",
		"location":          "keyword",
		"merchant_name":     "text",
		"account_balance":   "float",
		"previous_amount":   "float",
	})
	test.MustBe(t, def.Settings, elastic.IndexSettings{NumberOfShards: 1, NumberOfReplicas: 0})
}

func TestProvisionCreateFails(t *testing.T) {
	f := test.NewFakeElastic()
	defer f.Close()
	f.Statuses["PUT /txns"] = http.StatusForbidden

	if err := newClient(t, f, "", "").Provision(context.Background()); err == nil {
		t.Fatal("expected error when index creation is refused")
	}
}

func TestProvisionDeleteRefused(t *testing.T) {
	f := test.NewFakeElastic()
	defer f.Close()
	f.Statuses["DELETE /txns"] = http.StatusForbidden

	test.ErrNil(t, newClient(t, f, "", "").Provision(context.Background()), "provision")
	if f.Definition("txns") == nil {
		t.Fatal("index was not created")
	}
}

func TestTimestampFormats(t *testing.T) {
	formats := map[string]bool{}
	for _, f := range strings.Split(elastic.TransactionIndex().Mappings.Properties["timestamp"].Format, "||") {
		formats[f] = true
	}
	tests := []struct {
		ts     string
		format string
	}{
		{ts: "2023-06-05T14:30:00Z", format: "strict_date_optional_time"},
		{ts: "2023-06-05T14:30:00", format: "strict_date_optional_time"},
		{ts: "2023-06-05T14:30", format: "strict_date_optional_time"},
		{ts: "2023-06-05", format: "strict_date_optional_time"},
		{ts: "2023-06-05 14:30:00+02:00", format: "yyyy-MM-dd HH:mm:ssXXX"},
		{ts: "2023-06-05 14:30:00Z", format: "yyyy-MM-dd HH:mm:ssXXX"},
		{ts: "2023-06-05 14:30:00.123-05:00", format: "yyyy-MM-dd HH:mm:ss.SSSXXX"},
		{ts: "2023-06-05 14:30:00", format: "yyyy-MM-dd HH:mm:ss"},
		{ts: "2023-06-05 14:30:00.123456", format: "yyyy-MM-dd HH:mm:ss.SSSSSS"},
		{ts: "2023-06-05 14:30", format: "yyyy-MM-dd HH:mm"},
		{ts: "06/05/2023 14:30:00", format: "MM/dd/yyyy HH:mm:ss"},
		{ts: "06/05/2023 14:30", format: "MM/dd/yyyy HH:mm"},
		{ts: "06/05/2023", format: "MM/dd/yyyy"},
		{ts: "2023/06/05 14:30:00", format: "yyyy/MM/dd HH:mm:ss"},
	}
	for _, tst := range tests {
		if _, err := txnimport.ParseTimestamp(tst.ts); err != nil {
			t.Errorf("%s: not parsed: %v", tst.ts, err)
		}
		if !formats[tst.format] {
			t.Errorf("%s: mapping lacks format %s", tst.ts, tst.format)
		}
	}
}
