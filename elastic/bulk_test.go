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

func docs(ids ...string) []txnimport.Document {
	ds := make([]txnimport.Document, len(ids))
	for i, id := range ids {
		ds[i] = txnimport.Document{
			TransactionID:    id,
			CustomerID:       "CUST_00001",
			Amount:           float64(i) + 0.5,
			MerchantCategory: "grocery_net",
			Timestamp:        "2023-06-01 12:00:00",
			Hour:             12,
			DayOfWeek:        3,
		}
	}
	return ds
}

func TestEncodeBulk(t *testing.T) {
	loc := "Austin"
	ds := docs("a", "b")
	ds[1].Location = &loc
	body, err := elastic.EncodeBulk("txns", ds)
	test.ErrNil(t, err, "encoding")

	if body[len(body)-1] != '\n' {
		t.Fatal("bulk body must end with a newline")
	}
	lines := strings.Split(strings.TrimSuffix(string(body), "\n"), "\n")
	test.MustBe(t, len(lines), 4, "line count")
	test.MustBe(t, lines[0], `{"index":{"_index":"txns","_id":"a"}}`)
	test.MustBe(t, lines[2], `{"index":{"_index":"txns","_id":"b"}}`)
	if strings.Contains(lines[1], "location") {
		t.Fatalf("absent optional field encoded: %s", lines[1])
	}
	if !strings.Contains(lines[3], `"location":"Austin"`) {
		t.Fatalf("present optional field missing: %s", lines[3])
	}
}

func TestLoad(t *testing.T) {
	f := test.NewFakeElastic()
	defer f.Close()
	c := newClient(t, f, "", "")

	lr := c.Load(context.Background(), &txnimport.Batch{Seq: 1, Docs: docs("a", "b", "c")})
	if lr.Err != nil {
		t.Fatalf("loading: %v", lr.Err)
	}
	test.MustBe(t, lr.Succeeded, 3)
	test.MustBe(t, lr.Failed, 0)
	test.MustBe(t, len(f.Docs("txns")), 3)
	test.MustBe(t, f.BulkContentTypes(), []string{"application/x-ndjson"})

	doc := txnimport.Document{}
	test.ErrNil(t, json.Unmarshal(f.Docs("txns")["b"], &doc), "decoding stored doc")
	test.MustBe(t, doc, docs("a", "b")[1])
}

func TestLoadItemErrors(t *testing.T) {
	f := test.NewFakeElastic()
	defer f.Close()
	f.ItemErrors["b"] = "mapper_parsing_exception"
	c := newClient(t, f, "", "")

	lr := c.Load(context.Background(), &txnimport.Batch{Seq: 1, Docs: docs("a", "b", "c")})
	if lr.Err != nil {
		t.Fatalf("loading: %v", lr.Err)
	}
	test.MustBe(t, lr.Succeeded, 2)
	test.MustBe(t, lr.Failed, 1)
}

func TestLoadNon2xx(t *testing.T) {
	f := test.NewFakeElastic()
	defer f.Close()
	f.Statuses["POST /_bulk"] = http.StatusServiceUnavailable
	c := newClient(t, f, "", "")

	lr := c.Load(context.Background(), &txnimport.Batch{Seq: 1, Docs: docs("a", "b")})
	if lr.Err == nil {
		t.Fatal("expected batch error")
	}
	test.MustBe(t, lr.Succeeded, 0)
	test.MustBe(t, lr.Failed, 2)
	test.MustBe(t, f.CallCount(http.MethodPost), 1, "no retry")
}

func TestLoadTransportError(t *testing.T) {
	f := test.NewFakeElastic()
	c := newClient(t, f, "", "")
	f.Close()

	lr := c.Load(context.Background(), &txnimport.Batch{Seq: 1, Docs: docs("a", "b")})
	if lr.Err == nil {
		t.Fatal("expected batch error")
	}
	test.MustBe(t, lr.Failed, 2)
}

func TestVerify(t *testing.T) {
	f := test.NewFakeElastic()
	defer f.Close()
	c := newClient(t, f, "", "")
	ctx := context.Background()

	if _, err := c.Count(ctx); err == nil {
		t.Fatal("expected error counting missing index")
	}
	test.ErrNil(t, c.Provision(ctx), "provisioning")
	if _, err := c.Sample(ctx); err == nil {
		t.Fatal("expected error sampling empty index")
	}

	c.Load(ctx, &txnimport.Batch{Seq: 1, Docs: docs("a", "b")})
	test.ErrNil(t, c.Refresh(ctx), "refreshing")
	n, err := c.Count(ctx)
	test.ErrNil(t, err, "counting")
	test.MustBe(t, n, int64(2))

	sample, err := c.Sample(ctx)
	test.ErrNil(t, err, "sampling")
	doc := txnimport.Document{}
	test.ErrNil(t, json.Unmarshal(sample, &doc), "decoding sample")
	test.MustBe(t, doc.TransactionID, "a")
}
