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

package txnimport

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/pilosa/txnimport/test"
)

// row builds a Row at pos from a header line and a value line, both comma
// separated.
func row(t *testing.T, pos int, header, values string) *Row {
	t.Helper()
	h, err := NewHeader(strings.Split(header, ","))
	test.ErrNil(t, err, "header")
	return NewRow(h, pos, strings.Split(values, ","))
}

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func newNormalizer(t *testing.T, opts ...NormalizerOption) *Normalizer {
	t.Helper()
	opts = append([]NormalizerOption{OptNormalizerClock(func() time.Time { return fixedNow })}, opts...)
	n, err := NewNormalizer(opts...)
	test.ErrNil(t, err, "getting normalizer")
	return n
}

func strp(s string) *string { return &s }
func fltp(f float64) *float64 { return &f }

func TestNormalizeGenericSchema(t *testing.T) {
	n := newNormalizer(t)
	doc := n.Normalize(row(t, 3,
		"transaction_id,customer_id,amount,category,timestamp,is_fraud,location,merchant_name",
		"T100,C7,42.50,grocery_pos,2019-01-01 00:00:18,0,Austin TX,fraud_Rippin"))
	test.MustBe(t, doc, Document{
		TransactionID:    "T100",
		CustomerID:       "C7",
		Amount:           42.5,
		MerchantCategory: "grocery_pos",
		Timestamp:        "2019-01-01 00:00:18",
		Hour:             0,
		DayOfWeek:        1,
		IsFraud:          false,
		Location:         strp("Austin TX"),
		MerchantName:     strp("fraud_Rippin"),
	})
}

func TestNormalizeBankingSchema(t *testing.T) {
	n := newNormalizer(t)
	header := "TransactionID,AccountID,TransactionAmount,TransactionDate,TransactionType,Location,AccountBalance,PreviousTransactionDate"
	line := "TX000001,AC00128,14.09,2023-04-11 16:29:14,Debit,San Diego,5112.21,2024-11-04 08:08:08"
	doc := n.Normalize(row(t, 3, header, line))
	test.MustBe(t, doc, Document{
		TransactionID:    "TX000001",
		CustomerID:       "AC00128",
		Amount:           14.09,
		MerchantCategory: "Debit",
		Timestamp:        "2023-04-11 16:29:14",
		Hour:             16,
		DayOfWeek:        1,
		IsFraud:          false,
		Location:         strp("San Diego"),
		AccountBalance:   fltp(5112.21),
	})

	// No fraud column, so every tenth position is flagged.
	for pos, want := range map[int]bool{0: true, 10: true, 11: false, 29: false} {
		test.MustBe(t, n.Normalize(row(t, pos, header, line)).IsFraud, want, "is_fraud at position "+strconv.Itoa(pos))
	}
}

func TestNormalizeFallbacks(t *testing.T) {
	n := newNormalizer(t)
	doc := n.Normalize(row(t, 12345, "unrelated", "x"))
	test.MustBe(t, doc.TransactionID, "TXN_0000012345")
	test.MustBe(t, doc.CustomerID, "CUST_02345")
	test.MustBe(t, doc.Amount, 0.0)
	test.MustBe(t, doc.MerchantCategory, MerchantCategories[12345%6])
	test.MustBe(t, doc.IsFraud, false)
	if doc.Location != nil || doc.MerchantName != nil || doc.AccountBalance != nil || doc.PreviousAmount != nil {
		t.Fatalf("optional fields should be omitted: %+v", doc)
	}

	ts, err := time.Parse(time.RFC3339, doc.Timestamp)
	test.ErrNil(t, err, "parsing synthetic timestamp")
	age := fixedNow.Sub(ts)
	if age < 24*time.Hour || age > 30*24*time.Hour {
		t.Fatalf("synthetic timestamp %s not 1-30 days before %s", doc.Timestamp, fixedNow)
	}
	test.MustBe(t, doc.Hour, 10)
	test.MustBe(t, doc.DayOfWeek, mondayWeekday(ts.Weekday()))
}

func TestNormalizeAmount(t *testing.T) {
	n := newNormalizer(t)
	tests := []struct {
		header string
		values string
		exp    float64
	}{
		{header: "amount", values: "12.5", exp: 12.5},
		{header: "amt", values: "-3", exp: -3},
		{header: "amount,amt", values: ",7", exp: 7},
		{header: "amount,amt", values: "abc,7", exp: 7},
		{header: "amount", values: "abc", exp: 0},
		{header: "amount", values: "inf", exp: 0},
		{header: "amount", values: "NaN", exp: 0},
		{header: "amount", values: "", exp: 0},
		{header: "TransactionAmount", values: "1e3", exp: 1000},
	}
	for i, tst := range tests {
		doc := n.Normalize(row(t, i, tst.header, tst.values))
		if doc.Amount != tst.exp {
			t.Errorf("test %d: amount from %s=%s: got %v, want %v", i, tst.header, tst.values, doc.Amount, tst.exp)
		}
	}
}

func TestNormalizeIsFraud(t *testing.T) {
	n := newNormalizer(t)
	tests := []struct {
		pos    int
		header string
		values string
		exp    bool
	}{
		{pos: 10, header: "x", values: "1", exp: true},
		{pos: 11, header: "x", values: "1", exp: false},
		{pos: 10, header: "is_fraud", values: "", exp: false},
		{pos: 10, header: "is_fraud", values: "maybe", exp: false},
		{pos: 1, header: "is_fraud", values: "1", exp: true},
		{pos: 1, header: "fraud", values: "True", exp: true},
		{pos: 1, header: "IsFraud", values: "yes", exp: true},
		{pos: 1, header: "is_fraud", values: "0", exp: false},
		{pos: 1, header: "is_fraud", values: "1.0", exp: true},
	}
	for i, tst := range tests {
		doc := n.Normalize(row(t, tst.pos, tst.header, tst.values))
		if doc.IsFraud != tst.exp {
			t.Errorf("test %d: is_fraud from %s=%q at %d: got %v", i, tst.header, tst.values, tst.pos, doc.IsFraud)
		}
	}
}

func TestNormalizeTimestampDerivation(t *testing.T) {
	n := newNormalizer(t)
	tests := []struct {
		ts   string
		hour int
		dow  int
	}{
		{ts: "2023-06-05 14:30:00", hour: 14, dow: 0},
		{ts: "2023-06-11T23:59:59Z", hour: 23, dow: 6},
		{ts: "2023-06-07T08:15:00.123456", hour: 8, dow: 2},
		{ts: "2023-06-08T08:15:00+05:00", hour: 8, dow: 3},
		{ts: "06/09/2023 17:45", hour: 17, dow: 4},
		{ts: "2023-06-10", hour: 0, dow: 5},
		{ts: "2023/06/10 05:00:00", hour: 5, dow: 5},
	}
	for i, tst := range tests {
		doc := n.Normalize(row(t, 100, "timestamp", tst.ts))
		test.MustBe(t, doc.Timestamp, tst.ts, "timestamp is verbatim")
		if doc.Hour != tst.hour || doc.DayOfWeek != tst.dow {
			t.Errorf("test %d: %s: got hour %d dow %d, want %d %d", i, tst.ts, doc.Hour, doc.DayOfWeek, tst.hour, tst.dow)
		}
	}

	// 49 % 24 = 1, 49 % 7 = 0
	doc := n.Normalize(row(t, 49, "timestamp", "yesterday"))
	test.MustBe(t, doc.Timestamp, "yesterday")
	test.MustBe(t, doc.Hour, 1)
	test.MustBe(t, doc.DayOfWeek, 0)
}

func TestNormalizeSeedDeterministic(t *testing.T) {
	r := row(t, 0, "amount", "1")
	a := newNormalizer(t, OptNormalizerSeed(42))
	b := newNormalizer(t, OptNormalizerSeed(42))
	for i := 0; i < 20; i++ {
		test.MustBe(t, a.Normalize(r).Timestamp, b.Normalize(r).Timestamp)
	}
}

func TestNormalizeOptionalUncoercible(t *testing.T) {
	n := newNormalizer(t)
	doc := n.Normalize(row(t, 0, "account_balance,previous_amount,merchant_name", "lots,12.25,NA"))
	if doc.AccountBalance != nil {
		t.Fatalf("uncoercible account_balance should be omitted, got %v", *doc.AccountBalance)
	}
	test.MustBe(t, doc.PreviousAmount, fltp(12.25))
	if doc.MerchantName != nil {
		t.Fatalf("null merchant_name should be omitted, got %v", *doc.MerchantName)
	}
}

func TestAddAlias(t *testing.T) {
	n := newNormalizer(t, OptNormalizerAliases(map[string]string{"txn_amount": FieldAmount}))
	doc := n.Normalize(row(t, 0, "txn_amount", "9.75"))
	test.MustBe(t, doc.Amount, 9.75)

	// built-in aliases win over configured ones
	doc = n.Normalize(row(t, 0, "txn_amount,amount", "9.75,1"))
	test.MustBe(t, doc.Amount, 1.0)

	if err := n.AddAlias("foo", "nonexistent"); err == nil {
		t.Fatal("expected error for unknown field")
	}
	if _, err := NewNormalizer(OptNormalizerAliases(map[string]string{"": FieldAmount})); err == nil {
		t.Fatal("expected error for empty alias")
	}
}

func TestAddAliasDoesNotLeak(t *testing.T) {
	n := newNormalizer(t)
	test.ErrNil(t, n.AddAlias("txn_amount", FieldAmount), "adding alias")
	for _, f := range DefaultFields() {
		for _, a := range f.Aliases {
			if a == "txn_amount" {
				t.Fatal("alias added to one normalizer leaked into the default table")
			}
		}
	}
}

func TestNormalizeNullMarkerID(t *testing.T) {
	n := newNormalizer(t)
	for _, marker := range []string{"#N/A N/A", "-1.#IND", "-1.#QNAN"} {
		doc := n.Normalize(row(t, 7, "transaction_id,amount", marker+",1.5"))
		test.MustBe(t, doc.TransactionID, "TXN_0000000007", marker)
	}
}
