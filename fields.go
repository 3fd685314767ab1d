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
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// CoerceFunc converts a raw, non-null cell value into the typed value of a
// field.
type CoerceFunc func(raw string) (interface{}, error)

// FallbackFunc supplies a value for a field when none of its aliases held a
// usable value. columnPresent reports whether any alias of the field exists
// in the row's header. If ok is false the field is left out of the document.
type FallbackFunc func(n *Normalizer, pos int, columnPresent bool) (val interface{}, ok bool)

// Field describes how one canonical field is read from a source row.
type Field struct {
	// Name is the canonical field name.
	Name string

	// Aliases are the source column names tried in order. The first one
	// present in the row with a non-null value that coerces is used.
	Aliases []string

	Coerce   CoerceFunc
	Fallback FallbackFunc

	// Required fields are always present in a Document.
	Required bool

	assign func(d *Document, val interface{})
}

// MerchantCategories are assigned round-robin to rows with no category.
var MerchantCategories = []string{
	"gas_transport",
	"grocery_net",
	"entertainment",
	"shopping_net",
	"health_fitness",
	"food_dining",
}

// DefaultFields returns a fresh copy of the built-in field table. Aliases of
// the generic fraud-detection schema come before those of the banking
// schema.
func DefaultFields() []Field {
	return []Field{
		{
			Name:     FieldTransactionID,
			Aliases:  []string{"transaction_id", "id", "TransactionID"},
			Coerce:   AsString,
			Fallback: func(_ *Normalizer, pos int, _ bool) (interface{}, bool) { return fmt.Sprintf("TXN_%010d", pos), true },
			Required: true,
			assign:   func(d *Document, v interface{}) { d.TransactionID = v.(string) },
		},
		{
			Name:     FieldCustomerID,
			Aliases:  []string{"customer_id", "user", "AccountID", "CustomerID"},
			Coerce:   AsString,
			Fallback: func(_ *Normalizer, pos int, _ bool) (interface{}, bool) { return fmt.Sprintf("CUST_%05d", pos%10000), true },
			Required: true,
			assign:   func(d *Document, v interface{}) { d.CustomerID = v.(string) },
		},
		{
			Name:     FieldAmount,
			Aliases:  []string{"amount", "amt", "TransactionAmount"},
			Coerce:   AsFloat,
			Fallback: func(*Normalizer, int, bool) (interface{}, bool) { return 0.0, true },
			Required: true,
			assign:   func(d *Document, v interface{}) { d.Amount = v.(float64) },
		},
		{
			Name:    FieldMerchantCategory,
			Aliases: []string{"category", "merchant", "MerchantCategory", "TransactionType"},
			Coerce:  AsString,
			Fallback: func(_ *Normalizer, pos int, _ bool) (interface{}, bool) {
				return MerchantCategories[pos%len(MerchantCategories)], true
			},
			Required: true,
			assign:   func(d *Document, v interface{}) { d.MerchantCategory = v.(string) },
		},
		{
			Name:     FieldTimestamp,
			Aliases:  []string{"timestamp", "trans_date_trans_time", "TransactionDate"},
			Coerce:   AsString,
			Fallback: syntheticTimestamp,
			Required: true,
			assign:   func(d *Document, v interface{}) { d.Timestamp = v.(string) },
		},
		{
			Name:    FieldIsFraud,
			Aliases: []string{"is_fraud", "fraud", "IsFraud"},
			Coerce:  AsBool,
			Fallback: func(_ *Normalizer, pos int, columnPresent bool) (interface{}, bool) {
				if columnPresent {
					return false, true
				}
				return pos%10 == 0, true
			},
			Required: true,
			assign:   func(d *Document, v interface{}) { d.IsFraud = v.(bool) },
		},
		{
			Name:    FieldLocation,
			Aliases: []string{"location", "Location"},
			Coerce:  AsString,
			assign:  func(d *Document, v interface{}) { s := v.(string); d.Location = &s },
		},
		{
			Name:    FieldMerchantName,
			Aliases: []string{"merchant_name", "MerchantName"},
			Coerce:  AsString,
			assign:  func(d *Document, v interface{}) { s := v.(string); d.MerchantName = &s },
		},
		{
			Name:    FieldAccountBalance,
			Aliases: []string{"account_balance", "AccountBalance"},
			Coerce:  AsFloat,
			assign:  func(d *Document, v interface{}) { f := v.(float64); d.AccountBalance = &f },
		},
		{
			Name:    FieldPreviousAmount,
			Aliases: []string{"previous_amount", "PreviousAmount"},
			Coerce:  AsFloat,
			assign:  func(d *Document, v interface{}) { f := v.(float64); d.PreviousAmount = &f },
		},
	}
}

// AsString returns raw unchanged.
func AsString(raw string) (interface{}, error) {
	return raw, nil
}

// AsFloat parses raw as a finite float64.
func AsFloat(raw string) (interface{}, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, errors.Wrap(err, "parsing float")
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, errors.Errorf("non-finite float '%s'", raw)
	}
	return f, nil
}

// AsBool parses raw as a boolean. Besides the usual true/false spellings,
// yes/no, y/n and numbers are accepted; any non-zero number is true.
func AsBool(raw string) (interface{}, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "true", "t", "yes", "y":
		return true, nil
	case "false", "f", "no", "n":
		return false, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return nil, errors.Errorf("unrecognized boolean '%s'", raw)
	}
	return f != 0, nil
}

func syntheticTimestamp(n *Normalizer, _ int, _ bool) (interface{}, bool) {
	days := n.rng.Intn(30) + 1
	return n.now().AddDate(0, 0, -days).Format(time.RFC3339), true
}

// timestampLayouts are tried in order when deriving hour and day of week.
// Parsing accepts fractional seconds after the seconds field even where a
// layout doesn't name them.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"2006/01/02 15:04:05",
}

// ParseTimestamp parses a timestamp in any of the supported layouts. Values
// without a zone are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("unrecognized timestamp '%s'", s)
}

// mondayWeekday converts a time.Weekday (Sunday = 0) into a day number where
// Monday = 0 and Sunday = 6.
func mondayWeekday(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}
