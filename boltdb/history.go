// Package boltdb keeps a history of import runs in a bolt database file.
package boltdb

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pilosa/txnimport"
	"github.com/pkg/errors"
)

var runBucket = []byte("runs")

// History is a txnimport.Recorder which appends each run's Result to a bolt
// database, keyed by a monotonic sequence number.
type History struct {
	Db *bolt.DB
}

var _ txnimport.Recorder = &History{}

// NewHistory opens (creating if necessary) the history database at filename.
func NewHistory(filename string) (h *History, err error) {
	h = &History{}
	h.Db, err = bolt.Open(filename, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening db file '%v'", filename)
	}
	err = h.Db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(runBucket)
		return errors.Wrap(err, "creating runs bucket")
	})
	if err != nil {
		h.Db.Close()
		return nil, errors.Wrap(err, "ensuring bucket existence")
	}
	return h, nil
}

// Close syncs and closes the database.
func (h *History) Close() error {
	err := h.Db.Sync()
	if err != nil {
		return errors.Wrap(err, "syncing db")
	}
	return h.Db.Close()
}

// RecordRun appends res to the history.
func (h *History) RecordRun(res *txnimport.Result) error {
	val, err := json.Marshal(res)
	if err != nil {
		return errors.Wrap(err, "encoding result")
	}
	return h.Db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(runBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return errors.Wrap(err, "getting next sequence")
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return errors.Wrap(b.Put(key, val), "inserting into runs bucket")
	})
}

// Runs returns up to limit recorded results, newest first. A limit of zero
// or less returns them all.
func (h *History) Runs(limit int) ([]txnimport.Result, error) {
	runs := make([]txnimport.Result, 0)
	err := h.Db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(runBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(runs) >= limit {
				break
			}
			res := txnimport.Result{}
			if err := json.Unmarshal(v, &res); err != nil {
				return errors.Wrapf(err, "decoding run %d", binary.BigEndian.Uint64(k))
			}
			runs = append(runs, res)
		}
		return nil
	})
	return runs, err
}
