// Package scoredb persists score records in a bbolt database:
// the last record of every vessel, and the full history.
package scoredb

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rotblauer/aistrust/conceptual"
	"github.com/rotblauer/aistrust/params"
	"github.com/rotblauer/aistrust/scorer"
	"go.etcd.io/bbolt"
)

var ErrNotFound = errors.New("no record")

type DB struct {
	db    *bbolt.DB
	rOnly bool
}

// Open opens (creating if needed) the score database in datadir.
// A writable DB holds an exclusive file lock; other openers block until it is closed.
func Open(datadir string, readOnly bool) (*DB, error) {
	if !readOnly {
		if err := os.MkdirAll(datadir, 0770); err != nil {
			return nil, err
		}
	}
	db, err := bbolt.Open(filepath.Join(datadir, params.ScoreDBName), 0600, &bbolt.Options{
		ReadOnly: readOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("open score db: %w", err)
	}
	s := &DB{db: db, rOnly: readOnly}
	if readOnly {
		return s, nil
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{params.ScoreDBBucketLast, params.ScoreDBBucketHistory} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *DB) Close() error {
	return s.db.Close()
}

func (s *DB) Path() string {
	return s.db.Path()
}

// historyKey sorts by vessel, then by time.
func historyKey(rec *scorer.Record) []byte {
	k := make([]byte, 0, 9+8)
	k = append(k, rec.MMSI.Key()...)
	return binary.BigEndian.AppendUint64(k, uint64(rec.ScoredAt.UnixNano()))
}

// Put stores rec in history, and as the vessel's last record unless a newer one is there.
func (s *DB) Put(rec *scorer.Record) error {
	if rec == nil {
		return fmt.Errorf("put: nil record")
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(params.ScoreDBBucketHistory).Put(historyKey(rec), b); err != nil {
			return err
		}
		last := tx.Bucket(params.ScoreDBBucketLast)
		key := []byte(rec.MMSI.Key())
		if got := last.Get(key); got != nil {
			prev := &scorer.Record{}
			if err := json.Unmarshal(got, prev); err == nil && prev.ScoredAt.After(rec.ScoredAt) {
				return nil
			}
		}
		return last.Put(key, b)
	})
}

func (s *DB) Last(mmsi conceptual.MMSI) (*scorer.Record, error) {
	var got []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(params.ScoreDBBucketLast)
		if bucket == nil {
			return nil
		}
		// The value returned by Get is only valid in the scope of the transaction.
		if v := bucket.Get([]byte(mmsi.Key())); v != nil {
			got = bytes.Clone(v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if got == nil {
		return nil, fmt.Errorf("%w: mmsi=%s", ErrNotFound, mmsi)
	}
	rec := &scorer.Record{}
	if err := json.Unmarshal(got, rec); err != nil {
		return nil, fmt.Errorf("%w: %q", err, string(got))
	}
	return rec, nil
}

// History returns every record of mmsi, oldest first.
func (s *DB) History(mmsi conceptual.MMSI) ([]*scorer.Record, error) {
	var out []*scorer.Record
	prefix := []byte(mmsi.Key())
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(params.ScoreDBBucketHistory)
		if bucket == nil {
			return nil
		}
		c := bucket.Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			rec := &scorer.Record{}
			if err := json.Unmarshal(v, rec); err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

// Dump writes the full history as gzipped newline-delimited JSON and returns the record count.
func (s *DB) Dump(wr io.Writer) (int, error) {
	gzw, err := gzip.NewWriterLevel(wr, params.DefaultGZipCompressionLevel)
	if err != nil {
		return 0, err
	}
	n := 0
	err = s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(params.ScoreDBBucketHistory)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			n++
			if _, err := gzw.Write(v); err != nil {
				return err
			}
			_, err := gzw.Write([]byte{'\n'})
			return err
		})
	})
	if err != nil {
		gzw.Close()
		return n, err
	}
	if err := gzw.Close(); err != nil {
		return n, err
	}
	slog.Debug("Dumped score history", "records", n, "db", s.Path())
	return n, nil
}
