package cache

import (
	"fmt"

	"github.com/golang/groupcache/lru"
	lru2 "github.com/hashicorp/golang-lru/v2"
	"github.com/jellydator/ttlcache/v3"
	"github.com/mitchellh/hashstructure/v2"
	"github.com/rotblauer/aistrust/conceptual"
	"github.com/rotblauer/aistrust/params"
	"github.com/rotblauer/aistrust/scorer"
)

var LastRecordTTLCache = ttlcache.New[conceptual.MMSI, *scorer.Record](
	ttlcache.WithTTL[conceptual.MMSI, *scorer.Record](params.CacheLastRecordTTL))

// SetLastRecord keeps rec if it is not older than the cached record for its vessel.
func SetLastRecord(rec *scorer.Record) {
	if item := LastRecordTTLCache.Get(rec.MMSI); item != nil && item.Value().ScoredAt.After(rec.ScoredAt) {
		return
	}
	LastRecordTTLCache.Set(rec.MMSI, rec, ttlcache.DefaultTTL)
}

func GetLastRecord(mmsi conceptual.MMSI) (*scorer.Record, bool) {
	item := LastRecordTTLCache.Get(mmsi)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// NewDedupePassLRUFunc returns a predicate that is true the first time it sees
// a key and false while that key remains among the most recently seen.
// It is not safe for concurrent use.
func NewDedupePassLRUFunc(size int) func(key string) bool {
	var dedupeCache = lru.New(size)
	return func(key string) bool {
		if _, ok := dedupeCache.Get(key); ok {
			return false
		}
		dedupeCache.Add(key, true)
		return true
	}
}

// Memo remembers records of deterministic strategies by request hash.
type Memo struct {
	lru *lru2.Cache[uint64, *scorer.Record]
}

func NewMemo(size int) (*Memo, error) {
	c, err := lru2.New[uint64, *scorer.Record](size)
	if err != nil {
		return nil, err
	}
	return &Memo{lru: c}, nil
}

// Memoizable is false for strategies whose output changes between identical calls.
func Memoizable(tag scorer.Tag) bool {
	return tag == scorer.TagSimple || tag == scorer.TagHashed
}

// Key hashes the fields of req that determine its score.
func Key(req *scorer.Request) (uint64, error) {
	h, err := hashstructure.Hash(req, hashstructure.FormatV2, nil)
	if err != nil {
		return 0, fmt.Errorf("hash request: %w", err)
	}
	return h, nil
}

func (m *Memo) Get(key uint64) (*scorer.Record, bool) {
	return m.lru.Get(key)
}

func (m *Memo) Add(key uint64, rec *scorer.Record) {
	m.lru.Add(key, rec)
}

func (m *Memo) Len() int {
	return m.lru.Len()
}
