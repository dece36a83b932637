package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/model"
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cfs_record_cache_hits_total",
		Help: "Total hits on the file record cache.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cfs_record_cache_misses_total",
		Help: "Total misses on the file record cache.",
	})
)

// RecordCache is a per-instance expiring LRU over file records, keyed by
// public filename. Mutations (counter increment, access change, delete)
// must invalidate the entry so policy changes apply on the next fetch.
//
// Records are copied on both Set and Get: the cached struct is never
// shared with callers, so concurrent requests can mutate their own view
// of a record without racing each other.
type RecordCache struct {
	cache *expirable.LRU[string, *model.File]
}

func NewRecordCache(maxSize int, ttl time.Duration) *RecordCache {
	return &RecordCache{
		cache: expirable.NewLRU[string, *model.File](maxSize, nil, ttl),
	}
}

func (c *RecordCache) Get(filename string) (*model.File, bool) {
	val, ok := c.cache.Get(filename)
	if ok {
		cacheHitsTotal.Inc()
		record := *val
		return &record, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

func (c *RecordCache) Set(filename string, file *model.File) {
	record := *file
	c.cache.Add(filename, &record)
}

func (c *RecordCache) Delete(filename string) {
	c.cache.Remove(filename)
}
