// Package memengine is the in-memory reference Engine: an ordered
// left-leaning red-black tree (github.com/petar/GoLLRB) holds the full
// key space so Scan can walk it in order, fronted by a fixed-memory
// fastcache for hot-key reads.
package memengine

import (
	"bytes"
	"context"
	"sync"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/petar/GoLLRB/llrb"

	"github.com/ledgerwatch/hxhim/datastore"
)

type kvItem struct {
	key   []byte
	value []byte
}

func (a *kvItem) Less(b llrb.Item) bool {
	return bytes.Compare(a.key, b.(*kvItem).key) < 0
}

// Engine implements datastore.Engine entirely in memory.
type Engine struct {
	mu    sync.RWMutex
	tree  *llrb.LLRB
	cache *fastcache.Cache
}

// New returns an empty Engine with a hot-key cache sized cacheBytes.
func New(cacheBytes int) *Engine {
	if cacheBytes <= 0 {
		cacheBytes = 32 * 1024 * 1024
	}
	return &Engine{
		tree:  llrb.New(),
		cache: fastcache.New(cacheBytes),
	}
}

func (e *Engine) Put(ctx context.Context, key, value []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	stored := append([]byte(nil), value...)
	e.tree.ReplaceOrInsert(&kvItem{key: append([]byte(nil), key...), value: stored})
	e.cache.Set(key, stored)
	return nil
}

func (e *Engine) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	if v, found := e.cache.HasGet(nil, key); found {
		return v, true, nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	item := e.tree.Get(&kvItem{key: key})
	if item == nil {
		return nil, false, nil
	}
	v := item.(*kvItem).value
	e.cache.Set(key, v)
	return v, true, nil
}

func (e *Engine) Delete(ctx context.Context, key []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tree.Delete(&kvItem{key: key})
	e.cache.Del(key)
	return nil
}

func (e *Engine) Scan(ctx context.Context, key []byte, direction datastore.ScanDirection, n int, yield func(datastore.KV) bool) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	count := 0
	visit := func(item llrb.Item) bool {
		if count >= n {
			return false
		}
		kv := item.(*kvItem)
		count++
		return yield(datastore.KV{Key: kv.key, Value: kv.value})
	}

	switch direction {
	case datastore.ScanAscending:
		pivot := e.tree.Min()
		if key != nil {
			pivot = &kvItem{key: key}
		}
		if pivot != nil {
			e.tree.AscendGreaterOrEqual(pivot, visit)
		}
	case datastore.ScanDescending:
		pivot := e.tree.Max()
		if key != nil {
			pivot = &kvItem{key: key}
		}
		if pivot != nil {
			e.tree.DescendLessOrEqual(pivot, visit)
		}
	}
	return nil
}

func (e *Engine) Sync(ctx context.Context) error { return nil }

func (e *Engine) Close() error {
	e.cache.Reset()
	return nil
}

var _ datastore.Engine = (*Engine)(nil)
