// Package lmdbengine is the on-disk reference Engine: one LMDB
// environment with a single named sub-database per datastore directory,
// accessed through github.com/ledgerwatch/lmdb-go's cursor API for the
// ordered Scan the KV contract requires.
package lmdbengine

import (
	"bytes"
	"context"

	"github.com/ledgerwatch/lmdb-go/lmdb"

	"github.com/ledgerwatch/hxhim/datastore"
	"github.com/ledgerwatch/hxhim/hxerr"
)

// Engine wraps one LMDB environment and database handle.
type Engine struct {
	env *lmdb.Env
	dbi lmdb.DBI
}

// Open creates or opens an LMDB environment rooted at dir, sized to
// maxSizeBytes, with one database named "hxhim".
func Open(dir string, maxSizeBytes int64) (*Engine, error) {
	env, err := lmdb.NewEnv()
	if err != nil {
		return nil, hxerr.Wrap(hxerr.EngineError, "lmdb.NewEnv failed", err)
	}
	if err := env.SetMapSize(maxSizeBytes); err != nil {
		return nil, hxerr.Wrap(hxerr.EngineError, "SetMapSize failed", err)
	}
	if err := env.SetMaxDBs(1); err != nil {
		return nil, hxerr.Wrap(hxerr.EngineError, "SetMaxDBs failed", err)
	}
	if err := env.Open(dir, 0, 0644); err != nil {
		return nil, hxerr.Wrap(hxerr.EngineError, "env.Open failed", err)
	}

	var dbi lmdb.DBI
	err = env.Update(func(txn *lmdb.Txn) error {
		var err error
		dbi, err = txn.CreateDBI("hxhim")
		return err
	})
	if err != nil {
		return nil, hxerr.Wrap(hxerr.EngineError, "CreateDBI failed", err)
	}

	return &Engine{env: env, dbi: dbi}, nil
}

func (e *Engine) Put(ctx context.Context, key, value []byte) error {
	err := e.env.Update(func(txn *lmdb.Txn) error {
		return txn.Put(e.dbi, key, value, 0)
	})
	if err != nil {
		return hxerr.Wrap(hxerr.EngineError, "put failed", err)
	}
	return nil
}

func (e *Engine) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	var value []byte
	err := e.env.View(func(txn *lmdb.Txn) error {
		v, err := txn.Get(e.dbi, key)
		if lmdb.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		value = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, false, hxerr.Wrap(hxerr.EngineError, "get failed", err)
	}
	return value, value != nil, nil
}

func (e *Engine) Delete(ctx context.Context, key []byte) error {
	err := e.env.Update(func(txn *lmdb.Txn) error {
		err := txn.Del(e.dbi, key, nil)
		if lmdb.IsNotFound(err) {
			return nil
		}
		return err
	})
	if err != nil {
		return hxerr.Wrap(hxerr.EngineError, "delete failed", err)
	}
	return nil
}

func (e *Engine) Scan(ctx context.Context, key []byte, direction datastore.ScanDirection, n int, yield func(datastore.KV) bool) error {
	err := e.env.View(func(txn *lmdb.Txn) error {
		cur, err := txn.OpenCursor(e.dbi)
		if err != nil {
			return err
		}
		defer cur.Close()

		var k, v []byte
		var op lmdb.CursorOp
		if key != nil {
			k, v, err = cur.Get(key, nil, lmdb.SetRange)
			if direction == datastore.ScanDescending {
				// SetRange lands at the first key >= pivot; back up one
				// step for a descending walk seeded at or before pivot.
				// A pivot past every key seeds at the last key.
				if lmdb.IsNotFound(err) {
					k, v, err = cur.Get(nil, nil, lmdb.Last)
				} else if err == nil && !bytes.Equal(k, key) {
					k, v, err = cur.Get(nil, nil, lmdb.Prev)
				}
			}
		} else if direction == datastore.ScanAscending {
			k, v, err = cur.Get(nil, nil, lmdb.First)
		} else {
			k, v, err = cur.Get(nil, nil, lmdb.Last)
		}
		if direction == datastore.ScanAscending {
			op = lmdb.Next
		} else {
			op = lmdb.Prev
		}

		count := 0
		for err == nil && count < n {
			count++
			if !yield(datastore.KV{Key: append([]byte(nil), k...), Value: append([]byte(nil), v...)}) {
				return nil
			}
			k, v, err = cur.Get(nil, nil, op)
		}
		if lmdb.IsNotFound(err) {
			return nil
		}
		return err
	})
	if err != nil {
		return hxerr.Wrap(hxerr.EngineError, "scan failed", err)
	}
	return nil
}

func (e *Engine) Sync(ctx context.Context) error {
	if err := e.env.Sync(true); err != nil {
		return hxerr.Wrap(hxerr.EngineError, "sync failed", err)
	}
	return nil
}

func (e *Engine) Close() error {
	return e.env.Close()
}

var _ datastore.Engine = (*Engine)(nil)
