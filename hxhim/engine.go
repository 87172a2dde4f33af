package hxhim

import (
	"github.com/ledgerwatch/hxhim/datastore"
	"github.com/ledgerwatch/hxhim/datastore/lmdbengine"
	"github.com/ledgerwatch/hxhim/datastore/memengine"
	"github.com/ledgerwatch/hxhim/hxerr"
)

// maxItemSizeBytes bounds a single item's packed wire size for the purpose
// of arena.Size; it is a generous constant rather than a measured value,
// since the struct-of-arrays wire format has no fixed per-item ceiling.
const maxItemSizeBytes = 4096

func buildEngine(opts EngineOptions) (datastore.Engine, error) {
	switch opts.Kind {
	case EngineLMDB:
		mapSize := opts.MapSize
		if mapSize <= 0 {
			mapSize = 64 << 20
		}
		if opts.Dir == "" {
			return nil, hxerr.New(hxerr.BadArg, "lmdb engine requires Dir")
		}
		return lmdbengine.Open(opts.Dir, mapSize)
	case EngineMem:
		return memengine.New(opts.CacheBytes), nil
	default:
		return nil, hxerr.New(hxerr.BadArg, "unknown engine kind")
	}
}
