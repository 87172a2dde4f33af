// Package hxhim is the public library surface: init/open/close/destroy an
// Instance, enqueue put/get/getop/delete/histogram operations, flush, and
// walk the resulting response stream.
package hxhim

import (
	"time"

	"github.com/ledgerwatch/hxhim/datastore"
	"github.com/ledgerwatch/hxhim/histogram"
	"github.com/ledgerwatch/hxhim/internal/batch"
	"github.com/ledgerwatch/hxhim/transport"
)

// HistogramOption names one predicate to track, the strategy its histogram
// freezes to, and how many observations its training window buffers.
type HistogramOption struct {
	Name         string
	Strategy     histogram.Strategy
	TrainingSize int
}

// EngineKind selects which reference Engine backs a local datastore.
type EngineKind int

const (
	// EngineMem is the in-process GoLLRB-ordered tree engine.
	EngineMem EngineKind = iota
	// EngineLMDB is the on-disk LMDB engine.
	EngineLMDB
)

// EngineOptions selects and configures the local storage engine.
type EngineOptions struct {
	Kind EngineKind
	// Compress snappy-compresses object bytes before they reach the engine.
	Compress bool
	// Dir is the LMDB environment directory; ignored for EngineMem.
	Dir string
	// MapSize is the LMDB environment map size in bytes; ignored for EngineMem.
	MapSize int64
	// CacheBytes sizes the memengine hot-key cache; <= 0 defaults to 32MB.
	CacheBytes int
}

// TransportOptions selects and configures the transport adapter.
type TransportOptions struct {
	Kind       transport.Kind
	ListenAddr string
	Addresses  map[int32]string
}

// Options matches spec.md §6's recognized option set: the configuration
// struct this module accepts. Loading it from disk or flags is the
// process launcher's job, not this package's.
type Options struct {
	Rank              int32
	Ranks             int32
	DatastoresPerRank uint32
	MaxOpsPerBulk     int
	MaxBulkOps        int
	Histograms        []HistogramOption
	Engine            EngineOptions
	Transport         TransportOptions
	FlushTimeout      time.Duration
}

// Default returns the documented defaults: max_ops_per_bulk = 64 and a
// single-rank, single-datastore, uncompressed, local-transport topology
// suitable for embedding in one process.
func Default() Options {
	return Options{
		Rank:              0,
		Ranks:             1,
		DatastoresPerRank: 1,
		MaxOpsPerBulk:     batch.DefaultMaxOpsPerBulk,
		MaxBulkOps:        1024,
		Engine:            EngineOptions{Compress: false},
		Transport:         TransportOptions{Kind: transport.KindLocal},
		FlushTimeout:      0,
	}
}

func (o Options) registrations() []datastore.HistogramRegistration {
	out := make([]datastore.HistogramRegistration, len(o.Histograms))
	for i, h := range o.Histograms {
		out[i] = datastore.HistogramRegistration{PredicateName: h.Name, Strategy: h.Strategy, TrainingSize: h.TrainingSize}
	}
	return out
}
