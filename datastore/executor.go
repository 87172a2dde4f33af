package datastore

import (
	"context"

	"github.com/golang/snappy"

	"github.com/ledgerwatch/hxhim/blob"
	"github.com/ledgerwatch/hxhim/histogram"
	"github.com/ledgerwatch/hxhim/hxerr"
	"github.com/ledgerwatch/hxhim/key"
	"github.com/ledgerwatch/hxhim/message"
)

// HistogramRegistration names a predicate to track and the strategy its
// histogram freezes to after training_size observations.
type HistogramRegistration struct {
	PredicateName string
	Strategy      histogram.Strategy
	TrainingSize  int
}

// Executor presents the single interface the message layer dispatches
// against: one Engine, its histogram registry, and the compression policy
// applied to object bytes before they reach the engine.
type Executor struct {
	engine     Engine
	histograms *histogram.Registry
	tracked    map[string]bool
	compress   bool
}

// NewExecutor wires engine to a fresh histogram registry. trackedPredicates
// lists which predicate names get their numeric objects observed on BPut.
func NewExecutor(engine Engine, compress bool, trackedPredicates []HistogramRegistration) *Executor {
	reg := histogram.NewRegistry()
	tracked := make(map[string]bool, len(trackedPredicates))
	for _, hr := range trackedPredicates {
		reg.Register(hr.PredicateName, hr.Strategy, hr.TrainingSize)
		tracked[hr.PredicateName] = true
	}
	return &Executor{engine: engine, histograms: reg, tracked: tracked, compress: compress}
}

func (e *Executor) composeKey(subject, predicate blob.Blob) ([]byte, error) {
	encSubject, err := elenEncode(subject)
	if err != nil {
		return nil, err
	}
	encPredicate, err := elenEncode(predicate)
	if err != nil {
		return nil, err
	}
	return key.Compose(encSubject, encPredicate), nil
}

func (e *Executor) packValue(objectKind blob.Kind, objectBytes []byte) []byte {
	payload := objectBytes
	if e.compress {
		payload = snappy.Encode(nil, objectBytes)
	}
	out := make([]byte, 0, len(payload)+1)
	out = append(out, byte(objectKind))
	out = append(out, payload...)
	return out
}

func (e *Executor) unpackValue(stored []byte) (blob.Blob, error) {
	if len(stored) < 1 {
		return blob.Blob{}, hxerr.New(hxerr.MsgTruncated, "stored value missing kind tag")
	}
	kind := blob.Kind(stored[0])
	payload := stored[1:]
	if e.compress {
		decoded, err := snappy.Decode(nil, payload)
		if err != nil {
			return blob.Blob{}, hxerr.Wrap(hxerr.EngineError, "snappy decode failed", err)
		}
		payload = decoded
	}
	return blob.NewOwned(payload, kind), nil
}

// Put writes one triple, registering a histogram observation when the
// predicate name is tracked and the object is numeric.
func (e *Executor) Put(ctx context.Context, predicateName string, subject, predicate, object blob.Blob) message.Status {
	k, err := e.composeKey(subject, predicate)
	if err != nil {
		return message.StatusKindMismatch
	}
	v := e.packValue(object.Kind, object.Bytes)
	if err := e.engine.Put(ctx, k, v); err != nil {
		return message.StatusEngineError
	}
	if e.tracked[predicateName] {
		if f, ok := object.AsFloat64(); ok {
			e.histograms.Observe(predicateName, f)
		}
	}
	return message.StatusOK
}

// Get reads back the object stored for (subject, predicate), checking that
// its kind matches expectedKind.
func (e *Executor) Get(ctx context.Context, subject, predicate blob.Blob, expectedKind blob.Kind) (blob.Blob, message.Status) {
	k, err := e.composeKey(subject, predicate)
	if err != nil {
		return blob.Blob{}, message.StatusKindMismatch
	}
	stored, found, err := e.engine.Get(ctx, k)
	if err != nil {
		return blob.Blob{}, message.StatusEngineError
	}
	if !found {
		return blob.Blob{}, message.StatusNotFound
	}
	obj, err := e.unpackValue(stored)
	if err != nil {
		return blob.Blob{}, message.StatusEngineError
	}
	if obj.Kind != expectedKind {
		return blob.Blob{}, message.StatusKindMismatch
	}
	return obj, message.StatusOK
}

// Delete removes (subject, predicate); a missing key is STATUS_NOT_FOUND,
// not an engine error, and does not abort the enclosing batch.
func (e *Executor) Delete(ctx context.Context, subject, predicate blob.Blob) message.Status {
	k, err := e.composeKey(subject, predicate)
	if err != nil {
		return message.StatusKindMismatch
	}
	_, found, err := e.engine.Get(ctx, k)
	if err != nil {
		return message.StatusEngineError
	}
	if !found {
		return message.StatusNotFound
	}
	if err := e.engine.Delete(ctx, k); err != nil {
		return message.StatusEngineError
	}
	return message.StatusOK
}

// GetOpResult is one matched item from a ranged get.
type GetOpResult struct {
	Object blob.Blob
	Status message.Status
}

// GetOp seeks into the ordered key space from (subject, predicate) and
// streams up to n items matching cmp. Tie-breaks: LT/LE descend from the
// seek position; GT/GE ascend; EQ returns only an exact match; FIRST/LAST
// ignore the seed and return the bounds; BEFORE/AFTER skip exact matches.
func (e *Executor) GetOp(ctx context.Context, subject, predicate blob.Blob, expectedKind blob.Kind, cmp message.Comparator, n uint64) ([]GetOpResult, message.Status) {
	seekKey, err := e.composeKey(subject, predicate)
	if err != nil {
		return nil, message.StatusKindMismatch
	}

	var results []GetOpResult
	appendKV := func(kv KV) bool {
		obj, err := e.unpackValue(kv.Value)
		if err != nil {
			results = append(results, GetOpResult{Status: message.StatusEngineError})
			return uint64(len(results)) < n
		}
		status := message.StatusOK
		if obj.Kind != expectedKind {
			status = message.StatusKindMismatch
		}
		results = append(results, GetOpResult{Object: obj, Status: status})
		return uint64(len(results)) < n
	}

	switch cmp {
	case message.EQ:
		stored, found, err := e.engine.Get(ctx, seekKey)
		if err != nil {
			return nil, message.StatusEngineError
		}
		if !found {
			return nil, message.StatusNotFound
		}
		appendKV(KV{Key: seekKey, Value: stored})
		return results, message.StatusOK
	case message.LT, message.LE:
		err = e.engine.Scan(ctx, seekKey, ScanDescending, int(n), func(kv KV) bool {
			if cmp == message.LT && string(kv.Key) == string(seekKey) {
				return true
			}
			return appendKV(kv)
		})
	case message.GT, message.GE:
		err = e.engine.Scan(ctx, seekKey, ScanAscending, int(n), func(kv KV) bool {
			if cmp == message.GT && string(kv.Key) == string(seekKey) {
				return true
			}
			return appendKV(kv)
		})
	case message.BEFORE:
		err = e.engine.Scan(ctx, seekKey, ScanDescending, int(n), func(kv KV) bool {
			if string(kv.Key) == string(seekKey) {
				return true
			}
			return appendKV(kv)
		})
	case message.AFTER:
		err = e.engine.Scan(ctx, seekKey, ScanAscending, int(n), func(kv KV) bool {
			if string(kv.Key) == string(seekKey) {
				return true
			}
			return appendKV(kv)
		})
	case message.FIRST:
		err = e.engine.Scan(ctx, nil, ScanAscending, int(n), appendKV)
	case message.LAST:
		err = e.engine.Scan(ctx, nil, ScanDescending, int(n), appendKV)
	default:
		return nil, message.StatusEngineError
	}
	if err != nil {
		return nil, message.StatusEngineError
	}
	return results, message.StatusOK
}

// Sync flushes the engine to stable storage.
func (e *Executor) Sync(ctx context.Context) message.Status {
	if err := e.engine.Sync(ctx); err != nil {
		return message.StatusEngineError
	}
	return message.StatusOK
}

// Histogram snapshots the named histogram.
func (e *Executor) Histogram(name string) ([]message.Bucket, message.Status) {
	buckets, err := e.histograms.Snapshot(name)
	if err != nil {
		return nil, message.StatusNotFound
	}
	out := make([]message.Bucket, len(buckets))
	for i, b := range buckets {
		out[i] = message.Bucket{Edge: b.Edge, Count: b.Count}
	}
	return out, message.StatusOK
}
