package shuffle

import (
	"github.com/ledgerwatch/hxhim/internal/batch"
	"github.com/ledgerwatch/hxhim/message"
)

// Package builds the op-specific Bulk request for one destination's drained
// items, and returns the ItemRef list in the same index order so the
// caller can zip it against the eventual response's positional arrays.
func Package(op message.Op, srcRank, dstRank int32, datastoreID uint32, items []batch.Item) (message.Message, []batch.ItemRef) {
	refs := make([]batch.ItemRef, len(items))
	for i, it := range items {
		refs[i] = it.Ref
	}

	switch op {
	case message.BPut:
		req := message.NewBPutRequest(srcRank, dstRank, len(items))
		for _, it := range items {
			req.Add(datastoreID, it.Subject, it.Predicate, it.Object)
		}
		return req, refs
	case message.BGet:
		req := message.NewBGetRequest(srcRank, dstRank, len(items))
		for _, it := range items {
			req.Add(datastoreID, it.Subject, it.Predicate, it.ObjectKind)
		}
		return req, refs
	case message.BGetOp:
		req := message.NewBGetOpRequest(srcRank, dstRank, len(items))
		for _, it := range items {
			req.Add(datastoreID, it.Subject, it.Predicate, it.ObjectKind, it.Comparator, it.NRecords)
		}
		return req, refs
	case message.BDelete:
		req := message.NewBDeleteRequest(srcRank, dstRank, len(items))
		for _, it := range items {
			req.Add(datastoreID, it.Subject, it.Predicate)
		}
		return req, refs
	case message.BHistogram:
		req := message.NewBHistogramRequest(srcRank, dstRank, len(items))
		for _, it := range items {
			req.Add(datastoreID, it.Name)
		}
		return req, refs
	case message.BSync:
		req := message.NewBSyncRequest(srcRank, dstRank, len(items))
		for range items {
			req.Add(datastoreID)
		}
		return req, refs
	default:
		return nil, nil
	}
}
