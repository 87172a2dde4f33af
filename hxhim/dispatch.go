package hxhim

import (
	"context"

	"github.com/ledgerwatch/hxhim/blob"
	"github.com/ledgerwatch/hxhim/hxerr"
	"github.com/ledgerwatch/hxhim/internal/batch"
	"github.com/ledgerwatch/hxhim/message"
)

// executeLocally runs req against this rank's own Executor and builds the
// matching response, exercising exactly the same code path whether req
// came from this instance's own flush() (dst_rank == self) or arrived over
// the transport in Serve(). counts is non-nil only for BGetOp: it carries
// how many response entries each request item produced, since a single
// ranged get can yield more than one match. That bookkeeping never
// travels on the wire — spec.md's per-op tail has no field for it — so a
// response produced by a remote rank cannot be expanded the same way; see
// DESIGN.md for that documented limitation.
func (in *Instance) executeLocally(ctx context.Context, req message.Message) (message.Message, []int, error) {
	switch r := req.(type) {
	case *message.BPutRequest:
		resp := message.NewBPutResponse(r.DstRank, r.SrcRank, len(r.Subjects))
		for i := range r.Subjects {
			status := in.executor.Put(ctx, string(r.Predicates[i].Bytes), r.Subjects[i], r.Predicates[i], r.Objects[i])
			resp.Add(status)
		}
		return resp, nil, nil

	case *message.BGetRequest:
		resp := message.NewBGetResponse(r.DstRank, r.SrcRank, len(r.Subjects))
		for i := range r.Subjects {
			obj, status := in.executor.Get(ctx, r.Subjects[i], r.Predicates[i], r.ObjectKinds[i])
			resp.Add(status, obj)
		}
		return resp, nil, nil

	case *message.BGetOpRequest:
		resp := message.NewBGetOpResponse(r.DstRank, r.SrcRank, len(r.Subjects))
		counts := make([]int, len(r.Subjects))
		for i := range r.Subjects {
			matches, status := in.executor.GetOp(ctx, r.Subjects[i], r.Predicates[i], r.ObjectKinds[i], r.Comparators[i], r.NRecords[i])
			if status != message.StatusOK {
				resp.Add(status, blob.Blob{})
				counts[i] = 1
				continue
			}
			for _, m := range matches {
				resp.Add(m.Status, m.Object)
			}
			counts[i] = len(matches)
		}
		return resp, counts, nil

	case *message.BDeleteRequest:
		resp := message.NewBDeleteResponse(r.DstRank, r.SrcRank, len(r.Subjects))
		for i := range r.Subjects {
			status := in.executor.Delete(ctx, r.Subjects[i], r.Predicates[i])
			resp.Add(status)
		}
		return resp, nil, nil

	case *message.BHistogramRequest:
		resp := message.NewBHistogramResponse(r.DstRank, r.SrcRank, len(r.Names))
		for i := range r.Names {
			buckets, status := in.executor.Histogram(r.Names[i])
			resp.Add(status, buckets)
		}
		return resp, nil, nil

	case *message.BSyncRequest:
		resp := message.NewBSyncResponse(r.DstRank, r.SrcRank, len(r.DatastoreIDs))
		for range r.DatastoreIDs {
			resp.Add(in.executor.Sync(ctx))
		}
		return resp, nil, nil

	default:
		return nil, nil, hxerr.New(hxerr.MsgOpcode, "unsupported request type")
	}
}

// resultsFrom zips a bulk response back against the ItemRefs retained for
// its request, expanding BGetOp's variable per-item fan-out via counts.
func resultsFrom(op message.Op, items []batch.Item, refs []batch.ItemRef, resp message.Message, counts []int) []*Result {
	switch r := resp.(type) {
	case *message.BPutResponse:
		out := make([]*Result, len(r.Statuses))
		for i, s := range r.Statuses {
			out[i] = &Result{Op: op, Status: s, OriginalIndex: refs[i].OriginalIndex, DatastoreID: refs[i].DatastoreID,
				Subject: items[i].Subject, Predicate: items[i].Predicate, Object: items[i].Object}
		}
		return out

	case *message.BGetResponse:
		out := make([]*Result, len(r.Statuses))
		for i, s := range r.Statuses {
			out[i] = &Result{Op: op, Status: s, OriginalIndex: refs[i].OriginalIndex, DatastoreID: refs[i].DatastoreID,
				Subject: items[i].Subject, Predicate: items[i].Predicate, Object: r.Objects[i]}
		}
		return out

	case *message.BGetOpResponse:
		out := make([]*Result, 0, len(r.Statuses))
		idx := 0
		for i := range items {
			n := 1
			if counts != nil {
				n = counts[i]
			}
			for j := 0; j < n && idx < len(r.Statuses); j++ {
				out = append(out, &Result{Op: op, Status: r.Statuses[idx], OriginalIndex: refs[i].OriginalIndex, DatastoreID: refs[i].DatastoreID,
					Subject: items[i].Subject, Predicate: items[i].Predicate, Object: r.Objects[idx]})
				idx++
			}
		}
		return out

	case *message.BDeleteResponse:
		out := make([]*Result, len(r.Statuses))
		for i, s := range r.Statuses {
			out[i] = &Result{Op: op, Status: s, OriginalIndex: refs[i].OriginalIndex, DatastoreID: refs[i].DatastoreID,
				Subject: items[i].Subject, Predicate: items[i].Predicate}
		}
		return out

	case *message.BHistogramResponse:
		out := make([]*Result, len(r.Statuses))
		for i, s := range r.Statuses {
			out[i] = &Result{Op: op, Status: s, OriginalIndex: refs[i].OriginalIndex, DatastoreID: refs[i].DatastoreID,
				Buckets: r.Buckets[i]}
		}
		return out

	case *message.BSyncResponse:
		out := make([]*Result, len(r.Statuses))
		for i, s := range r.Statuses {
			out[i] = &Result{Op: op, Status: s, OriginalIndex: refs[i].OriginalIndex, DatastoreID: refs[i].DatastoreID}
		}
		return out

	default:
		return nil
	}
}
