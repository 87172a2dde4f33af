package hxhim

import (
	"context"
	"sync"
	"time"

	"github.com/ledgerwatch/hxhim/blob"
	"github.com/ledgerwatch/hxhim/datastore"
	"github.com/ledgerwatch/hxhim/hxerr"
	"github.com/ledgerwatch/hxhim/internal/arena"
	"github.com/ledgerwatch/hxhim/internal/batch"
	"github.com/ledgerwatch/hxhim/internal/shuffle"
	"github.com/ledgerwatch/hxhim/log"
	"github.com/ledgerwatch/hxhim/message"
	"github.com/ledgerwatch/hxhim/transport"
	"github.com/ledgerwatch/hxhim/transport/local"
	"github.com/ledgerwatch/hxhim/transport/remote"
)

var logger = log.New("module", "hxhim")

// Instance is init/open/close/destroy's abstract "instance": one rank's
// batch queues, router, transport, and local storage executor, wired
// together. The zero value is not usable; build one with Open.
type Instance struct {
	opts      Options
	batch     *batch.Batch
	router    *shuffle.Router
	transport transport.Transport
	executor  *datastore.Executor
	pool      *datastore.WorkerPool
	arena     *arena.Arena

	mu     sync.Mutex
	seq    int
	closed bool

	promoteWG      sync.WaitGroup
	pendingMu      sync.Mutex
	pendingResults []*Result
}

// Open builds an Instance from opts: it constructs the local storage
// engine, the transport adapter named by opts.Transport.Kind, and starts
// the worker pool that answers inbound requests handed to it by Serve.
// This is spec.md §6's init(context) + open(instance) pair collapsed into
// one call, since this module has no separate "allocated but not yet
// listening" state worth exposing.
func Open(ctx context.Context, opts Options) (*Instance, error) {
	engine, err := buildEngine(opts.Engine)
	if err != nil {
		return nil, err
	}
	executor := datastore.NewExecutor(engine, opts.Engine.Compress, opts.registrations())

	maxOpsPerBulk := opts.MaxOpsPerBulk
	if maxOpsPerBulk <= 0 {
		maxOpsPerBulk = batch.DefaultMaxOpsPerBulk
	}
	maxBulkOps := opts.MaxBulkOps
	if maxBulkOps <= 0 {
		maxBulkOps = 1024
	}
	ranks := opts.Ranks
	if ranks <= 0 {
		ranks = 1
	}
	datastoresPerRank := opts.DatastoresPerRank
	if datastoresPerRank == 0 {
		datastoresPerRank = 1
	}

	var tp transport.Transport
	switch opts.Transport.Kind {
	case transport.KindGRPC:
		tp, err = remote.New(opts.Rank, opts.Transport.ListenAddr, staticAddressBook{addresses: opts.Transport.Addresses})
		if err != nil {
			return nil, err
		}
	default:
		tp = local.New(opts.Rank, 256)
	}

	in := &Instance{
		opts:      opts,
		batch:     batch.New(maxOpsPerBulk),
		router:    shuffle.New(uint32(ranks), datastoresPerRank),
		transport: tp,
		executor:  executor,
		arena:     arena.New(arena.Size(maxBulkOps, maxOpsPerBulk, maxItemSizeBytes)),
	}
	in.pool = datastore.NewWorkerPool(ctx, 0, in.handleJob)
	logger.Info("instance opened", "rank", opts.Rank, "ranks", ranks, "datastores_per_rank", datastoresPerRank, "transport", opts.Transport.Kind.String())
	return in, nil
}

func (in *Instance) handleJob(ctx context.Context, job datastore.Job) {
	resp, _, err := in.executeLocally(ctx, job.Request)
	if err != nil {
		logger.Warn("job dispatch failed", "err", err)
		return
	}
	job.Respond(resp)
}

// Serve runs the listener loop: it blocks receiving inbound bulk requests
// from other ranks and hands each to the worker pool, which answers via
// the same transport. It returns when Recv returns an error (ctx done or
// the transport closed).
func (in *Instance) Serve(ctx context.Context) error {
	for {
		env, err := in.transport.Recv(ctx)
		if err != nil {
			return err
		}
		req, err := message.UnpackRequest(env.Payload)
		if err != nil {
			logger.Warn("serve: malformed request dropped", "err", err)
			continue
		}
		srcRank := env.SrcRank
		in.pool.Submit(datastore.Job{
			Request: req,
			Respond: func(resp message.Message) {
				if _, err := in.transport.Send(ctx, srcRank, resp.Pack()); err != nil {
					logger.Warn("serve: response send failed", "err", err)
				}
			},
		})
	}
}

// Close stops accepting new work and releases the transport and worker
// pool. Pending queues are not flushed; call Flush first if that matters.
func (in *Instance) Close() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return nil
	}
	in.closed = true
	in.pool.Close()
	return in.transport.Close()
}

// Destroy syncs the local storage engine to stable storage and then
// Closes the instance, matching spec.md §6's separate destroy(instance)
// step.
func (in *Instance) Destroy() error {
	if status := in.executor.Sync(context.Background()); status != message.StatusOK {
		logger.Warn("destroy: final sync failed", "status", status.String())
	}
	return in.Close()
}

func (in *Instance) nextRef(datastoreID uint32) batch.ItemRef {
	in.seq++
	return batch.ItemRef{OriginalIndex: in.seq - 1, DatastoreID: datastoreID}
}

// pendingBudget is the rough ceiling on total queued-but-unflushed items
// across every (op, destination) queue; it approximates, rather than
// measures, the byte-accurate arena.Size bound.
func (in *Instance) pendingBudget() int {
	maxOpsPerBulk := in.opts.MaxOpsPerBulk
	if maxOpsPerBulk <= 0 {
		maxOpsPerBulk = batch.DefaultMaxOpsPerBulk
	}
	maxBulkOps := in.opts.MaxBulkOps
	if maxBulkOps <= 0 {
		maxBulkOps = 1024
	}
	return maxOpsPerBulk * maxBulkOps
}

func (in *Instance) enqueue(op message.Op, routeKey []byte, item batch.Item) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return hxerr.New(hxerr.BadArg, "instance is closed")
	}
	if in.batch.Pending() >= in.pendingBudget() {
		return hxerr.New(hxerr.OutOfMemory, "pending queue budget exhausted")
	}
	datastoreID := in.router.Route(routeKey)
	item.Ref = in.nextRef(datastoreID)
	promote := in.batch.Enqueue(op, datastoreID, item)
	in.router.MarkDirty(datastoreID)
	if promote {
		in.promote(op, datastoreID)
	}
	return nil
}

// promote fires the just-full (op, datastoreID) queue as its own bulk
// message without blocking the enqueuing caller; Flush later waits for it
// via promoteWG and folds its Result into the chain it returns.
func (in *Instance) promote(op message.Op, datastoreID uint32) {
	items := in.batch.Drain(op, datastoreID)
	if len(items) == 0 {
		return
	}
	in.router.MarkClean(datastoreID)
	in.promoteWG.Add(1)
	go func() {
		defer in.promoteWG.Done()
		results := in.dispatch(context.Background(), op, datastoreID, items)
		in.pendingMu.Lock()
		in.pendingResults = append(in.pendingResults, results...)
		in.pendingMu.Unlock()
	}()
}

// dispatch routes one drained (op, datastoreID) queue to its destination
// rank and returns the Results built from the eventual response. A
// transport failure, including a context deadline, marks every item in
// the batch with the matching status instead of losing them silently.
func (in *Instance) dispatch(ctx context.Context, op message.Op, datastoreID uint32, items []batch.Item) []*Result {
	rank, localID := in.router.RankOf(datastoreID)
	req, refs := shuffle.Package(op, in.opts.Rank, rank, localID, items)
	if req == nil {
		return nil
	}

	var resp message.Message
	var counts []int
	var err error
	if rank == in.opts.Rank {
		resp, counts, err = in.executeLocally(ctx, req)
	} else {
		resp, err = in.sendRemote(ctx, rank, req)
	}
	if err != nil {
		status := message.StatusTransportError
		if hxerr.CodeOf(err) == hxerr.Timeout {
			status = message.StatusTimeout
		}
		out := make([]*Result, len(items))
		for i, it := range items {
			out[i] = &Result{Op: op, Status: status, OriginalIndex: refs[i].OriginalIndex, DatastoreID: refs[i].DatastoreID,
				Subject: it.Subject, Predicate: it.Predicate, Object: it.Object}
		}
		return out
	}
	return resultsFrom(op, items, refs, resp, counts)
}

// sendRemote packs req into the arena, sends it, and blocks for the
// matching response. Only one request is kept in flight per destination
// rank at a time: a fuller implementation would tag requests with
// transport.Token and demultiplex Recv by token, but that isn't needed for
// the single-outstanding-request-per-destination pattern flush() uses
// here (documented in DESIGN.md).
func (in *Instance) sendRemote(ctx context.Context, dstRank int32, req message.Message) (message.Message, error) {
	packed := req.Pack()
	buf, err := in.arena.Alloc(len(packed))
	if err != nil {
		return nil, err
	}
	copy(buf, packed)
	if _, err := in.transport.Send(ctx, dstRank, buf); err != nil {
		return nil, err
	}
	env, err := in.transport.Recv(ctx)
	if err != nil {
		return nil, err
	}
	return message.UnpackResponse(env.Payload)
}

// Flush drains every non-empty queue, dispatches each to its routed
// destination, waits for every previously promoted bulk to resolve, and
// returns the response Chain. A zero deadline means no deadline.
func (in *Instance) Flush(ctx context.Context, deadline time.Time) (*Chain, error) {
	in.mu.Lock()
	if in.closed {
		in.mu.Unlock()
		return nil, hxerr.New(hxerr.BadArg, "instance is closed")
	}
	drained := in.batch.DrainAll()
	for _, byDest := range drained {
		for datastoreID := range byDest {
			in.router.MarkClean(datastoreID)
		}
	}
	in.seq = 0
	in.mu.Unlock()

	if !deadline.IsZero() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, deadline)
		defer cancel()
	}

	in.promoteWG.Wait()

	var results []*Result
	for op, byDest := range drained {
		for datastoreID, items := range byDest {
			results = append(results, in.dispatch(ctx, op, datastoreID, items)...)
		}
	}

	in.pendingMu.Lock()
	results = append(results, in.pendingResults...)
	in.pendingResults = nil
	in.pendingMu.Unlock()

	in.arena.Reset()
	return newChain(results), nil
}

// Put enqueues one PUT of (subject, predicate, object), routed by
// h(subject).
func (in *Instance) Put(subject, predicate, object blob.Blob) error {
	return in.enqueue(message.BPut, subject.Bytes, batch.Item{
		Subject: subject, Predicate: predicate, Object: object, ObjectKind: object.Kind,
	})
}

// Get enqueues one GET of (subject, predicate), expecting the object back
// as expectedKind.
func (in *Instance) Get(subject, predicate blob.Blob, expectedKind blob.Kind) error {
	return in.enqueue(message.BGet, subject.Bytes, batch.Item{
		Subject: subject, Predicate: predicate, ObjectKind: expectedKind,
	})
}

// GetOp enqueues one ranged get seeded at (subject, predicate), returning
// up to n matches in cmp order.
func (in *Instance) GetOp(subject, predicate blob.Blob, expectedKind blob.Kind, cmp message.Comparator, n uint64) error {
	if n == 0 {
		return hxerr.New(hxerr.BadArg, "n_records must be > 0")
	}
	return in.enqueue(message.BGetOp, subject.Bytes, batch.Item{
		Subject: subject, Predicate: predicate, ObjectKind: expectedKind, Comparator: cmp, NRecords: n,
	})
}

// Delete enqueues one DELETE of (subject, predicate).
func (in *Instance) Delete(subject, predicate blob.Blob) error {
	return in.enqueue(message.BDelete, subject.Bytes, batch.Item{
		Subject: subject, Predicate: predicate,
	})
}

// Histogram enqueues one snapshot request for the named histogram. The
// name itself is hashed for routing, so every snapshot request for one name
// lands on the same datastore; observations arrive with PUTs, which are
// routed by subject, so the snapshot reflects only the PUTs that landed on
// that one datastore, not a cluster-wide merge (documented in DESIGN.md).
func (in *Instance) Histogram(name string) error {
	return in.enqueue(message.BHistogram, []byte(name), batch.Item{Name: name})
}
