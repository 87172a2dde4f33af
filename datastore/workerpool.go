package datastore

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/mem"
	"golang.org/x/sync/errgroup"

	"github.com/ledgerwatch/hxhim/log"
	"github.com/ledgerwatch/hxhim/message"
)

var logger = log.New("module", "datastore")

// Job is one inbound bulk message, taken by whichever worker is free next
// from the pool's single shared channel.
type Job struct {
	Request message.Message
	Respond func(message.Message)
}

// WorkerPool runs a fixed number of worker goroutines draining jobs, each
// dispatching against the Executor for the datastore the job targets.
// This is the "pool of worker threads" spec.md §5 names.
type WorkerPool struct {
	jobs    chan Job
	workers int
}

// NewWorkerPool starts workers goroutines; workers <= 0 defaults to
// GOMAXPROCS. It logs a one-shot host memory snapshot on startup, matching
// the ambient-ops-visibility texture of the teacher's daemon commands
// without becoming a telemetry subsystem.
func NewWorkerPool(ctx context.Context, workers int, handle func(context.Context, Job)) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		logger.Info("worker pool starting", "workers", workers, "mem_total", vm.Total, "mem_available", vm.Available)
	} else {
		logger.Warn("worker pool starting", "workers", workers, "meminfo_error", err)
	}

	p := &WorkerPool{jobs: make(chan Job, workers*4), workers: workers}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				select {
				case job, ok := <-p.jobs:
					if !ok {
						return nil
					}
					handle(gctx, job)
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		})
	}

	return p
}

// Submit enqueues a job; it blocks if every worker is busy and the
// internal buffer is full.
func (p *WorkerPool) Submit(job Job) {
	p.jobs <- job
}

// Close stops accepting new jobs. In-flight jobs still drain.
func (p *WorkerPool) Close() {
	close(p.jobs)
}
