package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/ledgerwatch/hxhim/blob"
	"github.com/ledgerwatch/hxhim/hxhim"
	"github.com/ledgerwatch/hxhim/log"
	"github.com/ledgerwatch/hxhim/message"
)

var (
	verbosity  = flag.Uint("verbosity", 3, "logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace (default 3)")
	engine     = flag.String("engine", "mem", "storage engine: mem or lmdb")
	dir        = flag.String("dir", "hxhim-data", "lmdb environment directory (engine=lmdb only)")
	count      = flag.Uint("count", 10000, "number of subjects to put then get")
	datastores = flag.Uint("datastores", 4, "datastores on this rank")
)

var logger = log.New("module", "hxhim-bench")

func main() {
	flag.Parse()
	log.SetLevel(log.Lvl(*verbosity))

	opts := hxhim.Default()
	opts.DatastoresPerRank = uint32(*datastores)
	if *engine == "lmdb" {
		opts.Engine.Kind = hxhim.EngineLMDB
		opts.Engine.Dir = *dir
	}

	in, err := hxhim.Open(context.Background(), opts)
	if err != nil {
		logger.Error("open failed", "err", err)
		os.Exit(1)
	}
	defer in.Destroy()

	start := time.Now()
	for i := uint(0); i < *count; i++ {
		subject := blob.FromUint64(uint64(i))
		predicate := blob.FromBytes([]byte("value"))
		object := blob.FromUint32(rand.Uint32())
		if err := in.Put(subject, predicate, object); err != nil {
			logger.Error("put enqueue failed", "i", i, "err", err)
			os.Exit(1)
		}
	}
	if _, err := in.Flush(context.Background(), time.Time{}); err != nil {
		logger.Error("flush failed", "err", err)
		os.Exit(1)
	}
	putElapsed := time.Since(start)

	start = time.Now()
	for i := uint(0); i < *count; i++ {
		subject := blob.FromUint64(uint64(i))
		predicate := blob.FromBytes([]byte("value"))
		if err := in.Get(subject, predicate, blob.Uint32); err != nil {
			logger.Error("get enqueue failed", "i", i, "err", err)
			os.Exit(1)
		}
	}
	chain, err := in.Flush(context.Background(), time.Time{})
	if err != nil {
		logger.Error("flush failed", "err", err)
		os.Exit(1)
	}
	getElapsed := time.Since(start)

	ok := 0
	for {
		r, err := chain.Next()
		if err != nil {
			logger.Error("chain consume failed", "err", err)
			os.Exit(1)
		}
		if r == nil {
			break
		}
		if r.Status == message.StatusOK {
			ok++
		}
	}

	fmt.Printf("put %d triples in %s (%.0f/s)\n", *count, putElapsed, float64(*count)/putElapsed.Seconds())
	fmt.Printf("got %d/%d triples in %s (%.0f/s)\n", ok, *count, getElapsed, float64(*count)/getElapsed.Seconds())
}
