// Package histogram implements per-predicate numeric observation tracking:
// a training window picks bucket edges from a Strategy, then every
// subsequent observation lands in a bucket by binary search.
package histogram

import (
	"bytes"
	"sort"
	"strconv"
	"sync"

	"github.com/olekukonko/tablewriter"
)

// Bucket is one (edge, count) pair of a snapshot.
type Bucket struct {
	Edge  float64
	Count uint64
}

// Histogram is safe for concurrent use; every public method takes the
// per-histogram lock briefly, never across I/O.
type Histogram struct {
	mu           sync.Mutex
	strategy     Strategy
	trainingSize int
	training     []float64
	finalized    bool
	edges        []float64
	counts       []uint64
}

// New creates a histogram that buffers trainingSize observations before
// freezing its edges.
func New(strategy Strategy, trainingSize int) *Histogram {
	if trainingSize < 1 {
		trainingSize = 1
	}
	return &Histogram{
		strategy:     strategy,
		trainingSize: trainingSize,
		training:     make([]float64, 0, trainingSize),
	}
}

// Observe records x, triggering finalization once the training window
// fills.
func (h *Histogram) Observe(x float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.finalized {
		h.record(x)
		return
	}
	h.training = append(h.training, x)
	if len(h.training) >= h.trainingSize {
		h.finalize()
	}
}

// finalize must be called with mu held.
func (h *Histogram) finalize() {
	edges, err := h.strategy.Edges()
	if err != nil {
		// A bad strategy degrades to a single bucket rather than losing
		// the training observations.
		edges = []float64{0}
	}
	sort.Float64s(edges)
	h.edges = edges
	h.counts = make([]uint64, len(edges))
	h.finalized = true
	for _, x := range h.training {
		h.record(x)
	}
	h.training = nil
}

// record must be called with mu held and the histogram finalized.
func (h *Histogram) record(x float64) {
	idx := sort.Search(len(h.edges), func(i int) bool { return h.edges[i] > x })
	if idx == 0 {
		idx = 1
	}
	if idx > len(h.edges) {
		idx = len(h.edges)
	}
	h.counts[idx-1]++
}

// Snapshot clones the current buckets. Before finalization it reports the
// strategy's edges (if computable) with zero counts, matching "empty-counts
// snapshot" for a histogram with no observations yet.
func (h *Histogram) Snapshot() []Bucket {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.finalized {
		edges, err := h.strategy.Edges()
		if err != nil {
			return nil
		}
		out := make([]Bucket, len(edges))
		for i, e := range edges {
			out[i] = Bucket{Edge: e}
		}
		return out
	}
	out := make([]Bucket, len(h.edges))
	for i := range h.edges {
		out[i] = Bucket{Edge: h.edges[i], Count: h.counts[i]}
	}
	return out
}

// Finalized reports whether the training window has closed.
func (h *Histogram) Finalized() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.finalized
}

// String renders a debug table of the current snapshot.
func (h *Histogram) String() string {
	buckets := h.Snapshot()
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"edge", "count"})
	for _, b := range buckets {
		table.Append([]string{
			strconv.FormatFloat(b.Edge, 'g', -1, 64),
			strconv.FormatUint(b.Count, 10),
		})
	}
	table.Render()
	return buf.String()
}
