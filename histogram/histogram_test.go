package histogram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformLinearTrainingScenario(t *testing.T) {
	h := New(UniformLinear(4, 0, 100), 3)
	h.Observe(10)
	h.Observe(55)
	h.Observe(90)
	assert.True(t, h.Finalized())
	h.Observe(40)

	got := h.Snapshot()
	require.Len(t, got, 4)
	wantEdges := []float64{0, 25, 50, 75}
	wantCounts := []uint64{1, 1, 1, 1}
	for i, b := range got {
		assert.Equal(t, wantEdges[i], b.Edge)
		assert.Equal(t, wantCounts[i], b.Count)
	}
}

func TestUnderAndOverRangeClampToBoundaryBuckets(t *testing.T) {
	h := New(UniformLinear(4, 0, 100), 1)
	h.Observe(-1000)
	got := h.Snapshot()
	assert.Equal(t, uint64(1), got[0].Count)

	h2 := New(UniformLinear(4, 0, 100), 1)
	h2.Observe(1e9)
	got2 := h2.Snapshot()
	assert.Equal(t, uint64(1), got2[len(got2)-1].Count)
}

func TestFinalizeCountsEveryTrainingObservation(t *testing.T) {
	h := New(UniformLog2(3), 5)
	h.Observe(1)
	h.Observe(2)
	h.Observe(4)
	h.Observe(8)
	h.Observe(16) // fills training window, finalizes
	got := h.Snapshot()
	sum := uint64(0)
	for _, b := range got {
		sum += b.Count
	}
	assert.Equal(t, uint64(5), sum)
}

func TestRegistryObserveAndSnapshot(t *testing.T) {
	reg := NewRegistry()
	reg.Register("latency", UniformLinear(4, 0, 100), 3)
	reg.Observe("latency", 10)
	reg.Observe("latency", 55)
	reg.Observe("latency", 90)
	reg.Observe("latency", 40)

	snap, err := reg.Snapshot("latency")
	require.NoError(t, err)
	require.Len(t, snap, 4)

	_, err = reg.Snapshot("unknown")
	require.Error(t, err)
}

func TestCustomStrategyRejectsUnsortedEdges(t *testing.T) {
	_, err := Custom([]float64{10, 5, 20}).Edges()
	require.Error(t, err)
}

func TestObserveOnUnregisteredNameIsNoop(t *testing.T) {
	reg := NewRegistry()
	reg.Observe("ghost", 1.0) // must not panic
}
