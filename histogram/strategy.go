package histogram

import "github.com/ledgerwatch/hxhim/hxerr"

// Strategy generates the fixed bucket edges a histogram freezes to once its
// training window closes.
type Strategy interface {
	Edges() ([]float64, error)
	String() string
}

// uniformLog2 places n edges at 0, 2^0, 2^1, ..., 2^(n-2).
type uniformLog2 struct {
	n int
}

// UniformLog2 builds a Strategy with n buckets spaced at powers of two.
func UniformLog2(n int) Strategy {
	return uniformLog2{n: n}
}

func (s uniformLog2) Edges() ([]float64, error) {
	if s.n <= 0 {
		return nil, hxerr.New(hxerr.BadArg, "UNIFORM_LOG2 requires n > 0")
	}
	edges := make([]float64, s.n)
	edges[0] = 0
	for i := 1; i < s.n; i++ {
		edges[i] = float64(uint64(1) << uint(i-1))
	}
	return edges, nil
}

func (s uniformLog2) String() string {
	return "UNIFORM_LOG2"
}

// uniformLinear places n edges evenly spaced across [min, max).
type uniformLinear struct {
	n        int
	min, max float64
}

// UniformLinear builds a Strategy with n evenly spaced edges over [min, max).
func UniformLinear(n int, min, max float64) Strategy {
	return uniformLinear{n: n, min: min, max: max}
}

func (s uniformLinear) Edges() ([]float64, error) {
	if s.n <= 0 {
		return nil, hxerr.New(hxerr.BadArg, "UNIFORM_LINEAR requires n > 0")
	}
	if s.max <= s.min {
		return nil, hxerr.New(hxerr.BadArg, "UNIFORM_LINEAR requires max > min")
	}
	edges := make([]float64, s.n)
	step := (s.max - s.min) / float64(s.n)
	for i := 0; i < s.n; i++ {
		edges[i] = s.min + step*float64(i)
	}
	return edges, nil
}

func (s uniformLinear) String() string {
	return "UNIFORM_LINEAR"
}

// custom uses caller-supplied edges verbatim.
type custom struct {
	edges []float64
}

// Custom builds a Strategy from explicit, already-sorted bucket edges.
func Custom(edges []float64) Strategy {
	cp := make([]float64, len(edges))
	copy(cp, edges)
	return custom{edges: cp}
}

func (s custom) Edges() ([]float64, error) {
	if len(s.edges) == 0 {
		return nil, hxerr.New(hxerr.BadArg, "CUSTOM requires at least one edge")
	}
	for i := 1; i < len(s.edges); i++ {
		if s.edges[i] <= s.edges[i-1] {
			return nil, hxerr.New(hxerr.BadArg, "CUSTOM edges must be strictly increasing")
		}
	}
	return s.edges, nil
}

func (s custom) String() string {
	return "CUSTOM"
}
