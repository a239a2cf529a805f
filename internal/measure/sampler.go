package measure

import (
	"fmt"
	"math/rand"
	"slices"
	"sort"
	"strings"

	"qsim/internal/qerr"
	"qsim/internal/statevec"
)

// Source supplies uniform floats in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// NewSource returns a deterministic Source seeded with seed.
func NewSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Sampler draws basis indices in proportion to a fixed weight vector.
type Sampler struct {
	cdf   []float64
	total float64
}

// NewSampler builds the cumulative distribution over weights in index order.
// Negative weights are treated as zero. The total must be positive.
func NewSampler(weights []float64) (*Sampler, error) {
	cdf := make([]float64, len(weights))
	var total float64
	for i, w := range weights {
		if w > 0 {
			total += w
		}
		cdf[i] = total
	}
	if !(total > 0) {
		return nil, fmt.Errorf("sampler: total weight must be positive, got %g", total)
	}
	return &Sampler{cdf: cdf, total: total}, nil
}

// Draw returns one index. The first bucket whose cumulative weight is
// strictly greater than the draw wins, so zero-weight buckets are never
// selected.
func (s *Sampler) Draw(rng Source) int {
	r := rng.Float64() * s.total
	i := sort.Search(len(s.cdf), func(i int) bool { return s.cdf[i] > r })
	if i == len(s.cdf) {
		// r can round up to total; fall back to the last non-empty bucket.
		i = len(s.cdf) - 1
		for i > 0 && s.cdf[i-1] == s.cdf[i] {
			i--
		}
	}
	return i
}

// Counts maps observed bitstrings to how many shots produced them. Only
// observed bitstrings are present and the counts sum to the shot count.
type Counts map[string]int

// Total returns the number of shots recorded.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Tally is one observed bitstring and its count.
type Tally struct {
	Bitstring string `json:"bitstring"`
	Count     int    `json:"count"`
}

// Sorted returns the counts ordered by count descending, then bitstring.
func (c Counts) Sorted() []Tally {
	out := make([]Tally, 0, len(c))
	for b, n := range c {
		out = append(out, Tally{Bitstring: b, Count: n})
	}
	slices.SortFunc(out, func(a, b Tally) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Bitstring, b.Bitstring)
	})
	return out
}

// Sample draws shots measurements of every qubit from st.
func Sample(st *statevec.State, shots int, rng Source) (Counts, error) {
	if shots <= 0 {
		return nil, qerr.Requestf("shots must be positive, got %d", shots)
	}
	sm, err := NewSampler(Dense(st))
	if err != nil {
		return nil, err
	}
	n := st.NumQubits()
	hits := make(map[int]int)
	for range shots {
		hits[sm.Draw(rng)]++
	}
	counts := make(Counts, len(hits))
	for i, c := range hits {
		counts[Bitstring(i, n)] = c
	}
	return counts, nil
}

// SampleDistribution draws shots outcomes from a sparse distribution over
// n-bit strings. Entries are weighted in bitstring order, which matches
// index order for fixed-width strings.
func SampleDistribution(d Distribution, n, shots int, rng Source) (Counts, error) {
	if shots <= 0 {
		return nil, qerr.Requestf("shots must be positive, got %d", shots)
	}
	entries := d.Sorted()
	weights := make([]float64, len(entries))
	for i, e := range entries {
		if len(e.Bitstring) != n {
			return nil, qerr.Requestf("bitstring %q is not %d bits wide", e.Bitstring, n)
		}
		weights[i] = e.Probability
	}
	sm, err := NewSampler(weights)
	if err != nil {
		return nil, err
	}
	counts := make(Counts)
	for range shots {
		counts[entries[sm.Draw(rng)].Bitstring]++
	}
	return counts, nil
}
