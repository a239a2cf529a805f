// Package measure turns a state vector into a measurement distribution and
// draws weighted samples from it.
package measure

import (
	"slices"
	"strings"

	"qsim/internal/statevec"
)

// Epsilon is the probability at or below which an outcome is omitted.
const Epsilon = 1e-12

// Bitstring renders index i as an n-character binary string, most
// significant bit first, so that qubit 0 is the leftmost character.
func Bitstring(i, n int) string {
	var sb strings.Builder
	sb.Grow(n)
	for b := n - 1; b >= 0; b-- {
		if i>>b&1 == 1 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Distribution maps bitstrings to probabilities. Absent keys have
// probability at most Epsilon.
type Distribution map[string]float64

// Probabilities returns the sparse distribution of a full measurement of st.
func Probabilities(st *statevec.State) Distribution {
	n := st.NumQubits()
	dist := make(Distribution)
	for i := range st.Len() {
		if p := st.Probability(i); p > Epsilon {
			dist[Bitstring(i, n)] = p
		}
	}
	return dist
}

// Dense returns |amp_i|^2 for every index, without filtering.
func Dense(st *statevec.State) []float64 {
	probs := make([]float64, st.Len())
	for i := range probs {
		probs[i] = st.Probability(i)
	}
	return probs
}

// Total returns the sum of all probabilities in d.
func (d Distribution) Total() float64 {
	var sum float64
	for _, p := range d {
		sum += p
	}
	return sum
}

// Outcome is one bitstring with its probability.
type Outcome struct {
	Bitstring   string  `json:"bitstring"`
	Probability float64 `json:"probability"`
}

// Sorted returns the entries in ascending bitstring order, which for
// fixed-width strings is basis index order.
func (d Distribution) Sorted() []Outcome {
	out := make([]Outcome, 0, len(d))
	for b, p := range d {
		out = append(out, Outcome{Bitstring: b, Probability: p})
	}
	slices.SortFunc(out, func(a, b Outcome) int { return strings.Compare(a.Bitstring, b.Bitstring) })
	return out
}

// Top returns at most k entries ordered by probability descending, ties
// broken by bitstring.
func (d Distribution) Top(k int) []Outcome {
	out := d.Sorted()
	slices.SortStableFunc(out, func(a, b Outcome) int {
		switch {
		case a.Probability > b.Probability:
			return -1
		case a.Probability < b.Probability:
			return 1
		default:
			return 0
		}
	})
	if k >= 0 && k < len(out) {
		out = out[:k]
	}
	return out
}
