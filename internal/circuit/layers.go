package circuit

// Layer assigns each gate the earliest layer after every previous gate that
// shares one of its qubits. Gates must already be in execution order; the
// result is parallel to gates.
func Layer(gates []Gate) []int {
	layers := make([]int, len(gates))
	next := make(map[int]int)
	for i, g := range gates {
		l := 0
		for _, q := range g.Targets {
			l = max(l, next[q])
		}
		layers[i] = l
		for _, q := range g.Targets {
			next[q] = l + 1
		}
	}
	return layers
}

// Compact returns a copy of c with every gate moved to its earliest layer.
// Gates must be in execution order, as in a Schedule's Circuit.
func Compact(c Circuit) Circuit {
	out := c
	out.Gates = make([]Gate, len(c.Gates))
	copy(out.Gates, c.Gates)
	for i, l := range Layer(out.Gates) {
		out.Gates[i].Column = l
	}
	return out
}
