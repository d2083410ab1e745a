package mcmctree

// Sample is one accepted, finest-level state appended to the chain. Level
// and Accepted are diagnostics beyond spec.md's bare "ordered sequence of
// states", consumed by the statistics formatter collaborator and by tests.
type Sample struct {
	State    []float64
	Level    int
	Accepted bool
}

// Chain is the ordered sequence of accepted finest-level states. It grows
// only by appending; spec.md §3 is explicit that it is "never mutated
// retroactively", so Chain exposes no remove/replace operation.
type Chain struct {
	samples []Sample
}

// Append adds s to the end of the chain.
func (c *Chain) Append(s Sample) {
	c.samples = append(c.samples, s)
}

// Len returns the number of samples currently in the chain.
func (c *Chain) Len() int {
	return len(c.samples)
}

// Samples returns the chain's samples. The returned slice aliases the
// chain's internal storage and must not be mutated by callers.
func (c *Chain) Samples() []Sample {
	return c.samples
}

// States returns just the state vectors, in chain order, as consumed by
// the outer statistics formatter.
func (c *Chain) States() [][]float64 {
	states := make([][]float64, len(c.samples))
	for i, s := range c.samples {
		states[i] = s.State
	}
	return states
}
