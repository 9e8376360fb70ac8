package genetic

// Chromosome is a portfolio allocation: one non-negative weight per
// registry asset, normalized to sum to one.
type Chromosome []float64

// Clone returns an independent copy of the chromosome.
func (c Chromosome) Clone() Chromosome {
	out := make(Chromosome, len(c))
	copy(out, c)
	return out
}

// Sum returns the total of all weights.
func (c Chromosome) Sum() float64 {
	total := 0.0
	for _, w := range c {
		total += w
	}
	return total
}

// normalize rescales the weights in place so they sum to one. A
// zero-sum vector falls back to a uniform allocation instead of
// dividing by zero.
func (c Chromosome) normalize() {
	total := c.Sum()
	if total == 0 {
		uniform := 1.0 / float64(len(c))
		for i := range c {
			c[i] = uniform
		}
		return
	}
	for i := range c {
		c[i] /= total
	}
}
