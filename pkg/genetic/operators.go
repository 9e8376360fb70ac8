package genetic

import "math"

// mutationDelta bounds the uniform perturbation applied to one gene.
const mutationDelta = 0.1

// randomChromosome draws uniform weights and normalizes them.
func (e *Engine) randomChromosome() Chromosome {
	c := make(Chromosome, e.registry.Size())
	for i := range c {
		c[i] = e.rng.Float64()
	}
	c.normalize()
	return c
}

// initialPopulation fills the first generation with random chromosomes.
func (e *Engine) initialPopulation() []Chromosome {
	population := make([]Chromosome, e.cfg.PopulationSize)
	for i := range population {
		population[i] = e.randomChromosome()
	}
	return population
}

// crossover produces one child from two parents. With probability
// 1 - crossover_rate the child is a plain copy of the first parent,
// otherwise a single blend factor mixes both whole vectors. The child
// is renormalized on both branches.
func (e *Engine) crossover(parent1, parent2 Chromosome) Chromosome {
	var child Chromosome
	if e.rng.Float64() > e.cfg.CrossoverRate {
		child = parent1.Clone()
	} else {
		alpha := e.rng.Float64()
		child = make(Chromosome, len(parent1))
		for i := range child {
			child[i] = alpha*parent1[i] + (1-alpha)*parent2[i]
		}
	}
	child.normalize()
	return child
}

// mutate perturbs one random gene of a copy by a uniform delta, clamps
// it to [0, 1] and renormalizes. If clamping leaves the whole vector at
// zero the mutated gene becomes the entire allocation.
func (e *Engine) mutate(c Chromosome) Chromosome {
	mutated := c.Clone()
	idx := e.rng.Intn(len(mutated))

	delta := (e.rng.Float64()*2 - 1) * mutationDelta
	mutated[idx] = math.Min(1, math.Max(0, mutated[idx]+delta))

	total := mutated.Sum()
	if total == 0 {
		mutated[idx] = 1.0
		total = 1.0
	}
	for i := range mutated {
		mutated[i] /= total
	}
	return mutated
}
