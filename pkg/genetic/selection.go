package genetic

import (
	"fmt"
	"math"
	"math/rand"
)

// SelectionType identifies the parent selection strategy.
type SelectionType string

const (
	SelectionRoulette   SelectionType = "roulette"
	SelectionTournament SelectionType = "tournament"
)

const (
	// tournamentSize caps how many distinct individuals compete per pick.
	tournamentSize = 3
	// rouletteEpsilon keeps every individual's wheel share strictly positive.
	rouletteEpsilon = 1e-6
)

// Individual pairs a chromosome with its evaluated fitness.
type Individual struct {
	Chromosome Chromosome
	Fitness    float64
}

// Selector picks a parent from a population already ranked by fitness.
// The ranked slice must be non-empty; implementations read it without
// re-sorting or mutating it and always return one of its members.
type Selector interface {
	Pick(rng *rand.Rand, ranked []Individual) Chromosome
}

// NewSelector resolves a selection type to its implementation.
func NewSelector(t SelectionType) (Selector, error) {
	switch t {
	case SelectionRoulette:
		return RouletteSelector{}, nil
	case SelectionTournament:
		return TournamentSelector{}, nil
	default:
		return nil, fmt.Errorf("unknown selection type %q", t)
	}
}

// TournamentSelector samples distinct individuals without replacement
// and keeps the fittest. Populations smaller than the tournament size
// degrade to comparing the whole population.
type TournamentSelector struct{}

// Pick returns the fittest of a distinct random sample.
func (TournamentSelector) Pick(rng *rand.Rand, ranked []Individual) Chromosome {
	k := tournamentSize
	if len(ranked) < k {
		k = len(ranked)
	}

	best := -1
	for _, idx := range rng.Perm(len(ranked))[:k] {
		if best < 0 || ranked[idx].Fitness > ranked[best].Fitness {
			best = idx
		}
	}
	return ranked[best].Chromosome
}

// RouletteSelector draws with replacement, proportional to fitness
// shifted so the worst finite score still gets a sliver of probability.
// Negative-infinity scores keep the minimum share instead of poisoning
// the wheel; if no finite score exists at all the draw is uniform.
type RouletteSelector struct{}

// Pick spins the wheel once and returns the selected parent.
func (RouletteSelector) Pick(rng *rand.Rand, ranked []Individual) Chromosome {
	minFinite := math.Inf(1)
	for _, ind := range ranked {
		if isFinite(ind.Fitness) && ind.Fitness < minFinite {
			minFinite = ind.Fitness
		}
	}
	if !isFinite(minFinite) {
		return ranked[rng.Intn(len(ranked))].Chromosome
	}

	weights := make([]float64, len(ranked))
	total := 0.0
	for i, ind := range ranked {
		w := rouletteEpsilon
		if isFinite(ind.Fitness) {
			w = ind.Fitness - minFinite + rouletteEpsilon
		}
		weights[i] = w
		total += w
	}

	target := rng.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if target < acc {
			return ranked[i].Chromosome
		}
	}
	return ranked[len(ranked)-1].Chromosome
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
