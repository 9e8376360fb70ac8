package genetic

import "math"

// PortfolioRisk returns the weighted risk R of an allocation.
func PortfolioRisk(c Chromosome, reg *Registry) float64 {
	risk := 0.0
	for i, a := range reg.assets {
		risk += c[i] * a.Risk
	}
	return risk
}

// PortfolioReturn returns the weighted expected return G of an allocation.
func PortfolioReturn(c Chromosome, reg *Registry) float64 {
	ret := 0.0
	for i, a := range reg.assets {
		ret += c[i] * a.ExpectedReturn
	}
	return ret
}

// Fitness scores an allocation by blending its weighted return G with
// its risk complement (1 - R):
//
//	Opt = 2 * (1 - R) * G / ((1 - R) + G)
//
// Higher is better. A denominator of exactly zero yields negative
// infinity, so degenerate allocations sort last and lose every
// comparison. Pure function, no side effects.
func Fitness(c Chromosome, reg *Registry) float64 {
	r := PortfolioRisk(c, reg)
	g := PortfolioReturn(c, reg)

	denom := (1 - r) + g
	if denom == 0 {
		return math.Inf(-1)
	}
	return 2 * (1 - r) * g / denom
}
