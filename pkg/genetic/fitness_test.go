package genetic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortfolioRiskReturn(t *testing.T) {
	reg, err := NewRegistry([]Asset{
		{Name: "A", ExpectedReturn: 0.10, Risk: 0.02},
		{Name: "B", ExpectedReturn: 0.05, Risk: 0.01},
	})
	require.NoError(t, err)

	c := Chromosome{0.5, 0.5}

	assert.InDelta(t, 0.015, PortfolioRisk(c, reg), 1e-12)
	assert.InDelta(t, 0.075, PortfolioReturn(c, reg), 1e-12)
}

func TestFitness(t *testing.T) {
	t.Run("known allocation", func(t *testing.T) {
		reg, err := NewRegistry([]Asset{{Name: "A", ExpectedReturn: 0.10, Risk: 0.02}})
		require.NoError(t, err)

		// R=0.02, G=0.10, Opt = 2*0.98*0.10/1.08
		got := Fitness(Chromosome{1.0}, reg)
		assert.InDelta(t, 0.18148148148148147, got, 1e-12)
	})

	t.Run("deterministic", func(t *testing.T) {
		reg, err := NewRegistry([]Asset{
			{Name: "A", ExpectedReturn: 0.10, Risk: 0.02},
			{Name: "B", ExpectedReturn: 0.05, Risk: 0.01},
		})
		require.NoError(t, err)

		c := Chromosome{0.7, 0.3}
		assert.Equal(t, Fitness(c, reg), Fitness(c, reg))
	})

	t.Run("zero denominator yields negative infinity", func(t *testing.T) {
		// R=2, G=1 makes (1-R)+G exactly zero
		reg, err := NewRegistry([]Asset{{Name: "A", ExpectedReturn: 1.0, Risk: 2.0}})
		require.NoError(t, err)

		got := Fitness(Chromosome{1.0}, reg)
		assert.True(t, math.IsInf(got, -1))
	})

	t.Run("sentinel loses every comparison", func(t *testing.T) {
		assert.True(t, 0.0 > math.Inf(-1))
		assert.True(t, -1e300 > math.Inf(-1))
	})
}
