package genetic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	t.Run("valid assets", func(t *testing.T) {
		reg, err := NewRegistry([]Asset{
			{Name: "VUSA", ExpectedReturn: 0.10, Risk: 0.02},
			{Name: "EIMI", ExpectedReturn: 0.05, Risk: 0.01},
		})

		require.NoError(t, err)
		assert.Equal(t, 2, reg.Size())
		assert.Equal(t, []string{"VUSA", "EIMI"}, reg.Names())
		assert.Equal(t, "VUSA", reg.Asset(0).Name)
	})

	t.Run("empty list rejected", func(t *testing.T) {
		_, err := NewRegistry(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one asset")
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := NewRegistry([]Asset{{Name: "", ExpectedReturn: 0.1, Risk: 0.1}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name must not be empty")
	})

	t.Run("duplicate name rejected", func(t *testing.T) {
		_, err := NewRegistry([]Asset{
			{Name: "AIQ", ExpectedReturn: 0.1, Risk: 0.1},
			{Name: "AIQ", ExpectedReturn: 0.2, Risk: 0.2},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate name")
	})

	t.Run("non-finite return rejected", func(t *testing.T) {
		_, err := NewRegistry([]Asset{{Name: "X", ExpectedReturn: math.NaN(), Risk: 0.1}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected return must be finite")
	})

	t.Run("non-finite risk rejected", func(t *testing.T) {
		_, err := NewRegistry([]Asset{{Name: "X", ExpectedReturn: 0.1, Risk: math.Inf(1)}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "risk must be finite")
	})
}

func TestRegistry_Immutability(t *testing.T) {
	input := []Asset{{Name: "CNDX", ExpectedReturn: 0.12, Risk: 0.03}}
	reg, err := NewRegistry(input)
	require.NoError(t, err)

	// Mutating the caller's slice must not leak into the registry
	input[0].ExpectedReturn = 99.0
	assert.Equal(t, 0.12, reg.Asset(0).ExpectedReturn)

	// Mutating the returned copy must not leak either
	out := reg.Assets()
	out[0].Risk = 99.0
	assert.Equal(t, 0.03, reg.Asset(0).Risk)
}
