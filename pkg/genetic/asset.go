package genetic

import (
	"fmt"
	"math"
)

// Asset describes one investable instrument with its forecast expected
// return and risk, both expressed as fractions.
type Asset struct {
	Name           string  `json:"name"`
	ExpectedReturn float64 `json:"expected_return"`
	Risk           float64 `json:"risk"`
}

// Registry is an immutable, ordered list of assets. Chromosome weights
// are positional: weight i always refers to the asset at index i, and
// names are used only for reporting.
type Registry struct {
	assets []Asset
}

// NewRegistry validates the asset list and returns a registry over a
// private copy of it.
func NewRegistry(assets []Asset) (*Registry, error) {
	if len(assets) == 0 {
		return nil, fmt.Errorf("asset registry requires at least one asset")
	}

	seen := make(map[string]struct{}, len(assets))
	for i, a := range assets {
		if a.Name == "" {
			return nil, fmt.Errorf("asset %d: name must not be empty", i)
		}
		if _, ok := seen[a.Name]; ok {
			return nil, fmt.Errorf("asset %d: duplicate name %q", i, a.Name)
		}
		seen[a.Name] = struct{}{}

		if math.IsNaN(a.ExpectedReturn) || math.IsInf(a.ExpectedReturn, 0) {
			return nil, fmt.Errorf("asset %q: expected return must be finite", a.Name)
		}
		if math.IsNaN(a.Risk) || math.IsInf(a.Risk, 0) {
			return nil, fmt.Errorf("asset %q: risk must be finite", a.Name)
		}
	}

	reg := &Registry{assets: make([]Asset, len(assets))}
	copy(reg.assets, assets)
	return reg, nil
}

// Size returns the number of assets, which is also the chromosome length.
func (r *Registry) Size() int {
	return len(r.assets)
}

// Asset returns the asset at index i.
func (r *Registry) Asset(i int) Asset {
	return r.assets[i]
}

// Assets returns a copy of the asset list in registry order.
func (r *Registry) Assets() []Asset {
	out := make([]Asset, len(r.assets))
	copy(out, r.assets)
	return out
}

// Names returns the asset names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.assets))
	for i, a := range r.assets {
		names[i] = a.Name
	}
	return names
}
