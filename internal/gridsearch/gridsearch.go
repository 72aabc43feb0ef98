// Package gridsearch expands a parameter grid into its Cartesian
// product and selects the maximum-scoring combination, per spec.md
// §4.9.
package gridsearch

import "fmt"

// ParamSpec is one parameter's grid definition: either a {start, stop,
// step} range (inclusive, arithmetic progression) or an explicit list
// of values. Exactly one of the two shapes is populated.
type ParamSpec struct {
	Start, Stop, Step float64
	IsRange           bool

	Values []float64
}

// GridSpec maps parameter name to its spec. Key order is preserved via
// Keys, since the Cartesian product must be taken in declared key
// order.
type GridSpec struct {
	Keys  []string
	Specs map[string]ParamSpec
}

// Combination is one point in the grid: parameter name to value.
type Combination map[string]float64

// Expand materializes every parameter's value list, then returns the
// full Cartesian product in declared key order.
func Expand(grid GridSpec) ([]Combination, error) {
	if len(grid.Keys) == 0 {
		return nil, fmt.Errorf("gridsearch: empty grid")
	}

	valueLists := make([][]float64, len(grid.Keys))
	for i, key := range grid.Keys {
		spec, ok := grid.Specs[key]
		if !ok {
			return nil, fmt.Errorf("gridsearch: key %q has no spec", key)
		}
		values, err := expandOne(spec)
		if err != nil {
			return nil, fmt.Errorf("gridsearch: key %q: %w", key, err)
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("gridsearch: key %q expands to an empty list", key)
		}
		valueLists[i] = values
	}

	var combos []Combination
	var build func(idx int, cur Combination)
	build = func(idx int, cur Combination) {
		if idx == len(grid.Keys) {
			copied := make(Combination, len(cur))
			for k, v := range cur {
				copied[k] = v
			}
			combos = append(combos, copied)
			return
		}
		key := grid.Keys[idx]
		for _, v := range valueLists[idx] {
			cur[key] = v
			build(idx+1, cur)
		}
	}
	build(0, Combination{})

	return combos, nil
}

func expandOne(spec ParamSpec) ([]float64, error) {
	if !spec.IsRange {
		return spec.Values, nil
	}
	if spec.Step <= 0 {
		return nil, fmt.Errorf("step must be > 0, got %v", spec.Step)
	}
	var out []float64
	for v := spec.Start; v <= spec.Stop+1e-9; v += spec.Step {
		out = append(out, v)
	}
	return out, nil
}

// Search expands the grid, evaluates every combination, and returns
// the maximum-scoring one. Ties are broken by first-enumeration order.
func Search(grid GridSpec, evaluate func(Combination) (float64, error)) (Combination, float64, error) {
	combos, err := Expand(grid)
	if err != nil {
		return nil, 0, err
	}

	var best Combination
	bestScore := 0.0
	haveBest := false

	for _, c := range combos {
		score, err := evaluate(c)
		if err != nil {
			return nil, 0, fmt.Errorf("gridsearch: evaluator failed on %v: %w", c, err)
		}
		if !haveBest || score > bestScore {
			best = c
			bestScore = score
			haveBest = true
		}
	}

	return best, bestScore, nil
}
