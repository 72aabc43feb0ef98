package gridsearch

import (
	"math"
	"testing"
)

func TestExpandOne_Range(t *testing.T) {
	spec := ParamSpec{IsRange: true, Start: 0, Stop: 1, Step: 0.5}
	values, err := expandOne(spec)
	if err != nil {
		t.Fatalf("expandOne returned error: %v", err)
	}
	want := []float64{0, 0.5, 1}
	if len(values) != len(want) {
		t.Fatalf("len(values) = %d, want %d", len(values), len(want))
	}
	for i := range want {
		if math.Abs(values[i]-want[i]) > 1e-9 {
			t.Errorf("values[%d] = %v, want %v", i, values[i], want[i])
		}
	}
}

func TestExpandOne_ExplicitList(t *testing.T) {
	spec := ParamSpec{Values: []float64{3, 1, 4}}
	values, err := expandOne(spec)
	if err != nil {
		t.Fatalf("expandOne returned error: %v", err)
	}
	if len(values) != 3 || values[0] != 3 || values[2] != 4 {
		t.Errorf("values = %v, want the explicit list unchanged", values)
	}
}

func TestExpand_CartesianProduct(t *testing.T) {
	grid := GridSpec{
		Keys: []string{"x", "y"},
		Specs: map[string]ParamSpec{
			"x": {Values: []float64{1, 2}},
			"y": {Values: []float64{10, 20, 30}},
		},
	}
	combos, err := Expand(grid)
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(combos) != 6 {
		t.Fatalf("len(combos) = %d, want 6 (2x3)", len(combos))
	}
}

func TestExpand_MissingKeySpecErrors(t *testing.T) {
	grid := GridSpec{Keys: []string{"x"}, Specs: map[string]ParamSpec{}}
	if _, err := Expand(grid); err == nil {
		t.Fatal("expected an error when a declared key has no spec")
	}
}

// TestSearch_ReturnsMaximumScoringCombination mirrors scenario S6: x,y in
// {0,1,2}, scored by -((x-1)^2+(y-2)^2); the unique maximum is
// {x:1,y:2} with score 0.
func TestSearch_ReturnsMaximumScoringCombination(t *testing.T) {
	grid := GridSpec{
		Keys: []string{"x", "y"},
		Specs: map[string]ParamSpec{
			"x": {IsRange: true, Start: 0, Stop: 2, Step: 1},
			"y": {IsRange: true, Start: 0, Stop: 2, Step: 1},
		},
	}
	evaluate := func(c Combination) (float64, error) {
		dx := c["x"] - 1
		dy := c["y"] - 2
		return -(dx*dx + dy*dy), nil
	}

	best, score, err := Search(grid, evaluate)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if best["x"] != 1 || best["y"] != 2 {
		t.Errorf("best = %v, want {x:1, y:2}", best)
	}
	if score != 0 {
		t.Errorf("score = %v, want 0", score)
	}
}

func TestSearch_EvaluatorErrorPropagates(t *testing.T) {
	grid := GridSpec{
		Keys:  []string{"x"},
		Specs: map[string]ParamSpec{"x": {Values: []float64{1}}},
	}
	_, _, err := Search(grid, func(c Combination) (float64, error) {
		return 0, errBoom
	})
	if err == nil {
		t.Fatal("expected the evaluator's error to propagate")
	}
}

var errBoom = stubErr("boom")

type stubErr string

func (e stubErr) Error() string { return string(e) }
