package waterfall

import (
	"math"
	"testing"

	"github.com/matzehuels/cascade/pkg/errors"
	"github.com/matzehuels/cascade/pkg/model"
)

func sample() *model.Model {
	return &model.Model{
		Data: []model.Record{
			{"cat": "a", "s1": 5, "s2": -2},
			{"cat": "b", "s1": 3, "s2": 1},
		},
		Series: []string{"s1", "s2"},
		Key:    "cat",
	}
}

func TestComputeLayout(t *testing.T) {
	m := sample()
	layout, err := ComputeLayout(m.Data, m.Series, m.Key, model.PolicyPropagate)
	if err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}

	want := Layout{
		"a": {"s1": {0, 5, 5}, "s2": {5, 3, -2}},
		"b": {"s1": {3, 6, 3}, "s2": {6, 7, 1}},
	}
	for k, series := range want {
		for s, e := range series {
			if got := layout[k][s]; got != e {
				t.Errorf("layout[%s][%s] = %+v, want %+v", k, s, got, e)
			}
		}
	}

	lo, hi, err := ComputeExtent(m.Data, m.Series, model.PolicyPropagate)
	if err != nil {
		t.Fatalf("ComputeExtent: %v", err)
	}
	if lo != 0 || hi != 7 {
		t.Errorf("extent = [%v, %v], want [0, 7]", lo, hi)
	}
}

func TestLayoutContinuity(t *testing.T) {
	records := []model.Record{
		{"k": "a", "x": 2.5, "y": -4},
		{"k": "b", "x": 1, "y": 0},
		{"k": "c", "x": -3, "y": 10},
	}
	series := []string{"x", "y"}
	steps, err := Steps(records, series, "k", model.PolicyPropagate)
	if err != nil {
		t.Fatal(err)
	}
	if len(steps) != 6 {
		t.Fatalf("Steps() = %d steps, want 6", len(steps))
	}
	if steps[0].Start != 0 {
		t.Errorf("first start = %v, want 0", steps[0].Start)
	}
	total := 0.0
	for i, s := range steps {
		if s.End != s.Start+s.Change {
			t.Errorf("step %d: end %v != start %v + change %v", i, s.End, s.Start, s.Change)
		}
		if i > 0 && s.Start != steps[i-1].End {
			t.Errorf("step %d starts at %v, previous ended at %v", i, s.Start, steps[i-1].End)
		}
		total += s.Change
	}
	if last := steps[len(steps)-1].End; last != total {
		t.Errorf("final end = %v, want sum of changes %v", last, total)
	}

	lo, hi, _ := ComputeExtent(records, series, model.PolicyPropagate)
	for _, s := range steps {
		if s.End < lo || s.End > hi {
			t.Errorf("end %v outside extent [%v, %v]", s.End, lo, hi)
		}
	}
	if lo != -3.5 || hi != 6.5 {
		t.Errorf("extent = [%v, %v], want [-3.5, 6.5]", lo, hi)
	}
}

func TestLayoutEdgeCases(t *testing.T) {
	t.Run("empty data", func(t *testing.T) {
		layout, err := ComputeLayout(nil, []string{"s"}, "k", model.PolicyPropagate)
		if err != nil || len(layout) != 0 {
			t.Errorf("layout = %v, err = %v", layout, err)
		}
		lo, hi, _ := ComputeExtent(nil, []string{"s"}, model.PolicyPropagate)
		if lo != 0 || hi != 0 {
			t.Errorf("extent = [%v, %v], want [0, 0]", lo, hi)
		}
	})

	t.Run("empty series", func(t *testing.T) {
		records := []model.Record{{"k": "a"}, {"k": "b"}}
		layout, err := ComputeLayout(records, nil, "k", model.PolicyPropagate)
		if err != nil {
			t.Fatal(err)
		}
		if len(layout) != 2 || len(layout["a"]) != 0 || len(layout["b"]) != 0 {
			t.Errorf("layout = %v, want two empty categories", layout)
		}
	})

	t.Run("duplicate keys overwrite", func(t *testing.T) {
		records := []model.Record{{"k": "a", "s": 1}, {"k": "b", "s": 2}, {"k": "a", "s": 3}}
		layout, err := ComputeLayout(records, []string{"s"}, "k", model.PolicyPropagate)
		if err != nil {
			t.Fatal(err)
		}
		if got, want := layout["a"]["s"], (Entry{3, 6, 3}); got != want {
			t.Errorf("layout[a][s] = %+v, want %+v", got, want)
		}

		steps, err := Steps(records, []string{"s"}, "k", model.PolicyPropagate)
		if err != nil {
			t.Fatal(err)
		}
		want := []Step{
			{Key: "a", Series: "s", Entry: Entry{0, 1, 1}},
			{Key: "b", Series: "s", Entry: Entry{1, 3, 2}},
			{Key: "a", Series: "s", Entry: Entry{3, 6, 3}},
		}
		if len(steps) != len(want) {
			t.Fatalf("Steps() = %d steps, want %d", len(steps), len(want))
		}
		for i := range want {
			if steps[i] != want[i] {
				t.Errorf("step %d = %+v, want %+v", i, steps[i], want[i])
			}
		}
	})

	t.Run("duplicate series advance twice", func(t *testing.T) {
		records := []model.Record{{"k": "a", "s": 2}}
		layout, err := ComputeLayout(records, []string{"s", "s"}, "k", model.PolicyPropagate)
		if err != nil {
			t.Fatal(err)
		}
		if got, want := layout["a"]["s"], (Entry{2, 4, 2}); got != want {
			t.Errorf("layout[a][s] = %+v, want %+v", got, want)
		}
		lo, hi, _ := ComputeExtent(records, []string{"s", "s"}, model.PolicyPropagate)
		if lo != 0 || hi != 4 {
			t.Errorf("extent = [%v, %v], want [0, 4]", lo, hi)
		}
	})

	t.Run("positional keys", func(t *testing.T) {
		records := []model.Record{{"s": 1}, {"s": 2}}
		layout, err := ComputeLayout(records, []string{"s"}, "", model.PolicyPropagate)
		if err != nil {
			t.Fatal(err)
		}
		if layout["0"]["s"].End != 1 || layout["1"]["s"].End != 3 {
			t.Errorf("layout = %v", layout)
		}
	})

	t.Run("numeric keys", func(t *testing.T) {
		records := []model.Record{{"year": 2020, "s": 1}, {"year": 2021.5, "s": 1}}
		layout, err := ComputeLayout(records, []string{"s"}, "year", model.PolicyPropagate)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := layout["2020"]; !ok {
			t.Errorf("missing key 2020 in %v", layout)
		}
		if _, ok := layout["2021.5"]; !ok {
			t.Errorf("missing key 2021.5 in %v", layout)
		}
	})
}

func TestLayoutNaNPropagates(t *testing.T) {
	records := []model.Record{
		{"k": "a", "s": 1},
		{"k": "b", "s": "oops"},
		{"k": "c", "s": 1},
	}
	layout, err := ComputeLayout(records, []string{"s"}, "k", model.PolicyPropagate)
	if err != nil {
		t.Fatalf("propagate should not fail: %v", err)
	}
	if e := layout["a"]["s"]; e.End != 1 {
		t.Errorf("a before the bad value = %+v", e)
	}
	if e := layout["b"]["s"]; !math.IsNaN(e.Change) || !math.IsNaN(e.End) || e.Start != 1 {
		t.Errorf("b = %+v, want NaN change and end", e)
	}
	if e := layout["c"]["s"]; !math.IsNaN(e.Start) || !math.IsNaN(e.End) {
		t.Errorf("c = %+v, want NaN after the bad value", e)
	}

	lo, hi, err := ComputeExtent(records, []string{"s"}, model.PolicyPropagate)
	if err != nil || !math.IsNaN(lo) || !math.IsNaN(hi) {
		t.Errorf("extent = [%v, %v], err = %v, want NaN", lo, hi, err)
	}
}

func TestLayoutStrict(t *testing.T) {
	tests := []struct {
		name    string
		records []model.Record
		key     string
		code    errors.Code
	}{
		{"missing value", []model.Record{{"k": "a"}}, "k", errors.ErrCodeMissingField},
		{"non-numeric", []model.Record{{"k": "a", "s": "x"}}, "k", errors.ErrCodeNonNumeric},
		{"missing key", []model.Record{{"s": 1}}, "k", errors.ErrCodeMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeLayout(tt.records, []string{"s"}, tt.key, model.PolicyStrict)
			if !errors.Is(err, tt.code) {
				t.Errorf("ComputeLayout error = %v, want code %s", err, tt.code)
			}
		})
	}

	_, _, err := ComputeExtent([]model.Record{{"s": true}}, []string{"s"}, model.PolicyStrict)
	if !errors.Is(err, errors.ErrCodeNonNumeric) {
		t.Errorf("ComputeExtent error = %v, want NON_NUMERIC", err)
	}
}

func TestCategoryKeys(t *testing.T) {
	keys, err := CategoryKeys([]model.Record{{"k": "x"}, {}, {"k": "x"}}, "k", model.PolicyPropagate)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"x", "undefined", "x"}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}
