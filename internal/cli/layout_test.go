package cli

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/cascade/pkg/pipeline"
)

func TestLayoutTable(t *testing.T) {
	l := &pipeline.Layout{
		Steps: []pipeline.Step{
			{Key: "Q1", Series: "sales", Start: 0, End: 5, Change: 5},
			{Key: "Q1", Series: "costs", Start: 5, End: 3, Change: -2},
			{Key: "Q2", Series: "sales", Start: 3, End: pipeline.Number(math.NaN()), Change: pipeline.Number(math.NaN())},
		},
		Extent: [2]pipeline.Number{0, 5},
	}

	out := layoutTable(l)
	for _, want := range []string{"Key", "Change", "Q1", "costs", "+5", "-2", "NaN", "extent [0, 5]"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestFormatChange(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{2.5, "+2.5"},
		{-1, "-1"},
		{0, "0"},
		{math.NaN(), "NaN"},
	}
	for _, tt := range tests {
		if got := formatChange(pipeline.Number(tt.in)); got != tt.want {
			t.Errorf("formatChange(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLayoutCommandWritesJSON(t *testing.T) {
	dir := isolate(t)
	out := filepath.Join(dir, "layout.json")

	if err := execute(t, "layout", filepath.Join(dir, "model.json"), "-o", out); err != nil {
		t.Fatalf("layout: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	l, err := pipeline.UnmarshalLayout(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Steps) != 4 || l.Steps[3].End != 7 {
		t.Errorf("steps = %+v", l.Steps)
	}
}

func TestLayoutCommandTable(t *testing.T) {
	dir := isolate(t)
	if err := execute(t, "layout", filepath.Join(dir, "model.json")); err != nil {
		t.Fatalf("layout: %v", err)
	}
}
