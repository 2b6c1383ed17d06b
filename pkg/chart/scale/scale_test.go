package scale

import (
	"math"
	"slices"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestBand(t *testing.T) {
	b := NewBand([]string{"a", "b", "a"}, 0, 100, 0.5, -1)

	// step = 100 / (2 - 0.5 + 2*0.5) = 40
	if got := b.RangeBand(); !approx(got, 20) {
		t.Errorf("RangeBand() = %v, want 20", got)
	}
	if got := b.Apply("a"); !approx(got, 20) {
		t.Errorf("Apply(a) = %v, want 20", got)
	}
	if got := b.Apply("b"); !approx(got, 60) {
		t.Errorf("Apply(b) = %v, want 60", got)
	}
	if got := b.Apply("zzz"); !math.IsNaN(got) {
		t.Errorf("Apply(unknown) = %v, want NaN", got)
	}
	if got := b.Domain(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Domain() = %v, duplicates should collapse", got)
	}
}

func TestBandNoOuterPadding(t *testing.T) {
	b := NewBand([]string{"a", "b"}, 0, 90, 0.5, 0)
	// step = 90 / 1.5 = 60
	if !approx(b.Apply("a"), 0) || !approx(b.Apply("b"), 60) || !approx(b.RangeBand(), 30) {
		t.Errorf("got a=%v b=%v band=%v", b.Apply("a"), b.Apply("b"), b.RangeBand())
	}
}

func TestBandReversed(t *testing.T) {
	b := NewBand([]string{"a", "b"}, 100, 0, 0.5, -1)
	if !approx(b.Apply("a"), 60) || !approx(b.Apply("b"), 20) {
		t.Errorf("reversed: a=%v b=%v", b.Apply("a"), b.Apply("b"))
	}
}

func TestBandEmpty(t *testing.T) {
	b := NewBand(nil, 0, 100, 0.5, -1)
	if len(b.Domain()) != 0 {
		t.Error("empty domain expected")
	}
	if math.IsNaN(b.RangeBand()) {
		t.Error("RangeBand() should not be NaN")
	}
}

func TestPoint(t *testing.T) {
	p := NewPoint([]string{"s1", "s2"}, 0, 20, 1)
	if got := p.Apply("s1"); !approx(got, 5) {
		t.Errorf("Apply(s1) = %v, want 5", got)
	}
	if got := p.Apply("s2"); !approx(got, 15) {
		t.Errorf("Apply(s2) = %v, want 15", got)
	}

	single := NewPoint([]string{"only"}, 0, 20, 1)
	if got := single.Apply("only"); !approx(got, 10) {
		t.Errorf("single point = %v, want midpoint 10", got)
	}

	if got := p.Apply("missing"); !math.IsNaN(got) {
		t.Errorf("Apply(missing) = %v, want NaN", got)
	}
}

func TestLinear(t *testing.T) {
	l := NewLinear(0, 7, 0, -480)
	tests := []struct{ in, want float64 }{
		{0, 0},
		{7, -480},
		{3.5, -240},
		{-7, 480},
	}
	for _, tt := range tests {
		if got := l.Apply(tt.in); !approx(got, tt.want) {
			t.Errorf("Apply(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := l.Invert(-240); !approx(got, 3.5) {
		t.Errorf("Invert(-240) = %v, want 3.5", got)
	}
}

func TestLinearDegenerate(t *testing.T) {
	l := NewLinear(0, 0, 0, -480)
	if got := l.Apply(10); got != 0 {
		t.Errorf("degenerate Apply() = %v, want r0", got)
	}
	if got := l.Apply(math.NaN()); got != 0 {
		t.Errorf("degenerate Apply(NaN) = %v, want r0", got)
	}
}

func TestTicks(t *testing.T) {
	tests := []struct {
		name   string
		d0, d1 float64
		n      int
		want   []float64
	}{
		{"unit steps", 0, 7, 10, []float64{0, 1, 2, 3, 4, 5, 6, 7}},
		{"twenties", 0, 100, 5, []float64{0, 20, 40, 60, 80, 100}},
		{"negative", -3, 2, 5, []float64{-3, -2, -1, 0, 1, 2}},
		{"fractional", 0, 1, 4, []float64{0, 0.2, 0.4, 0.6, 0.8, 1}},
		{"reversed domain", 7, 0, 10, []float64{0, 1, 2, 3, 4, 5, 6, 7}},
		{"degenerate", 3, 3, 10, []float64{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewLinear(tt.d0, tt.d1, 0, 1).Ticks(tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("Ticks() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if !approx(got[i], tt.want[i]) {
					t.Errorf("Ticks()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestOrdinal(t *testing.T) {
	o := NewOrdinal([]string{"red", "green"})
	if o.Apply("x") != "red" || o.Apply("y") != "green" || o.Apply("z") != "red" {
		t.Error("ordinal should cycle through range in first-seen order")
	}
	if o.Apply("x") != "red" {
		t.Error("ordinal should be stable for known values")
	}
	if got := o.Domain(); !slices.Equal(got, []string{"x", "y", "z"}) {
		t.Errorf("Domain() = %v", got)
	}

	c := o.Copy()
	c.Apply("w")
	if len(o.Domain()) != 3 {
		t.Error("Copy() should not share domain")
	}

	if NewOrdinal(nil).Apply("x") != "" {
		t.Error("empty range should yield empty string")
	}
}
