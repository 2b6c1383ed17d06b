package scale

import "math"

// Linear maps a numeric domain onto a numeric range.
type Linear struct {
	d0, d1 float64
	r0, r1 float64
}

// NewLinear creates a linear scale from [d0, d1] to [r0, r1].
func NewLinear(d0, d1, r0, r1 float64) *Linear {
	return &Linear{d0: d0, d1: d1, r0: r0, r1: r1}
}

// Apply maps x. A degenerate domain maps every value to r0.
func (l *Linear) Apply(x float64) float64 {
	span := l.d1 - l.d0
	if span == 0 {
		return l.r0
	}
	t := (x - l.d0) / span
	return l.r0 + t*(l.r1-l.r0)
}

// Invert maps a range value back into the domain.
func (l *Linear) Invert(y float64) float64 {
	span := l.r1 - l.r0
	if span == 0 {
		return l.d0
	}
	return l.d0 + (y-l.r0)/span*(l.d1-l.d0)
}

// Domain returns the input interval.
func (l *Linear) Domain() (float64, float64) { return l.d0, l.d1 }

// Range returns the output interval.
func (l *Linear) Range() (float64, float64) { return l.r0, l.r1 }

// Ticks returns roughly n human-friendly values spanning the domain, each a
// multiple of 1, 2 or 5 times a power of ten.
func (l *Linear) Ticks(n int) []float64 {
	lo, hi := l.d0, l.d1
	if hi < lo {
		lo, hi = hi, lo
	}
	span := hi - lo
	if n <= 0 || span <= 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		if lo == hi && !math.IsNaN(lo) {
			return []float64{lo}
		}
		return nil
	}

	step := math.Pow(10, math.Floor(math.Log10(span/float64(n))))
	switch err := float64(n) / span * step; {
	case err <= 0.15:
		step *= 10
	case err <= 0.35:
		step *= 5
	case err <= 0.75:
		step *= 2
	}

	start := math.Ceil(lo/step) * step
	stop := math.Floor(hi/step)*step + step*0.5
	var ticks []float64
	for i := 0; ; i++ {
		v := start + step*float64(i)
		if v >= stop {
			break
		}
		// Round away float noise such as 0.30000000000000004.
		ticks = append(ticks, math.Round(v/step)*step)
	}
	return ticks
}
