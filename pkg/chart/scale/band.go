package scale

import "math"

// Band divides a continuous range into evenly sized bands, one per category.
type Band struct {
	dom          domain
	r0, r1       float64
	padding      float64
	outerPadding float64

	starts []float64
	band   float64
}

// NewBand creates a band scale over categories in first-seen order.
//
// The range [r0, r1] is divided into len(domain) steps; each band takes
// (1 - padding) of its step and outerPadding steps are left at both ends.
// Pass a negative outerPadding to use padding for the outer gaps as well,
// which is what the waterfall chart does.
func NewBand(dom []string, r0, r1, padding, outerPadding float64) *Band {
	if outerPadding < 0 {
		outerPadding = padding
	}
	b := &Band{dom: newDomain(dom), r0: r0, r1: r1, padding: padding, outerPadding: outerPadding}
	b.rescale()
	return b
}

func (b *Band) rescale() {
	n := float64(len(b.dom.values))
	reverse := b.r1 < b.r0
	start, stop := b.r0, b.r1
	if reverse {
		start, stop = stop, start
	}
	step := (stop - start) / (n - b.padding + 2*b.outerPadding)
	b.starts = make([]float64, len(b.dom.values))
	for i := range b.starts {
		b.starts[i] = start + step*b.outerPadding + step*float64(i)
	}
	if reverse {
		for i, j := 0, len(b.starts)-1; i < j; i, j = i+1, j-1 {
			b.starts[i], b.starts[j] = b.starts[j], b.starts[i]
		}
	}
	b.band = step * (1 - b.padding)
	if math.IsNaN(b.band) || math.IsInf(b.band, 0) {
		b.band = 0
	}
}

// Apply returns the start of v's band. Unknown categories return NaN.
func (b *Band) Apply(v string) float64 {
	i, ok := b.dom.lookup(v)
	if !ok {
		return math.NaN()
	}
	return b.starts[i]
}

// RangeBand returns the width of every band.
func (b *Band) RangeBand() float64 { return b.band }

// Domain returns the categories in band order.
func (b *Band) Domain() []string { return b.dom.clone() }

// Range returns the output interval.
func (b *Band) Range() (float64, float64) { return b.r0, b.r1 }
