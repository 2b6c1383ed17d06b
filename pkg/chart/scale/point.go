package scale

import "math"

// Point places categories at evenly spaced points within a range.
type Point struct {
	dom     domain
	r0, r1  float64
	padding float64
	points  []float64
}

// NewPoint creates a point scale. padding is expressed in steps and split
// evenly between both ends; a padding of 1 leaves half a step at each edge.
// With fewer than two categories the single point sits at the midpoint.
func NewPoint(dom []string, r0, r1, padding float64) *Point {
	p := &Point{dom: newDomain(dom), r0: r0, r1: r1, padding: padding}
	n := len(p.dom.values)
	p.points = make([]float64, n)
	if n < 2 {
		for i := range p.points {
			p.points[i] = (r0 + r1) / 2
		}
		return p
	}
	step := (r1 - r0) / (float64(n-1) + padding)
	for i := range p.points {
		p.points[i] = r0 + step*padding/2 + step*float64(i)
	}
	return p
}

// Apply returns v's position. Unknown categories return NaN.
func (p *Point) Apply(v string) float64 {
	i, ok := p.dom.lookup(v)
	if !ok {
		return math.NaN()
	}
	return p.points[i]
}

// Domain returns the categories in point order.
func (p *Point) Domain() []string { return p.dom.clone() }
