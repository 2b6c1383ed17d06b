package scale

// domain is an ordered set of category names.
type domain struct {
	values []string
	index  map[string]int
}

func newDomain(values []string) domain {
	d := domain{index: make(map[string]int, len(values))}
	for _, v := range values {
		d.add(v)
	}
	return d
}

// add appends v unless present and returns its position.
func (d *domain) add(v string) int {
	if i, ok := d.index[v]; ok {
		return i
	}
	d.index[v] = len(d.values)
	d.values = append(d.values, v)
	return len(d.values) - 1
}

func (d domain) lookup(v string) (int, bool) {
	i, ok := d.index[v]
	return i, ok
}

func (d domain) clone() []string {
	out := make([]string, len(d.values))
	copy(out, d.values)
	return out
}

// Ordinal maps categories to a cyclic range of strings.
//
// Values not in the domain are appended to it on first use, so the i-th
// distinct value seen always receives range[i % len(range)].
type Ordinal struct {
	dom   domain
	rng   []string
	named string
}

// NewOrdinal creates an ordinal scale with an explicit range.
func NewOrdinal(rng []string, dom ...string) *Ordinal {
	r := make([]string, len(rng))
	copy(r, rng)
	return &Ordinal{dom: newDomain(dom), rng: r}
}

// Apply returns the range value for v. An empty range yields "".
func (o *Ordinal) Apply(v string) string {
	if len(o.rng) == 0 {
		return ""
	}
	i := o.dom.add(v)
	return o.rng[i%len(o.rng)]
}

// Domain returns the values seen so far in first-seen order.
func (o *Ordinal) Domain() []string { return o.dom.clone() }

// Range returns a copy of the output values.
func (o *Ordinal) Range() []string {
	out := make([]string, len(o.rng))
	copy(out, o.rng)
	return out
}

// Scheme returns the built-in scheme name this scale was created from, or "".
func (o *Ordinal) Scheme() string { return o.named }

// Copy returns an independent scale with the same domain and range.
func (o *Ordinal) Copy() *Ordinal {
	c := NewOrdinal(o.rng, o.dom.values...)
	c.named = o.named
	return c
}
