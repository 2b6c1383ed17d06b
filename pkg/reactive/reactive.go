// Package reactive provides versioned values and memoized derivations.
//
// A [Value] is an input cell; every Set bumps its version. A [Computed]
// declares the cells it depends on and recomputes lazily on Get, only when
// one of those versions moved since the last computation. Computed values
// are themselves versioned, so derivations can be chained:
//
//	width := reactive.NewValue(800.0)
//	data := reactive.NewValue(records)
//	x := reactive.NewComputed(func() *scale.Band { ... }, width, data)
//	band := reactive.NewComputed(func() float64 { return x.Get().RangeBand() }, x)
//
// Values are not safe for concurrent use; a chart is driven from a single
// goroutine.
package reactive

// Versioned is anything a Computed can depend on.
type Versioned interface {
	Version() uint64
}

// Value is a settable input cell.
type Value[T any] struct {
	v       T
	version uint64
}

// NewValue creates a cell holding v.
func NewValue[T any](v T) *Value[T] {
	return &Value[T]{v: v, version: 1}
}

// Get returns the current value.
func (c *Value[T]) Get() T { return c.v }

// Set replaces the value and invalidates dependents.
func (c *Value[T]) Set(v T) {
	c.v = v
	c.version++
}

// Touch invalidates dependents without replacing the value, for callers that
// mutated the held value in place.
func (c *Value[T]) Touch() { c.version++ }

// Version implements Versioned.
func (c *Value[T]) Version() uint64 { return c.version }

// Computed is a memoized derivation over declared dependencies.
type Computed[T any] struct {
	fn      func() T
	deps    []Versioned
	seen    []uint64
	v       T
	valid   bool
	version uint64
	runs    int
}

// NewComputed creates a derivation. fn must read only the declared deps.
func NewComputed[T any](fn func() T, deps ...Versioned) *Computed[T] {
	return &Computed[T]{fn: fn, deps: deps, seen: make([]uint64, len(deps))}
}

// Get returns the memoized value, recomputing it if any dependency changed.
func (c *Computed[T]) Get() T {
	if c.stale() {
		c.v = c.fn()
		for i, d := range c.deps {
			c.seen[i] = d.Version()
		}
		c.valid = true
		c.version++
		c.runs++
	}
	return c.v
}

// Version implements Versioned. Reading the version brings the value up to
// date first, so chained derivations observe upstream changes.
func (c *Computed[T]) Version() uint64 {
	c.Get()
	return c.version
}

// Runs reports how many times the derivation has been evaluated.
func (c *Computed[T]) Runs() int { return c.runs }

func (c *Computed[T]) stale() bool {
	if !c.valid {
		return true
	}
	for i, d := range c.deps {
		if d.Version() != c.seen[i] {
			return true
		}
	}
	return false
}
