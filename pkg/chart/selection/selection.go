package selection

import "github.com/matzehuels/cascade/pkg/svg"

// Selection is an ordered set of elements and the data bound to them.
type Selection struct {
	parent *svg.Element
	nodes  []*svg.Element

	// Counts from the join that produced this selection.
	Entered, Updated, Exited int
}

// SelectAll selects the children of parent matching selector.
func SelectAll(parent *svg.Element, selector string) Selection {
	return Selection{parent: parent, nodes: parent.SelectAll(selector)}
}

// Parent returns the element the selection was made under.
func (s Selection) Parent() *svg.Element { return s.parent }

// Len returns the number of selected elements.
func (s Selection) Len() int { return len(s.nodes) }

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool { return len(s.nodes) == 0 }

// Nodes returns the selected elements.
func (s Selection) Nodes() []*svg.Element {
	out := make([]*svg.Element, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Data returns the bound data in selection order.
func (s Selection) Data() []any {
	out := make([]any, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = n.Datum
	}
	return out
}

// Each calls fn for every selected element with its bound datum.
func (s Selection) Each(fn func(el *svg.Element, datum any, i int)) {
	for i, n := range s.nodes {
		fn(n, n.Datum, i)
	}
}

// NestedHandlers are Handlers that also receive an auxiliary value from the
// enclosing join, such as the series a group of bars belongs to.
type NestedHandlers struct {
	Enter  func(h *EnterHandle, datum, aux any)
	Update func(el *svg.Element, datum, aux any)
	Exit   func(el *svg.Element, aux any)
}

// Nested binds aux into h and returns plain Handlers.
func Nested(aux any, h NestedHandlers) Handlers {
	var out Handlers
	if h.Enter != nil {
		out.Enter = func(eh *EnterHandle, d any) { h.Enter(eh, d, aux) }
	}
	if h.Update != nil {
		out.Update = func(el *svg.Element, d any) { h.Update(el, d, aux) }
	}
	if h.Exit != nil {
		out.Exit = func(el *svg.Element) { h.Exit(el, aux) }
	}
	return out
}

// Values converts a typed slice into join data.
func Values[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
