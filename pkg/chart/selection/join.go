package selection

import "github.com/matzehuels/cascade/pkg/svg"

// Handlers receive the partitioned join.
//
// Enter runs once per datum without an element; it may create the element
// through the handle. Update runs once per datum that already had an element,
// after the element has been rebound to the new datum. Exit, if set, runs
// before an orphaned element is removed.
type Handlers struct {
	Enter  func(h *EnterHandle, datum any)
	Update func(el *svg.Element, datum any)
	Exit   func(el *svg.Element)
}

// EnterHandle creates elements for an entering datum.
type EnterHandle struct {
	parent  *svg.Element
	datum   any
	created []*svg.Element
}

// Append creates a child of the joined parent bound to the entering datum.
func (h *EnterHandle) Append(tag string) *svg.Element {
	el := h.parent.Append(tag)
	el.Datum = h.datum
	h.created = append(h.created, el)
	return el
}

// Datum returns the entering datum.
func (h *EnterHandle) Datum() any { return h.datum }

// Parent returns the element new children are appended to.
func (h *EnterHandle) Parent() *svg.Element { return h.parent }

// Join reconciles the children of parent matching selector with data.
//
// Data keyed to an existing element go to Update; the rest go to Enter.
// Elements whose key is not produced by any datum are passed to Exit and
// removed. When several elements share a key only the first is kept; when
// several data share a key the later ones enter.
//
// The returned selection holds the bound elements (updated and entered) in
// data order, and the parent's children are reordered to match.
func Join(parent *svg.Element, selector string, data []any, key KeyFunc, h Handlers) Selection {
	if key == nil {
		key = ByIndex
	}
	current := parent.SelectAll(selector)

	byKey := make(map[string]*svg.Element, len(current))
	for i, el := range current {
		k := key(el.Datum, i)
		if _, dup := byKey[k]; !dup {
			byKey[k] = el
		}
	}

	type pending struct {
		datum any
		el    *svg.Element
	}
	matched := make([]pending, len(data))
	kept := make(map[*svg.Element]struct{}, len(data))
	for i, d := range data {
		matched[i].datum = d
		k := key(d, i)
		if el, ok := byKey[k]; ok {
			matched[i].el = el
			kept[el] = struct{}{}
			delete(byKey, k)
		}
	}

	var exiting []*svg.Element
	for _, el := range current {
		if _, ok := kept[el]; !ok {
			exiting = append(exiting, el)
		}
	}

	sel := Selection{parent: parent}
	for _, el := range exiting {
		if h.Exit != nil {
			h.Exit(el)
		}
		el.Remove()
		sel.Exited++
	}

	bound := make([]*svg.Element, 0, len(data))
	for _, m := range matched {
		if m.el != nil {
			m.el.Datum = m.datum
			if h.Update != nil {
				h.Update(m.el, m.datum)
			}
			bound = append(bound, m.el)
			sel.Updated++
			continue
		}
		handle := &EnterHandle{parent: parent, datum: m.datum}
		if h.Enter != nil {
			h.Enter(handle, m.datum)
		}
		bound = append(bound, handle.created...)
		sel.Entered++
	}

	parent.Order(bound)
	sel.nodes = bound
	return sel
}

// Joiner performs joins. It lets a chart component take the reconcile
// operation as an injected capability.
type Joiner interface {
	Join(parent *svg.Element, selector string, data []any, key KeyFunc, h Handlers) Selection
}

// JoinFunc adapts a function to the Joiner interface.
type JoinFunc func(parent *svg.Element, selector string, data []any, key KeyFunc, h Handlers) Selection

// Join calls f.
func (f JoinFunc) Join(parent *svg.Element, selector string, data []any, key KeyFunc, h Handlers) Selection {
	return f(parent, selector, data, key, h)
}

// Default is the standard Joiner.
var Default Joiner = JoinFunc(Join)
