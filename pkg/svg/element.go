// Package svg provides a small retained SVG element tree.
//
// Elements carry an optional bound datum so that a join can reconcile the
// tree with a changing data collection across render passes. The tree is
// serialized with [Document], which writes attributes in insertion order so
// output is byte-for-byte reproducible.
package svg

import (
	"slices"
	"strings"
)

// Attr is a single name/value pair. Attributes and style properties keep
// their insertion order.
type Attr struct {
	Name  string
	Value string
}

// Element is a node in the retained tree.
type Element struct {
	Tag   string
	Text  string // character data, escaped on output
	Datum any    // value bound by a join

	attrs    []Attr
	style    []Attr
	children []*Element
	parent   *Element
}

// New creates a detached element.
func New(tag string) *Element {
	return &Element{Tag: tag}
}

// Append creates a child element and returns it.
func (e *Element) Append(tag string) *Element {
	child := &Element{Tag: tag, parent: e}
	e.children = append(e.children, child)
	return child
}

// AppendChild attaches an existing element, detaching it from any previous parent.
func (e *Element) AppendChild(child *Element) *Element {
	child.Remove()
	child.parent = e
	e.children = append(e.children, child)
	return child
}

// Remove detaches e from its parent. It is a no-op for detached elements.
func (e *Element) Remove() {
	p := e.parent
	if p == nil {
		return
	}
	if i := slices.Index(p.children, e); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	e.parent = nil
}

// Parent returns the parent element, or nil.
func (e *Element) Parent() *Element { return e.parent }

// Children returns a copy of the child list.
func (e *Element) Children() []*Element { return slices.Clone(e.children) }

// SetAttr sets or replaces an attribute. An empty value is kept; use
// RemoveAttr to drop an attribute.
func (e *Element) SetAttr(name, value string) *Element {
	e.attrs = set(e.attrs, name, value)
	return e
}

// SetNum sets a numeric attribute using [Num] formatting.
func (e *Element) SetNum(name string, v float64) *Element {
	return e.SetAttr(name, Num(v))
}

// Attr returns the attribute value and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	return get(e.attrs, name)
}

// RemoveAttr deletes an attribute if present.
func (e *Element) RemoveAttr(name string) *Element {
	e.attrs = slices.DeleteFunc(e.attrs, func(a Attr) bool { return a.Name == name })
	return e
}

// Attrs returns a copy of the attributes in insertion order.
func (e *Element) Attrs() []Attr { return slices.Clone(e.attrs) }

// SetStyle sets an inline style property.
func (e *Element) SetStyle(name, value string) *Element {
	e.style = set(e.style, name, value)
	return e
}

// Style returns an inline style property.
func (e *Element) Style(name string) (string, bool) {
	return get(e.style, name)
}

// ID returns the id attribute.
func (e *Element) ID() string {
	id, _ := e.Attr("id")
	return id
}

// Classes returns the space-separated class list.
func (e *Element) Classes() []string {
	c, _ := e.Attr("class")
	return strings.Fields(c)
}

// HasClass reports whether the class list contains name.
func (e *Element) HasClass(name string) bool {
	return slices.Contains(e.Classes(), name)
}

// AddClass appends name to the class list unless already present.
func (e *Element) AddClass(name string) *Element {
	if e.HasClass(name) {
		return e
	}
	return e.SetAttr("class", strings.Join(append(e.Classes(), name), " "))
}

// SelectAll returns the direct children matching selector.
// Selectors are "tag", ".class" or "tag.class".
func (e *Element) SelectAll(selector string) []*Element {
	m := parseSelector(selector)
	var out []*Element
	for _, c := range e.children {
		if m.matches(c) {
			out = append(out, c)
		}
	}
	return out
}

// Select returns the first descendant matching selector in document order,
// or nil.
func (e *Element) Select(selector string) *Element {
	m := parseSelector(selector)
	var found *Element
	e.walk(func(n *Element) bool {
		if n != e && m.matches(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// Order rearranges els, which must all be children of e, so that they appear
// in the given order. Children not in els keep their positions.
func (e *Element) Order(els []*Element) {
	slots := make([]int, 0, len(els))
	for _, el := range els {
		if i := slices.Index(e.children, el); i >= 0 {
			slots = append(slots, i)
		}
	}
	slices.Sort(slots)
	j := 0
	for _, el := range els {
		if el.parent != e || j >= len(slots) {
			continue
		}
		e.children[slots[j]] = el
		j++
	}
}

func (e *Element) walk(fn func(*Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

type selector struct {
	tag   string
	class string
}

func parseSelector(s string) selector {
	tag, class, _ := strings.Cut(strings.TrimSpace(s), ".")
	return selector{tag: tag, class: class}
}

func (s selector) matches(e *Element) bool {
	if s.tag != "" && s.tag != e.Tag {
		return false
	}
	return s.class == "" || e.HasClass(s.class)
}

func set(list []Attr, name, value string) []Attr {
	for i := range list {
		if list[i].Name == name {
			list[i].Value = value
			return list
		}
	}
	return append(list, Attr{Name: name, Value: value})
}

func get(list []Attr, name string) (string, bool) {
	for _, a := range list {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}
