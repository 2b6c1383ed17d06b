// Package selection reconciles a data collection with a set of rendered
// elements using the enter/update/exit join pattern.
//
// The elements being reconciled are the direct children of a parent element
// that match a selector. Each element remembers the datum it was bound to,
// so a later [Join] against new data can tell which data are new (enter),
// which already have an element (update), and which elements lost their
// datum (exit):
//
//	sel := selection.Join(root, ".bar", data, selection.ByField("cat"), selection.Handlers{
//	    Enter: func(h *selection.EnterHandle, d any) {
//	        h.Append("g").SetAttr("class", "bar")
//	    },
//	    Update: func(el *svg.Element, d any) {
//	        el.SetAttr("transform", ...)
//	    },
//	})
//
// Identity is decided by a [KeyFunc]. [ByIndex] matches positionally,
// [ByValue] matches data that format identically, and [ByField] matches
// records on a field value.
package selection
