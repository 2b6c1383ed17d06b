// Package scale provides the scale functions used to position chart marks.
//
// A scale maps a domain value (a category name or a number) to a visual
// coordinate or a color. The numeric behavior follows the d3 v3 scales the
// charts were originally drawn with, so layouts computed here line up with
// existing renderings:
//
//   - [Band]: categories to evenly divided bands (d3 ordinal.rangeBands)
//   - [Point]: categories to evenly spaced points (d3 ordinal.rangePoints)
//   - [Linear]: numbers to numbers (d3 linear)
//   - [Ordinal]: categories to a cyclic list of strings, typically colors
//
// [ColorScale] builds a category-to-color scale from either a named scheme
// ("category10", "category20", "category20b", "category20c") or an explicit
// list of colors.
package scale
