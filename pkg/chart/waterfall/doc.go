// Package waterfall lays out and draws waterfall charts.
//
// A waterfall chart shows a running total as it moves through a sequence of
// changes. Every (category, series) pair contributes one change; the chart
// draws a vertical line from the total before the change to the total after
// it. The total runs continuously across categories and is never reset.
//
// The package has two halves. [ComputeLayout] and [ComputeExtent] are pure
// functions over records. [Component] derives scales from the layout and
// reconciles an SVG element tree with the model, so calling it again after
// the model changes updates the existing elements instead of redrawing them.
//
//	m := &model.Model{
//	    Data:   []model.Record{{"cat": "a", "s1": 5, "s2": -2}, {"cat": "b", "s1": 3, "s2": 1}},
//	    Series: []string{"s1", "s2"},
//	    Key:    "cat",
//	}
//	c := waterfall.New(m, chart.NewFrame(800, 400))
//	out, err := c.Render()
package waterfall
