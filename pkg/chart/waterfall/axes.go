package waterfall

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/cascade/pkg/chart/selection"
	"github.com/matzehuels/cascade/pkg/svg"
)

const tickSize = 6

// drawAxes joins an x axis along the zero line of the content area and a y
// axis along its left edge. The root is already translated to the
// bottom-left corner, so the content spans x in [0, width] and y in
// [-height, 0].
func (c *Component) drawAxes(root *svg.Element) {
	x, y := c.xScale.Get(), c.yScale.Get()
	width := c.size.Get().ContentWidth()
	r0, r1 := y.Range()

	c.joiner.Join(root, ".axis", selection.Values([]string{"x", "y"}), selection.ByValue, selection.Handlers{
		Enter: func(h *selection.EnterHandle, d any) {
			g := h.Append("g").SetAttr("class", "axis "+d.(string))
			g.Append("path").SetAttr("class", "domain")
		},
	})

	xAxis := root.Select("g.x")
	xAxis.Select(".domain").
		SetAttr("d", fmt.Sprintf("M0,%dV0H%sV%d", tickSize, svg.Num(width), tickSize))
	band := x.RangeBand()
	c.tickJoin(xAxis, selection.Values(x.Domain()), func(g *svg.Element, d any) {
		k := d.(string)
		g.SetAttr("transform", svg.Translate(x.Apply(k)+band/2, 0))
		g.Select("line").SetNum("y2", tickSize)
		label := g.Select("text").
			SetNum("y", tickSize+3).
			SetAttr("dy", ".71em").
			SetAttr("text-anchor", "middle")
		label.Text = k
	})

	yAxis := root.Select("g.y")
	yAxis.Select(".domain").
		SetAttr("d", fmt.Sprintf("M%d,%sH0V%sH%d", -tickSize, svg.Num(r0), svg.Num(r1), -tickSize))
	c.tickJoin(yAxis, selection.Values(y.Ticks(c.tickCount)), func(g *svg.Element, d any) {
		v := d.(float64)
		g.SetAttr("transform", svg.Translate(0, y.Apply(v)))
		g.Select("line").SetNum("x2", -tickSize)
		label := g.Select("text").
			SetNum("x", -(tickSize+3)).
			SetAttr("dy", ".32em").
			SetAttr("text-anchor", "end")
		label.Text = strconv.FormatFloat(v, 'g', -1, 64)
	})
}

// tickJoin joins tick groups under axis, each holding a line and a label.
func (c *Component) tickJoin(axis *svg.Element, data []any, place func(*svg.Element, any)) {
	c.joiner.Join(axis, ".tick", data, selection.ByValue, selection.Handlers{
		Enter: func(h *selection.EnterHandle, d any) {
			g := h.Append("g").SetAttr("class", "tick")
			g.Append("line")
			g.Append("text")
			place(g, d)
		},
		Update: place,
	})
}
