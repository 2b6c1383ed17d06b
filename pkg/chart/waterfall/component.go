package waterfall

import (
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/cascade/pkg/chart"
	"github.com/matzehuels/cascade/pkg/chart/scale"
	"github.com/matzehuels/cascade/pkg/chart/selection"
	"github.com/matzehuels/cascade/pkg/model"
	"github.com/matzehuels/cascade/pkg/reactive"
	"github.com/matzehuels/cascade/pkg/svg"
)

const (
	// BandPadding is the padding of the category band scale.
	BandPadding = 0.5
	// SeriesPadding is the point padding of series within a band.
	SeriesPadding = 1
	// DefaultTicks is the approximate y-axis tick count.
	DefaultTicks = 10
	// DefaultGrowDuration is the grow animation length.
	DefaultGrowDuration = 250 * time.Millisecond
)

// Bar is the datum bound to each bar group.
type Bar struct {
	Key    string
	Index  int
	Record model.Record
}

// barKey matches bars on their category. Bars of a model without a key
// field carry their position as category, which matches by index.
func barKey(d any, i int) string {
	if b, ok := d.(Bar); ok {
		return b.Key
	}
	return selection.ByIndex(d, i)
}

type layoutResult struct {
	layout Layout
	err    error
}

type extentResult struct {
	lo, hi float64
	err    error
}

// Component draws a waterfall chart and keeps its element tree in sync
// with the model across calls.
type Component struct {
	model *reactive.Value[*model.Model]
	size  *reactive.Value[chart.Sized]

	stroke    *scale.Ordinal
	joiner    selection.Joiner
	policy    model.Policy
	id        string
	axes      bool
	tickCount int
	grow      time.Duration

	layout *reactive.Computed[layoutResult]
	extent *reactive.Computed[extentResult]
	xScale *reactive.Computed[*scale.Band]
	yScale *reactive.Computed[*scale.Linear]
	zScale *reactive.Computed[*scale.Point]

	root      *svg.Element
	seriesSel selection.Selection
}

// Option configures a Component.
type Option func(*Component)

// WithElementID sets the id of the chart root. Without it a random id is
// generated once per component.
func WithElementID(id string) Option {
	return func(c *Component) { c.id = id }
}

// WithStroke sets the series color scale.
func WithStroke(s *scale.Ordinal) Option {
	return func(c *Component) {
		if s != nil {
			c.stroke = s
		}
	}
}

// WithJoinable injects the reconcile operation.
func WithJoinable(j chart.Joinable) Option {
	return func(c *Component) {
		if j != nil {
			c.joiner = j.Joiner()
		}
	}
}

// WithPolicy selects how malformed values are handled.
func WithPolicy(p model.Policy) Option {
	return func(c *Component) { c.policy = p }
}

// WithAxes draws an x axis of category ticks and a y axis of roughly
// ticks value ticks. A ticks value of 0 or less uses DefaultTicks.
func WithAxes(ticks int) Option {
	return func(c *Component) {
		c.axes = true
		c.tickCount = ticks
		if c.tickCount <= 0 {
			c.tickCount = DefaultTicks
		}
	}
}

// WithGrowFromZero makes entering bars start collapsed at zero and animate
// to their span over d. A d of 0 or less uses DefaultGrowDuration.
func WithGrowFromZero(d time.Duration) Option {
	return func(c *Component) {
		if d <= 0 {
			d = DefaultGrowDuration
		}
		c.grow = d
	}
}

// New creates a component for m drawn within size.
func New(m *model.Model, size chart.Sized, opts ...Option) *Component {
	c := &Component{
		model:  reactive.NewValue(m),
		size:   reactive.NewValue(size),
		stroke: scale.ColorScale([]string{scale.DefaultScheme}),
		joiner: chart.DefaultJoinable{}.Joiner(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.id == "" {
		c.id = "waterfall-" + uuid.NewString()
	}

	c.layout = reactive.NewComputed(func() layoutResult {
		m := c.model.Get()
		if m == nil {
			return layoutResult{err: chart.ErrMissingModel}
		}
		l, err := ComputeLayout(m.Data, m.Series, m.Key, c.policy)
		return layoutResult{layout: l, err: err}
	}, c.model)

	c.extent = reactive.NewComputed(func() extentResult {
		m := c.model.Get()
		if m == nil {
			return extentResult{err: chart.ErrMissingModel}
		}
		lo, hi, err := ComputeExtent(m.Data, m.Series, c.policy)
		return extentResult{lo: lo, hi: hi, err: err}
	}, c.model)

	c.xScale = reactive.NewComputed(func() *scale.Band {
		var keys []string
		if m := c.model.Get(); m != nil {
			// Propagate never fails; strict key errors surface from the layout.
			keys, _ = CategoryKeys(m.Data, m.Key, model.PolicyPropagate)
		}
		return scale.NewBand(keys, 0, c.size.Get().ContentWidth(), BandPadding, -1)
	}, c.model, c.size)

	c.yScale = reactive.NewComputed(func() *scale.Linear {
		e := c.extent.Get()
		return scale.NewLinear(e.lo, e.hi, 0, -c.size.Get().ContentHeight())
	}, c.extent, c.size)

	c.zScale = reactive.NewComputed(func() *scale.Point {
		var series []string
		if m := c.model.Get(); m != nil {
			series = m.Series
		}
		return scale.NewPoint(series, 0, c.xScale.Get().RangeBand(), SeriesPadding)
	}, c.xScale, c.model)

	return c
}

// SetModel replaces the model. The next Call reconciles the tree with it.
func (c *Component) SetModel(m *model.Model) { c.model.Set(m) }

// Model returns the current model.
func (c *Component) Model() *model.Model { return c.model.Get() }

// SetSize replaces the drawable area.
func (c *Component) SetSize(s chart.Sized) { c.size.Set(s) }

// Size returns the drawable area.
func (c *Component) Size() chart.Sized { return c.size.Get() }

// ID returns the chart root id.
func (c *Component) ID() string { return c.id }

// LayoutValues returns the layout of the current model.
func (c *Component) LayoutValues() (Layout, error) {
	r := c.layout.Get()
	return r.layout, r.err
}

// Extent returns the range of running totals of the current model.
func (c *Component) Extent() (lo, hi float64, err error) {
	r := c.extent.Get()
	return r.lo, r.hi, r.err
}

// XScale maps categories to band offsets.
func (c *Component) XScale() *scale.Band { return c.xScale.Get() }

// YScale maps running totals to vertical offsets; up is negative.
func (c *Component) YScale() *scale.Linear { return c.yScale.Get() }

// ZScale maps series names to offsets within a band.
func (c *Component) ZScale() *scale.Point { return c.zScale.Get() }

// SeriesSelection returns the series groups bound by the last Call.
func (c *Component) SeriesSelection() selection.Selection { return c.seriesSel }

// Call draws the chart into root, reconciling with whatever a previous call
// left there.
func (c *Component) Call(root *svg.Element) error {
	m := c.model.Get()
	if m == nil {
		return chart.ErrMissingModel
	}
	if err := m.Validate(c.policy); err != nil {
		return err
	}
	layout, err := c.LayoutValues()
	if err != nil {
		return err
	}
	if _, _, err := c.Extent(); err != nil {
		return err
	}

	size := c.size.Get()
	margin := size.Margin()
	root.SetAttr("id", c.id).
		SetAttr("transform", svg.Translate(margin.Left, margin.Top+size.ContentHeight()))

	c.series(root, m, layout)
	if c.axes {
		c.drawAxes(root)
	}
	c.seriesSel = selection.SelectAll(root, ".series")
	return nil
}

// Render draws the chart into the component's own root and returns the
// complete SVG document. Repeated calls reuse the same tree.
func (c *Component) Render() ([]byte, error) {
	if c.root == nil {
		c.root = svg.New("g")
	}
	if err := c.Call(c.root); err != nil {
		return nil, err
	}
	size := c.size.Get()
	margin := size.Margin()
	return svg.Document(
		size.ContentWidth()+margin.Horizontal(),
		size.ContentHeight()+margin.Vertical(),
		c.root,
	), nil
}

// Root returns the tree built by Render, or nil before the first Render.
func (c *Component) Root() *svg.Element { return c.root }

// =============================================================================
// Joins
// =============================================================================

func (c *Component) series(root *svg.Element, m *model.Model, layout Layout) {
	z := c.zScale.Get()
	style := func(g *svg.Element, s string) {
		g.SetStyle("stroke", c.stroke.Apply(s))
		g.SetAttr("class", "series")
		g.SetAttr("transform", svg.Translate(z.Apply(s), 0))
	}

	bars := make([]any, len(m.Data))
	for i, r := range m.Data {
		k, _ := CategoryKey(r, i, m.Key, model.PolicyPropagate) // cannot fail under propagate
		bars[i] = Bar{Key: k, Index: i, Record: r}
	}

	c.joiner.Join(root, ".series", selection.Values(m.Series), selection.ByValue, selection.Handlers{
		Enter: func(h *selection.EnterHandle, d any) {
			g := h.Append("g")
			style(g, d.(string))
			c.bars(g, bars, layout)
		},
		Update: func(g *svg.Element, d any) {
			style(g, d.(string))
			c.bars(g, bars, layout)
		},
	})
}

func (c *Component) bars(g *svg.Element, bars []any, layout Layout) {
	series, _ := g.Datum.(string)
	c.joiner.Join(g, ".bar", bars, barKey, selection.Nested(series, selection.NestedHandlers{
		Enter: func(h *selection.EnterHandle, d, aux any) {
			c.enterBar(h, d.(Bar), aux.(string), layout)
		},
		Update: func(el *svg.Element, d, aux any) {
			c.updateBar(el, d.(Bar), aux.(string), layout)
		},
	}))
}

func (c *Component) enterBar(h *selection.EnterHandle, b Bar, series string, layout Layout) {
	x, y := c.xScale.Get(), c.yScale.Get()
	e := layout[b.Key][series]

	bar := h.Append("g").
		SetAttr("class", "bar").
		SetAttr("transform", svg.Translate(x.Apply(b.Key), 0))
	line := bar.Append("line").
		SetAttr("class", "shape").
		SetNum("x1", 0).
		SetNum("x2", 0)

	if c.grow <= 0 {
		line.SetNum("y1", y.Apply(e.Start)).SetNum("y2", y.Apply(e.End))
		return
	}
	zero := y.Apply(0)
	line.SetNum("y1", zero).SetNum("y2", zero)
	animate(line, "y1", zero, y.Apply(e.Start), c.grow)
	animate(line, "y2", zero, y.Apply(e.End), c.grow)
}

func (c *Component) updateBar(el *svg.Element, b Bar, series string, layout Layout) {
	x, y := c.xScale.Get(), c.yScale.Get()
	e := layout[b.Key][series]

	el.SetAttr("transform", svg.Translate(x.Apply(b.Key), 0))
	line := el.Select(".shape")
	if line == nil {
		return
	}
	for _, a := range line.SelectAll("animate") {
		a.Remove()
	}
	line.SetNum("x1", 0).
		SetNum("x2", 0).
		SetNum("y1", y.Apply(e.Start)).
		SetNum("y2", y.Apply(e.End))
}

func animate(el *svg.Element, attr string, from, to float64, d time.Duration) {
	el.Append("animate").
		SetAttr("attributeName", attr).
		SetNum("from", from).
		SetNum("to", to).
		SetAttr("dur", svg.Num(d.Seconds())+"s").
		SetAttr("fill", "freeze")
}
