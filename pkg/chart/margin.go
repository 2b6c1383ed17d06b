package chart

import (
	"errors"
	"fmt"

	"github.com/matzehuels/cascade/pkg/chart/selection"
)

// DefaultMargin is the margin on every side when none is configured.
const DefaultMargin = 60

// ErrMissingModel is returned when a component is asked to render without
// a model.
var ErrMissingModel = errors.New("chart: model is required")

// Margin is the space reserved around the drawable area.
type Margin struct {
	Top    float64 `json:"top" toml:"top"`
	Right  float64 `json:"right" toml:"right"`
	Bottom float64 `json:"bottom" toml:"bottom"`
	Left   float64 `json:"left" toml:"left"`
}

// Uniform returns a margin of n on every side.
func Uniform(n float64) Margin {
	return Margin{Top: n, Right: n, Bottom: n, Left: n}
}

// Horizontal returns Left+Right.
func (m Margin) Horizontal() float64 { return m.Left + m.Right }

// Vertical returns Top+Bottom.
func (m Margin) Vertical() float64 { return m.Top + m.Bottom }

func (m Margin) String() string {
	return fmt.Sprintf("%g %g %g %g", m.Top, m.Right, m.Bottom, m.Left)
}

// Sized supplies the drawable area of a chart.
type Sized interface {
	Margin() Margin
	ContentWidth() float64
	ContentHeight() float64
}

// Frame is the standard Sized: an outer size minus its margin.
type Frame struct {
	Width  float64
	Height float64
	Pad    Margin
}

// NewFrame returns a frame with the default margin.
func NewFrame(width, height float64) Frame {
	return Frame{Width: width, Height: height, Pad: Uniform(DefaultMargin)}
}

// Margin returns the frame's margin.
func (f Frame) Margin() Margin { return f.Pad }

// ContentWidth is the outer width minus the horizontal margin, at least 0.
func (f Frame) ContentWidth() float64 { return max(0, f.Width-f.Pad.Horizontal()) }

// ContentHeight is the outer height minus the vertical margin, at least 0.
func (f Frame) ContentHeight() float64 { return max(0, f.Height-f.Pad.Vertical()) }

// Joinable supplies the reconcile operation to a component.
type Joinable interface {
	Joiner() selection.Joiner
}

// DefaultJoinable hands out [selection.Default].
type DefaultJoinable struct{}

// Joiner returns selection.Default.
func (DefaultJoinable) Joiner() selection.Joiner { return selection.Default }
