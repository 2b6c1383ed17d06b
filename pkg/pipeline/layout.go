package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/cascade/pkg/chart/waterfall"
	"github.com/matzehuels/cascade/pkg/model"
)

// =============================================================================
// Layout Document
// =============================================================================

// Layout is the serializable result of the layout stage: every waterfall
// step in traversal order plus the value extent. It is the JSON output
// format and the cached form of a layout.
type Layout struct {
	Key    string     `json:"key,omitempty"`
	Series []string   `json:"series"`
	Steps  []Step     `json:"steps"`
	Extent [2]Number  `json:"extent"`
	Policy string     `json:"policy"`
	Totals []Subtotal `json:"totals,omitempty"`
}

// Step is one (category, series) span.
type Step struct {
	Key    string `json:"key"`
	Series string `json:"series"`
	Start  Number `json:"start"`
	End    Number `json:"end"`
	Change Number `json:"change"`
}

// Subtotal is the running total after the last series of a category.
type Subtotal struct {
	Key   string `json:"key"`
	Total Number `json:"total"`
}

// Number is a float64 whose NaN and infinite values encode as JSON null.
type Number float64

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler. null decodes as NaN.
func (n *Number) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*n = Number(math.NaN())
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid number %s: %w", data, err)
	}
	*n = Number(f)
	return nil
}

// Float returns n as a float64.
func (n Number) Float() float64 { return float64(n) }

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout validates m and computes its waterfall layout.
func GenerateLayout(m *model.Model, opts Options) (*Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	p := opts.PolicyValue()
	if err := m.Validate(p); err != nil {
		return nil, err
	}

	steps, err := waterfall.Steps(m.Data, m.Series, m.Key, p)
	if err != nil {
		return nil, err
	}
	lo, hi, err := waterfall.ComputeExtent(m.Data, m.Series, p)
	if err != nil {
		return nil, err
	}

	l := &Layout{
		Key:    m.Key,
		Series: append([]string{}, m.Series...),
		Steps:  []Step{},
		Extent: [2]Number{Number(lo), Number(hi)},
		Policy: p.String(),
	}
	for _, s := range steps {
		l.Steps = append(l.Steps, Step{
			Key:    s.Key,
			Series: s.Series,
			Start:  Number(s.Start),
			End:    Number(s.End),
			Change: Number(s.Change),
		})
	}
	l.Totals = subtotals(l.Steps)
	return l, nil
}

func subtotals(steps []Step) []Subtotal {
	var out []Subtotal
	for i, s := range steps {
		if i+1 < len(steps) && steps[i+1].Key == s.Key {
			continue
		}
		out = append(out, Subtotal{Key: s.Key, Total: s.End})
	}
	return out
}

// MarshalLayout encodes a layout as indented JSON.
func MarshalLayout(l *Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout decodes a layout produced by MarshalLayout.
func UnmarshalLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// LoadModel decodes a model and validates it under the options' policy.
func LoadModel(data []byte, format model.Format, opts Options) (*model.Model, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	m, err := model.Parse(data, format)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(opts.PolicyValue()); err != nil {
		return nil, err
	}
	return m, nil
}
