package cache

import "fmt"

// Keyer builds cache keys. Implementations must be deterministic: equal
// inputs yield equal keys.
type Keyer interface {
	// LayoutKey addresses the layout computed from a model.
	LayoutKey(modelHash string, opts LayoutKeyOpts) string
	// ArtifactKey addresses one rendered output format.
	ArtifactKey(modelHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the options that change a computed layout.
type LayoutKeyOpts struct {
	Policy string `json:"policy"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format    string     `json:"format"`
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	Margin    [4]float64 `json:"margin"`
	Colors    []string   `json:"colors,omitempty"`
	Policy    string     `json:"policy"`
	Axes      bool       `json:"axes,omitempty"`
	Ticks     int        `json:"ticks,omitempty"`
	Scale     float64    `json:"scale,omitempty"`
	Grow      bool       `json:"grow,omitempty"`
	ElementID string     `json:"element_id,omitempty"`
}

// DefaultKeyer hashes options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<hash>".
func (DefaultKeyer) LayoutKey(modelHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", modelHash, opts)
}

// ArtifactKey returns "artifact:<format>:<hash>".
func (DefaultKeyer) ArtifactKey(modelHash string, opts ArtifactKeyOpts) string {
	return hashKey(fmt.Sprintf("artifact:%s", opts.Format), modelHash, opts)
}

var _ Keyer = DefaultKeyer{}
