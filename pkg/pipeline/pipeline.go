// Package pipeline turns a chart model into rendered artifacts.
//
// This package implements the load → layout → render pipeline shared by the
// CLI and the HTTP server, so both apply the same defaults, validation, and
// caching.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Decode a model from JSON, JSONC, YAML, or TOML and validate it
//  2. Layout: Compute the waterfall steps and the value extent
//  3. Render: Draw the chart and export it as SVG, PNG, PDF, or JSON
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	m, err := pipeline.LoadModel(data, model.FormatJSON, opts)
//	result, err := runner.Execute(ctx, m, pipeline.Options{
//	    Formats: []string{"svg", "png"},
//	    Axes:    true,
//	})
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	layout, err := runner.ComputeLayout(ctx, m, opts)
//	artifacts, err := runner.Render(ctx, m, layout, opts)
package pipeline

import (
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cascade/pkg/cache"
	"github.com/matzehuels/cascade/pkg/chart"
	"github.com/matzehuels/cascade/pkg/chart/scale"
	"github.com/matzehuels/cascade/pkg/errors"
	"github.com/matzehuels/cascade/pkg/model"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default outer chart width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default outer chart height in pixels.
	DefaultHeight = 600.0

	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ContentTypes maps output formats to MIME types.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the chart pipeline.
// This struct supports JSON serialization for API requests and TOML for the
// CLI config file.
type Options struct {
	// Layout options
	Policy string `json:"policy,omitempty" toml:"policy"` // "propagate" (default) or "strict"

	// Render options
	Width     float64       `json:"width,omitempty" toml:"width"`
	Height    float64       `json:"height,omitempty" toml:"height"`
	Margin    *chart.Margin `json:"margin,omitempty" toml:"margin"`
	Colors    []string      `json:"colors,omitempty" toml:"colors"`
	Formats   []string      `json:"formats,omitempty" toml:"formats"`
	Axes      bool          `json:"axes,omitempty" toml:"axes"`
	Ticks     int           `json:"ticks,omitempty" toml:"ticks"`
	Grow      bool          `json:"grow,omitempty" toml:"grow"`
	Scale     float64       `json:"scale,omitempty" toml:"scale"` // PNG only
	ElementID string        `json:"element_id,omitempty" toml:"element_id"`

	Refresh bool `json:"refresh,omitempty" toml:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// ModelHash is the content hash of the canonical model.
	ModelHash string

	// Layout is the computed waterfall.
	Layout *Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Records    int
	Series     int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether layout result came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateMargin checks that every side is finite and non-negative.
func ValidateMargin(m chart.Margin) error {
	for _, side := range []float64{m.Top, m.Right, m.Bottom, m.Left} {
		if side < 0 || math.IsNaN(side) || math.IsInf(side, 0) {
			return errors.New(errors.ErrCodeInvalidDimensions, "invalid margin %s", m)
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and validates everything the
// pipeline needs. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Policy == "" {
		o.Policy = model.PolicyPropagate.String()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	_, err := model.ParsePolicy(o.Policy)
	return err
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	o.SetLayoutDefaults()
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Margin == nil {
		m := chart.Uniform(chart.DefaultMargin)
		o.Margin = &m
	}
	if len(o.Colors) == 0 {
		o.Colors = []string{scale.DefaultScheme}
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
}

// ValidateForRender validates and sets defaults for rendering. Colors are
// normalized to "#rrggbb".
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := errors.ValidateDimensions(o.Width, o.Height); err != nil {
		return err
	}
	if err := ValidateMargin(*o.Margin); err != nil {
		return err
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "invalid scale %g", o.Scale)
	}
	colors, err := scale.ParseColors(o.Colors)
	if err != nil {
		return err
	}
	o.Colors = colors
	return nil
}

// PolicyValue returns the parsed policy, defaulting to propagate.
func (o *Options) PolicyValue() model.Policy {
	p, _ := model.ParsePolicy(o.Policy)
	return p
}

// Frame returns the drawable area described by the options.
func (o *Options) Frame() chart.Frame {
	f := chart.NewFrame(o.Width, o.Height)
	if o.Margin != nil {
		f.Pad = *o.Margin
	}
	return f
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Policy: o.Policy}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format:    format,
		Width:     o.Width,
		Height:    o.Height,
		Colors:    o.Colors,
		Policy:    o.Policy,
		Axes:      o.Axes,
		Grow:      o.Grow && format == FormatSVG,
		ElementID: o.ElementID,
	}
	if o.Margin != nil {
		opts.Margin = [4]float64{o.Margin.Top, o.Margin.Right, o.Margin.Bottom, o.Margin.Left}
	}
	if o.Axes {
		opts.Ticks = o.Ticks
	}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}
