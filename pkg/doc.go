// Package pkg provides the core libraries for Cascade waterfall charts.
//
// # Overview
//
// Cascade turns tabular records with one or more numeric series into
// waterfall charts, where every bar starts where the previous bar ended. The
// pkg directory is organized into four main areas:
//
//  1. [model] - Chart input: records, series, key field, and decoding
//  2. [chart] - Layout, scales, data joins, and the waterfall component
//  3. [pipeline] - Orchestration (load → layout → render) with caching
//  4. [cache] and [observability] - Infrastructure shared by CLI and server
//
// # Architecture
//
// The typical data flow through Cascade:
//
//	JSON / YAML / TOML model
//	         ↓
//	    [model] package (decode + validate under a policy)
//	         ↓
//	    [chart/waterfall] package (running layout + scales)
//	         ↓
//	    [chart/selection] package (keyed join into an [svg] tree)
//	         ↓
//	    SVG/PDF/PNG/JSON output
//
// # Quick Start
//
// Render a chart directly:
//
//	import (
//	    "github.com/matzehuels/cascade/pkg/chart"
//	    "github.com/matzehuels/cascade/pkg/chart/waterfall"
//	    "github.com/matzehuels/cascade/pkg/model"
//	)
//
//	m, _ := model.Load("sales.yaml")
//	c := waterfall.New(m, chart.NewFrame(800, 600), waterfall.WithAxes(5))
//	svg, _ := c.Render()
//
// Or run the cached pipeline:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	result, _ := runner.Execute(ctx, m, pipeline.Options{Formats: []string{"svg", "json"}})
//
// # Main Packages
//
// ## Chart
//
// [chart/waterfall] - The layout engine and the reusable component. The layout
// keeps one running total across all records and series; the component owns
// memoized scales and redraws through data joins when its model or size
// changes.
//
// [chart/scale] - Band, point, linear, and ordinal scales, plus color schemes.
//
// [chart/selection] - Enter/update/exit reconciliation of data against the
// children of an [svg] element.
//
// [reactive] - Versioned values and memoized computations.
//
// [svg] - A small mutable element tree with deterministic serialization.
//
// ## Pipeline
//
// [pipeline] - Options, validation, layout export, and rendering used by both
// the CLI and the HTTP server. Ensures consistent behavior across entry points.
//
// [render] - SVG to PDF/PNG conversion through rsvg-convert.
//
// ## Infrastructure
//
// [cache] - File, Redis, and null caches behind one interface, plus the
// keyer that hashes render options into cache keys.
//
// [observability] - Hook registry for pipeline, cache, and HTTP events, with a
// Prometheus implementation.
//
// [errors] - Coded errors and input validation.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/chart/waterfall/...    # Specific package
//	go test -run Example                 # Examples only
//	go test -tags integration ./pkg/...  # Include integration tests
//
// [model]: https://pkg.go.dev/github.com/matzehuels/cascade/pkg/model
// [chart]: https://pkg.go.dev/github.com/matzehuels/cascade/pkg/chart
// [chart/waterfall]: https://pkg.go.dev/github.com/matzehuels/cascade/pkg/chart/waterfall
// [chart/scale]: https://pkg.go.dev/github.com/matzehuels/cascade/pkg/chart/scale
// [chart/selection]: https://pkg.go.dev/github.com/matzehuels/cascade/pkg/chart/selection
// [reactive]: https://pkg.go.dev/github.com/matzehuels/cascade/pkg/reactive
// [svg]: https://pkg.go.dev/github.com/matzehuels/cascade/pkg/svg
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/cascade/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/matzehuels/cascade/pkg/render
// [cache]: https://pkg.go.dev/github.com/matzehuels/cascade/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/cascade/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/cascade/pkg/errors
package pkg
