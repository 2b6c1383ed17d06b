package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cascade/pkg/chart"
	"github.com/matzehuels/cascade/pkg/errors"
	"github.com/matzehuels/cascade/pkg/model"
	"github.com/matzehuels/cascade/pkg/pipeline"
)

// renderFlags holds flags that do not map one-to-one onto pipeline.Options.
type renderFlags struct {
	output  string
	formats string
	margin  string
	colors  string
	strict  bool
	noCache bool
}

// renderCommand creates the render command for writing chart files.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [model]",
		Short: "Render a waterfall chart from a model file",
		Long: `Render a waterfall chart from a model file.

The model is a JSON, JSONC, YAML or TOML file with the records to plot, the
series to stack, and the key field naming each category:

  {
    "data":   [{"quarter": "Q1", "sales": 5, "costs": -2}],
    "series": ["sales", "costs"],
    "key":    "quarter"
  }

Output goes next to the input file unless -o is given. When several formats
are requested, -o is used as the base path.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.resolveRenderOptions(cmd, &flags, &opts); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): svg (default), json, pdf, png (comma-separated)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results and recompute")
	addChartFlags(cmd, &flags, &opts)

	return cmd
}

// addChartFlags registers the flags shared by render and layout.
func addChartFlags(cmd *cobra.Command, flags *renderFlags, opts *pipeline.Options) {
	cmd.Flags().Float64Var(&opts.Width, "width", pipeline.DefaultWidth, "outer chart width")
	cmd.Flags().Float64Var(&opts.Height, "height", pipeline.DefaultHeight, "outer chart height")
	cmd.Flags().StringVar(&flags.margin, "margin", "", `margin as "all", "vertical,horizontal" or "top,right,bottom,left"`)
	cmd.Flags().StringVar(&flags.colors, "colors", "", "series colors: a scheme name (category10) or comma-separated hex colors")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "fail on missing or non-numeric values instead of propagating NaN")
	cmd.Flags().BoolVar(&opts.Axes, "axes", false, "draw x and y axes")
	cmd.Flags().IntVar(&opts.Ticks, "ticks", 0, "approximate number of y axis ticks (with --axes)")
	cmd.Flags().BoolVar(&opts.Grow, "grow", false, "animate bars growing from zero")
	cmd.Flags().Float64Var(&opts.Scale, "scale", pipeline.DefaultScale, "PNG resolution multiplier")
}

// resolveRenderOptions merges flags, the config file, and pipeline defaults.
func (c *CLI) resolveRenderOptions(cmd *cobra.Command, flags *renderFlags, opts *pipeline.Options) error {
	opts.Formats = parseFormats(flags.formats)
	if flags.margin != "" {
		m, err := parseMargin(flags.margin)
		if err != nil {
			return err
		}
		opts.Margin = &m
	}
	if flags.colors != "" {
		opts.Colors = strings.Split(flags.colors, ",")
	}
	if flags.strict {
		opts.Policy = model.PolicyStrict.String()
	}

	cfg, err := c.config()
	if err != nil {
		return err
	}
	applyRenderConfig(cmd, cfg.Render, opts)

	opts.Logger = c.Logger
	return opts.ValidateAndSetDefaults()
}

// parseMargin parses one to four comma-separated side widths in CSS order.
func parseMargin(s string) (chart.Margin, error) {
	parts := strings.Split(s, ",")
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return chart.Margin{}, errors.Wrap(errors.ErrCodeInvalidDimensions, err, "margin %q", s)
		}
		vals[i] = v
	}

	var m chart.Margin
	switch len(vals) {
	case 1:
		m = chart.Uniform(vals[0])
	case 2:
		m = chart.Margin{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}
	case 3:
		m = chart.Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}
	case 4:
		m = chart.Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}
	default:
		return chart.Margin{}, errors.New(errors.ErrCodeInvalidDimensions, "margin %q has %d values (want 1 to 4)", s, len(vals))
	}
	return m, pipeline.ValidateMargin(m)
}

// runRender loads the model, runs the pipeline, and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, flags renderFlags) error {
	m, err := loadModel(input, opts)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spinner.Start()

	result, err := runner.Execute(ctx, m, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(result.Artifacts, opts.Formats, input, flags.output)
	if err != nil {
		return err
	}

	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.Records, result.Stats.Series, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	return nil
}

// writeArtifacts writes each format to disk and returns the written paths in
// format order.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	var paths []string
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := outputPath(output, input, format, len(formats) == 1)
		if err := errors.ValidateOutputPath(path); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// outputPath picks the file for one format. A single format writes to output
// as given; otherwise output is a base path that gets the format extension.
// JSON layouts get a ".layout.json" suffix so they never replace a JSON model.
func outputPath(output, input, format string, single bool) string {
	if single && output != "" {
		return output
	}
	ext := "." + format
	if format == pipeline.FormatJSON {
		ext = ".layout.json"
	}
	return basePath(output, input) + ext
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
