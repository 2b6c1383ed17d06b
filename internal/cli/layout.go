package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cascade/pkg/model"
	"github.com/matzehuels/cascade/pkg/pipeline"
)

// layoutCommand creates the layout command for inspecting computed bars.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		strict  bool
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [model]",
		Short: "Compute the waterfall layout of a model",
		Long: `Compute the waterfall layout of a model.

Every record contributes one bar per series. Each bar starts where the
previous bar ended, across records and series alike. The layout command
prints those bars as a table, or writes them as JSON with -o (the same
document as 'render -f json').

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strict {
				opts.Policy = model.PolicyStrict.String()
			}
			cfg, err := c.config()
			if err != nil {
				return err
			}
			applyRenderConfig(cmd, cfg.Render, &opts)
			opts.Logger = c.Logger
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the layout as JSON to this file")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on missing or non-numeric values instead of propagating NaN")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results and recompute")

	return cmd
}

// runLayout loads the model, computes the layout, and prints or writes it.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	m, err := loadModel(input, opts)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	layout, cacheHit, err := runner.ComputeLayoutWithCacheInfo(ctx, m, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}

	if output == "" {
		fmt.Println(layoutTable(layout))
		printStats(len(m.Data), len(m.Series), cacheHit)
		return nil
	}

	data, err := pipeline.MarshalLayout(layout)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(len(m.Data), len(m.Series), cacheHit)
	printNewline()
	printNextStep("Render", appName+" render "+input)
	return nil
}

// layoutTable renders the layout steps followed by the value extent.
func layoutTable(l *pipeline.Layout) string {
	rows := make([][]string, 0, len(l.Steps))
	for _, s := range l.Steps {
		rows = append(rows, []string{
			s.Key,
			s.Series,
			formatNumber(s.Start),
			formatNumber(s.End),
			formatChange(s.Change),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Key", "Series", "Start", "End", "Change").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col < 2 {
				return cellStyle.Foreground(colorWhite)
			}
			if col == 4 && row < len(l.Steps) {
				switch change := l.Steps[row].Change.Float(); {
				case change > 0:
					return cellStyle.Foreground(colorGreen).Align(lipgloss.Right)
				case change < 0:
					return cellStyle.Foreground(colorRed).Align(lipgloss.Right)
				}
			}
			return cellStyle.Align(lipgloss.Right)
		})

	extent := fmt.Sprintf("extent [%s, %s]", formatNumber(l.Extent[0]), formatNumber(l.Extent[1]))
	return t.Render() + "\n" + StyleDim.Render(extent)
}

func formatNumber(n pipeline.Number) string {
	return strconv.FormatFloat(n.Float(), 'g', -1, 64)
}

func formatChange(n pipeline.Number) string {
	s := formatNumber(n)
	if n.Float() > 0 {
		return "+" + s
	}
	return s
}
