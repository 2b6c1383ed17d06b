package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/matzehuels/cascade/pkg/cache"
	"github.com/matzehuels/cascade/pkg/chart/scale"
	"github.com/matzehuels/cascade/pkg/chart/waterfall"
	"github.com/matzehuels/cascade/pkg/model"
	"github.com/matzehuels/cascade/pkg/render"
)

// ModelHash returns the content hash of m's canonical JSON form.
func ModelHash(m *model.Model) (string, error) {
	data, err := model.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("serialize model: %w", err)
	}
	return cache.Hash(data), nil
}

// ElementID derives a stable chart root id from a model hash, so that the
// same model always renders to the same bytes.
func ElementID(modelHash string) string {
	return "waterfall-" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(modelHash)).String()
}

// Render generates output artifacts in the requested formats.
// The layout is only used for the JSON format.
func Render(ctx context.Context, m *model.Model, l *Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	id := opts.ElementID
	if id == "" {
		hash, err := ModelHash(m)
		if err != nil {
			return nil, err
		}
		id = ElementID(hash)
	}

	// PNG and PDF converters rasterize the first frame, so they always get
	// the static drawing.
	drawn := map[bool][]byte{}
	drawSVG := func(grow bool) ([]byte, error) {
		if svg, ok := drawn[grow]; ok {
			return svg, nil
		}
		o := opts
		o.Grow = grow
		c := waterfall.New(m, opts.Frame(), componentOptions(o, id)...)
		out, err := c.Render()
		if err != nil {
			return nil, err
		}
		drawn[grow] = out
		return out, nil
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = drawSVG(opts.Grow)
		case FormatPNG:
			if data, err = drawSVG(false); err == nil {
				data, err = render.ToPNG(ctx, data, opts.Scale)
			}
		case FormatPDF:
			if data, err = drawSVG(false); err == nil {
				data, err = render.ToPDF(ctx, data)
			}
		case FormatJSON:
			if l == nil {
				if l, err = GenerateLayout(m, opts); err != nil {
					break
				}
			}
			data, err = MarshalLayout(l)
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		opts.Logger.Debug("rendered artifact", "format", format, "bytes", len(data))
		artifacts[format] = data
	}

	return artifacts, nil
}

func componentOptions(opts Options, id string) []waterfall.Option {
	out := []waterfall.Option{
		waterfall.WithElementID(id),
		waterfall.WithPolicy(opts.PolicyValue()),
		waterfall.WithStroke(scale.ColorScale(opts.Colors)),
	}
	if opts.Axes {
		out = append(out, waterfall.WithAxes(opts.Ticks))
	}
	if opts.Grow {
		out = append(out, waterfall.WithGrowFromZero(0))
	}
	return out
}
