package scale

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/cascade/pkg/errors"
)

// Built-in categorical color schemes.
var schemes = map[string][]string{
	"category10": {
		"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
		"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
	},
	"category20": {
		"#1f77b4", "#aec7e8", "#ff7f0e", "#ffbb78", "#2ca02c",
		"#98df8a", "#d62728", "#ff9896", "#9467bd", "#c5b0d5",
		"#8c564b", "#c49c94", "#e377c2", "#f7b6d2", "#7f7f7f",
		"#c7c7c7", "#bcbd22", "#dbdb8d", "#17becf", "#9edae5",
	},
	"category20b": {
		"#393b79", "#5254a3", "#6b6ecf", "#9c9ede", "#637939",
		"#8ca252", "#b5cf6b", "#cedb9c", "#8c6d31", "#bd9e39",
		"#e7ba52", "#e7cb94", "#843c39", "#ad494a", "#d6616b",
		"#e7969c", "#7b4173", "#a55194", "#ce6dbd", "#de9ed6",
	},
	"category20c": {
		"#3182bd", "#6baed6", "#9ecae1", "#c6dbef", "#e6550d",
		"#fd8d3c", "#fdae6b", "#fdd0a2", "#31a354", "#74c476",
		"#a1d99b", "#c7e9c0", "#756bb1", "#9e9ac8", "#bcbddc",
		"#dadaeb", "#636363", "#969696", "#bdbdbd", "#d9d9d9",
	},
}

// DefaultScheme is the scheme used when no colors are configured.
const DefaultScheme = "category10"

// Scheme returns a fresh ordinal scale for a built-in scheme.
func Scheme(name string) (*Ordinal, bool) {
	colors, ok := schemes[name]
	if !ok {
		return nil, false
	}
	o := NewOrdinal(colors)
	o.named = name
	return o, true
}

// IsScheme reports whether name is a built-in scheme.
func IsScheme(name string) bool {
	_, ok := schemes[name]
	return ok
}

// ColorScale builds a category-to-color scale.
//
// If the first entry names a built-in scheme, that scheme is returned and the
// remaining entries are ignored. Otherwise the entries themselves become the
// scale's range. Colors are not validated here; see [ParseColors].
func ColorScale(colors []string) *Ordinal {
	if len(colors) > 0 {
		if s, ok := Scheme(colors[0]); ok {
			return s
		}
	}
	return NewOrdinal(colors)
}

// ParseColors checks that colors is either a scheme reference or a list of
// hex colors, and returns the normalized "#rrggbb" forms. A scheme reference
// is returned unchanged.
func ParseColors(colors []string) ([]string, error) {
	if len(colors) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidColor, "no colors given")
	}
	if IsScheme(colors[0]) {
		return colors[:1], nil
	}
	out := make([]string, len(colors))
	for i, c := range colors {
		parsed, err := colorful.Hex(strings.TrimSpace(c))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidColor, err, "color %q", c)
		}
		out[i] = parsed.Hex()
	}
	return out, nil
}
