package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/cascade/pkg/cache"
	"github.com/matzehuels/cascade/pkg/chart"
	"github.com/matzehuels/cascade/pkg/errors"
	"github.com/matzehuels/cascade/pkg/model"
	"github.com/matzehuels/cascade/pkg/observability"
)

func sampleModel() *model.Model {
	return &model.Model{
		Data: []model.Record{
			{"cat": "a", "s1": 5, "s2": -2},
			{"cat": "b", "s1": 3, "s2": 1},
		},
		Series: []string{"s1", "s2"},
		Key:    "cat",
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("zero options should validate: %v", err)
	}
	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("size = %vx%v", opts.Width, opts.Height)
	}
	if *opts.Margin != chart.Uniform(chart.DefaultMargin) {
		t.Errorf("margin = %v", *opts.Margin)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("formats = %v", opts.Formats)
	}
	if opts.Policy != "propagate" || opts.PolicyValue() != model.PolicyPropagate {
		t.Errorf("policy = %q", opts.Policy)
	}
	if opts.Colors[0] != "category10" {
		t.Errorf("colors = %v", opts.Colors)
	}
	if opts.Logger == nil {
		t.Error("logger should default to a discard logger")
	}
}

func TestOptionsValidateForRender(t *testing.T) {
	zero := chart.Margin{}
	negative := chart.Margin{Top: -1}
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"bad format", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"negative width", Options{Width: -10}, errors.ErrCodeInvalidDimensions},
		{"negative margin", Options{Margin: &negative}, errors.ErrCodeInvalidDimensions},
		{"bad color", Options{Colors: []string{"#zzzzzz"}}, errors.ErrCodeInvalidColor},
		{"bad policy", Options{Policy: "lenient"}, errors.ErrCodeInvalidInput},
		{"zero margin ok", Options{Margin: &zero}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForRender()
			if tt.code == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestOptionsNormalizesColors(t *testing.T) {
	opts := Options{Colors: []string{"#F00", " #00ff00 "}}
	if err := opts.ValidateForRender(); err != nil {
		t.Fatal(err)
	}
	if opts.Colors[0] != "#ff0000" || opts.Colors[1] != "#00ff00" {
		t.Errorf("colors = %v", opts.Colors)
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Axes: true, Ticks: 5}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	svg := opts.ArtifactKeyOpts(FormatSVG)
	png := opts.ArtifactKeyOpts(FormatPNG)
	if svg.Scale != 0 || png.Scale != DefaultScale {
		t.Errorf("scale should only key PNG output: svg %v, png %v", svg.Scale, png.Scale)
	}
	if svg.Ticks != 5 || svg.Margin != [4]float64{60, 60, 60, 60} {
		t.Errorf("svg key opts = %+v", svg)
	}
}

func TestGenerateLayout(t *testing.T) {
	l, err := GenerateLayout(sampleModel(), Options{})
	if err != nil {
		t.Fatalf("GenerateLayout: %v", err)
	}
	if len(l.Steps) != 4 {
		t.Fatalf("steps = %d, want 4", len(l.Steps))
	}
	last := l.Steps[3]
	if last.Key != "b" || last.Series != "s2" || last.Start != 6 || last.End != 7 || last.Change != 1 {
		t.Errorf("last step = %+v", last)
	}
	if l.Extent != [2]Number{0, 7} {
		t.Errorf("extent = %v", l.Extent)
	}
	if len(l.Totals) != 2 || l.Totals[0].Total != 3 || l.Totals[1].Total != 7 {
		t.Errorf("totals = %+v", l.Totals)
	}
}

func TestGenerateLayoutDuplicateSeries(t *testing.T) {
	m := &model.Model{
		Data:   []model.Record{{"cat": "a", "s": 2}, {"cat": "b", "s": 1}},
		Series: []string{"s", "s"},
		Key:    "cat",
	}
	l, err := GenerateLayout(m, Options{})
	if err != nil {
		t.Fatalf("GenerateLayout: %v", err)
	}
	if len(l.Steps) != 4 {
		t.Fatalf("steps = %d, want 4", len(l.Steps))
	}
	for i := 1; i < len(l.Steps); i++ {
		if l.Steps[i].Start != l.Steps[i-1].End {
			t.Errorf("step %d starts at %v, previous ended at %v", i, l.Steps[i].Start, l.Steps[i-1].End)
		}
	}
	if l.Extent != [2]Number{0, 6} {
		t.Errorf("extent = %v, want [0 6]", l.Extent)
	}

	_, err = GenerateLayout(m, Options{Policy: "strict"})
	if !errors.Is(err, errors.ErrCodeInvalidField) {
		t.Errorf("strict error = %v, want INVALID_FIELD", err)
	}
}

func TestLayoutJSONWithNaN(t *testing.T) {
	m := sampleModel()
	m.Data[0]["s2"] = "oops"
	l, err := GenerateLayout(m, Options{})
	if err != nil {
		t.Fatalf("GenerateLayout: %v", err)
	}
	data, err := MarshalLayout(l)
	if err != nil {
		t.Fatalf("MarshalLayout: %v", err)
	}
	if !bytes.Contains(data, []byte(`"change": null`)) {
		t.Errorf("NaN should encode as null:\n%s", data)
	}

	back, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if !math.IsNaN(back.Steps[1].Change.Float()) || back.Steps[0].End != 5 {
		t.Errorf("decoded steps = %+v", back.Steps[:2])
	}
}

func TestGenerateLayoutStrict(t *testing.T) {
	m := sampleModel()
	delete(m.Data[1], "s1")
	_, err := GenerateLayout(m, Options{Policy: "strict"})
	if !errors.Is(err, errors.ErrCodeMissingField) {
		t.Errorf("error = %v, want MISSING_FIELD", err)
	}
	if !strings.Contains(errors.UserMessage(err), "record 1") {
		t.Errorf("message should name the record: %q", errors.UserMessage(err))
	}
}

func TestLoadModel(t *testing.T) {
	data := []byte(`{"data": [{"cat": "a", "s1": 1}], "series": ["s1"], "key": "cat"}`)
	m, err := LoadModel(data, model.FormatJSON, Options{})
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	if len(m.Data) != 1 || m.Key != "cat" {
		t.Errorf("model = %+v", m)
	}

	_, err = LoadModel([]byte(`{"series": ["s1"]}`), model.FormatJSON, Options{})
	if !errors.Is(err, errors.ErrCodeMissingModel) {
		t.Errorf("model without data: error = %v", err)
	}
}

func TestRenderSVGIsStable(t *testing.T) {
	a, err := Render(context.Background(), sampleModel(), nil, Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b, err := Render(context.Background(), sampleModel(), nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a[FormatSVG], b[FormatSVG]) {
		t.Error("same model should render identical SVG")
	}
	if !bytes.Contains(a[FormatSVG], []byte(`id="waterfall-`)) {
		t.Error("root id missing")
	}
}

func TestRenderJSON(t *testing.T) {
	out, err := Render(context.Background(), sampleModel(), nil, Options{Formats: []string{FormatJSON}})
	if err != nil {
		t.Fatal(err)
	}
	var l Layout
	if err := json.Unmarshal(out[FormatJSON], &l); err != nil {
		t.Fatalf("json output: %v", err)
	}
	if len(l.Steps) != 4 {
		t.Errorf("steps = %d", len(l.Steps))
	}
}

// recordingHooks counts cache and pipeline events.
type recordingHooks struct {
	observability.NoopPipelineHooks
	mu                  sync.Mutex
	hits, misses, sets  int
	layouts, renders    int
	lastRenderedFormats []string
}

func (h *recordingHooks) OnCacheHit(context.Context, string)  { h.mu.Lock(); h.hits++; h.mu.Unlock() }
func (h *recordingHooks) OnCacheMiss(context.Context, string) { h.mu.Lock(); h.misses++; h.mu.Unlock() }
func (h *recordingHooks) OnCacheSet(context.Context, string, int) {
	h.mu.Lock()
	h.sets++
	h.mu.Unlock()
}
func (h *recordingHooks) OnLayoutComplete(context.Context, time.Duration, error) {
	h.mu.Lock()
	h.layouts++
	h.mu.Unlock()
}
func (h *recordingHooks) OnRenderComplete(_ context.Context, formats []string, _ time.Duration, _ error) {
	h.mu.Lock()
	h.renders++
	h.lastRenderedFormats = formats
	h.mu.Unlock()
}

func TestRunnerCaches(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	defer r.Close()
	ctx := context.Background()
	opts := Options{Formats: []string{FormatSVG, FormatJSON}}

	first, err := r.Execute(ctx, sampleModel(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Error("first run should miss the cache")
	}
	if first.Stats.Records != 2 || first.Stats.Series != 2 {
		t.Errorf("stats = %+v", first.Stats)
	}

	second, err := r.Execute(ctx, sampleModel(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run cache info = %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached SVG differs")
	}
	if hooks.layouts != 1 || hooks.renders != 1 {
		t.Errorf("layouts = %d, renders = %d, want 1 each", hooks.layouts, hooks.renders)
	}
	if hooks.sets != 3 || hooks.hits != 3 {
		t.Errorf("cache sets = %d, hits = %d, want 3 each", hooks.sets, hooks.hits)
	}

	m := sampleModel()
	m.Data[0]["s1"] = 6
	if _, err := r.Execute(ctx, m, opts); err != nil {
		t.Fatal(err)
	}
	if hooks.layouts != 2 {
		t.Errorf("changed model should recompute the layout")
	}
}

func TestRunnerNonFiniteValues(t *testing.T) {
	tests := []struct {
		name   string
		format model.Format
		data   string
	}{
		{"yaml nan", model.FormatYAML, "key: cat\nseries: [s1]\ndata:\n  - {cat: a, s1: 1}\n  - {cat: b, s1: .nan}\n  - {cat: c, s1: 2}\n"},
		{"toml inf", model.FormatTOML, "key = \"cat\"\nseries = [\"s1\"]\n[[data]]\ncat = \"a\"\ns1 = 1\n[[data]]\ncat = \"b\"\ns1 = inf\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := LoadModel([]byte(tt.data), tt.format, Options{})
			if err != nil {
				t.Fatalf("LoadModel: %v", err)
			}
			hash, err := ModelHash(m)
			if err != nil || hash == "" {
				t.Fatalf("ModelHash() = %q, %v", hash, err)
			}

			fc, _ := cache.NewFileCache(t.TempDir())
			r := NewRunner(fc, nil, nil)
			defer r.Close()
			opts := Options{Formats: []string{FormatSVG, FormatJSON}}
			res, err := r.Execute(context.Background(), m, opts)
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if len(res.Artifacts[FormatSVG]) == 0 {
				t.Error("missing SVG artifact")
			}
			if first := res.Layout.Steps[0]; first.End != 1 {
				t.Errorf("first step = %+v", first)
			}
			last := res.Layout.Steps[len(res.Layout.Steps)-1].End.Float()
			if !math.IsNaN(last) && !math.IsInf(last, 0) {
				t.Errorf("last end = %v, want a non-finite total", last)
			}

			again, err := r.Execute(context.Background(), m, opts)
			if err != nil {
				t.Fatal(err)
			}
			if !again.CacheInfo.RenderHit {
				t.Error("second run should hit the cache")
			}
		})
	}
}

func TestRunnerRefresh(t *testing.T) {
	fc, _ := cache.NewFileCache(t.TempDir())
	r := NewRunner(fc, nil, nil)
	ctx := context.Background()

	if _, err := r.Execute(ctx, sampleModel(), Options{}); err != nil {
		t.Fatal(err)
	}
	res, err := r.Execute(ctx, sampleModel(), Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Error("refresh should bypass cache reads")
	}
}

func TestRunnerPartialRender(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	fc, _ := cache.NewFileCache(t.TempDir())
	r := NewRunner(fc, nil, nil)
	ctx := context.Background()
	m := sampleModel()

	if _, err := r.Render(ctx, m, nil, Options{Formats: []string{FormatSVG}}); err != nil {
		t.Fatal(err)
	}
	_, hit, err := r.RenderWithCacheInfo(ctx, m, nil, Options{Formats: []string{FormatSVG, FormatJSON}})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("hit should be false when a format was rendered")
	}
	if len(hooks.lastRenderedFormats) != 1 || hooks.lastRenderedFormats[0] != FormatJSON {
		t.Errorf("rendered formats = %v, want [json]", hooks.lastRenderedFormats)
	}
}

func TestRunnerInvalidOptions(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), sampleModel(), Options{Formats: []string{"bmp"}})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}
