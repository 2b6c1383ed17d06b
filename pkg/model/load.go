package model

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/cascade/pkg/errors"
)

// Format identifies a model file encoding.
type Format string

// Supported model encodings.
const (
	FormatJSON  Format = "json"
	FormatJSONC Format = "jsonc"
	FormatYAML  Format = "yaml"
	FormatTOML  Format = "toml"
)

// FormatFromPath infers the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".jsonc":
		return FormatJSONC, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported model file %q (want .json, .jsonc, .yaml, .yml or .toml)", filepath.Base(path))
	}
}

// Load reads and decodes a model file.
func Load(path string) (*Model, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "model %s", path)
	}
	if err != nil {
		return nil, err
	}
	m, err := Parse(data, format)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "%s", path)
	}
	return m, nil
}

// Parse decodes model bytes in the given encoding.
//
// JSON numbers are kept as json.Number so integer values survive exactly.
// JSONC accepts // and /* */ comments and trailing commas.
func Parse(data []byte, format Format) (*Model, error) {
	var m Model
	switch format {
	case FormatJSON, "":
		if err := decodeJSON(data, &m); err != nil {
			return nil, err
		}
	case FormatJSONC:
		if err := decodeJSON(jsonc.ToJSON(data), &m); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "decode yaml")
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "decode toml")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported model format %q", format)
	}
	return &m, nil
}

func decodeJSON(data []byte, m *Model) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(m); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidModel, err, "decode json")
	}
	return nil
}

// Marshal encodes the model as canonical JSON. Map keys are sorted, so the
// output is stable and usable as a cache key. Non-finite numbers, which
// YAML and TOML can carry but JSON cannot, encode as {"$float": "NaN"},
// {"$float": "+Inf"} or {"$float": "-Inf"}.
func Marshal(m *Model) ([]byte, error) {
	c := *m
	if m.Data != nil {
		c.Data = make([]Record, len(m.Data))
		for i, r := range m.Data {
			c.Data[i] = Record(canonicalMap(r))
		}
	}
	return json.Marshal(&c)
}

func canonicalMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = canonicalValue(v)
	}
	return out
}

func canonicalValue(v any) any {
	switch x := v.(type) {
	case float64:
		return canonicalFloat(x, v)
	case float32:
		return canonicalFloat(float64(x), v)
	case Record:
		return canonicalMap(x)
	case map[string]any:
		return canonicalMap(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = canonicalValue(e)
		}
		return out
	default:
		return v
	}
}

func canonicalFloat(f float64, v any) any {
	switch {
	case math.IsNaN(f):
		return map[string]string{"$float": "NaN"}
	case math.IsInf(f, 1):
		return map[string]string{"$float": "+Inf"}
	case math.IsInf(f, -1):
		return map[string]string{"$float": "-Inf"}
	default:
		return v
	}
}
