package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/cascade/pkg/errors"
)

// Record is one row of chart input keyed by field name.
type Record map[string]any

// Model is the declarative chart input.
type Model struct {
	Data   []Record `json:"data" yaml:"data" toml:"data"`
	Series []string `json:"series" yaml:"series" toml:"series"`
	Key    string   `json:"key,omitempty" yaml:"key,omitempty" toml:"key,omitempty"`
}

// Policy selects how malformed values are handled.
type Policy int

const (
	// PolicyPropagate turns missing or non-numeric values into NaN.
	PolicyPropagate Policy = iota
	// PolicyStrict reports missing or non-numeric values as errors.
	PolicyStrict
)

// String returns the policy name used in flags and cache keys.
func (p Policy) String() string {
	if p == PolicyStrict {
		return "strict"
	}
	return "propagate"
}

// ParsePolicy parses "strict" or "propagate" (empty means propagate).
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "propagate":
		return PolicyPropagate, nil
	case "strict":
		return PolicyStrict, nil
	default:
		return PolicyPropagate, errors.New(errors.ErrCodeInvalidInput, "invalid policy %q (must be 'propagate' or 'strict')", s)
	}
}

// undefinedKey is the category name used for records without a key field.
const undefinedKey = "undefined"

// KeyString returns the category name of r under keyField.
//
// Records without the field fall into the "undefined" category under
// PolicyPropagate and fail under PolicyStrict.
func KeyString(r Record, keyField string, p Policy) (string, error) {
	v, ok := r[keyField]
	if !ok || v == nil {
		if p == PolicyStrict {
			return "", errors.New(errors.ErrCodeMissingField, "record has no key field %q", keyField)
		}
		return undefinedKey, nil
	}
	return formatKey(v), nil
}

func formatKey(v any) string {
	switch k := v.(type) {
	case string:
		return k
	case float64:
		return strconv.FormatFloat(k, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(k), 'f', -1, 32)
	case json.Number:
		return k.String()
	default:
		return fmt.Sprint(k)
	}
}

// Value reads the numeric value of field from r.
func Value(r Record, field string, p Policy) (float64, error) {
	raw, ok := r[field]
	if !ok || raw == nil {
		if p == PolicyStrict {
			return math.NaN(), errors.New(errors.ErrCodeMissingField, "record has no series field %q", field)
		}
		return math.NaN(), nil
	}
	v, ok := toFloat(raw)
	if !ok {
		if p == PolicyStrict {
			return math.NaN(), errors.New(errors.ErrCodeNonNumeric, "series field %q is not numeric: %v", field, raw)
		}
		return math.NaN(), nil
	}
	return v, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Validate checks the model shape. Data must be non-nil and the key name
// must be well formed. Under PolicyStrict series names must also be
// non-empty and unique, and every record must carry the key field (when one
// is set) and numeric values for every series. Under PolicyPropagate a
// repeated series advances the running total once per occurrence.
func (m *Model) Validate(p Policy) error {
	if m == nil || m.Data == nil {
		return errors.New(errors.ErrCodeMissingModel, "model has no data")
	}
	if m.Key != "" {
		if err := errors.ValidateFieldName(m.Key); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidField, err, "key")
		}
	}
	if p != PolicyStrict {
		return nil
	}
	if err := errors.ValidateSeries(m.Series); err != nil {
		return err
	}
	for i, r := range m.Data {
		if m.Key != "" {
			if _, err := KeyString(r, m.Key, p); err != nil {
				return AtRecord(i, err)
			}
		}
		for _, s := range m.Series {
			if _, err := Value(r, s, p); err != nil {
				return AtRecord(i, err)
			}
		}
	}
	return nil
}

// Keys returns each record's category name in record order, duplicates
// included.
func (m *Model) Keys(p Policy) ([]string, error) {
	keys := make([]string, len(m.Data))
	for i, r := range m.Data {
		k, err := KeyString(r, m.Key, p)
		if err != nil {
			return nil, AtRecord(i, err)
		}
		keys[i] = k
	}
	return keys, nil
}

// AtRecord prefixes a coded error with the position of record i, keeping
// its code.
func AtRecord(i int, err error) error {
	return errors.New(errors.GetCode(err), "record %d: %s", i, errors.UserMessage(err))
}
