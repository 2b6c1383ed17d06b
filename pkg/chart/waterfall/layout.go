package waterfall

import (
	"math"
	"strconv"

	"github.com/matzehuels/cascade/pkg/model"
)

// Entry is the vertical span of one series within one category.
type Entry struct {
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Change float64 `json:"change"`
}

// Layout maps category key to series name to entry.
type Layout map[string]map[string]Entry

// Step is one layout entry with its position in the traversal.
type Step struct {
	Key    string `json:"key"`
	Series string `json:"series"`
	Entry
}

// ComputeLayout lays out records as one continuous waterfall.
//
// A single running total starts at 0 and advances through every
// (record, series) pair in order; it is never reset between records. Each
// entry spans from the total before its change to the total after it.
//
// Records that share a category key overwrite the earlier entry while the
// total still advances through both. When key is empty records are keyed
// by position. Missing or non-numeric values become NaN under
// PolicyPropagate, which carries into every later entry.
func ComputeLayout(records []model.Record, series []string, key string, p model.Policy) (Layout, error) {
	keys, err := CategoryKeys(records, key, p)
	if err != nil {
		return nil, err
	}
	steps, err := Steps(records, series, key, p)
	if err != nil {
		return nil, err
	}
	layout := make(Layout, len(records))
	for _, k := range keys {
		layout[k] = make(map[string]Entry, len(series))
	}
	for _, s := range steps {
		layout[s.Key][s.Series] = s.Entry
	}
	return layout, nil
}

// Steps returns one step per (record, series) pair in traversal order.
// Unlike the Layout map it keeps every step when category keys or series
// names repeat, so consecutive steps always chain end to start.
func Steps(records []model.Record, series []string, key string, p model.Policy) ([]Step, error) {
	steps := make([]Step, 0, len(records)*len(series))
	base := 0.0
	for i, r := range records {
		k, err := CategoryKey(r, i, key, p)
		if err != nil {
			return nil, err
		}
		for _, s := range series {
			change, err := model.Value(r, s, p)
			if err != nil {
				return nil, model.AtRecord(i, err)
			}
			steps = append(steps, Step{
				Key:    k,
				Series: s,
				Entry:  Entry{Start: base, End: base + change, Change: change},
			})
			base += change
		}
	}
	return steps, nil
}

// ComputeExtent returns the lowest and highest running total reached over
// the same traversal as ComputeLayout. The extent always includes 0.
func ComputeExtent(records []model.Record, series []string, p model.Policy) (lo, hi float64, err error) {
	base := 0.0
	for i, r := range records {
		for _, s := range series {
			change, err := model.Value(r, s, p)
			if err != nil {
				return 0, 0, model.AtRecord(i, err)
			}
			base += change
			lo = math.Min(lo, base)
			hi = math.Max(hi, base)
		}
	}
	return lo, hi, nil
}

// CategoryKey returns the category of record i: its key field, or its
// position when key is empty. Under PolicyPropagate it never fails; a
// record without the key field falls into the "undefined" category.
func CategoryKey(r model.Record, i int, key string, p model.Policy) (string, error) {
	if key == "" {
		return strconv.Itoa(i), nil
	}
	k, err := model.KeyString(r, key, p)
	if err != nil {
		return "", model.AtRecord(i, err)
	}
	return k, nil
}

// CategoryKeys returns CategoryKey for every record, duplicates included.
func CategoryKeys(records []model.Record, key string, p model.Policy) ([]string, error) {
	keys := make([]string, len(records))
	for i, r := range records {
		k, err := CategoryKey(r, i, key, p)
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}
	return keys, nil
}
