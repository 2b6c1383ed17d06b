package selection

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/cascade/pkg/model"
)

// KeyFunc returns the identity of a datum at position i.
type KeyFunc func(datum any, i int) string

// ByIndex matches data and elements by position.
func ByIndex(_ any, i int) string { return strconv.Itoa(i) }

// ByValue matches data whose formatted values are equal.
func ByValue(datum any, _ int) string { return fmt.Sprint(datum) }

// ByField matches records on the value of field. Data that are not records
// fall back to their formatted value.
func ByField(field string) KeyFunc {
	return func(datum any, i int) string {
		switch r := datum.(type) {
		case model.Record:
			k, _ := model.KeyString(r, field, model.PolicyPropagate)
			return k
		case map[string]any:
			k, _ := model.KeyString(model.Record(r), field, model.PolicyPropagate)
			return k
		default:
			return ByValue(datum, i)
		}
	}
}
