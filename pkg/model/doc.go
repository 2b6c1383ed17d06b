// Package model defines the chart input: an ordered table of records, the
// series fields to accumulate, and the field that names each record's
// category.
//
// # Value policy
//
// Records are loosely typed maps decoded from JSON, JSONC, YAML or TOML. How a
// missing or non-numeric series value is treated is controlled by [Policy]:
//
//   - [PolicyPropagate] (the default) turns it into NaN, which then flows
//     through every running total computed after it.
//   - [PolicyStrict] fails with a coded error naming the record and field.
//
// # Loading
//
//	m, err := model.Load("revenue.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := m.Validate(model.PolicyStrict); err != nil {
//	    return err
//	}
package model
