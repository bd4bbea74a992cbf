package query

import (
	"fmt"
	"maps"

	"github.com/asaidimu/go-loadoptions/core/schema"
)

// FixFilterAndSearch returns a function that coerces the "filter" entry and,
// when searchExpr, searchOperation and searchValue are all present, the
// "searchValue" entry of a load-options shaped map. The filter is written back
// in its structural form. Other entries are copied unchanged and the input map
// is not modified.
func FixFilterAndSearch(s schema.TypeSchema, opts ...CoercerOption) func(map[string]any) (map[string]any, error) {
	c := NewCoercer(s, opts...)

	return func(o map[string]any) (map[string]any, error) {
		out := maps.Clone(o)
		if out == nil {
			out = make(map[string]any)
		}

		if raw, ok := o["filter"]; ok {
			f, err := ParseFilter(raw)
			if err != nil {
				return nil, fmt.Errorf("filter: %w", err)
			}
			fixed, _ := c.CoerceFilter(f)
			out["filter"] = fixed.Value()
		}

		expr, hasExpr := o["searchExpr"]
		op, hasOp := o["searchOperation"]
		value, hasValue := o["searchValue"]
		if hasExpr && hasOp && hasValue {
			selectors, err := ParseSelectors(expr)
			if err != nil {
				return nil, fmt.Errorf("searchExpr: %w", err)
			}
			operation, _ := op.(string)
			spec, _ := c.CoerceSearch(SearchSpec{Expr: selectors, Operation: operation, Value: value})
			out["searchValue"] = spec.Value
		}

		return out, nil
	}
}
