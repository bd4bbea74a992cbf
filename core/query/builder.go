package query

import (
	"github.com/asaidimu/go-loadoptions/core/schema"
)

// FilterBuilder provides a fluent API for composing filters in code, producing
// the same Filter values that ParseFilter yields for query-string input.
type FilterBuilder struct {
	items   []GroupItem
	pending schema.LogicalOperator
}

// NewFilterBuilder creates a new, empty filter builder.
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{}
}

// Build returns the composed filter. A single condition is returned on its
// own; several are returned as a group.
func (fb *FilterBuilder) Build() Filter {
	if len(fb.items) == 1 {
		return *fb.items[0].Filter
	}
	items := make([]GroupItem, len(fb.items))
	copy(items, fb.items)
	return Filter{Group: &Group{Items: items}}
}

// And joins the next condition with "and". It is also the default.
func (fb *FilterBuilder) And() *FilterBuilder {
	fb.pending = LogicalOperatorAnd
	return fb
}

// Or joins the next condition with "or".
func (fb *FilterBuilder) Or() *FilterBuilder {
	fb.pending = LogicalOperatorOr
	return fb
}

// Where begins a condition on field.
func (fb *FilterBuilder) Where(field string) *FilterConditionBuilder {
	return &FilterConditionBuilder{parent: fb, field: field}
}

// WhereGroup adds a nested group built by fn.
func (fb *FilterBuilder) WhereGroup(fn func(g *FilterBuilder)) *FilterBuilder {
	nested := NewFilterBuilder()
	fn(nested)
	built := nested.Build()
	if built.Group != nil {
		return fb.add(built)
	}
	return fb.add(Filter{Group: &Group{Items: []GroupItem{{Filter: &built}}}})
}

// Not adds the negation of the filter built by fn, encoded as ["!", node].
func (fb *FilterBuilder) Not(fn func(g *FilterBuilder)) *FilterBuilder {
	nested := NewFilterBuilder()
	fn(nested)
	inner := nested.Build()
	return fb.add(Filter{Group: &Group{Items: []GroupItem{
		{Operator: LogicalOperatorNot},
		{Filter: &inner},
	}}})
}

func (fb *FilterBuilder) add(f Filter) *FilterBuilder {
	if len(fb.items) > 0 {
		op := fb.pending
		if op == "" {
			op = LogicalOperatorAnd
		}
		fb.items = append(fb.items, GroupItem{Operator: op})
	}
	fb.pending = ""
	fb.items = append(fb.items, GroupItem{Filter: &f})
	return fb
}

// FilterConditionBuilder is used to build a single [field, operator, value]
// condition.
type FilterConditionBuilder struct {
	parent *FilterBuilder
	field  string
}

// Eq adds an equality condition.
func (fcb *FilterConditionBuilder) Eq(value FilterValue) *FilterBuilder {
	return fcb.Custom(ComparisonOperatorEq, value)
}

// Neq adds a not-equal condition.
func (fcb *FilterConditionBuilder) Neq(value FilterValue) *FilterBuilder {
	return fcb.Custom(ComparisonOperatorNeq, value)
}

// Lt adds a less-than condition.
func (fcb *FilterConditionBuilder) Lt(value FilterValue) *FilterBuilder {
	return fcb.Custom(ComparisonOperatorLt, value)
}

// Lte adds a less-than-or-equal condition.
func (fcb *FilterConditionBuilder) Lte(value FilterValue) *FilterBuilder {
	return fcb.Custom(ComparisonOperatorLte, value)
}

// Gt adds a greater-than condition.
func (fcb *FilterConditionBuilder) Gt(value FilterValue) *FilterBuilder {
	return fcb.Custom(ComparisonOperatorGt, value)
}

// Gte adds a greater-than-or-equal condition.
func (fcb *FilterConditionBuilder) Gte(value FilterValue) *FilterBuilder {
	return fcb.Custom(ComparisonOperatorGte, value)
}

// Contains adds a substring condition.
func (fcb *FilterConditionBuilder) Contains(value FilterValue) *FilterBuilder {
	return fcb.Custom(ComparisonOperatorContains, value)
}

// NotContains adds a negated substring condition.
func (fcb *FilterConditionBuilder) NotContains(value FilterValue) *FilterBuilder {
	return fcb.Custom(ComparisonOperatorNotContains, value)
}

// StartsWith adds a prefix condition.
func (fcb *FilterConditionBuilder) StartsWith(value FilterValue) *FilterBuilder {
	return fcb.Custom(ComparisonOperatorStartsWith, value)
}

// EndsWith adds a suffix condition.
func (fcb *FilterConditionBuilder) EndsWith(value FilterValue) *FilterBuilder {
	return fcb.Custom(ComparisonOperatorEndsWith, value)
}

// AnyOf adds a membership condition.
func (fcb *FilterConditionBuilder) AnyOf(values ...FilterValue) *FilterBuilder {
	return fcb.Custom(ComparisonOperatorAnyOf, toAnySlice(values))
}

// NoneOf adds a negated membership condition.
func (fcb *FilterConditionBuilder) NoneOf(values ...FilterValue) *FilterBuilder {
	return fcb.Custom(ComparisonOperatorNoneOf, toAnySlice(values))
}

// Custom adds a condition with an arbitrary operator.
func (fcb *FilterConditionBuilder) Custom(operator ComparisonOperator, value FilterValue) *FilterBuilder {
	return fcb.parent.add(CreateSimpleFilter(fcb.field, operator, value))
}

// CreateSimpleFilter is a helper function to create a single comparison.
func CreateSimpleFilter(field string, operator ComparisonOperator, value FilterValue) Filter {
	return Filter{Comparison: &Comparison{
		Field:    field,
		Operator: operator,
		Value:    value,
	}}
}

// CreateFilterGroup is a helper function that joins filters with operator.
func CreateFilterGroup(operator schema.LogicalOperator, filters ...Filter) Filter {
	items := make([]GroupItem, 0, 2*len(filters))
	for i := range filters {
		if i > 0 {
			items = append(items, GroupItem{Operator: operator})
		}
		items = append(items, GroupItem{Filter: &filters[i]})
	}
	return Filter{Group: &Group{Items: items}}
}

func toAnySlice(values []FilterValue) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
