// Package query defines the filter expression language carried by load
// options, together with the sorting, grouping and summary descriptors that
// travel alongside it. Filters arrive either as nested arrays or as their JSON
// encoding; both are parsed into the same tagged representation before any
// coercion runs.
package query

import (
	"encoding/json"

	"github.com/asaidimu/go-loadoptions/core/schema"
)

// Logical operators joining the members of a filter group.
const (
	LogicalOperatorAnd = schema.LogicalAnd
	LogicalOperatorOr  = schema.LogicalOr
	LogicalOperatorNot = schema.LogicalNot
)

// ComparisonOperator names the comparison applied by a filter condition.
// Operators are carried through untouched; the constants below only cover the
// ones clients commonly send.
type ComparisonOperator = string

const (
	ComparisonOperatorEq          ComparisonOperator = "="
	ComparisonOperatorNeq         ComparisonOperator = "<>"
	ComparisonOperatorLt          ComparisonOperator = "<"
	ComparisonOperatorLte         ComparisonOperator = "<="
	ComparisonOperatorGt          ComparisonOperator = ">"
	ComparisonOperatorGte         ComparisonOperator = ">="
	ComparisonOperatorStartsWith  ComparisonOperator = "startswith"
	ComparisonOperatorEndsWith    ComparisonOperator = "endswith"
	ComparisonOperatorContains    ComparisonOperator = "contains"
	ComparisonOperatorNotContains ComparisonOperator = "notcontains"
	ComparisonOperatorAnyOf       ComparisonOperator = "anyof"
	ComparisonOperatorNoneOf      ComparisonOperator = "noneof"
)

// FilterValue is the right-hand side of a comparison.
type FilterValue any

// Comparison is a single [field, operator, value] triple.
type Comparison struct {
	Field    string
	Operator ComparisonOperator
	Value    FilterValue
}

// GroupItem is one member of a group: either a nested filter or a logical
// operator string, never both.
type GroupItem struct {
	Filter   *Filter
	Operator schema.LogicalOperator
}

// IsOperator reports whether the item is a logical operator.
func (i GroupItem) IsOperator() bool {
	return i.Filter == nil
}

// Group is an ordered sequence of filters and the operators joining them,
// e.g. [node, "and", node, "or", node] or the negation ["!", node].
type Group struct {
	Items []GroupItem
}

// Operator returns the first logical operator of the group, or the empty
// string when the group has none.
func (g *Group) Operator() schema.LogicalOperator {
	for _, item := range g.Items {
		if item.IsOperator() {
			return item.Operator
		}
	}
	return ""
}

// Filters returns the nested filters of the group in order.
func (g *Group) Filters() []*Filter {
	out := make([]*Filter, 0, len(g.Items))
	for _, item := range g.Items {
		if item.Filter != nil {
			out = append(out, item.Filter)
		}
	}
	return out
}

// Filter is a union of a comparison, a group, or a raw value whose shape is
// neither. Raw filters are preserved verbatim.
type Filter struct {
	Comparison *Comparison
	Group      *Group
	Raw        any
}

// Value returns the structural form of the filter: nested []any slices with
// operators and triples in their original positions.
func (f Filter) Value() any {
	switch {
	case f.Comparison != nil:
		return []any{f.Comparison.Field, f.Comparison.Operator, f.Comparison.Value}
	case f.Group != nil:
		out := make([]any, 0, len(f.Group.Items))
		for _, item := range f.Group.Items {
			if item.Filter != nil {
				out = append(out, item.Filter.Value())
			} else {
				out = append(out, string(item.Operator))
			}
		}
		return out
	default:
		return f.Raw
	}
}

// MarshalJSON encodes the structural form.
func (f Filter) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Value())
}

// UnmarshalJSON accepts the structural form, or a JSON string holding it.
func (f *Filter) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseFilter(raw)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// SortInfo describes one sort key.
type SortInfo struct {
	Selector string `json:"selector"`
	Desc     bool   `json:"desc"`
}

// GroupInfo describes one grouping level.
type GroupInfo struct {
	Selector      string `json:"selector"`
	Desc          *bool  `json:"desc,omitempty"`
	IsExpanded    *bool  `json:"isExpanded,omitempty"`
	GroupInterval any    `json:"groupInterval,omitempty"`
}

// SummaryInfo describes one total or group summary. Summary types are not
// validated.
type SummaryInfo struct {
	Selector    string `json:"selector,omitempty"`
	SummaryType string `json:"summaryType"`
}
