package query

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/asaidimu/go-loadoptions/core/schema"
)

// ErrMalformedJSON is matched by every ParseError.
var ErrMalformedJSON = errors.New("malformed JSON")

// ParseError reports a JSON-encoded value that could not be decoded.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", ErrMalformedJSON, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrMalformedJSON, e.Err}
}

// DecodeJSON decodes a JSON document into plain Go values (maps, []any,
// float64, string, bool, nil).
func DecodeJSON(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, &ParseError{Input: s, Err: err}
	}
	return v, nil
}

// ParseFilter converts either form a filter can arrive in into a Filter. A
// string is treated as the JSON encoding of the filter and decoded first;
// nested slices are classified as comparisons or groups; anything else is kept
// as a raw filter.
func ParseFilter(input any) (Filter, error) {
	switch v := input.(type) {
	case Filter:
		return v, nil
	case *Filter:
		if v == nil {
			return Filter{}, nil
		}
		return *v, nil
	case string:
		decoded, err := DecodeJSON(v)
		if err != nil {
			return Filter{}, err
		}
		return classify(decoded), nil
	default:
		return classify(input), nil
	}
}

// classify inspects one decoded node.
func classify(node any) Filter {
	arr, ok := asSlice(node)
	if !ok {
		return Filter{Raw: node}
	}

	switch {
	case isGroup(arr):
		group := &Group{Items: make([]GroupItem, 0, len(arr))}
		for _, elem := range arr {
			if op, ok := elem.(string); ok {
				group.Items = append(group.Items, GroupItem{Operator: schema.LogicalOperator(op)})
				continue
			}
			child := classify(elem)
			group.Items = append(group.Items, GroupItem{Filter: &child})
		}
		return Filter{Group: group}
	case isComparison(arr):
		return Filter{Comparison: &Comparison{
			Field:    arr[0].(string),
			Operator: arr[1].(string),
			Value:    arr[2],
		}}
	default:
		return Filter{Raw: node}
	}
}

// isGroup matches [node, op, node, ...], the negation ["!", node] and the
// empty group.
func isGroup(arr []any) bool {
	if len(arr) == 0 {
		return true
	}
	if _, ok := asSlice(arr[0]); ok {
		return true
	}
	if op, ok := arr[0].(string); ok && schema.LogicalOperator(op) == LogicalOperatorNot && len(arr) == 2 {
		_, ok := asSlice(arr[1])
		return ok
	}
	return false
}

func isComparison(arr []any) bool {
	if len(arr) != 3 {
		return false
	}
	_, fieldOK := arr[0].(string)
	_, opOK := arr[1].(string)
	return fieldOK && opOK
}

func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	}
	return nil, false
}
