package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSelector is returned when a search expression is neither a field
// name nor a list of field names.
var ErrInvalidSelector = errors.New("invalid selector")

// Selectors holds the field names a search shortcut applies to. A single
// selector is encoded as a plain string.
type Selectors []string

// ParseSelectors accepts a field name, a JSON array of field names, or a
// decoded array of field names.
func ParseSelectors(v any) (Selectors, error) {
	switch val := v.(type) {
	case Selectors:
		return val, nil
	case []string:
		return Selectors(val), nil
	case string:
		trimmed := strings.TrimSpace(val)
		if strings.HasPrefix(trimmed, "[") {
			decoded, err := DecodeJSON(trimmed)
			if err != nil {
				return nil, err
			}
			return ParseSelectors(decoded)
		}
		return Selectors{val}, nil
	case []any:
		out := make(Selectors, 0, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: element %d is %T", ErrInvalidSelector, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrInvalidSelector, v)
}

func (s Selectors) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]string(s))
}

func (s *Selectors) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSelectors(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// SearchSpec is the single-comparison search shortcut:
// searchExpr, searchOperation and searchValue.
type SearchSpec struct {
	Expr      Selectors
	Operation string
	Value     any
}
