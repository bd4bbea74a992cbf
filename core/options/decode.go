package options

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/asaidimu/go-loadoptions/core/query"
	"github.com/go-viper/mapstructure/v2"
)

var (
	ErrInvalidInteger   = errors.New("not an integer")
	ErrInvalidBoolean   = errors.New("not a boolean")
	ErrInvalidStructure = errors.New("unexpected structure")
)

// parseInteger accepts base-10 strings, integral numbers and Go integers.
func parseInteger(v any) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case int32:
		return int(val), nil
	case int64:
		if val < math.MinInt || val > math.MaxInt {
			return 0, fmt.Errorf("%w: %d is out of range", ErrInvalidInteger, val)
		}
		return int(val), nil
	case float64:
		if val != math.Trunc(val) || math.IsInf(val, 0) || val < math.MinInt || val >= math.MaxInt {
			return 0, fmt.Errorf("%w: %v", ErrInvalidInteger, val)
		}
		return int(val), nil
	case json.Number:
		i, err := strconv.Atoi(val.String())
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidInteger, val.String())
		}
		return i, nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidInteger, val)
		}
		return i, nil
	}
	return 0, fmt.Errorf("%w: unexpected %T", ErrInvalidInteger, v)
}

// parseBoolean accepts the literals "true" and "false" and Go booleans.
func parseBoolean(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		switch val {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return false, fmt.Errorf("%w: %q", ErrInvalidBoolean, val)
	}
	return false, fmt.Errorf("%w: unexpected %T", ErrInvalidBoolean, v)
}

var (
	sortInfoType  = reflect.TypeOf(query.SortInfo{})
	groupInfoType = reflect.TypeOf(query.GroupInfo{})
)

// selectorShorthand lets a bare field name stand in for a sort or group
// descriptor.
func selectorShorthand(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	if to == sortInfoType || to == groupInfoType {
		return map[string]any{"selector": data}, nil
	}
	return data, nil
}

// decodeStructured decodes a sort, group or summary parameter into dst. String
// values are JSON documents; anything else is taken as already structured.
// Textual scalars such as "false" are converted to the target field type, and
// a single descriptor is accepted where a list is expected. dst is only
// written when decoding succeeds.
func decodeStructured[T any](raw any, dst *T) error {
	if s, ok := raw.(string); ok {
		decoded, err := query.DecodeJSON(s)
		if err != nil {
			return err
		}
		raw = decoded
	}

	var out T
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       selectorShorthand,
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           &out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStructure, err)
	}
	*dst = out
	return nil
}

// issueCode maps a parse failure to the code reported for it.
func issueCode(err error) string {
	switch {
	case errors.Is(err, query.ErrMalformedJSON):
		return CodeMalformedJSON
	case errors.Is(err, ErrInvalidInteger):
		return CodeInvalidInteger
	case errors.Is(err, ErrInvalidBoolean):
		return CodeInvalidBoolean
	case errors.Is(err, query.ErrNotNumeric), errors.Is(err, query.ErrNotDate):
		return CodeCoercionFailed
	default:
		return CodeInvalidStructure
	}
}
