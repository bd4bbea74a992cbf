package query

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/asaidimu/go-loadoptions/core/schema"
	"go.uber.org/zap"
)

var (
	// ErrNotNumeric is wrapped by coercion failures for int and number fields.
	ErrNotNumeric = errors.New("not a finite number")
	// ErrNotDate is wrapped by coercion failures for date fields.
	ErrNotDate = errors.New("not a recognised date")
)

// isoDateTime matches the full ISO-8601 date-times that are turned into dates
// for fields the schema does not declare.
var isoDateTime = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}(:\d{2}(\.\d+)?)?(Z|[+-]\d{2}:\d{2})$`)

// dateLayouts are tried in order for date fields. Layouts without a zone are
// read as UTC.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// CoercionError reports a literal that could not be converted to the kind
// declared for its field. The literal itself is left in place.
type CoercionError struct {
	Field string
	Kind  schema.Kind
	Value any
	Err   error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("field %q: cannot coerce %v to %s: %v", e.Field, e.Value, e.Kind, e.Err)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

// CoercerOption configures a Coercer.
type CoercerOption func(*Coercer)

// WithDateInference toggles the conversion of ISO-8601 date-time strings on
// fields the schema does not declare. It is enabled by default.
func WithDateInference(enabled bool) CoercerOption {
	return func(c *Coercer) {
		c.inferDates = enabled
	}
}

// WithCoercerLogger sets the logger used to report coercion failures.
func WithCoercerLogger(logger *zap.Logger) CoercerOption {
	return func(c *Coercer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Coercer rewrites filter and search literals according to a type schema.
// It holds no mutable state and is safe for concurrent use.
type Coercer struct {
	schema     schema.TypeSchema
	inferDates bool
	logger     *zap.Logger
}

// NewCoercer creates a Coercer for the given schema. A nil schema declares no
// fields.
func NewCoercer(s schema.TypeSchema, opts ...CoercerOption) *Coercer {
	c := &Coercer{
		schema:     s,
		inferDates: true,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CoerceValue converts value to the kind declared for field. Nil values pass
// through, slices are converted element by element, and undeclared fields are
// returned unchanged unless date inference applies. On failure the original
// value is returned along with a *CoercionError.
func (c *Coercer) CoerceValue(field string, value any) (any, error) {
	return c.coerceKind(field, c.schema.KindOf(field), value)
}

func (c *Coercer) coerceKind(field string, kind schema.Kind, value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	if items, ok := value.([]any); ok {
		out := make([]any, len(items))
		var errs []error
		for i, item := range items {
			coerced, err := c.coerceKind(field, kind, item)
			if err != nil {
				errs = append(errs, err)
			}
			out[i] = coerced
		}
		if len(errs) > 0 {
			return out, &CoercionError{Field: field, Kind: kind, Value: value, Err: errors.Join(errs...)}
		}
		return out, nil
	}

	switch kind {
	case schema.KindInt:
		if i, ok := ToInt64(value); ok {
			return i, nil
		}
		return value, &CoercionError{Field: field, Kind: kind, Value: value, Err: ErrNotNumeric}
	case schema.KindNumber:
		if f, ok := ToFloat64(value); ok {
			return f, nil
		}
		return value, &CoercionError{Field: field, Kind: kind, Value: value, Err: ErrNotNumeric}
	case schema.KindDate:
		if t, ok := toTime(value); ok {
			return t, nil
		}
		return value, &CoercionError{Field: field, Kind: kind, Value: value, Err: ErrNotDate}
	}

	if s, ok := value.(string); ok && c.inferDates && isoDateTime.MatchString(s) {
		if t, ok := toTime(s); ok {
			return t, nil
		}
	}
	return value, nil
}

// CoerceFilter returns a copy of f whose comparison values have been coerced.
// Groups keep their members and operators in the same positions, and raw
// filters are returned as they are. Failed leaves keep their literal and are
// reported in the returned slice.
func (c *Coercer) CoerceFilter(f Filter) (Filter, []*CoercionError) {
	var errs []*CoercionError
	out := c.coerceFilter(f, &errs)
	return out, errs
}

func (c *Coercer) coerceFilter(f Filter, errs *[]*CoercionError) Filter {
	switch {
	case f.Comparison != nil:
		value, err := c.CoerceValue(f.Comparison.Field, f.Comparison.Value)
		c.collect(err, errs)
		return Filter{Comparison: &Comparison{
			Field:    f.Comparison.Field,
			Operator: f.Comparison.Operator,
			Value:    value,
		}}
	case f.Group != nil:
		items := make([]GroupItem, 0, len(f.Group.Items))
		for _, item := range f.Group.Items {
			if item.Filter == nil {
				items = append(items, item)
				continue
			}
			child := c.coerceFilter(*item.Filter, errs)
			items = append(items, GroupItem{Filter: &child})
		}
		return Filter{Group: &Group{Items: items}}
	default:
		return f
	}
}

// CoerceSearch coerces the value of a search shortcut. The value is converted
// with the kind shared by every selector; selectors of mixed kinds leave it
// unchanged, as does a spec without selectors or value.
func (c *Coercer) CoerceSearch(s SearchSpec) (SearchSpec, []*CoercionError) {
	if len(s.Expr) == 0 || s.Value == nil {
		return s, nil
	}

	kind := c.schema.KindOf(s.Expr[0])
	for _, field := range s.Expr[1:] {
		if c.schema.KindOf(field) != kind {
			c.logger.Debug("Search selectors have mixed kinds, value left as is",
				zap.Strings("selectors", s.Expr))
			return s, nil
		}
	}

	var errs []*CoercionError
	value, err := c.coerceKind(s.Expr[0], kind, s.Value)
	c.collect(err, &errs)
	return SearchSpec{Expr: s.Expr, Operation: s.Operation, Value: value}, errs
}

func (c *Coercer) collect(err error, errs *[]*CoercionError) {
	if err == nil {
		return
	}
	var ce *CoercionError
	if !errors.As(err, &ce) {
		ce = &CoercionError{Err: err}
	}
	c.logger.Debug("Literal left uncoerced",
		zap.String("field", ce.Field),
		zap.String("kind", string(ce.Kind)),
		zap.Any("value", ce.Value),
		zap.Error(ce.Err))
	*errs = append(*errs, ce)
}

// toTime parses dates from strings, Unix milliseconds, or time.Time values.
// Results are normalised to UTC.
func toTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val.UTC(), true
	case *time.Time:
		if val == nil {
			return time.Time{}, false
		}
		return val.UTC(), true
	case string:
		s := strings.TrimSpace(val)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
		return time.Time{}, false
	}
	if ms, ok := ToInt64(v); ok {
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}
