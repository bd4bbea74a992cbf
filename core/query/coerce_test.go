package query

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/asaidimu/go-loadoptions/core/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var finished = time.Date(2018, 8, 1, 16, 20, 30, 0, time.UTC)

func TestCoercer_CoerceValue(t *testing.T) {
	c := NewCoercer(schema.TypeSchema{
		"int1":  schema.KindInt,
		"price": schema.KindNumber,
		"day":   schema.KindDate,
	})

	tests := []struct {
		name     string
		field    string
		value    any
		expected any
		wantErr  error
	}{
		{"int from string", "int1", "4", int64(4), nil},
		{"int from padded string", "int1", " -12 ", int64(-12), nil},
		{"int truncates decimals", "int1", "4.7", int64(4), nil},
		{"int from float", "int1", 34.0, int64(34), nil},
		{"int from json number", "int1", json.Number("7"), int64(7), nil},
		{"int rejects text", "int1", "abc", "abc", ErrNotNumeric},
		{"int rejects bool", "int1", true, true, ErrNotNumeric},
		{"int keeps nil", "int1", nil, nil, nil},
		{"number from string", "price", "12.5", 12.5, nil},
		{"number from int", "price", 3, 3.0, nil},
		{"number rejects NaN", "price", "NaN", "NaN", ErrNotNumeric},
		{"number rejects text", "price", "cheap", "cheap", ErrNotNumeric},
		{"date from RFC 3339", "day", "2018-08-01T16:20:30.000Z", finished, nil},
		{"date from offset", "day", "2018-08-01T18:20:30+02:00", finished, nil},
		{"date without zone is UTC", "day", "2018-08-01T16:20:30", finished, nil},
		{"date only", "day", "2017-07-13", time.Date(2017, 7, 13, 0, 0, 0, 0, time.UTC), nil},
		{"date with slashes", "day", "2017/07/13", time.Date(2017, 7, 13, 0, 0, 0, 0, time.UTC), nil},
		{"date from unix millis", "day", 1533140430000.0, finished, nil},
		{"date from time", "day", finished, finished, nil},
		{"date rejects text", "day", "yesterday", "yesterday", ErrNotDate},
		{"undeclared text untouched", "name", "4", "4", nil},
		{"undeclared iso date inferred", "name", "2018-08-01T16:20:30.000Z", finished, nil},
		{"undeclared date only untouched", "name", "2018-08-01", "2018-08-01", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.CoerceValue(tt.field, tt.value)
			assert.Equal(t, tt.expected, got)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			var ce *CoercionError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestCoercer_DateInferenceDisabled(t *testing.T) {
	c := NewCoercer(nil, WithDateInference(false))
	got, err := c.CoerceValue("dtFinished", "2018-08-01T16:20:30.000Z")
	assert.NoError(t, err)
	assert.Equal(t, "2018-08-01T16:20:30.000Z", got)
}

func TestCoercer_SliceValues(t *testing.T) {
	c := NewCoercer(schema.TypeSchema{"id": schema.KindInt})

	got, err := c.CoerceValue("id", []any{"1", "2", 3.0})
	assert.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, got)

	got, err = c.CoerceValue("id", []any{"1", "x"})
	assert.ErrorIs(t, err, ErrNotNumeric)
	assert.Equal(t, []any{int64(1), "x"}, got)
}

func TestCoercer_CoerceFilter(t *testing.T) {
	c := NewCoercer(schema.TypeSchema{"int1": schema.KindInt}, WithCoercerLogger(zap.NewNop()))

	t.Run("single comparison in a group", func(t *testing.T) {
		f, err := ParseFilter([]any{[]any{"int1", "=", "4"}})
		require.NoError(t, err)

		out, errs := c.CoerceFilter(f)
		assert.Empty(t, errs)
		assert.Equal(t, []any{[]any{"int1", "=", int64(4)}}, out.Value())
	})

	t.Run("dates without schema", func(t *testing.T) {
		f, err := ParseFilter(`[["dtFinished",">=","2018-08-01T16:20:30.000Z"],"and",["dtFinished","<","2018-08-01T16:20:30.000Z"]]`)
		require.NoError(t, err)

		out, errs := NewCoercer(nil).CoerceFilter(f)
		assert.Empty(t, errs)
		assert.Equal(t, []any{
			[]any{"dtFinished", ">=", finished},
			"and",
			[]any{"dtFinished", "<", finished},
		}, out.Value())
	})

	t.Run("nested groups keep their shape", func(t *testing.T) {
		input := []any{
			[]any{"int1", ">", "1"},
			"or",
			[]any{"!", []any{[]any{"int1", "=", "2"}, "and", []any{"name", "=", "3"}}},
		}
		f, err := ParseFilter(input)
		require.NoError(t, err)

		out, errs := c.CoerceFilter(f)
		assert.Empty(t, errs)
		assert.Equal(t, []any{
			[]any{"int1", ">", int64(1)},
			"or",
			[]any{"!", []any{[]any{"int1", "=", int64(2)}, "and", []any{"name", "=", "3"}}},
		}, out.Value())

		// the input is left untouched
		assert.Equal(t, "1", f.Group.Items[0].Filter.Comparison.Value)
	})

	t.Run("unparsable literal is reported and kept", func(t *testing.T) {
		f := CreateFilterGroup(schema.LogicalAnd,
			CreateSimpleFilter("int1", "=", "four"),
			CreateSimpleFilter("int1", "=", "5"),
		)
		out, errs := c.CoerceFilter(f)
		require.Len(t, errs, 1)
		assert.Equal(t, "int1", errs[0].Field)
		assert.Equal(t, schema.KindInt, errs[0].Kind)
		assert.Equal(t, []any{[]any{"int1", "=", "four"}, "and", []any{"int1", "=", int64(5)}}, out.Value())
	})

	t.Run("raw filters pass through", func(t *testing.T) {
		f := Filter{Raw: map[string]any{"x": 1}}
		out, errs := c.CoerceFilter(f)
		assert.Empty(t, errs)
		assert.Equal(t, f, out)
	})

	t.Run("empty group", func(t *testing.T) {
		f, err := ParseFilter([]any{})
		require.NoError(t, err)
		out, errs := c.CoerceFilter(f)
		assert.Empty(t, errs)
		assert.Equal(t, []any{}, out.Value())
	})
}

func TestCoercer_CoerceFilter_Idempotent(t *testing.T) {
	c := NewCoercer(schema.TypeSchema{"int1": schema.KindInt, "price": schema.KindNumber, "day": schema.KindDate})
	f, err := ParseFilter([]any{
		[]any{"int1", "=", "4"}, "and", []any{"price", ">", "2.5"}, "and", []any{"day", "<", "2017-07-13"},
	})
	require.NoError(t, err)

	once, _ := c.CoerceFilter(f)
	twice, errs := c.CoerceFilter(once)
	assert.Empty(t, errs)
	assert.Equal(t, once.Value(), twice.Value())
}

func TestCoercer_CoerceSearch(t *testing.T) {
	c := NewCoercer(schema.TypeSchema{"int": schema.KindInt, "qty": schema.KindInt, "price": schema.KindNumber})

	tests := []struct {
		name     string
		spec     SearchSpec
		expected any
		errCount int
	}{
		{"int field", SearchSpec{Expr: Selectors{"int"}, Operation: "=", Value: "34"}, int64(34), 0},
		{"shared kind", SearchSpec{Expr: Selectors{"int", "qty"}, Operation: "=", Value: "34"}, int64(34), 0},
		{"mixed kinds", SearchSpec{Expr: Selectors{"int", "price"}, Operation: "=", Value: "34"}, "34", 0},
		{"undeclared", SearchSpec{Expr: Selectors{"name"}, Operation: "contains", Value: "34"}, "34", 0},
		{"no selectors", SearchSpec{Operation: "=", Value: "34"}, "34", 0},
		{"no value", SearchSpec{Expr: Selectors{"int"}, Operation: "="}, nil, 0},
		{"bad literal", SearchSpec{Expr: Selectors{"int"}, Operation: "=", Value: "x"}, "x", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errs := c.CoerceSearch(tt.spec)
			assert.Len(t, errs, tt.errCount)
			assert.Equal(t, tt.expected, out.Value)
			assert.Equal(t, tt.spec.Expr, out.Expr)
			assert.Equal(t, tt.spec.Operation, out.Operation)
		})
	}
}
