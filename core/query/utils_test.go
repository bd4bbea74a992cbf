package query

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringPtr(t *testing.T) {
	s := "test_string"
	ptr := StringPtr(s)
	assert.NotNil(t, ptr)
	assert.Equal(t, s, *ptr)
}

func TestIntPtr(t *testing.T) {
	ptr := IntPtr(12345)
	assert.NotNil(t, ptr)
	assert.Equal(t, 12345, *ptr)
}

func TestBoolPtr(t *testing.T) {
	b := true
	ptr := BoolPtr(b)
	assert.NotNil(t, ptr)
	assert.Equal(t, b, *ptr)
}

func TestToFloat64(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected float64
		success  bool
	}{
		{"int", 10, 10.0, true},
		{"int8", int8(20), 20.0, true},
		{"int16", int16(30), 30.0, true},
		{"int32", int32(40), 40.0, true},
		{"int64", int64(50), 50.0, true},
		{"uint", uint(55), 55.0, true},
		{"float32", float32(60.5), 60.5, true},
		{"float64", 70.5, 70.5, true},
		{"json_number", json.Number("80.25"), 80.25, true},
		{"string_valid_int", "100", 100.0, true},
		{"string_valid_float", "123.45", 123.45, true},
		{"string_padded", " 7 ", 7.0, true},
		{"string_invalid", "abc", 0.0, false},
		{"string_nan", "NaN", 0.0, false},
		{"infinity", math.Inf(1), 0.0, false},
		{"nil", nil, 0.0, false},
		{"unsupported_type", struct{}{}, 0.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := ToFloat64(tt.input)
			assert.Equal(t, tt.success, ok)
			if tt.success {
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestToInt64(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected int64
		success  bool
	}{
		{"int", 10, 10, true},
		{"int64", int64(-50), -50, true},
		{"uint64", uint64(9), 9, true},
		{"float64", 70.9, 70, true},
		{"negative_float", -70.9, -70, true},
		{"json_number", json.Number("80"), 80, true},
		{"string", "-60", -60, true},
		{"string_decimal", "4.7", 4, true},
		{"string_huge", "1e30", 0, false},
		{"string_invalid", "abc", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := ToInt64(tt.input)
			assert.Equal(t, tt.success, ok)
			if tt.success {
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}
