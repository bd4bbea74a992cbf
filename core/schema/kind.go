// Package schema describes the primitive kinds that query-string literals can be
// coerced into, and the per-field type schemas that declare them.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned when a schema declares a kind that is not supported.
var ErrUnknownKind = errors.New("unknown field kind")

// Kind is the declared primitive kind of a field.
type Kind string

const (
	KindNone   Kind = ""       // Pass-through; the value keeps its textual form
	KindInt    Kind = "int"    // Whole numbers, coerced to int64
	KindNumber Kind = "number" // Floating point numbers, coerced to float64
	KindDate   Kind = "date"   // Calendar time, coerced to time.Time
)

// IsKnown reports whether the kind is one the coercion engine acts upon.
func (k Kind) IsKnown() bool {
	switch k {
	case KindInt, KindNumber, KindDate:
		return true
	}
	return false
}

// ParseKind converts a configuration string to a Kind. The empty string and
// "string" map to KindNone.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "string":
		return KindNone, nil
	case "int", "integer":
		return KindInt, nil
	case "number", "float", "decimal":
		return KindNumber, nil
	case "date", "datetime":
		return KindDate, nil
	}
	return KindNone, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// TypeSchema maps field names to their declared kind. A nil TypeSchema is
// equivalent to an empty one.
type TypeSchema map[string]Kind

// KindOf returns the declared kind for field. Fields missing from the schema,
// and fields declared with a kind the engine does not know, are KindNone.
func (s TypeSchema) KindOf(field string) Kind {
	k, ok := s[field]
	if !ok || !k.IsKnown() {
		return KindNone
	}
	return k
}

// KindOf is the function form of TypeSchema.KindOf.
func KindOf(s TypeSchema, field string) Kind {
	return s.KindOf(field)
}
