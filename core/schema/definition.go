package schema

import (
	"encoding/json"
	"fmt"
)

// LogicalOperator for combining filter conditions.
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "and" // All conditions must be true
	LogicalOr  LogicalOperator = "or"  // At least one condition must be true
	LogicalNot LogicalOperator = "!"   // Negates the condition that follows
)

// FieldType represents the field types a schema document may declare.
type FieldType string

const (
	FieldTypeString   FieldType = "string"   // Text data
	FieldTypeInteger  FieldType = "integer"  // Whole numbers
	FieldTypeNumber   FieldType = "number"   // Numeric data
	FieldTypeDecimal  FieldType = "decimal"  // Numeric data
	FieldTypeBoolean  FieldType = "boolean"  // True/false values
	FieldTypeDate     FieldType = "date"     // Calendar dates
	FieldTypeDateTime FieldType = "datetime" // Calendar dates with a time of day
)

// Kind returns the coercion kind that corresponds to the field type.
func (t FieldType) Kind() Kind {
	switch t {
	case FieldTypeInteger:
		return KindInt
	case FieldTypeNumber, FieldTypeDecimal:
		return KindNumber
	case FieldTypeDate, FieldTypeDateTime:
		return KindDate
	}
	return KindNone
}

// FieldDefinition defines a field within a schema document.
type FieldDefinition struct {
	Name        string    `json:"name" yaml:"name"`
	Type        FieldType `json:"type" yaml:"type"`
	Description *string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// SchemaDefinition describes the fields of a data source that query strings
// are evaluated against.
type SchemaDefinition struct {
	Name        string                      `json:"name" yaml:"name"`
	Version     string                      `json:"version,omitempty" yaml:"version,omitempty"`
	Description *string                     `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      map[string]*FieldDefinition `json:"fields" yaml:"fields"`
}

// TypeSchema projects the definition onto the kinds used for coercion.
// Fields whose type carries no coercion are left out.
func (s *SchemaDefinition) TypeSchema() TypeSchema {
	out := make(TypeSchema, len(s.Fields))
	for key, field := range s.Fields {
		if field == nil {
			continue
		}
		name := field.Name
		if name == "" {
			name = key
		}
		if k := field.Type.Kind(); k != KindNone {
			out[name] = k
		}
	}
	return out
}

// String renders the definition as JSON, mostly for logging.
func (s *SchemaDefinition) String() string {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Sprintf("SchemaDefinition(%s)", s.Name)
	}
	return string(b)
}
