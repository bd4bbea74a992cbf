package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var knownFieldTypes = map[FieldType]struct{}{
	FieldTypeString:   {},
	FieldTypeInteger:  {},
	FieldTypeNumber:   {},
	FieldTypeDecimal:  {},
	FieldTypeBoolean:  {},
	FieldTypeDate:     {},
	FieldTypeDateTime: {},
}

// Load reads a type schema from YAML or JSON. Two layouts are accepted: a flat
// mapping of field name to kind, e.g.
//
//	int1: int
//	dtFinished: date
//
// or a SchemaDefinition document carrying a "fields" key.
func Load(data []byte) (TypeSchema, error) {
	var probe map[string]any
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}

	if _, ok := probe["fields"]; ok {
		var def SchemaDefinition
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("failed to decode schema definition: %w", err)
		}
		for key, field := range def.Fields {
			if field == nil {
				continue
			}
			if _, ok := knownFieldTypes[field.Type]; !ok {
				return nil, fmt.Errorf("field %q: %w: %q", key, ErrUnknownKind, field.Type)
			}
		}
		return def.TypeSchema(), nil
	}

	var flat map[string]string
	if err := yaml.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("failed to decode schema mapping: %w", err)
	}
	out := make(TypeSchema, len(flat))
	for field, raw := range flat {
		k, err := ParseKind(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field, err)
		}
		if k != KindNone {
			out[field] = k
		}
	}
	return out, nil
}

// LoadFile reads a type schema from the file at path.
func LoadFile(path string) (TypeSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}
	return Load(data)
}
