package schema

// FindField looks a field up by its declared name, falling back to its key.
func (s *SchemaDefinition) FindField(name string) *FieldDefinition {
	for key, field := range s.Fields {
		if field == nil {
			continue
		}
		if field.Name == name || (field.Name == "" && key == name) {
			return field
		}
	}
	return nil
}
