package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrNoFields        = errors.New("schema must define at least one field")
	ErrDuplicateField  = errors.New("duplicate field name")
	ErrSelectNoOptions = errors.New("select field requires options")
)

// CheckFields validates a field list before it is stored as a definition.
func CheckFields(fields []Field) error {
	if len(fields) == 0 {
		return ErrNoFields
	}
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, ok := seen[f.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateField, f.Name)
		}
		seen[f.Name] = struct{}{}
		if f.Type == FieldSelect && len(f.Options) == 0 {
			return fmt.Errorf("%w: %s", ErrSelectNoOptions, f.Name)
		}
	}
	return nil
}

// JSONSchema translates the field list into a draft 2020-12 JSON Schema document for item data.
// Unknown keys are allowed so that editors can carry auxiliary data.
func JSONSchema(fields []Field) map[string]any {
	props := make(map[string]any, len(fields))
	required := make([]string, 0)
	for _, f := range fields {
		props[f.Name] = fieldSchema(f)
		if f.Required {
			required = append(required, f.Name)
		}
	}
	doc := map[string]any{
		"$schema":    "https://json-schema.org/draft/2020-12/schema",
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc
}

func fieldSchema(f Field) map[string]any {
	switch f.Type {
	case FieldNumber:
		return map[string]any{"type": "number"}
	case FieldBoolean:
		return map[string]any{"type": "boolean"}
	case FieldSelect:
		enum := make([]any, len(f.Options))
		for i, o := range f.Options {
			enum[i] = o
		}
		return map[string]any{"enum": enum}
	case FieldDate:
		return map[string]any{"type": "string", "format": "date"}
	case FieldURL, FieldImage:
		return map[string]any{"type": "string"}
	case FieldEmail:
		return map[string]any{"type": "string", "format": "email"}
	default:
		return map[string]any{"type": "string"}
	}
}

// ValidateData checks item data against the schema's definition.
func (s *Schema) ValidateData(data json.RawMessage) error {
	fields, err := s.Fields()
	if err != nil {
		return fmt.Errorf("decode definition: %w", err)
	}
	if len(fields) == 0 {
		return nil
	}
	raw, err := json.Marshal(JSONSchema(fields))
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	resourceID := "inmemory://schemas/" + s.ID.String()
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(resourceID, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := compiler.Compile(resourceID)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	var payload any
	if len(data) == 0 {
		payload = map[string]any{}
	} else if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if err := compiled.Validate(payload); err != nil {
		return fmt.Errorf("item data does not match schema: %w", err)
	}
	return nil
}
