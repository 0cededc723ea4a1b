package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"tripmate/internal/ai"
)

// Validator validates tool arguments before execution.
type Validator interface {
	Validate(args map[string]any, schema *ai.Schema) error
}

// SchemaValidator checks required fields, primitive types, enums, and array item types.
// Unknown keys are tolerated.
type SchemaValidator struct{}

func (SchemaValidator) Validate(args map[string]any, schema *ai.Schema) error {
	if schema == nil {
		return nil
	}
	if args == nil {
		args = map[string]any{}
	}
	for _, field := range schema.Required {
		if v, ok := args[field]; !ok || v == nil {
			return fmt.Errorf("%w: missing required field %s", ErrInvalidArgs, field)
		}
	}
	for key, value := range args {
		prop, ok := schema.Properties[key]
		if !ok || value == nil {
			continue
		}
		if err := validateValue(value, prop); err != nil {
			return fmt.Errorf("%w: field %s: %v", ErrInvalidArgs, key, err)
		}
	}
	return nil
}

func validateValue(value any, schema *ai.Schema) error {
	if err := validateType(value, schema.Type); err != nil {
		return err
	}
	if len(schema.Enum) > 0 {
		s, _ := value.(string)
		if !slices.Contains(schema.Enum, s) {
			return fmt.Errorf("value %v not in %v", value, schema.Enum)
		}
	}
	if schema.Type == "array" && schema.Items != nil {
		for i, item := range value.([]any) {
			if err := validateValue(item, schema.Items); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	}
	return nil
}

func validateType(value any, expected string) error {
	switch expected {
	case "":
		return nil
	case "string":
		if _, ok := value.(string); ok {
			return nil
		}
	case "number":
		if isNumber(value) {
			return nil
		}
	case "integer":
		if isInteger(value) {
			return nil
		}
	case "boolean":
		if _, ok := value.(bool); ok {
			return nil
		}
	case "object":
		if _, ok := value.(map[string]any); ok {
			return nil
		}
	case "array":
		if _, ok := value.([]any); ok {
			return nil
		}
	default:
		return fmt.Errorf("unsupported schema type %q", expected)
	}
	return fmt.Errorf("expected %s but got %T", expected, value)
}

func isNumber(value any) bool {
	switch v := value.(type) {
	case float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case json.Number:
		_, err := v.Float64()
		return err == nil
	}
	return false
}

func isInteger(value any) bool {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float32:
		return math.Trunc(float64(v)) == float64(v)
	case float64:
		return math.Trunc(v) == v
	case json.Number:
		_, err := v.Int64()
		return err == nil
	}
	return false
}

var supportedTypes = []string{"string", "number", "integer", "boolean", "object", "array"}

// checkSchema rejects schemas the validator could not enforce.
func checkSchema(s *ai.Schema, path string) error {
	if s == nil {
		return nil
	}
	if s.Type != "" && !slices.Contains(supportedTypes, s.Type) {
		return fmt.Errorf("%s: unsupported type %q", path, s.Type)
	}
	for _, req := range s.Required {
		if _, ok := s.Properties[req]; !ok {
			return fmt.Errorf("%s: required field %q is not declared", path, req)
		}
	}
	for name, prop := range s.Properties {
		if prop == nil {
			return fmt.Errorf("%s.%s: nil schema", path, name)
		}
		if err := checkSchema(prop, path+"."+name); err != nil {
			return err
		}
	}
	return checkSchema(s.Items, path+"[]")
}
