package tools

import (
	"encoding/json"
	"fmt"
	"math"
)

// ValidateInput checks input against the subset of JSON Schema tools declare:
// required keys and primitive property types. Unknown keys are accepted.
func ValidateInput(input map[string]any, schema map[string]any) error {
	if schema == nil {
		return nil
	}

	for _, field := range requiredFields(schema["required"]) {
		if _, exists := input[field]; !exists {
			return fmt.Errorf("missing required field: %s", field)
		}
	}

	props, _ := schema["properties"].(map[string]any)
	if len(props) == 0 {
		return nil
	}

	for key, value := range input {
		def, ok := props[key].(map[string]any)
		if !ok {
			continue
		}
		expected, _ := def["type"].(string)
		if expected == "" {
			continue
		}
		if err := validateType(value, expected); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		if enum, ok := def["enum"].([]string); ok && !inEnum(value, enum) {
			return fmt.Errorf("field %s: %v is not one of %v", key, value, enum)
		}
	}

	return nil
}

func requiredFields(v any) []string {
	switch req := v.(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func inEnum(value any, enum []string) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	for _, e := range enum {
		if e == s {
			return true
		}
	}
	return false
}

func validateType(value any, expected string) error {
	switch expected {
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
	case "null":
		if value == nil {
			return nil
		}
	default:
		return nil
	}
	return fmt.Errorf("expected %s but got %s", expected, jsonTypeName(value))
}

func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

func isNumber(value any) bool {
	switch v := value.(type) {
	case float32, float64, int, int64:
		return true
	case json.Number:
		_, err := v.Float64()
		return err == nil
	}
	return false
}

func isInteger(value any) bool {
	switch v := value.(type) {
	case int, int64:
		return true
	case float64:
		return math.Trunc(v) == v
	case json.Number:
		_, err := v.Int64()
		return err == nil
	}
	return false
}
