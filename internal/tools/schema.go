package tools

import (
	"encoding/json"
	"fmt"
)

// Property is a JSON-Schema-style parameter declaration.
type Property struct {
	Type        string              `json:"type"`
	Description string              `json:"description,omitempty"`
	Enum        []string            `json:"enum,omitempty"`
	Default     any                 `json:"default,omitempty"`
	Minimum     *float64            `json:"minimum,omitempty"`
	Maximum     *float64            `json:"maximum,omitempty"`
	Items       *Property           `json:"items,omitempty"`
	MinItems    int                 `json:"minItems,omitempty"`
	MaxItems    int                 `json:"maxItems,omitempty"`
	Properties  map[string]Property `json:"properties,omitempty"`
}

// Schema is an object schema for a tool's parameters.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// AsMap renders the schema in the provider's expected wire shape.
func (s Schema) AsMap() map[string]any {
	props := make(map[string]any, len(s.Properties))
	for name, p := range s.Properties {
		props[name] = p.asMap()
	}
	out := map[string]any{
		"type":       s.Type,
		"properties": props,
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	return out
}

func (p Property) asMap() map[string]any {
	out := map[string]any{"type": p.Type}
	if p.Description != "" {
		out["description"] = p.Description
	}
	if len(p.Enum) > 0 {
		enum := make([]any, len(p.Enum))
		for i, e := range p.Enum {
			enum[i] = e
		}
		out["enum"] = enum
	}
	if p.Default != nil {
		out["default"] = p.Default
	}
	if p.Minimum != nil {
		out["minimum"] = *p.Minimum
	}
	if p.Maximum != nil {
		out["maximum"] = *p.Maximum
	}
	if p.Items != nil {
		out["items"] = p.Items.asMap()
	}
	if p.MinItems > 0 {
		out["minItems"] = p.MinItems
	}
	if p.MaxItems > 0 {
		out["maxItems"] = p.MaxItems
	}
	if len(p.Properties) > 0 {
		props := make(map[string]any, len(p.Properties))
		for name, sub := range p.Properties {
			props[name] = sub.asMap()
		}
		out["properties"] = props
	}
	return out
}

// Validate checks arguments against the schema: unknown parameters are
// dropped silently, declared defaults fill absent ones, enumerations and
// ranges are enforced, and missing required parameters are an error.
func (s Schema) Validate(args map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(s.Properties))

	for name, prop := range s.Properties {
		val, present := args[name]
		if !present {
			if prop.Default != nil {
				out[name] = prop.Default
			}
			continue
		}
		cleaned, err := prop.validate(name, val)
		if err != nil {
			return nil, err
		}
		out[name] = cleaned
	}

	for _, name := range s.Required {
		if _, ok := out[name]; !ok {
			return nil, fmt.Errorf("missing required parameter: %s", name)
		}
	}
	return out, nil
}

func (p Property) validate(name string, val any) (any, error) {
	switch p.Type {
	case "string":
		str, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("parameter %s must be a string", name)
		}
		if len(p.Enum) > 0 && !contains(p.Enum, str) {
			return nil, fmt.Errorf("parameter %s must be one of %v", name, p.Enum)
		}
		return str, nil

	case "boolean":
		b, ok := val.(bool)
		if !ok {
			return nil, fmt.Errorf("parameter %s must be a boolean", name)
		}
		return b, nil

	case "integer", "number":
		n, ok := toFloat(val)
		if !ok {
			return nil, fmt.Errorf("parameter %s must be a number", name)
		}
		if p.Minimum != nil && n < *p.Minimum {
			return nil, fmt.Errorf("parameter %s must be >= %v", name, *p.Minimum)
		}
		if p.Maximum != nil && n > *p.Maximum {
			return nil, fmt.Errorf("parameter %s must be <= %v", name, *p.Maximum)
		}
		if p.Type == "integer" {
			return int(n), nil
		}
		return n, nil

	case "array":
		items, ok := val.([]any)
		if !ok {
			return nil, fmt.Errorf("parameter %s must be an array", name)
		}
		if p.MinItems > 0 && len(items) < p.MinItems {
			return nil, fmt.Errorf("parameter %s needs at least %d items", name, p.MinItems)
		}
		if p.MaxItems > 0 && len(items) > p.MaxItems {
			return nil, fmt.Errorf("parameter %s allows at most %d items", name, p.MaxItems)
		}
		if p.Items != nil {
			for i, item := range items {
				if _, err := p.Items.validate(fmt.Sprintf("%s[%d]", name, i), item); err != nil {
					return nil, err
				}
			}
		}
		return items, nil

	case "object":
		obj, ok := val.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("parameter %s must be an object", name)
		}
		if len(p.Properties) == 0 {
			return obj, nil
		}
		cleaned := make(map[string]any, len(obj))
		for key, sub := range p.Properties {
			v, present := obj[key]
			if !present {
				continue
			}
			cv, err := sub.validate(name+"."+key, v)
			if err != nil {
				return nil, err
			}
			cleaned[key] = cv
		}
		return cleaned, nil

	default:
		return val, nil
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
