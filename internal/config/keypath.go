package config

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// listKeys hold sequences; config set splits their value on commas.
var listKeys = map[string]bool{"ignore": true}

// GetValue retrieves a value from a Config by key.
func GetValue(cfg *Config, key string) (any, error) {
	m, err := ToMap(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	val, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("key %q not set", key)
	}
	return val, nil
}

// SetValue sets key in a raw YAML map, coercing rawValue to the natural
// scalar type. List keys take a comma-separated value.
func SetValue(data map[string]any, key, rawValue string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if listKeys[key] {
		var items []any
		for _, part := range strings.Split(rawValue, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		data[key] = items
		return nil
	}
	data[key] = coerceValue(rawValue)
	return nil
}

// ValidateKey checks that key names a Config field, using the yaml tags.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty key")
	}
	if strings.Contains(key, ".") {
		return fmt.Errorf("key %q: config keys have no sub-keys", key)
	}
	keys := yamlKeys(reflect.TypeOf(Config{}))
	if !keys[key] {
		return fmt.Errorf("unknown key %q; valid keys: %s", key, sortedKeys(keys))
	}
	return nil
}

// Keys returns the valid config keys, sorted.
func Keys() []string {
	keys := yamlKeys(reflect.TypeOf(Config{}))
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ToMap converts a Config to a map keyed by yaml tag via a YAML
// round-trip. Unset fields are omitted.
func ToMap(cfg *Config) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = make(map[string]any)
	}
	return m, nil
}

// coerceValue parses a string into bool, int, float64, or keeps it as string.
func coerceValue(s string) any {
	if s == "true" {
		return true
	}
	if s == "false" {
		return false
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	// Only use float if it has a decimal point (avoid converting "3" to 3.0).
	if f, err := strconv.ParseFloat(s, 64); err == nil && strings.Contains(s, ".") {
		return f
	}
	return s
}

// yamlKeys extracts yaml tag names from a struct type.
func yamlKeys(t reflect.Type) map[string]bool {
	keys := make(map[string]bool)
	for i := range t.NumField() {
		tag := t.Field(i).Tag.Get("yaml")
		if tag == "" || tag == "-" {
			continue
		}
		if name := strings.Split(tag, ",")[0]; name != "" {
			keys[name] = true
		}
	}
	return keys
}

// sortedKeys returns a comma-separated sorted list of map keys.
func sortedKeys(m map[string]bool) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
