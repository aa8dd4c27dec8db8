package site

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Plugin is one entry of the plugin list. On the wire it is either a bare
// identifier or a {resolve, options} record.
type Plugin struct {
	Resolve string
	Options map[string]any
}

// pluginDoc is the record shape of a plugin entry.
type pluginDoc struct {
	Resolve string         `yaml:"resolve" json:"resolve"`
	Options map[string]any `yaml:"options,omitempty" json:"options,omitempty"`
}

// UnmarshalYAML accepts both plugin shapes.
func (p *Plugin) UnmarshalYAML(unmarshal func(any) error) error {
	var name string
	if err := unmarshal(&name); err == nil {
		*p = Plugin{Resolve: name}
		return nil
	}

	var raw map[any]any
	if err := unmarshal(&raw); err != nil {
		return fmt.Errorf("plugin entry must be a string or a mapping: %w", err)
	}
	v, err := pluginFromValue(normalize(raw))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// MarshalYAML emits a bare identifier when the plugin has no options.
func (p Plugin) MarshalYAML() (any, error) {
	if len(p.Options) == 0 {
		return p.Resolve, nil
	}
	return pluginDoc{Resolve: p.Resolve, Options: normalizeMap(p.Options)}, nil
}

// UnmarshalJSON accepts both plugin shapes.
func (p *Plugin) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*p = Plugin{Resolve: name}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("plugin entry must be a string or an object: %w", err)
	}
	v, err := pluginFromValue(normalize(raw))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// MarshalJSON emits a bare identifier when the plugin has no options.
func (p Plugin) MarshalJSON() ([]byte, error) {
	if len(p.Options) == 0 {
		return json.Marshal(p.Resolve)
	}
	return json.Marshal(pluginDoc{Resolve: p.Resolve, Options: normalizeMap(p.Options)})
}

// String returns the string option key, or def when it is unset or not a string.
func (p Plugin) String(key, def string) string {
	if s, ok := p.Options[key].(string); ok {
		return s
	}
	return def
}

// Int returns the integer option key, or def when it is unset or not numeric.
func (p Plugin) Int(key string, def int) int {
	switch n := p.Options[key].(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	}
	return def
}

// Bool returns the boolean option key, or def when it is unset.
func (p Plugin) Bool(key string, def bool) bool {
	if b, ok := p.Options[key].(bool); ok {
		return b
	}
	return def
}

// SubPlugins decodes the nested options.plugins list, if any.
func (p Plugin) SubPlugins() ([]Plugin, error) {
	raw, ok := p.Options["plugins"]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("options.plugins of %q must be a list, got %T", p.Resolve, raw)
	}
	out := make([]Plugin, 0, len(list))
	for i, item := range list {
		sub, err := pluginFromValue(item)
		if err != nil {
			return nil, fmt.Errorf("options.plugins[%d] of %q: %w", i, p.Resolve, err)
		}
		out = append(out, sub)
	}
	return out, nil
}

// pluginFromValue converts a normalized value into a Plugin.
func pluginFromValue(v any) (Plugin, error) {
	switch t := v.(type) {
	case string:
		return Plugin{Resolve: t}, nil
	case map[string]any:
		var p Plugin
		if r, ok := t["resolve"]; ok {
			s, ok := r.(string)
			if !ok {
				return Plugin{}, fmt.Errorf("resolve must be a string, got %T", r)
			}
			p.Resolve = s
		}
		if o, ok := t["options"]; ok && o != nil {
			m, ok := o.(map[string]any)
			if !ok {
				return Plugin{}, fmt.Errorf("options of %q must be a mapping, got %T", p.Resolve, o)
			}
			if len(m) > 0 {
				p.Options = m
			}
		}
		return p, nil
	default:
		return Plugin{}, fmt.Errorf("plugin entry must be a string or a mapping, got %T", v)
	}
}

// normalize rewrites decoded YAML or JSON values into one canonical tree:
// maps keyed by string, integers as int64 and other numbers as float64.
func normalize(v any) any {
	switch t := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalize(val)
		}
		return m
	case map[string]any:
		return normalizeMap(t)
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return normalizeFloat(f)
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case uint64:
		if t <= math.MaxInt64 {
			return int64(t)
		}
		return float64(t)
	case float32:
		return normalizeFloat(float64(t))
	case float64:
		return normalizeFloat(t)
	default:
		return v
	}
}

func normalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}

// normalizeFloat turns integral floats that fit an int64 into int64, so 590
// and 590.0 compare equal and JSON, which writes them as plain digits, reads
// them back as the same type.
func normalizeFloat(f float64) any {
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return int64(f)
	}
	return f
}
