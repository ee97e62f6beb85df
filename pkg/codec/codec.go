// Package codec turns store payloads into the strings a storage backend
// keeps, and back.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/vmihailenco/msgpack"
	"gopkg.in/yaml.v3"
)

// Serializer encodes and decodes a persisted payload.
type Serializer interface {
	Serialize(state map[string]any) (string, error)
	Deserialize(payload string) (map[string]any, error)
}

// Format names a built-in serializer.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgPack Format = "msgpack"
)

// ByName resolves a built-in serializer. Empty selects JSON.
func ByName(name string) (Serializer, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatJSON:
		return JSON{}, nil
	case FormatYAML, "yml":
		return YAML{}, nil
	case FormatMsgPack:
		return MsgPack{}, nil
	default:
		return nil, fmt.Errorf("codec: unknown format %q", name)
	}
}

// OrderedSerializer is implemented by serializers that can keep the top-level
// key order of a payload.
type OrderedSerializer interface {
	SerializeOrdered(keys []string, state map[string]any) (string, error)
}

// SerializeOrdered writes state with its top-level keys in the given order
// when s supports it, and falls back to s.Serialize otherwise.
func SerializeOrdered(s Serializer, keys []string, state map[string]any) (string, error) {
	if ordered, ok := s.(OrderedSerializer); ok {
		return ordered.SerializeOrdered(keys, state)
	}
	return s.Serialize(state)
}

// orderKeys returns keys that exist in state, followed by the remaining state
// keys in sorted order.
func orderKeys(keys []string, state map[string]any) []string {
	out := make([]string, 0, len(state))
	seen := make(map[string]struct{}, len(state))
	for _, key := range keys {
		if _, ok := state[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	rest := make([]string, 0, len(state)-len(out))
	for key := range state {
		if _, ok := seen[key]; !ok {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// JSON is the default serializer. Serialize writes keys in sorted order,
// SerializeOrdered keeps the given top-level order. Numbers decode as float64.
type JSON struct{}

func (JSON) Serialize(state map[string]any) (string, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("json marshal: %w", err)
	}
	return string(data), nil
}

func (JSON) SerializeOrdered(keys []string, state map[string]any) (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range orderKeys(keys, state) {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return "", fmt.Errorf("json marshal key %q: %w", key, err)
		}
		value, err := json.Marshal(state[key])
		if err != nil {
			return "", fmt.Errorf("json marshal %q: %w", key, err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.String(), nil
}

func (JSON) Deserialize(payload string) (map[string]any, error) {
	var state map[string]any
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return state, nil
}

// YAML stores payloads as YAML documents.
type YAML struct{}

func (YAML) Serialize(state map[string]any) (string, error) {
	data, err := yaml.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("yaml marshal: %w", err)
	}
	return string(data), nil
}

func (YAML) SerializeOrdered(keys []string, state map[string]any) (string, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range orderKeys(keys, state) {
		var value yaml.Node
		if err := value.Encode(state[key]); err != nil {
			return "", fmt.Errorf("yaml marshal %q: %w", key, err)
		}
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			&value,
		)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("yaml marshal: %w", err)
	}
	return string(data), nil
}

func (YAML) Deserialize(payload string) (map[string]any, error) {
	var state map[string]any
	if err := yaml.Unmarshal([]byte(payload), &state); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return normalize(state).(map[string]any), nil
}

// MsgPack stores payloads in the msgpack binary format.
type MsgPack struct{}

func (MsgPack) Serialize(state map[string]any) (string, error) {
	data, err := msgpack.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("msgpack marshal: %w", err)
	}
	return string(data), nil
}

func (MsgPack) Deserialize(payload string) (map[string]any, error) {
	var state map[string]any
	if err := msgpack.Unmarshal([]byte(payload), &state); err != nil {
		return nil, fmt.Errorf("msgpack unmarshal: %w", err)
	}
	return normalize(state).(map[string]any), nil
}

// Funcs adapts a pair of functions. A nil func falls back to JSON.
type Funcs struct {
	SerializeFunc   func(map[string]any) (string, error)
	DeserializeFunc func(string) (map[string]any, error)
}

func (f Funcs) Serialize(state map[string]any) (string, error) {
	if f.SerializeFunc == nil {
		return JSON{}.Serialize(state)
	}
	return f.SerializeFunc(state)
}

func (f Funcs) SerializeOrdered(keys []string, state map[string]any) (string, error) {
	if f.SerializeFunc == nil {
		return JSON{}.SerializeOrdered(keys, state)
	}
	return f.SerializeFunc(state)
}

func (f Funcs) Deserialize(payload string) (map[string]any, error) {
	if f.DeserializeFunc == nil {
		return JSON{}.Deserialize(payload)
	}
	return f.DeserializeFunc(payload)
}

// normalize rewrites interface keyed maps produced by some decoders into
// string keyed maps.
func normalize(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		if typed == nil {
			return map[string]any{}
		}
		for key, item := range typed {
			typed[key] = normalize(item)
		}
		return typed
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[fmt.Sprint(key)] = normalize(item)
		}
		return out
	case []any:
		for i, item := range typed {
			typed[i] = normalize(item)
		}
		return typed
	default:
		return value
	}
}
