package tivity

import (
	"fmt"
	"sort"
	"strings"
)

// FieldDescriptor describes one key of a store schema. Path is dotted for
// fields nested inside map values.
type FieldDescriptor struct {
	Path string
	Kind FieldKind
	Type string
}

// Schema describes the store: data fields flattened from the current snapshot
// followed by actions in declaration order.
func (s *Store) Schema() []FieldDescriptor {
	snap := s.GetSnapshot()
	var fields []FieldDescriptor
	for _, key := range snap.Keys() {
		value, _ := snap.Get(key)
		fields = append(fields, describeValue(value, key)...)
	}
	for _, name := range s.Actions() {
		fields = append(fields, FieldDescriptor{
			Path: name,
			Kind: s.actions[name].Kind,
			Type: "func",
		})
	}
	return fields
}

func describeValue(value any, prefix string) []FieldDescriptor {
	switch typed := value.(type) {
	case map[string]any:
		if len(typed) == 0 {
			return []FieldDescriptor{{Path: prefix, Kind: KindData, Type: "map[string]any"}}
		}
		var fields []FieldDescriptor
		for _, key := range sortedKeys(typed) {
			fields = append(fields, describeValue(typed[key], joinPath(prefix, key))...)
		}
		return fields
	case []any:
		elementType := "any"
		if len(typed) > 0 {
			elementType = typeName(typed[0])
		}
		return []FieldDescriptor{{Path: prefix, Kind: KindData, Type: "[]" + elementType}}
	default:
		return []FieldDescriptor{{Path: prefix, Kind: KindData, Type: typeName(typed)}}
	}
}

func typeName(value any) string {
	if value == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", value)
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return strings.Join([]string{prefix, segment}, ".")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
