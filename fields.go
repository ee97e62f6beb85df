package tivity

import (
	"fmt"
	"sort"
	"strings"
)

// Partial is a shallow update merged into the store on commit.
type Partial map[string]any

// Action is a copy-and-return action. Returning a non-nil Partial commits it
// once the action returns; returning an error commits nothing.
type Action func(s *Sandbox, args ...any) (Partial, error)

// MutateFunc is a direct-mutation action. Every write made through the Draft
// commits the whole working copy immediately.
type MutateFunc func(d *Draft, args ...any) error

// FieldKind classifies a declared key.
type FieldKind string

const (
	KindData     FieldKind = "data"
	KindAction   FieldKind = "action"
	KindMutation FieldKind = "mutation"
)

// Field declares one key of the store schema.
type Field struct {
	Key    string
	Kind   FieldKind
	Value  any
	action Action
	mutate MutateFunc
}

// Data declares a data field with its initial value.
func Data(key string, value any) Field {
	return Field{Key: key, Kind: KindData, Value: value}
}

// Method declares a copy-and-return action.
func Method(key string, fn Action) Field {
	return Field{Key: key, Kind: KindAction, action: fn}
}

// Mutation declares a direct-mutation action.
func Mutation(key string, fn MutateFunc) Field {
	return Field{Key: key, Kind: KindMutation, mutate: fn}
}

// IsAction reports whether the field is callable.
func (f Field) IsAction() bool {
	return f.Kind == KindAction || f.Kind == KindMutation
}

// Fields is an ordered store schema.
type Fields []Field

// Fields implements Initializer.
func (f Fields) Fields() Fields {
	return f
}

// Initializer yields the schema a store is built from. It is evaluated once.
type Initializer interface {
	Fields() Fields
}

// InitFunc lazily builds a schema.
type InitFunc func() Fields

// Fields implements Initializer.
func (fn InitFunc) Fields() Fields {
	if fn == nil {
		return nil
	}
	return fn()
}

// FromMap builds Fields from a plain map with keys sorted for a stable order.
// Values of type Action or MutateFunc become actions, everything else data.
func FromMap(values map[string]any) Fields {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fields := make(Fields, 0, len(keys))
	for _, key := range keys {
		switch typed := values[key].(type) {
		case Action:
			fields = append(fields, Method(key, typed))
		case func(*Sandbox, ...any) (Partial, error):
			fields = append(fields, Method(key, typed))
		case MutateFunc:
			fields = append(fields, Mutation(key, typed))
		case func(*Draft, ...any) error:
			fields = append(fields, Mutation(key, typed))
		default:
			fields = append(fields, Data(key, typed))
		}
	}
	return fields
}

func resolveFields(init Initializer) Fields {
	if init == nil {
		return nil
	}
	fields := init.Fields()
	return append(Fields(nil), fields...)
}

func validateFields(fields Fields) error {
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if strings.TrimSpace(field.Key) == "" {
			return &ConfigError{Field: "fields", Err: fmt.Errorf("key must not be empty")}
		}
		if _, ok := seen[field.Key]; ok {
			return &ConfigError{Field: field.Key, Err: ErrDuplicateKey}
		}
		seen[field.Key] = struct{}{}
		switch field.Kind {
		case KindData:
		case KindAction:
			if field.action == nil {
				return &ConfigError{Field: field.Key, Err: fmt.Errorf("action is nil")}
			}
		case KindMutation:
			if field.mutate == nil {
				return &ConfigError{Field: field.Key, Err: fmt.Errorf("mutation is nil")}
			}
		default:
			return &ConfigError{Field: field.Key, Err: fmt.Errorf("unknown field kind %q", field.Kind)}
		}
	}
	return nil
}
