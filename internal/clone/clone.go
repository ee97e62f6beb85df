// Package clone provides the reflective deep copy and structural equality used
// for working copies and for the dependency change predicate.
package clone

import "reflect"

// Value returns a deep copy of v. Maps, slices, arrays, pointers and exported
// struct fields are copied recursively; functions and channels are shared.
func Value[T any](v T) T {
	if out, ok := copyAny(v).(T); ok {
		return out
	}
	return v
}

// Map deep copies a string keyed map. A nil map yields an empty map.
func Map(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = copyAny(value)
	}
	return out
}

// copyAny handles the shapes state trees are made of without reflection and
// falls back to copyReflect for everything else.
func copyAny(v any) any {
	switch typed := v.(type) {
	case nil, string, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return v
	case map[string]any:
		if typed == nil {
			return typed
		}
		return Map(typed)
	case []any:
		if typed == nil {
			return typed
		}
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = copyAny(item)
		}
		return out
	case []string:
		if typed == nil {
			return typed
		}
		return append([]string(nil), typed...)
	}
	return copyReflect(reflect.ValueOf(v)).Interface()
}

func copyReflect(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		for iter := v.MapRange(); iter.Next(); {
			out.SetMapIndex(iter.Key(), copyElem(iter.Value(), v.Type().Elem()))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(copyElem(v.Index(i), v.Type().Elem()))
		}
		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(copyElem(v.Index(i), v.Type().Elem()))
		}
		return out
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(copyElem(v.Elem(), v.Type().Elem()))
		return out
	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		for i := 0; i < v.NumField(); i++ {
			if field := out.Field(i); field.CanSet() {
				field.Set(copyElem(v.Field(i), field.Type()))
			}
		}
		return out
	default:
		return v
	}
}

// copyElem copies a container element so it can be stored in a slot of typ.
func copyElem(v reflect.Value, typ reflect.Type) reflect.Value {
	if v.Kind() != reflect.Interface {
		return copyReflect(v)
	}
	if v.IsNil() || !v.CanInterface() {
		return reflect.Zero(typ)
	}
	return reflect.ValueOf(copyAny(v.Interface()))
}
