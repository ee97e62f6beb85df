package clone

import (
	"math"
	"reflect"
)

// Equal reports whether a and b are structurally equal. Scalars compare by
// value (numbers of different kinds compare numerically, so an int read from
// memory equals the float64 decoded from JSON), maps compare key by key,
// slices and arrays element by element, and functions by pointer identity.
func Equal(a, b any) bool {
	return equalValue(reflect.ValueOf(a), reflect.ValueOf(b))
}

func equalValue(a, b reflect.Value) bool {
	a = unwrap(a)
	b = unwrap(b)
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}

	if ak := numberKind(a); ak != notNumber {
		bk := numberKind(b)
		return bk != notNumber && equalNumber(a, ak, b, bk)
	}

	if a.Kind() != b.Kind() {
		return false
	}

	switch a.Kind() {
	case reflect.Map:
		if a.Len() != b.Len() {
			return false
		}
		iter := a.MapRange()
		for iter.Next() {
			key := iter.Key()
			if !key.Type().AssignableTo(b.Type().Key()) {
				return false
			}
			other := b.MapIndex(key)
			if !other.IsValid() {
				return false
			}
			if !equalValue(iter.Value(), other) {
				return false
			}
		}
		return true
	case reflect.Slice, reflect.Array:
		if a.Len() != b.Len() {
			return false
		}
		for i := 0; i < a.Len(); i++ {
			if !equalValue(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Struct:
		if a.Type() != b.Type() {
			return false
		}
		for i := 0; i < a.NumField(); i++ {
			if !a.Type().Field(i).IsExported() {
				continue
			}
			if !equalValue(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.String:
		return a.String() == b.String()
	case reflect.Bool:
		return a.Bool() == b.Bool()
	default:
		if a.Type() != b.Type() || !a.CanInterface() || !b.CanInterface() {
			return false
		}
		return reflect.DeepEqual(a.Interface(), b.Interface())
	}
}

func unwrap(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

type numKind int

const (
	notNumber numKind = iota
	signedNumber
	unsignedNumber
	floatNumber
)

func numberKind(v reflect.Value) numKind {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return signedNumber
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return unsignedNumber
	case reflect.Float32, reflect.Float64:
		if math.IsNaN(v.Float()) {
			return notNumber
		}
		return floatNumber
	default:
		return notNumber
	}
}

// equalNumber compares integers exactly and only goes through float64 when
// one side is a float.
func equalNumber(a reflect.Value, ak numKind, b reflect.Value, bk numKind) bool {
	if ak > bk {
		a, ak, b, bk = b, bk, a, ak
	}
	switch {
	case ak == signedNumber && bk == signedNumber:
		return a.Int() == b.Int()
	case ak == unsignedNumber && bk == unsignedNumber:
		return a.Uint() == b.Uint()
	case ak == signedNumber && bk == unsignedNumber:
		return a.Int() >= 0 && uint64(a.Int()) == b.Uint()
	case ak == floatNumber:
		return a.Float() == b.Float()
	case ak == signedNumber:
		f := b.Float()
		return f == math.Trunc(f) && f >= -(1<<63) && f < 1<<63 && int64(f) == a.Int()
	default:
		f := b.Float()
		return f == math.Trunc(f) && f >= 0 && f < 1<<64 && uint64(f) == a.Uint()
	}
}
