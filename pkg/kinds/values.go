package kinds

import (
	"reflect"
	"unicode/utf8"
)

// isEmpty reports whether value is nil, blank or has zero length.
func isEmpty(value any) bool {
	if value == nil {
		return true
	}

	if s, ok := value.(string); ok {
		for _, r := range s {
			if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
				return false
			}
		}

		return true
	}

	n, ok := lengthOf(value)

	return ok && n == 0
}

// lengthOf returns the length of strings (in runes), slices, arrays and maps.
func lengthOf(value any) (int, bool) {
	if s, ok := value.(string); ok {
		return utf8.RuneCountInString(s), true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return v.Len(), true
	default:
		return 0, false
	}
}

// toInt converts any integer value, or a float without a fractional part, to
// an int. YAML decoders produce a mix of int, int64 and uint64.
func toInt(value any) (int, bool) {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(v.Uint()), true //nolint:gosec // Bounds are small.
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if f != float64(int(f)) {
			return 0, false
		}

		return int(f), true
	default:
		return 0, false
	}
}

// equalValues compares two values, treating numbers of different types as
// equal when they have the same value.
func equalValues(a, b any) bool {
	if an, ok := toInt(a); ok {
		if bn, ok := toInt(b); ok {
			return an == bn
		}
	}

	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if t := reflect.TypeOf(a); t == reflect.TypeOf(b) && t.Comparable() {
		return a == b
	}

	return reflect.DeepEqual(a, b)
}
