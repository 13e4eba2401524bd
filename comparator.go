// ABOUTME: Comparators and condition coercion for decision chains
// ABOUTME: Provides the default structural comparator and JS-style truthiness

package decide

import (
	"math"
	"reflect"
	"strings"
)

// Comparator reports whether a match subject and a case candidate should be
// considered equal. Case runs the comparator once, at the moment the case is
// declared. A comparator that panics marks the case as not satisfied; the
// panic is reported through the chain's diagnostics and never propagates.
type Comparator func(subject, candidate any) bool

// DefaultComparator is deep structural equality with one extra rule: NaN
// compares equal to NaN, so a NaN subject can still route to a NaN case.
func DefaultComparator(subject, candidate any) bool {
	if isNaN(subject) && isNaN(candidate) {
		return true
	}
	return reflect.DeepEqual(subject, candidate)
}

// FoldComparator compares two strings case-insensitively. Any other pair of
// values falls back to DefaultComparator.
func FoldComparator(subject, candidate any) bool {
	s, sok := subject.(string)
	c, cok := candidate.(string)
	if sok && cok {
		return strings.EqualFold(s, c)
	}
	return DefaultComparator(subject, candidate)
}

func isNaN(v any) bool {
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return math.IsNaN(rv.Float())
	}
	return false
}

// Truthy reports how When coerces a non-boolean condition. The rules follow
// the usual scripting-language convention: nil, false, zero numbers, NaN,
// the empty string, and nil pointers, maps, slices, channels, and functions
// are falsy; everything else, including empty non-nil collections and zero
// structs, is truthy.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case float64:
		return x != 0 && !math.IsNaN(x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Complex64, reflect.Complex128:
		return rv.Complex() != 0
	case reflect.String:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface, reflect.UnsafePointer:
		return !rv.IsNil()
	}
	return true
}
