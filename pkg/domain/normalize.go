package domain

import (
	"errors"
	"reflect"
)

// AsContractError finds the first ContractError in err's chain and returns it in
// value form. Ports may return pointer variants such as &NotFound{}; those are
// dereferenced. A nil pointer variant is not a contract error.
func AsContractError(err error) (ContractError, bool) {
	var ce ContractError
	if !errors.As(err, &ce) {
		return nil, false
	}
	return Normalize(ce)
}

// Normalize dereferences pointer variants, including the nested failure or
// violation of a variant, so that callers can switch on value types only.
// ok is false when err is nil or a nil pointer.
func Normalize(err ContractError) (ContractError, bool) {
	v, ok := deref(err)
	if !ok || v == nil {
		return nil, false
	}
	switch e := v.(type) {
	case InvalidTitle:
		e.Failure, _ = deref(e.Failure)
		return e, true
	case InvalidDescription:
		e.Failure, _ = deref(e.Failure)
		return e, true
	case InvalidAlias:
		e.Failure, _ = deref(e.Failure)
		return e, true
	case HierarchyViolation:
		e.Violation, _ = deref(e.Violation)
		return e, true
	}
	return v, true
}

// deref returns the value a pointer-typed v points to, as a T. A nil pointer
// yields the zero T and false; a non-pointer is returned unchanged.
func deref[T any](v T) (T, bool) {
	var zero T
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer {
		return v, true
	}
	if rv.IsNil() {
		return zero, false
	}
	out, ok := rv.Elem().Interface().(T)
	if !ok {
		return zero, false
	}
	return out, true
}
