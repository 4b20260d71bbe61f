package cliargs

import (
	"encoding"
	"errors"
	"fmt"
	"math"
	"reflect"
)

var (
	ErrInvalidBindTarget   = errors.New("bind target must be a non-nil pointer to a struct")
	ErrUnsupportedBindType = errors.New("unsupported field type")
)

// Bind copies the resolved values into the `arg`-tagged fields of dest,
// which must be a non-nil pointer to a struct. Fields whose argument is
// unresolved, nil or Null keep their current value. If dest implements
// Validatable, it is validated afterwards.
func (i *Instance) Bind(dest any) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w, got %T", ErrInvalidBindTarget, dest)
	}
	target := rv.Elem()

	fields, err := cachedTaggedFields(target.Type())
	if err != nil {
		return err
	}

	for _, f := range fields {
		value := i.args[f.tag.Name]
		if IsAbsent(value) {
			continue
		}
		if err := setField(target.FieldByIndex(f.index), value); err != nil {
			return fmt.Errorf("error binding %s to field %s: %w", f.tag.Name, f.field.Name, err)
		}
	}
	return validate(i.command.name, dest)
}

///////////////////////////////////////////////////////////////////////////////
// Helpers
///////////////////////////////////////////////////////////////////////////////

// Set field value with type conversion
//
// Currently supports:
//   - values assignable to the field type
//   - int64 and integral float64 to any int or uint kind (with overflow checking)
//   - float64 and int64 to float kinds
//   - []any to slices, element by element
//   - string to TextUnmarshaler
//   - pointers to any of the above
func setField(field reflect.Value, value any) error {
	if IsAbsent(value) {
		return nil
	}

	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return setField(field.Elem(), value)
	}

	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(field.Type()) {
		field.Set(rv)
		return nil
	}

	if s, ok := value.(string); ok && field.CanAddr() {
		if unmarshaler, ok := field.Addr().Interface().(encoding.TextUnmarshaler); ok {
			return unmarshaler.UnmarshalText([]byte(s))
		}
	}

	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return setIntValue(field, value)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return setUintValue(field, value)
	case reflect.Float32, reflect.Float64:
		return setFloatValue(field, value)
	case reflect.Slice:
		return setSliceValue(field, value)
	default:
		return fmt.Errorf("%w: cannot set %s from %T", ErrUnsupportedBindType, field.Type(), value)
	}
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt64 || v < math.MinInt64 {
			return 0, fmt.Errorf("%w: %v", ErrNotInteger, v)
		}
		return int64(v), nil
	default:
		return 0, fmt.Errorf("%w: cannot convert %T to an integer", ErrUnsupportedBindType, value)
	}
}

// setIntValue sets integer field values with overflow checking
func setIntValue(field reflect.Value, value any) error {
	i, err := toInt64(value)
	if err != nil {
		return err
	}
	if field.OverflowInt(i) {
		return fmt.Errorf("value %d overflows %s", i, field.Type())
	}
	field.SetInt(i)
	return nil
}

// setUintValue sets unsigned integer field values with overflow checking
func setUintValue(field reflect.Value, value any) error {
	i, err := toInt64(value)
	if err != nil {
		return err
	}
	if i < 0 || field.OverflowUint(uint64(i)) {
		return fmt.Errorf("value %d overflows %s", i, field.Type())
	}
	field.SetUint(uint64(i))
	return nil
}

// setFloatValue sets float field values with overflow checking
func setFloatValue(field reflect.Value, value any) error {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case int64:
		f = float64(v)
	default:
		return fmt.Errorf("%w: cannot convert %T to a float", ErrUnsupportedBindType, value)
	}
	if field.OverflowFloat(f) {
		return fmt.Errorf("value %f overflows %s", f, field.Type())
	}
	field.SetFloat(f)
	return nil
}

// setSliceValue sets slice field values from array arguments. Absent
// elements keep the zero value of the element type.
func setSliceValue(field reflect.Value, value any) error {
	if s, ok := value.(string); ok && field.Type().Elem().Kind() == reflect.Uint8 {
		field.SetBytes([]byte(s))
		return nil
	}

	values, ok := value.([]any)
	if !ok {
		return fmt.Errorf("%w: cannot set %s from %T", ErrUnsupportedBindType, field.Type(), value)
	}

	slice := reflect.MakeSlice(field.Type(), len(values), len(values))
	for i, v := range values {
		if err := setField(slice.Index(i), v); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	field.Set(slice)
	return nil
}
