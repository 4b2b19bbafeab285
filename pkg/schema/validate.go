package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-multierror"
)

var (
	digitsRe  = regexp.MustCompile(`^[0-9]+$`)
	numericRe = regexp.MustCompile(`^\s*[+-]?([0-9]+(\.[0-9]*)?|\.[0-9]+)([eE][+-]?[0-9]+)?\s*$`)
	dateRe    = regexp.MustCompile(`^[0-9]{4}-(0[1-9]|1[0-2])-(0[1-9]|[1-2][0-9]|3[0-1])$`)
)

var (
	errNotInteger  = validation.NewError("validation_not_integer", "must be an integer")
	errNotNumber   = validation.NewError("validation_not_number", "must be a number")
	errNotArray    = validation.NewError("validation_not_array", "must be an array")
	errNotScalar   = validation.NewError("validation_not_scalar", "must be a scalar value")
	errInvalidDate = validation.NewError("validation_invalid_date", "must be a date in YYYY-MM-DD format")
)

// Validate reports whether value is acceptable for the property p. It returns
// false when p is nil; callers are expected to check that the field exists
// before validating it.
func Validate(p *Property, value any) bool {
	if p == nil {
		return false
	}
	return Check(p, value) == nil
}

// Check validates value against p and returns the first failing rule.
//
// Rules run in order: type, length, enum, format. The empty string and nil
// are exempt from every rule except maxLength, which they trivially satisfy.
// The date-time format is not checked.
func Check(p *Property, value any) error {
	if p == nil {
		return fmt.Errorf("property is not declared")
	}
	return validation.Validate(value, rules(p)...)
}

func rules(p *Property) []validation.Rule {
	var rs []validation.Rule

	switch p.Type {
	case TypeInteger:
		rs = append(rs, validation.By(isInteger))
	case TypeNumber:
		rs = append(rs, validation.By(isNumber))
	case TypeArray:
		rs = append(rs, validation.By(isArray))
	}

	if p.MaxLength != nil || p.MinLength != nil {
		rs = append(rs, lengthRule(p.MinLength, p.MaxLength))
	}

	if len(p.Enum) > 0 {
		rs = append(rs, enumRule(p.Enum))
	}

	if p.Format == FormatDate {
		rs = append(rs, validation.By(func(value any) error {
			if isEmpty(value) {
				return nil
			}
			s, ok := scalarString(value)
			if !ok {
				return errInvalidDate
			}
			if err := validation.Match(dateRe).Validate(s); err != nil {
				return errInvalidDate
			}
			return nil
		}))
	}

	return rs
}

func isInteger(value any) error {
	if isEmpty(value) {
		return nil
	}
	s, ok := scalarString(value)
	if !ok || !digitsRe.MatchString(s) {
		return errNotInteger
	}
	return nil
}

func isNumber(value any) error {
	if isEmpty(value) {
		return nil
	}
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return nil
	}
	s, ok := scalarString(value)
	if !ok || !numericRe.MatchString(s) {
		return errNotNumber
	}
	return nil
}

func isArray(value any) error {
	if isEmpty(value) {
		return nil
	}
	switch reflect.ValueOf(value).Kind() {
	case reflect.Slice, reflect.Array:
		return nil
	}
	return errNotArray
}

// lengthRule bounds the byte length of scalars and the element count of
// sequences and maps.
func lengthRule(minLength, maxLength *int) validation.Rule {
	return validation.By(func(value any) error {
		v := lengthValue(value)

		if maxLength != nil {
			if *maxLength <= 0 {
				if err := validation.Validate(v, validation.Empty); err != nil {
					return err
				}
			} else if err := validation.Validate(v, validation.Length(0, *maxLength)); err != nil {
				return err
			}
		}

		if minLength != nil && !isEmpty(value) {
			if err := validation.Validate(v, validation.Length(*minLength, 0)); err != nil {
				return err
			}
		}

		return nil
	})
}

func enumRule(enum []any) validation.Rule {
	members := make([]any, 0, len(enum))
	for _, e := range enum {
		if s, ok := scalarString(e); ok {
			members = append(members, s)
		}
	}

	return validation.By(func(value any) error {
		if isEmpty(value) {
			return nil
		}
		s, ok := scalarString(value)
		if !ok {
			return errNotScalar
		}
		return validation.In(members...).Validate(s)
	})
}

func lengthValue(value any) any {
	if value == nil {
		return ""
	}
	if s, ok := scalarString(value); ok {
		return s
	}
	return value
}

// isEmpty reports whether value is the empty string or nil.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case json.Number:
		return v == ""
	}
	return false
}

// scalarString returns the string form of a scalar value. It returns false
// for maps, slices, structs and other composite values.
func scalarString(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case []byte:
		return string(v), true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case fmt.Stringer:
		return v.String(), true
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.String:
		return rv.String(), true
	}
	return "", false
}

// FieldError describes a payload field that failed validation.
type FieldError struct {
	Field string
	Value any
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ValidateData validates every key of data against the document and returns
// all failures. Keys that are not declared properties are reported too.
func (d *Document) ValidateData(data map[string]any) error {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var result *multierror.Error
	for _, k := range keys {
		p := d.Property(k)
		if p == nil {
			result = multierror.Append(result, &FieldError{
				Field: k,
				Value: data[k],
				Err:   fmt.Errorf("not a property of %s", d.ResourceType),
			})
			continue
		}
		if err := Check(p, data[k]); err != nil {
			result = multierror.Append(result, &FieldError{Field: k, Value: data[k], Err: err})
		}
	}

	return result.ErrorOrNil()
}
