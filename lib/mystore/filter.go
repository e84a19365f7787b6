package mystore

import (
	"reflect"
)

// matches evaluates equality filters in-process for backends without a query engine
func matches[T any](value T, filters []Filter) bool {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return len(filters) == 0
	}

	for _, f := range filters {
		field := v.FieldByName(f.Field)
		if !field.IsValid() {
			return false
		}
		switch f.Compare {
		case "=", "==":
			if !reflect.DeepEqual(field.Interface(), f.Value) {
				return false
			}
		case "!=":
			if reflect.DeepEqual(field.Interface(), f.Value) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func filter[T any](values []T, filters []Filter) []T {
	result := make([]T, 0, len(values))
	for _, v := range values {
		if matches(v, filters) {
			result = append(result, v)
		}
	}
	return result
}
