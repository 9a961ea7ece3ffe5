package assertion

import (
	"fmt"
	"reflect"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func True(value bool, msgAndArgs ...interface{}) error {
	if !value {
		return failWithValues(messageOf(msgAndArgs, "expected value to be true"), true, value)
	}
	return nil
}

func False(value bool, msgAndArgs ...interface{}) error {
	if value {
		return failWithValues(messageOf(msgAndArgs, "expected value to be false"), false, value)
	}
	return nil
}

func Equal[T comparable](actual, expected T, msgAndArgs ...interface{}) error {
	if actual != expected {
		return failWithValues(
			messageOf(msgAndArgs, fmt.Sprintf("expected %v to equal %v", actual, expected)),
			expected, actual)
	}
	return nil
}

func NotEqual[T comparable](actual, unexpected T, msgAndArgs ...interface{}) error {
	if actual == unexpected {
		return failWithValues(
			messageOf(msgAndArgs, fmt.Sprintf("expected value not to equal %v", unexpected)),
			unexpected, actual)
	}
	return nil
}

// Defined fails if value is nil, a nil pointer, map, slice, channel, function or
// interface, or a null ldvalue.Value.
func Defined(value interface{}, msgAndArgs ...interface{}) error {
	if isUndefined(value) {
		return fail(messageOf(msgAndArgs, "expected value to be defined"))
	}
	return nil
}

func Undefined(value interface{}, msgAndArgs ...interface{}) error {
	if !isUndefined(value) {
		return failWithValues(messageOf(msgAndArgs, "expected value to be undefined"), nil, value)
	}
	return nil
}

func isUndefined(value interface{}) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case ldvalue.Value:
		return v.IsNull()
	case ldvalue.OptionalInt:
		return !v.IsDefined()
	case ldvalue.OptionalString:
		return !v.IsDefined()
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
