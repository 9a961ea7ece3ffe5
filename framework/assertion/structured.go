package assertion

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

var deepEqualOptions = []cmp.Option{
	cmp.Comparer(func(a, b ldvalue.Value) bool { return a.Equal(b) }),
	cmp.Exporter(func(reflect.Type) bool { return true }),
}

// DeepEqual compares two values structurally. Map and JSON object keys are compared as
// sets, so key order never matters; slice and array element order does.
func DeepEqual(actual, expected interface{}, msgAndArgs ...interface{}) error {
	equal, diff := deepCompare(actual, expected)
	if !equal {
		message := messageOf(msgAndArgs, "expected values to be deeply equal")
		if diff != "" && len(msgAndArgs) == 0 {
			message += " (-expected +actual):\n" + diff
		}
		return failWithValues(message, expected, actual)
	}
	return nil
}

func NotDeepEqual(actual, unexpected interface{}, msgAndArgs ...interface{}) error {
	if equal, _ := deepCompare(actual, unexpected); equal {
		return failWithValues(messageOf(msgAndArgs, "expected values not to be deeply equal"), unexpected, actual)
	}
	return nil
}

func deepCompare(actual, expected interface{}) (equal bool, diff string) {
	if a, ok := actual.(ldvalue.Value); ok {
		if e, ok := expected.(ldvalue.Value); ok {
			if a.Equal(e) {
				return true, ""
			}
			return false, fmt.Sprintf("- %s\n+ %s", e.JSONString(), a.JSONString())
		}
	}
	defer func() {
		// cmp panics on types it cannot compare, such as funcs that are not nil
		if r := recover(); r != nil {
			equal, diff = false, fmt.Sprintf("values are not comparable: %v", r)
		}
	}()
	if cmp.Equal(expected, actual, deepEqualOptions...) {
		return true, ""
	}
	return false, cmp.Diff(expected, actual, deepEqualOptions...)
}

// HasProperty fails unless obj is a JSON object with the given key.
func HasProperty(obj ldvalue.Value, key string, msgAndArgs ...interface{}) error {
	if obj.Type() != ldvalue.ObjectType {
		return failWithValues(
			messageOf(msgAndArgs, fmt.Sprintf("expected an object with property %q, got %s", key, obj.Type())),
			key, obj)
	}
	for _, k := range obj.Keys() {
		if k == key {
			return nil
		}
	}
	return failWithValues(
		messageOf(msgAndArgs, fmt.Sprintf("expected object to have property %q (has %s)", key, strings.Join(obj.Keys(), ", "))),
		key, obj)
}

// PropertyEquals fails unless obj has the given key and its value equals expected.
func PropertyEquals(obj ldvalue.Value, key string, expected ldvalue.Value, msgAndArgs ...interface{}) error {
	if err := HasProperty(obj, key, msgAndArgs...); err != nil {
		return err
	}
	actual := obj.GetByKey(key)
	if !actual.Equal(expected) {
		return failWithValues(
			messageOf(msgAndArgs, fmt.Sprintf("expected property %q to be %s, got %s", key, expected.JSONString(), actual.JSONString())),
			expected, actual)
	}
	return nil
}
