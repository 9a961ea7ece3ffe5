package assertion

import (
	"cmp"
	"fmt"
)

func Greater[T cmp.Ordered](actual, bound T, msgAndArgs ...interface{}) error {
	return compare(actual, bound, actual > bound, ">", msgAndArgs)
}

func GreaterOrEqual[T cmp.Ordered](actual, bound T, msgAndArgs ...interface{}) error {
	return compare(actual, bound, actual >= bound, ">=", msgAndArgs)
}

func Less[T cmp.Ordered](actual, bound T, msgAndArgs ...interface{}) error {
	return compare(actual, bound, actual < bound, "<", msgAndArgs)
}

func LessOrEqual[T cmp.Ordered](actual, bound T, msgAndArgs ...interface{}) error {
	return compare(actual, bound, actual <= bound, "<=", msgAndArgs)
}

func compare[T cmp.Ordered](actual, bound T, ok bool, op string, msgAndArgs []interface{}) error {
	if ok {
		return nil
	}
	return failWithValues(messageOf(msgAndArgs, fmt.Sprintf("expected %v %s %v", actual, op, bound)), bound, actual)
}
