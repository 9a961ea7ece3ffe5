package assertion

import (
	"fmt"
	"strings"
)

func Contains[T comparable](items []T, item T, msgAndArgs ...interface{}) error {
	for _, i := range items {
		if i == item {
			return nil
		}
	}
	return failWithValues(messageOf(msgAndArgs, fmt.Sprintf("expected %v to contain %v", items, item)), item, items)
}

func NotContains[T comparable](items []T, item T, msgAndArgs ...interface{}) error {
	for _, i := range items {
		if i == item {
			return failWithValues(messageOf(msgAndArgs, fmt.Sprintf("expected %v not to contain %v", items, item)), item, items)
		}
	}
	return nil
}

func Len[T any](items []T, length int, msgAndArgs ...interface{}) error {
	if len(items) != length {
		return failWithValues(
			messageOf(msgAndArgs, fmt.Sprintf("expected length %d, got %d", length, len(items))),
			length, len(items))
	}
	return nil
}

func NotEmpty[T any](items []T, msgAndArgs ...interface{}) error {
	if len(items) == 0 {
		return fail(messageOf(msgAndArgs, "expected a non-empty list"))
	}
	return nil
}

func StringContains(s, substring string, msgAndArgs ...interface{}) error {
	if !strings.Contains(s, substring) {
		return failWithValues(messageOf(msgAndArgs, fmt.Sprintf("expected %q to contain %q", s, substring)), substring, s)
	}
	return nil
}

func StringNotContains(s, substring string, msgAndArgs ...interface{}) error {
	if strings.Contains(s, substring) {
		return failWithValues(messageOf(msgAndArgs, fmt.Sprintf("expected %q not to contain %q", s, substring)), substring, s)
	}
	return nil
}
