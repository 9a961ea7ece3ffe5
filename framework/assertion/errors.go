// Package assertion provides the checks used inside test procedures. Every check returns
// nil on success or an error wrapping *AssertionError on failure; none of them panic.
package assertion

import (
	"fmt"

	"github.com/pkg/errors"
)

// AssertionError is the failure produced by every check in this package. When HasValues
// is true, Expected and Actual hold the values that were compared.
type AssertionError struct {
	Message   string
	Expected  interface{}
	Actual    interface{}
	HasValues bool
}

func (e *AssertionError) Error() string {
	return e.Message
}

// IsAssertionError returns true if err is, or wraps, an *AssertionError.
func IsAssertionError(err error) bool {
	var ae *AssertionError
	return errors.As(err, &ae)
}

// Fail returns an assertion failure with the given message.
func Fail(msgAndArgs ...interface{}) error {
	return fail(messageOf(msgAndArgs, "assertion failed"))
}

func fail(message string) error {
	return errors.WithStack(&AssertionError{Message: message})
}

func failWithValues(message string, expected, actual interface{}) error {
	return errors.WithStack(&AssertionError{
		Message:   message,
		Expected:  expected,
		Actual:    actual,
		HasValues: true,
	})
}

func messageOf(msgAndArgs []interface{}, defaultMessage string) string {
	switch len(msgAndArgs) {
	case 0:
		return defaultMessage
	case 1:
		return fmt.Sprint(msgAndArgs[0])
	}
	if format, ok := msgAndArgs[0].(string); ok {
		return fmt.Sprintf(format, msgAndArgs[1:]...)
	}
	return fmt.Sprint(msgAndArgs...)
}
