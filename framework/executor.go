package framework

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const (
	cancelledMessage        = "Test run was cancelled"
	suiteSetupFailedMessage = "Suite setup failed"
)

type panicError struct {
	value interface{}
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("unexpected panic in test: %+v", e.value)
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// RunTestCase runs one test's setup, run and teardown procedures and reports the outcome.
// It never panics: every failure ends up in the returned result.
func RunTestCase(ctx context.Context, test TestCase, tc *TestContext) TestResult {
	if ctx.Err() != nil {
		tc.Log("skipping %s: run was cancelled", test.ID)
		return skippedResult(test, cancelledMessage)
	}

	tc.resetCapture()
	start := time.Now()
	tc.Log("starting test %s (%s)", test.ID, test.Name)

	var err error
	if test.Setup != nil {
		err = runProcedure(ctx, tc, test.Setup)
	}
	if err == nil {
		if test.Run == nil {
			err = errors.New("test has no run procedure")
		} else {
			err = runProcedure(ctx, tc, test.Run)
		}
	}
	if test.Teardown != nil {
		// teardown must still be able to delete things after the run was cancelled
		if terr := runProcedure(context.WithoutCancel(ctx), tc, test.Teardown); terr != nil {
			tc.Log("teardown failed for %s: %s", test.ID, terr)
		}
	}

	duration := time.Since(start)
	if duration < 0 {
		duration = 0
	}
	result := TestResult{
		TestID:   test.ID,
		TestName: test.Name,
		Status:   StatusPassed,
		Duration: duration,
		Request:  tc.LastRequest(),
		Response: tc.LastResponse(),
	}
	if err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
		result.Stack = stackOf(err)
		tc.Log("test %s failed: %s", test.ID, result.Error)
	} else {
		tc.Log("test %s passed in %s", test.ID, duration)
	}
	if id, ok := tc.LastCreatedModule(test.ModuleType); ok {
		result.ModuleID = ldvalue.NewOptionalInt(id)
	}
	return result
}

func runProcedure(ctx context.Context, tc *TestContext, fn TestFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r, stack: debug.Stack()}
		}
	}()
	return fn(ctx, tc)
}

func stackOf(err error) string {
	var pe *panicError
	if errors.As(err, &pe) {
		return string(pe.stack)
	}
	var st stackTracer
	if errors.As(err, &st) {
		return fmt.Sprintf("%+v", st.StackTrace())
	}
	return ""
}

func skippedResult(test TestCase, reason string) TestResult {
	return TestResult{
		TestID:   test.ID,
		TestName: test.Name,
		Status:   StatusSkipped,
		Error:    reason,
	}
}
