package framework

import (
	"context"
	"time"
)

// SuiteOptions controls a single suite run.
type SuiteOptions struct {
	// TestIDs restricts the run to these tests. Empty means all of them.
	TestIDs []string

	// SkipCleanup leaves created modules in the portal.
	SkipCleanup bool

	Observer Observer
}

// RunTestSuite runs the suite's tests one at a time and then deletes every module they
// registered for cleanup.
//
// If BeforeAll fails, no test runs: each is reported as skipped, and AfterAll is not called.
// Modules that BeforeAll registered before failing are still cleaned up.
//
// Cancellation is checked before each test; tests not yet started are reported as skipped,
// but the suite still runs AfterAll and cleanup.
func RunTestSuite(ctx context.Context, suite TestSuite, tc *TestContext, opts SuiteOptions) TestSuiteResult {
	observer := opts.Observer
	if observer == nil {
		observer = NullObserver()
	}
	start := time.Now()
	tests := suite.SelectTests(opts.TestIDs)
	result := TestSuiteResult{
		SuiteID:    suite.ID,
		SuiteName:  suite.Name,
		TotalTests: len(tests),
		Results:    make([]TestResult, 0, len(tests)),
	}
	progress := func(phase Phase, current string, status TestStatus) {
		observer.Progress(ProgressEvent{
			SuiteID:           suite.ID,
			Phase:             phase,
			TotalTests:        len(tests),
			CompletedTests:    len(result.Results),
			CurrentTest:       current,
			CurrentTestStatus: status,
		})
	}

	tc.Log("starting suite %s with %d test(s)", suite.ID, len(tests))
	progress(PhaseSetup, "", "")

	if suite.BeforeAll != nil {
		pendingBefore := len(tc.PendingCleanup())
		if err := runProcedure(ctx, tc, suite.BeforeAll); err != nil {
			tc.Log("setup failed for suite %s: %s", suite.ID, err)
			for _, test := range tests {
				r := skippedResult(test, suiteSetupFailedMessage)
				result.Results = append(result.Results, r)
				result.count(r.Status)
				observer.TestCompleted(r)
			}
			result.CleanupSuccessful = true
			if len(tc.PendingCleanup()) > pendingBefore {
				if opts.SkipCleanup {
					tc.Log("suite setup left modules behind; cleanup skipped by request")
				} else {
					tc.Log("suite setup left modules behind; cleaning them up")
					result.CleanupSuccessful, result.CleanupErrors = CleanupModules(ctx, tc)
				}
			}
			result.Duration = time.Since(start)
			return result
		}
	}

	progress(PhaseRunning, "", "")
	for _, test := range tests {
		var r TestResult
		if ctx.Err() != nil {
			r = skippedResult(test, cancelledMessage)
		} else {
			progress(PhaseRunning, displayName(test), "")
			r = RunTestCase(ctx, test, tc)
		}
		result.Results = append(result.Results, r)
		result.count(r.Status)
		observer.TestCompleted(r)
		progress(PhaseRunning, displayName(test), r.Status)
	}

	if suite.AfterAll != nil {
		if err := runProcedure(context.WithoutCancel(ctx), tc, suite.AfterAll); err != nil {
			tc.Log("teardown failed for suite %s: %s", suite.ID, err)
		}
	}

	progress(PhaseCleanup, "", "")
	if opts.SkipCleanup {
		tc.Log("cleanup skipped for suite %s; %d module(s) left in portal", suite.ID, len(tc.PendingCleanup()))
		result.CleanupSuccessful = true
	} else {
		result.CleanupSuccessful, result.CleanupErrors = CleanupModules(ctx, tc)
	}
	progress(PhaseComplete, "", "")

	result.Duration = time.Since(start)
	tc.Log("finished suite %s: %d passed, %d failed, %d skipped", suite.ID, result.Passed, result.Failed, result.Skipped)
	return result
}

func displayName(t TestCase) string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}
