package framework

import (
	"context"

	"github.com/logicmonitor/lm-module-tests/servicedef"
)

// RunOptions controls a run of several suites.
type RunOptions struct {
	PortalID    string
	PortalLabel string
	Messenger   Messenger
	Logger      Logger

	// ModuleTypes restricts the run to suites for these module types. Empty means all.
	ModuleTypes []servicedef.ModuleType

	// TestIDs restricts every suite to these tests. Empty means all.
	TestIDs []string

	SkipCleanup bool
	Observer    Observer
}

// RunTestSuites creates a new TestContext and runs the suites in it, in order.
func RunTestSuites(ctx context.Context, suites []TestSuite, opts RunOptions) []TestSuiteResult {
	tc := NewTestContext(opts.PortalID, opts.PortalLabel, opts.Messenger, opts.Logger)
	return RunTestSuitesWithContext(ctx, tc, suites, opts)
}

// RunTestSuitesWithContext runs the suites in order against an existing TestContext, which
// should not have been used for any other run. Cancellation is checked before each suite;
// once ctx is done, no further suites are started and they do not appear in the results.
func RunTestSuitesWithContext(ctx context.Context, tc *TestContext, suites []TestSuite, opts RunOptions) []TestSuiteResult {
	selected := FilterSuitesByType(suites, opts.ModuleTypes)
	results := make([]TestSuiteResult, 0, len(selected))
	for _, suite := range selected {
		if ctx.Err() != nil {
			tc.Log("run cancelled; not starting suite %s", suite.ID)
			break
		}
		results = append(results, RunTestSuite(ctx, suite, tc, SuiteOptions{
			TestIDs:     opts.TestIDs,
			SkipCleanup: opts.SkipCleanup,
			Observer:    opts.Observer,
		}))
	}
	return results
}

// FilterSuitesByType keeps the suites for the given module types, preserving order. An
// empty list keeps every suite.
func FilterSuitesByType(suites []TestSuite, types []servicedef.ModuleType) []TestSuite {
	if len(types) == 0 {
		return suites
	}
	allowed := make(map[servicedef.ModuleType]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}
	var ret []TestSuite
	for _, s := range suites {
		if allowed[s.ModuleType] {
			ret = append(ret, s)
		}
	}
	return ret
}

// Aggregate adds up the counts and durations of several suite results.
func Aggregate(results []TestSuiteResult) Summary {
	s := Summary{AllCleanupsSuccessful: true}
	for _, r := range results {
		s.TotalTests += r.TotalTests
		s.Passed += r.Passed
		s.Failed += r.Failed
		s.Skipped += r.Skipped
		s.Duration += r.Duration
		s.AllCleanupsSuccessful = s.AllCleanupsSuccessful && r.CleanupSuccessful
	}
	return s
}
