package framework

import (
	"context"
	"errors"
	"testing"

	"github.com/logicmonitor/lm-module-tests/servicedef"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeTestSuite() TestSuite {
	return TestSuite{
		ID:         "ds",
		Name:       "DataSource",
		ModuleType: servicedef.DataSource,
		Tests: []TestCase{
			passingTest("one"),
			failingTest("two", "boom"),
			passingTest("three"),
		},
	}
}

func TestRunTestSuiteCountsResults(t *testing.T) {
	var obs recordingObserver
	tc := NewTestContext("acme", "", newFakeMessenger(), nil)
	r := RunTestSuite(context.Background(), threeTestSuite(), tc, SuiteOptions{Observer: &obs})

	assert.Equal(t, "ds", r.SuiteID)
	assert.Equal(t, "DataSource", r.SuiteName)
	assert.Equal(t, 3, r.TotalTests)
	assert.Equal(t, 2, r.Passed)
	assert.Equal(t, 1, r.Failed)
	assert.Equal(t, 0, r.Skipped)
	assert.False(t, r.OK())
	require.Len(t, r.Results, 3)
	assert.Equal(t, "boom", r.Results[1].Error)
	assert.Equal(t, []string{"two"}, []string{r.Failures()[0].TestID})
	assert.True(t, r.CleanupSuccessful)
	assert.Empty(t, r.CleanupErrors)

	assert.Len(t, obs.completed, 3)
	assert.Equal(t, []Phase{PhaseSetup, PhaseRunning, PhaseCleanup, PhaseComplete}, obs.phases())
}

func TestRunTestSuiteProgressEvents(t *testing.T) {
	var obs recordingObserver
	suite := TestSuite{ID: "s", Tests: []TestCase{passingTest("a"), failingTest("b", "no")}}
	RunTestSuite(context.Background(), suite, NewTestContext("acme", "", nil, nil), SuiteOptions{Observer: &obs})

	expected := []ProgressEvent{
		{SuiteID: "s", Phase: PhaseSetup, TotalTests: 2},
		{SuiteID: "s", Phase: PhaseRunning, TotalTests: 2},
		{SuiteID: "s", Phase: PhaseRunning, TotalTests: 2, CurrentTest: "test a"},
		{SuiteID: "s", Phase: PhaseRunning, TotalTests: 2, CompletedTests: 1, CurrentTest: "test a", CurrentTestStatus: StatusPassed},
		{SuiteID: "s", Phase: PhaseRunning, TotalTests: 2, CompletedTests: 1, CurrentTest: "test b"},
		{SuiteID: "s", Phase: PhaseRunning, TotalTests: 2, CompletedTests: 2, CurrentTest: "test b", CurrentTestStatus: StatusFailed},
		{SuiteID: "s", Phase: PhaseCleanup, TotalTests: 2, CompletedTests: 2},
		{SuiteID: "s", Phase: PhaseComplete, TotalTests: 2, CompletedTests: 2},
	}
	assert.Equal(t, expected, obs.events)
}

func TestRunTestSuiteBeforeAllFailureSkipsEverything(t *testing.T) {
	var ran, afterAll bool
	suite := TestSuite{
		ID:        "s",
		BeforeAll: func(context.Context, *TestContext) error { return errors.New("db down") },
		AfterAll:  func(context.Context, *TestContext) error { afterAll = true; return nil },
	}
	for _, id := range []string{"a", "b", "c", "d"} {
		suite.Tests = append(suite.Tests, TestCase{ID: id, Run: func(context.Context, *TestContext) error {
			ran = true
			return nil
		}})
	}
	var obs recordingObserver
	m := newFakeMessenger()
	r := RunTestSuite(context.Background(), suite, NewTestContext("acme", "", m, nil), SuiteOptions{Observer: &obs})

	assert.Equal(t, 4, r.TotalTests)
	assert.Equal(t, 4, r.Skipped)
	for _, tr := range r.Results {
		assert.Equal(t, StatusSkipped, tr.Status)
		assert.Equal(t, "Suite setup failed", tr.Error)
	}
	assert.Len(t, obs.completed, 4)
	assert.False(t, ran)
	assert.False(t, afterAll)
	assert.True(t, r.CleanupSuccessful)
	assert.Empty(t, m.messages())
}

func TestRunTestSuiteBeforeAllFailureCleansUpWhatItCreated(t *testing.T) {
	suite := TestSuite{
		ID: "s",
		BeforeAll: func(ctx context.Context, tc *TestContext) error {
			if err := createsModule(servicedef.DataSource, 9)(ctx, tc); err != nil {
				return err
			}
			return errors.New("half way")
		},
		Tests: []TestCase{passingTest("a")},
	}
	m := newFakeMessenger()
	r := RunTestSuite(context.Background(), suite, NewTestContext("acme", "", m, nil), SuiteOptions{})

	assert.Equal(t, 1, r.Skipped)
	assert.True(t, r.CleanupSuccessful)
	assert.Equal(t, []ModuleRef{{servicedef.DataSource, 9}}, m.deletes())
}

func TestRunTestSuiteCancelledAfterFirstTest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	suite := TestSuite{ID: "s", Tests: []TestCase{
		{ID: "one", Run: func(context.Context, *TestContext) error { cancel(); return nil }},
		passingTest("two"),
		passingTest("three"),
	}}
	var obs recordingObserver
	r := RunTestSuite(ctx, suite, NewTestContext("acme", "", newFakeMessenger(), nil), SuiteOptions{Observer: &obs})

	assert.Equal(t, 1, r.Passed)
	assert.Equal(t, 2, r.Skipped)
	assert.Equal(t, r.TotalTests, r.Passed+r.Failed+r.Skipped)
	assert.Equal(t, "Test run was cancelled", r.Results[1].Error)
	assert.Equal(t, "Test run was cancelled", r.Results[2].Error)
	assert.Len(t, obs.completed, 3)
	assert.Equal(t, PhaseComplete, obs.events[len(obs.events)-1].Phase)
}

func TestRunTestSuiteCleansUpAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	suite := TestSuite{ID: "s", Tests: []TestCase{
		{ID: "one", Run: func(ctx context.Context, tc *TestContext) error {
			err := createsModule(servicedef.LogSource, 4)(ctx, tc)
			cancel()
			return err
		}},
	}}
	m := newFakeMessenger()
	r := RunTestSuite(ctx, suite, NewTestContext("acme", "", m, nil), SuiteOptions{})

	assert.True(t, r.CleanupSuccessful)
	assert.Equal(t, []ModuleRef{{servicedef.LogSource, 4}}, m.deletes())
}

func TestRunTestSuiteCleanupFailureIsReported(t *testing.T) {
	m := newFakeMessenger()
	m.handler = func(msg servicedef.Message) (servicedef.Response, error) {
		if msg.Type == servicedef.MessageDeleteModule && msg.Payload.GetByKey("moduleId").IntValue() == 1 {
			return servicedef.Response{OK: false, Error: "locked"}, nil
		}
		return servicedef.Response{OK: true}, nil
	}
	suite := TestSuite{ID: "s", Tests: []TestCase{
		{ID: "a", Run: createsModule(servicedef.DataSource, 1)},
		{ID: "b", Run: createsModule(servicedef.DataSource, 2)},
	}}
	r := RunTestSuite(context.Background(), suite, NewTestContext("acme", "", m, nil), SuiteOptions{})

	assert.Equal(t, 2, r.Passed)
	assert.True(t, r.OK())
	assert.False(t, r.CleanupSuccessful)
	assert.Equal(t, []string{"Failed to delete datasource 1: locked"}, r.CleanupErrors)
	assert.Equal(t, []ModuleRef{{servicedef.DataSource, 1}, {servicedef.DataSource, 2}}, m.deletes())
}

func TestRunTestSuiteSkipCleanup(t *testing.T) {
	m := newFakeMessenger()
	suite := TestSuite{ID: "s", Tests: []TestCase{{ID: "a", Run: createsModule(servicedef.DataSource, 1)}}}
	tc := NewTestContext("acme", "", m, nil)
	r := RunTestSuite(context.Background(), suite, tc, SuiteOptions{SkipCleanup: true})

	assert.True(t, r.CleanupSuccessful)
	assert.Empty(t, m.deletes())
	assert.Len(t, tc.PendingCleanup(), 1)
}

func TestRunTestSuiteSelectsTestIDs(t *testing.T) {
	var obs recordingObserver
	r := RunTestSuite(context.Background(), threeTestSuite(), NewTestContext("acme", "", nil, nil),
		SuiteOptions{TestIDs: []string{"three", "one"}, Observer: &obs})

	assert.Equal(t, 2, r.TotalTests)
	require.Len(t, r.Results, 2)
	assert.Equal(t, "one", r.Results[0].TestID)
	assert.Equal(t, "three", r.Results[1].TestID)
}

func TestRunTestSuiteAfterAllRuns(t *testing.T) {
	var afterAll bool
	suite := threeTestSuite()
	suite.AfterAll = func(context.Context, *TestContext) error { afterAll = true; return errors.New("ignored") }
	r := RunTestSuite(context.Background(), suite, NewTestContext("acme", "", nil, nil), SuiteOptions{})

	assert.True(t, afterAll)
	assert.Equal(t, 3, len(r.Results))
}

func TestRunTestSuiteEmpty(t *testing.T) {
	r := RunTestSuite(context.Background(), TestSuite{ID: "empty"}, NewTestContext("acme", "", nil, nil), SuiteOptions{})
	assert.Equal(t, 0, r.TotalTests)
	assert.NotNil(t, r.Results)
	assert.True(t, r.CleanupSuccessful)
}
