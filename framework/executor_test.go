package framework

import (
	"context"
	"errors"
	"testing"

	"github.com/logicmonitor/lm-module-tests/servicedef"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunTestCasePasses(t *testing.T) {
	tc := NewTestContext("acme", "", newFakeMessenger(), nil)
	r := RunTestCase(context.Background(), passingTest("a"), tc)

	assert.Equal(t, "a", r.TestID)
	assert.Equal(t, "test a", r.TestName)
	assert.Equal(t, StatusPassed, r.Status)
	assert.Empty(t, r.Error)
	assert.GreaterOrEqual(t, int64(r.Duration), int64(0))
	_, hasModule := r.ModuleID.Get()
	assert.False(t, hasModule)
}

func TestRunTestCaseFails(t *testing.T) {
	tc := NewTestContext("acme", "", newFakeMessenger(), nil)
	r := RunTestCase(context.Background(), failingTest("b", "boom"), tc)

	assert.Equal(t, StatusFailed, r.Status)
	assert.Equal(t, "boom", r.Error)
	assert.Empty(t, r.Stack)
}

func TestRunTestCaseRendersErrorStack(t *testing.T) {
	tc := NewTestContext("acme", "", newFakeMessenger(), nil)
	test := TestCase{ID: "c", Run: func(context.Context, *TestContext) error {
		return pkgerrors.New("with stack")
	}}
	r := RunTestCase(context.Background(), test, tc)

	assert.Equal(t, "with stack", r.Error)
	assert.Contains(t, r.Stack, "TestRunTestCaseRendersErrorStack")
}

func TestRunTestCaseRecoversPanic(t *testing.T) {
	tc := NewTestContext("acme", "", newFakeMessenger(), nil)
	test := TestCase{ID: "p", Run: func(context.Context, *TestContext) error {
		panic("kaboom")
	}}
	r := RunTestCase(context.Background(), test, tc)

	assert.Equal(t, StatusFailed, r.Status)
	assert.Equal(t, "unexpected panic in test: kaboom", r.Error)
	assert.NotEmpty(t, r.Stack)
}

func TestRunTestCaseWithoutRunProcedure(t *testing.T) {
	tc := NewTestContext("acme", "", newFakeMessenger(), nil)
	r := RunTestCase(context.Background(), TestCase{ID: "x"}, tc)
	assert.Equal(t, StatusFailed, r.Status)
	assert.Equal(t, "test has no run procedure", r.Error)
}

func TestRunTestCaseSetupFailureSkipsRunButNotTeardown(t *testing.T) {
	var ran, tornDown bool
	test := TestCase{
		ID:       "s",
		Setup:    func(context.Context, *TestContext) error { return errors.New("setup broke") },
		Run:      func(context.Context, *TestContext) error { ran = true; return nil },
		Teardown: func(context.Context, *TestContext) error { tornDown = true; return nil },
	}
	r := RunTestCase(context.Background(), test, NewTestContext("acme", "", nil, nil))

	assert.Equal(t, StatusFailed, r.Status)
	assert.Equal(t, "setup broke", r.Error)
	assert.False(t, ran)
	assert.True(t, tornDown)
}

func TestRunTestCaseTeardownFailureIsOnlyLogged(t *testing.T) {
	tc := NewTestContext("acme", "", nil, nil)
	test := passingTest("t")
	test.Teardown = func(context.Context, *TestContext) error { return errors.New("teardown broke") }
	r := RunTestCase(context.Background(), test, tc)

	assert.Equal(t, StatusPassed, r.Status)
	assert.Contains(t, logMessages(tc), "teardown failed for t: teardown broke")
	assert.Empty(t, r.Error)
	assert.Empty(t, r.Stack)
}

func TestRunTestCaseCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var invoked bool
	test := TestCase{
		ID:       "c",
		Setup:    func(context.Context, *TestContext) error { invoked = true; return nil },
		Run:      func(context.Context, *TestContext) error { invoked = true; return nil },
		Teardown: func(context.Context, *TestContext) error { invoked = true; return nil },
	}
	r := RunTestCase(ctx, test, NewTestContext("acme", "", nil, nil))

	assert.Equal(t, StatusSkipped, r.Status)
	assert.Equal(t, "Test run was cancelled", r.Error)
	assert.Equal(t, int64(0), int64(r.Duration))
	assert.False(t, invoked)
}

func TestRunTestCaseReportsModuleAndCapture(t *testing.T) {
	tc := NewTestContext("acme", "", newFakeMessenger(), nil)
	test := TestCase{ID: "m", ModuleType: servicedef.DataSource, Run: createsModule(servicedef.DataSource, 42)}
	r := RunTestCase(context.Background(), test, tc)

	require.Equal(t, StatusPassed, r.Status)
	id, ok := r.ModuleID.Get()
	assert.True(t, ok)
	assert.Equal(t, 42, id)
	assert.Equal(t, servicedef.MessageCreateModule, r.Request.GetByKey("type").StringValue())
	assert.True(t, r.Response.GetByKey("ok").BoolValue())
}

func TestRunTestCaseResetsCaptureBetweenTests(t *testing.T) {
	tc := NewTestContext("acme", "", newFakeMessenger(), nil)
	RunTestCase(context.Background(), TestCase{ID: "a", Run: createsModule(servicedef.DataSource, 1)}, tc)
	r := RunTestCase(context.Background(), passingTest("b"), tc)

	assert.True(t, r.Request.IsNull())
	assert.True(t, r.Response.IsNull())
}
