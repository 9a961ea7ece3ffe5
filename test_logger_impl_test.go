package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/logicmonitor/lm-module-tests/framework"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestConsoleObserverOutput(t *testing.T) {
	color.NoColor = true
	tc := framework.NewTestContext("acme", "", nil, nil)
	var buf bytes.Buffer
	obs := newConsoleObserver(&buf, tc, true, false)

	suite := framework.TestSuite{ID: "datasource", Tests: []framework.TestCase{
		{ID: "ok", Run: func(ctx context.Context, tc *framework.TestContext) error {
			tc.Log("quiet on success")
			return nil
		}},
		{ID: "bad", Run: func(ctx context.Context, tc *framework.TestContext) error {
			tc.Log("about to fail")
			return errors.New("line one\nline two")
		}},
	}}
	framework.RunTestSuite(context.Background(), suite, tc, framework.SuiteOptions{Observer: obs})
	out := buf.String()

	assert.Contains(t, out, "Running datasource (2 tests)")
	assert.Contains(t, out, "[datasource/ok]")
	assert.NotContains(t, out, "quiet on success")
	assert.Contains(t, out, "  line one\n  line two\n")
	assert.Contains(t, out, "FAILED: datasource/bad")
	assert.Contains(t, out, "] about to fail")
}

func TestConsoleObserverSkipped(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	obs := newConsoleObserver(&buf, framework.NewTestContext("acme", "", nil, nil), false, false)
	obs.Progress(framework.ProgressEvent{SuiteID: "logsource", Phase: framework.PhaseSetup, TotalTests: 1})
	obs.TestCompleted(framework.TestResult{TestID: "create-groovy", Status: framework.StatusSkipped, Error: "Suite setup failed"})

	assert.Contains(t, buf.String(), "SKIPPED: logsource/create-groovy (Suite setup failed)")
}
