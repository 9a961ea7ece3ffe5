package main

import (
	"context"
	"testing"

	"github.com/logicmonitor/lm-module-tests/framework"

	"github.com/stretchr/testify/assert"
)

func TestRunStatus(t *testing.T) {
	passed := []framework.TestSuiteResult{{SuiteID: "datasource", TotalTests: 2, Passed: 2, CleanupSuccessful: true}}
	failed := []framework.TestSuiteResult{{SuiteID: "datasource", TotalTests: 2, Passed: 1, Failed: 1, CleanupSuccessful: true}}
	cleanupOnly := []framework.TestSuiteResult{{SuiteID: "datasource", TotalTests: 1, Passed: 1, CleanupErrors: []string{"Failed to delete datasource 1: gone"}}}

	assert.Equal(t, 0, runStatus(context.Background(), passed))
	assert.Equal(t, 0, runStatus(context.Background(), cleanupOnly))
	assert.Equal(t, 1, runStatus(context.Background(), failed))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cancelled := []framework.TestSuiteResult{{SuiteID: "datasource", TotalTests: 3, Passed: 1, Skipped: 2, CleanupSuccessful: true}}
	assert.Equal(t, 1, runStatus(ctx, cancelled))
}
