package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/logicmonitor/lm-module-tests/framework"

	"github.com/fatih/color"
)

// consoleObserver prints each test's outcome as the run proceeds, with the debug log
// lines the test produced if requested.
type consoleObserver struct {
	out                  io.Writer
	tc                   *framework.TestContext
	debugOutputOnFailure bool
	debugOutputOnSuccess bool
	currentSuite         string
	testLogStart         int
}

func newConsoleObserver(out io.Writer, tc *framework.TestContext, debug, debugAll bool) *consoleObserver {
	return &consoleObserver{
		out:                  out,
		tc:                   tc,
		debugOutputOnFailure: debug || debugAll,
		debugOutputOnSuccess: debugAll,
	}
}

func (c *consoleObserver) Progress(event framework.ProgressEvent) {
	switch event.Phase {
	case framework.PhaseSetup:
		c.currentSuite = event.SuiteID
		color.New(color.Bold).Fprintf(c.out, "Running %s (%d tests)\n", event.SuiteID, event.TotalTests)
	case framework.PhaseRunning:
		if event.CurrentTest != "" && event.CurrentTestStatus == "" {
			c.testLogStart = len(c.tc.Output())
		}
	case framework.PhaseCleanup:
		if n := len(c.tc.PendingCleanup()); n > 0 {
			fmt.Fprintf(c.out, "  cleaning up %d module(s)\n", n)
		}
	}
}

func (c *consoleObserver) TestCompleted(result framework.TestResult) {
	id := c.currentSuite + "/" + result.TestID
	fmt.Fprintf(c.out, "[%s]\n", id)
	switch result.Status {
	case framework.StatusFailed:
		for _, line := range strings.Split(result.Error, "\n") {
			fmt.Fprintf(c.out, "  %s\n", line)
		}
		color.New(color.FgRed).Fprintf(c.out, "  FAILED: %s\n", id)
	case framework.StatusSkipped:
		if result.Error == "" {
			color.New(color.FgYellow).Fprintf(c.out, "  SKIPPED: %s\n", id)
		} else {
			color.New(color.FgYellow).Fprintf(c.out, "  SKIPPED: %s (%s)\n", id, result.Error)
		}
		return
	}

	failed := result.Status == framework.StatusFailed
	if (failed && c.debugOutputOnFailure) || (!failed && c.debugOutputOnSuccess) {
		if output := c.tc.Output(); c.testLogStart <= len(output) {
			output[c.testLogStart:].Dump(c.out, "    DEBUG ")
		}
		if failed && result.Stack != "" {
			for _, line := range strings.Split(strings.TrimSpace(result.Stack), "\n") {
				fmt.Fprintf(c.out, "    STACK %s\n", line)
			}
		}
	}
}
