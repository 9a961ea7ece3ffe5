package report

import (
	"fmt"
	"io"
	"time"

	"github.com/logicmonitor/lm-module-tests/framework"

	"github.com/fatih/color"
)

var (
	passColor = color.New(color.FgGreen)
	failColor = color.New(color.FgRed, color.Bold)
	skipColor = color.New(color.FgYellow)
	warnColor = color.New(color.FgYellow)
)

// PrintSummary writes one line per suite, the failed tests with their errors, any
// cleanup problems, and the overall totals.
func PrintSummary(w io.Writer, results []framework.TestSuiteResult) {
	for _, r := range results {
		c := passColor
		if !r.OK() {
			c = failColor
		}
		c.Fprintf(w, "%-24s", r.SuiteID)
		fmt.Fprintf(w, " %d passed, %d failed, %d skipped (%s)\n",
			r.Passed, r.Failed, r.Skipped, r.Duration.Round(time.Millisecond))
		for _, f := range r.Failures() {
			failColor.Fprintf(w, "  FAILED: %s/%s", r.SuiteID, f.TestID)
			fmt.Fprintf(w, ": %s\n", f.Error)
		}
		if !r.CleanupSuccessful {
			warnColor.Fprintf(w, "  cleanup incomplete:\n")
			for _, e := range r.CleanupErrors {
				warnColor.Fprintf(w, "    %s\n", e)
			}
		}
	}

	s := framework.Aggregate(results)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Ran %d test(s) in %s: ", s.TotalTests, s.Duration.Round(time.Millisecond))
	passColor.Fprintf(w, "%d passed", s.Passed)
	fmt.Fprint(w, ", ")
	if s.Failed > 0 {
		failColor.Fprintf(w, "%d failed", s.Failed)
	} else {
		fmt.Fprintf(w, "%d failed", s.Failed)
	}
	fmt.Fprint(w, ", ")
	skipColor.Fprintf(w, "%d skipped", s.Skipped)
	fmt.Fprintln(w)
	if !s.AllCleanupsSuccessful {
		warnColor.Fprintln(w, "Some modules could not be deleted and may need to be removed by hand.")
	}
}
