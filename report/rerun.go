package report

import (
	"strings"

	"github.com/logicmonitor/lm-module-tests/framework"

	"github.com/alessio/shellescape"
)

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

// RerunCommand returns a shell command that runs only the failed tests again. baseArgs are
// the program name and the arguments identifying the portal; one -type and one -test
// argument are added per failed suite and test. It returns "" if nothing failed.
//
// -test applies to every selected suite, so when several suites failed the command can
// also rerun tests that passed in one of them.
func RerunCommand(baseArgs []string, results []framework.TestSuiteResult) string {
	var cmd commandBuilder
	cmd.add(baseArgs...)
	seenTest := make(map[string]bool)
	var tests []string
	for _, r := range results {
		failures := r.Failures()
		if len(failures) == 0 {
			continue
		}
		cmd.add("-type", r.SuiteID)
		for _, f := range failures {
			if !seenTest[f.TestID] {
				seenTest[f.TestID] = true
				tests = append(tests, f.TestID)
			}
		}
	}
	if len(tests) == 0 {
		return ""
	}
	for _, t := range tests {
		cmd.add("-test", t)
	}
	return cmd.String()
}
