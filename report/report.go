// Package report turns suite results into the artifacts of a command-line run: a JSON
// report, a prometheus textfile, a console summary and a command to rerun failures.
package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/logicmonitor/lm-module-tests/framework"

	"github.com/pkg/errors"
)

// Portal identifies the session a run was made against.
type Portal struct {
	ID    string `json:"portalId"`
	Label string `json:"portalLabel,omitempty"`
}

// Report is the JSON document written at the end of a run.
type Report struct {
	RunID     string                      `json:"runId"`
	Portal    Portal                      `json:"portal"`
	StartedAt time.Time                   `json:"startedAt"`
	Summary   framework.Summary           `json:"summary"`
	Suites    []framework.TestSuiteResult `json:"suites"`
}

// Build assembles a report. The start time is derived from the total duration of the
// suites, so it should be called as soon as the run finishes.
func Build(runID string, portal Portal, results []framework.TestSuiteResult) Report {
	summary := framework.Aggregate(results)
	if results == nil {
		results = []framework.TestSuiteResult{}
	}
	return Report{
		RunID:     runID,
		Portal:    portal,
		StartedAt: time.Now().Add(-summary.Duration).UTC(),
		Summary:   summary,
		Suites:    results,
	}
}

// WriteJSON writes the report to path, creating parent directories as needed.
func WriteJSON(path string, report Report) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "creating report directory %s", dir)
		}
	}
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding report")
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return errors.Wrapf(err, "writing report to %s", path)
	}
	return nil
}
