package framework

import (
	"encoding/json"
	"strings"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

type TestStatus string

const (
	StatusPassed  TestStatus = "passed"
	StatusFailed  TestStatus = "failed"
	StatusSkipped TestStatus = "skipped"
)

type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// TestResult is the outcome of one test case. It is created once, when the test finishes.
type TestResult struct {
	TestID   string
	TestName string
	Status   TestStatus
	Duration time.Duration
	Error    string
	Stack    string

	// ModuleID is the most recent module of the test's type registered for cleanup when the
	// test finished, if any.
	ModuleID ldvalue.OptionalInt

	Request  ldvalue.Value
	Response ldvalue.Value
}

// TestSuiteResult is the outcome of one suite. Passed, Failed and Skipped always add up
// to TotalTests.
type TestSuiteResult struct {
	SuiteID           string
	SuiteName         string
	TotalTests        int
	Passed            int
	Failed            int
	Skipped           int
	Duration          time.Duration
	Results           []TestResult
	CleanupSuccessful bool
	CleanupErrors     []string
}

func (r TestSuiteResult) OK() bool {
	return r.Failed == 0
}

// Failures returns the results of the tests that failed, in run order.
func (r TestSuiteResult) Failures() []TestResult {
	var ret []TestResult
	for _, t := range r.Results {
		if t.Status == StatusFailed {
			ret = append(ret, t)
		}
	}
	return ret
}

func (r *TestSuiteResult) count(status TestStatus) {
	switch status {
	case StatusPassed:
		r.Passed++
	case StatusFailed:
		r.Failed++
	default:
		r.Skipped++
	}
}

// Summary is the sum of several suite results.
type Summary struct {
	TotalTests            int           `json:"totalTests"`
	Passed                int           `json:"passed"`
	Failed                int           `json:"failed"`
	Skipped               int           `json:"skipped"`
	Duration              time.Duration `json:"-"`
	AllCleanupsSuccessful bool          `json:"allCleanupsSuccessful"`
}

func (s Summary) OK() bool {
	return s.Failed == 0
}

func (s Summary) MarshalJSON() ([]byte, error) {
	type summaryAlias Summary
	return json.Marshal(struct {
		summaryAlias
		DurationMS int64 `json:"duration"`
	}{summaryAlias(s), s.Duration.Milliseconds()})
}

type testResultJSON struct {
	TestID   string          `json:"testId"`
	TestName string          `json:"testName"`
	Status   TestStatus      `json:"status"`
	Duration int64           `json:"duration"`
	Error    string          `json:"error,omitempty"`
	Stack    string          `json:"stack,omitempty"`
	ModuleID *int            `json:"moduleId,omitempty"`
	Request  json.RawMessage `json:"request,omitempty"`
	Response json.RawMessage `json:"response,omitempty"`
}

func (r TestResult) MarshalJSON() ([]byte, error) {
	out := testResultJSON{
		TestID:   r.TestID,
		TestName: r.TestName,
		Status:   r.Status,
		Duration: r.Duration.Milliseconds(),
		Error:    r.Error,
		Stack:    r.Stack,
		Request:  rawValue(r.Request),
		Response: rawValue(r.Response),
	}
	if id, ok := r.ModuleID.Get(); ok {
		out.ModuleID = &id
	}
	return json.Marshal(out)
}

type testSuiteResultJSON struct {
	SuiteID           string       `json:"suiteId"`
	SuiteName         string       `json:"suiteName"`
	TotalTests        int          `json:"totalTests"`
	Passed            int          `json:"passed"`
	Failed            int          `json:"failed"`
	Skipped           int          `json:"skipped"`
	Duration          int64        `json:"duration"`
	Results           []TestResult `json:"results"`
	CleanupSuccessful bool         `json:"cleanupSuccessful"`
	CleanupErrors     []string     `json:"cleanupErrors,omitempty"`
}

func (r TestSuiteResult) MarshalJSON() ([]byte, error) {
	results := r.Results
	if results == nil {
		results = []TestResult{}
	}
	return json.Marshal(testSuiteResultJSON{
		SuiteID:           r.SuiteID,
		SuiteName:         r.SuiteName,
		TotalTests:        r.TotalTests,
		Passed:            r.Passed,
		Failed:            r.Failed,
		Skipped:           r.Skipped,
		Duration:          r.Duration.Milliseconds(),
		Results:           results,
		CleanupSuccessful: r.CleanupSuccessful,
		CleanupErrors:     r.CleanupErrors,
	})
}

func rawValue(v ldvalue.Value) json.RawMessage {
	if v.IsNull() {
		return nil
	}
	return json.RawMessage(v.JSONString())
}
