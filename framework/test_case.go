package framework

import (
	"context"

	"github.com/logicmonitor/lm-module-tests/servicedef"
)

// TestFunc is a setup, run or teardown procedure. The context is the run's cancellation
// signal; long-running procedures should check it, since the framework never interrupts
// a procedure once it has started.
type TestFunc func(ctx context.Context, tc *TestContext) error

// TestCase describes one test. Run is required; Setup and Teardown are optional.
type TestCase struct {
	ID          string
	Name        string
	Description string
	ModuleType  servicedef.ModuleType
	Variant     string
	Tags        []string

	Setup    TestFunc
	Run      TestFunc
	Teardown TestFunc
}

// TestSuite is an ordered group of tests for one module type, with optional suite-level
// setup and teardown. Suites are built once and are not modified while running.
type TestSuite struct {
	ID          string
	Name        string
	Description string
	ModuleType  servicedef.ModuleType
	Tests       []TestCase

	BeforeAll TestFunc
	AfterAll  TestFunc
}

// SelectTests returns the tests whose ids are in ids, in suite order. An empty ids list
// selects every test.
func (s TestSuite) SelectTests(ids []string) []TestCase {
	if len(ids) == 0 {
		return s.Tests
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var ret []TestCase
	for _, t := range s.Tests {
		if wanted[t.ID] {
			ret = append(ret, t)
		}
	}
	return ret
}

// TestIDOf returns the full id of one of the suite's tests, as matched by filters.
func (s TestSuite) TestIDOf(t TestCase) TestID {
	return TestID{Path: []string{s.ID, t.ID}}
}

// Filtered returns a copy of the suite containing only the tests accepted by the filter.
func (s TestSuite) Filtered(filter Filter) TestSuite {
	if filter == nil {
		return s
	}
	ret := s
	ret.Tests = nil
	for _, t := range s.Tests {
		if filter(s.TestIDOf(t)) {
			ret.Tests = append(ret.Tests, t)
		}
	}
	return ret
}
