// Package framework runs integration test suites for LogicModules against a live portal.
//
// The general model is:
//
// 1. The orchestrator talks to the portal only through a Messenger, an opaque
// request/response channel carrying servicedef.Message values.
//
// 2. A single TestContext is shared by every procedure in a run. It identifies the portal
// session, keeps a registry of modules that must be deleted when each suite finishes, and
// captures the last request and response for diagnostics.
//
// 3. Suites are ordered lists of TestCases for one module type. RunTestSuite runs them one
// at a time, reports progress to an Observer, and then deletes every module the suite
// registered. RunTestSuites runs several suites in order and Aggregate sums their results.
//
// The domain-specific code that knows what is being tested lives elsewhere: it provides
// the suites and a domain API on top of the TestContext.
package framework
