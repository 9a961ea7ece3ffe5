// Package moduletests contains the integration test suites for each LogicModule type.
//
// Each suite is built from a fixture in fixtures/: a base module definition plus the
// script variants to create it with. The suites drive the portal only through the
// helpers in api.go, which register everything they create for cleanup.
package moduletests
