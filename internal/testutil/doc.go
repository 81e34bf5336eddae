// Package testutil holds helpers shared by the test suites: a thread-safe
// log buffer, logger contexts and graph fixtures.
package testutil
