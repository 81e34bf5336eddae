package app

import (
	"testing"

	"github.com/vk/stepflow/internal/config"
	"github.com/vk/stepflow/internal/inmemorystore"
	"github.com/vk/stepflow/internal/testutil"
)

// SetupAppTest creates an app over an in-memory store with debug logging
// captured in the returned buffer.
func SetupAppTest(t *testing.T) (*App, *inmemorystore.Store, *testutil.SafeBuffer) {
	t.Helper()

	cfg := DefaultConfig()
	cfg.LogLevel = "debug"
	cfg.Storage = config.Storage{Driver: config.DriverMemory}

	logBuffer := &testutil.SafeBuffer{}
	store := inmemorystore.New()
	testApp := NewAppWithStore(logBuffer, &cfg, store)
	testutil.DumpLogsOnCleanup(t, logBuffer)

	return testApp, store, logBuffer
}
