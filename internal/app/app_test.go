package app

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/stepflow/internal/config"
	"github.com/vk/stepflow/internal/filestore"
	"github.com/vk/stepflow/internal/inmemorystore"
	"github.com/vk/stepflow/internal/testutil"
	"github.com/vk/stepflow/internal/workflowstore"
)

func TestNewApp_FileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	cfg := DefaultConfig()
	cfg.Storage.Path = dir

	logs := &testutil.SafeBuffer{}
	a, err := NewApp(context.Background(), logs, &cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	s, err := a.OpenSession(context.Background())
	require.NoError(t, err)
	_, err = s.AddNode(context.Background(), "Plan")
	require.NoError(t, err)

	fs, err := filestore.New(dir)
	require.NoError(t, err)
	snap, err := fs.Load(context.Background(), config.DefaultWorkflowID)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "Plan", snap.Nodes[0].Label)
}

func TestNewApp_UnknownDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage = config.Storage{Driver: "tape"}
	_, err := NewApp(context.Background(), io.Discard, &cfg)
	require.ErrorIs(t, err, workflowstore.ErrUnknownDriver)
}

func TestApp_LogsCarrySessionID(t *testing.T) {
	a, _, logs := SetupAppTest(t)
	_, err := a.OpenSession(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, a.SessionID())
	assert.Contains(t, logs.String(), "session_id="+a.SessionID())
	assert.Contains(t, logs.String(), "workflow=default")
}

func TestApp_OpenSessionReturnsLoadError(t *testing.T) {
	a, store, _ := SetupAppTest(t)
	store.Put(config.DefaultWorkflowID, []byte("{not json"))

	s, err := a.OpenSession(context.Background())
	require.Error(t, err)
	require.NotNil(t, s, "the unsaved session is still usable")
	assert.False(t, s.Loaded())
}

func TestApp_Handler(t *testing.T) {
	a, _, _ := SetupAppTest(t)
	s, err := a.OpenSession(context.Background())
	require.NoError(t, err)
	_, err = s.AddNode(context.Background(), "A")
	require.NoError(t, err)

	server := httptest.NewServer(a.Handler())
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK\n", string(body))

	resp, err = http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `stepflow_operations_total{operation="add_node",result="ok"} 1`), string(body))

	resp, err = http.Post(server.URL+"/health", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestApp_HealthCheckServerLifecycle(t *testing.T) {
	a, _, _ := SetupAppTest(t)

	addr, err := a.StartHealthCheckServer(context.Background())
	require.NoError(t, err)
	assert.Empty(t, addr, "port 0 disables the server")

	a.config.HealthcheckPort = freePort(t)
	addr, err = a.StartHealthCheckServer(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, addr)

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, a.Close(context.Background()))
}

func TestOpenStore_Memory(t *testing.T) {
	store, err := openStore(context.Background(), config.Storage{Driver: config.DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &inmemorystore.Store{}, store)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}
