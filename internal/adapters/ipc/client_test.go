package ipc_test

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/respawn/internal/adapters/ipc"
	"go.trai.ch/respawn/internal/core/domain"
)

// serveRaw runs handler on a fresh unix socket and returns its path.
func serveRaw(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	path := socketPath(t)
	lis, err := net.Listen("unix", path)
	require.NoError(t, err)

	srv := &http.Server{Handler: handler} //nolint:gosec // test server
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(func() { _ = srv.Close() })
	return path
}

func TestDial_MissingSocket(t *testing.T) {
	_, err := ipc.Dial(filepath.Join(t.TempDir(), "nope.sock"))
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrLeaderUnavailable.Error())
}

func TestClient_ErrorStatus(t *testing.T) {
	path := serveRaw(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"file has not been built"}`))
	})

	client, err := ipc.Dial(path)
	require.NoError(t, err)

	_, err = client.Compile(context.Background(), "/app/a.ts")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrLeaderRequestFailed.Error())
}

func TestClient_EmptyFilenames(t *testing.T) {
	path := serveRaw(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	client, err := ipc.Dial(path)
	require.NoError(t, err)

	files, err := client.Compile(context.Background(), "/app/a.ts")
	require.NoError(t, err)
	assert.NotNil(t, files)
	assert.Empty(t, files)
}

func TestClient_BadResponse(t *testing.T) {
	path := serveRaw(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	client, err := ipc.Dial(path)
	require.NoError(t, err)
	assert.Error(t, client.FileRequired(context.Background(), []string{"/a"}))
}

func TestClient_LeaderGone(t *testing.T) {
	path := socketPath(t)
	lis, err := net.Listen("unix", path)
	require.NoError(t, err)

	client, err := ipc.Dial(path)
	require.NoError(t, err)

	// Closing a unix listener unlinks its socket.
	require.NoError(t, lis.Close())

	_, err = client.Compile(context.Background(), "/app/a.ts")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrLeaderUnavailable.Error())
}
