package loader_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/respawn/internal/adapters/loader"
	"go.trai.ch/respawn/internal/core/domain"
	"go.trai.ch/respawn/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	loader *loader.Loader
	client *mocks.MockLeaderClient
	logger *mocks.MockLogger
	dir    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockLeaderClient(ctrl)
	logger := mocks.NewMockLogger(ctrl)
	env := domain.ChildEnv{SocketPath: "/tmp/unused.sock", Extensions: []string{".ts"}}
	return &fixture{
		loader: loader.New(env, client, logger),
		client: client,
		logger: logger,
		dir:    t.TempDir(),
	}
}

func (f *fixture) artifact(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestResolve_NotIntercepted(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		defer f.loader.Close()

		res, err := f.loader.Resolve(context.Background(), "/app/src/util.js")
		require.NoError(t, err)
		assert.True(t, res.Default)
		assert.False(t, f.loader.Intercepts("/app/src/util.js"))
		assert.True(t, f.loader.Intercepts("/app/src/util.ts"))
	})
}

func TestResolve_CompiledGroupIsCached(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		aOut := f.artifact(t, "a.js", "compiled a")
		bOut := f.artifact(t, "b.js", "compiled b")

		f.client.EXPECT().Compile(gomock.Any(), "/app/a.ts").Return(domain.DestinationMap{
			"/app/a.ts": {Path: aOut},
			"/app/b.ts": {Path: bOut},
		}, nil).Times(1)
		f.client.EXPECT().FileRequired(gomock.Any(), []string{"/app/a.ts", "/app/b.ts"}).Return(nil)

		res, err := f.loader.Resolve(context.Background(), "/app/a.ts")
		require.NoError(t, err)
		assert.False(t, res.Default)
		assert.Equal(t, aOut, res.Path)
		assert.Equal(t, "compiled a", string(res.Content))

		res, err = f.loader.Resolve(context.Background(), "/app/b.ts")
		require.NoError(t, err)
		assert.Equal(t, "compiled b", string(res.Content))

		time.Sleep(time.Second)
		synctest.Wait()
		f.loader.Close()
	})
}

func TestResolve_IgnoredLoadsDefault(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)

		f.client.EXPECT().Compile(gomock.Any(), "/app/vendor/x.ts").Return(domain.DestinationMap{
			"/app/vendor/x.ts": domain.IgnoredDestination,
		}, nil)

		res, err := f.loader.Resolve(context.Background(), "/app/vendor/x.ts")
		require.NoError(t, err)
		assert.True(t, res.Default)

		time.Sleep(time.Second)
		synctest.Wait()
		f.loader.Close()
	})
}

func TestResolve_MissingFromMap(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		defer f.loader.Close()

		f.client.EXPECT().Compile(gomock.Any(), "/app/a.ts").Return(domain.DestinationMap{}, nil)

		_, err := f.loader.Resolve(context.Background(), "/app/a.ts")
		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrUnbuilt.Error())
	})
}

func TestResolve_LeaderError(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		defer f.loader.Close()

		f.client.EXPECT().Compile(gomock.Any(), "/app/a.ts").Return(nil, errors.New("leader request failed"))

		_, err := f.loader.Resolve(context.Background(), "/app/a.ts")
		assert.ErrorContains(t, err, "leader request failed")
	})
}

func TestResolve_MissingArtifact(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		defer f.loader.Close()

		f.client.EXPECT().Compile(gomock.Any(), "/app/a.ts").Return(domain.DestinationMap{
			"/app/a.ts": {Path: filepath.Join(f.dir, "gone.js")},
		}, nil)

		_, err := f.loader.Resolve(context.Background(), "/app/a.ts")
		assert.ErrorContains(t, err, "failed to read compiled artifact")
	})
}

func TestFromEnv_NotSupervised(t *testing.T) {
	t.Setenv(domain.EnvSocketPath, "")
	_, err := loader.FromEnv(nil)
	assert.ErrorContains(t, err, domain.ErrNotSupervised.Error())
}

func TestFromEnv_LeaderMissing(t *testing.T) {
	t.Setenv(domain.EnvSocketPath, filepath.Join(t.TempDir(), "missing.sock"))
	t.Setenv(domain.EnvExtensions, ".ts")
	_, err := loader.FromEnv(nil)
	assert.ErrorContains(t, err, domain.ErrLeaderUnavailable.Error())
}
