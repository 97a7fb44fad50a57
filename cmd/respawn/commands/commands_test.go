package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/respawn/cmd/respawn/commands"
	"go.trai.ch/respawn/internal/app"
	"go.trai.ch/respawn/internal/build"
)

type mockApp struct {
	runFunc     func(ctx context.Context, opts app.RunOptions) error
	compileFunc func(ctx context.Context, file string, opts app.CompileOptions) error
}

func (m *mockApp) Run(ctx context.Context, opts app.RunOptions) error {
	if m.runFunc != nil {
		return m.runFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) Compile(ctx context.Context, file string, opts app.CompileOptions) error {
	if m.compileFunc != nil {
		return m.compileFunc(ctx, file, opts)
	}
	return nil
}

func TestCommands_Run(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var captured app.RunOptions
		mock := &mockApp{
			runFunc: func(_ context.Context, opts app.RunOptions) error {
				captured = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run", "--pty", "--no-commands", "--esm", "--", "node", "server.ts", "--port", "8080"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.True(t, captured.PTY)
		assert.True(t, captured.NoCommands)
		assert.True(t, captured.ESM)
		assert.Equal(t, []string{"node", "server.ts", "--port", "8080"}, captured.Command)
	})

	t.Run("child flags stay with the child", func(t *testing.T) {
		var captured app.RunOptions
		mock := &mockApp{
			runFunc: func(_ context.Context, opts app.RunOptions) error {
				captured = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run", "node", "--pty", "main.ts"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.False(t, captured.PTY)
		assert.Equal(t, []string{"node", "--pty", "main.ts"}, captured.Command)
	})

	t.Run("returns error on run failure", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ app.RunOptions) error {
				return errors.New("simulated error")
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run", "--", "node", "main.ts"})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})

	t.Run("shows usage when no command provided", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ app.RunOptions) error {
				panic("should not be called")
			},
		}

		cli := commands.New(mock)
		buf := new(bytes.Buffer)
		cli.SetOutput(buf, buf)
		cli.SetArgs([]string{"run"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Contains(t, buf.String(), "Usage:")
	})
}

func TestCommands_Compile(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var capturedFile string
		var captured app.CompileOptions
		mock := &mockApp{
			compileFunc: func(_ context.Context, file string, opts app.CompileOptions) error {
				capturedFile = file
				captured = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"compile", "--content", "src/main.ts"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, "src/main.ts", capturedFile)
		assert.True(t, captured.Content)
	})

	t.Run("requires exactly one file", func(t *testing.T) {
		cli := commands.New(&mockApp{})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"compile"})

		assert.Error(t, cli.Execute(context.Background()))
	})
}

func TestCommands_Version(t *testing.T) {
	cli := commands.New(&mockApp{})

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, buf.String(), "respawn version "+build.Version)
}

func TestCommands_VersionFlag(t *testing.T) {
	cli := commands.New(&mockApp{})

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"--version"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, buf.String(), "respawn version "+build.Version)
}
