package domain

import "go.trai.ch/zerr"

var (
	// ErrUnbuilt is returned when a file has no compiled artifact because it lies
	// outside every known build group or failed to compile.
	ErrUnbuilt = zerr.New("file has not been built")

	// ErrCompilationFailed is returned when the compiler engine fails on a single file.
	ErrCompilationFailed = zerr.New("compilation failed")

	// ErrOutsideWorkspace is returned when a file is not under the workspace root.
	ErrOutsideWorkspace = zerr.New("file is outside the workspace root")

	// ErrArtifactWriteFailed is returned when a compiled artifact cannot be written.
	ErrArtifactWriteFailed = zerr.New("failed to write compiled artifact")

	// ErrConfigReadFailed is returned when a project file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read project file")

	// ErrConfigParseFailed is returned when a project file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse project file")

	// ErrConfigNotFound is returned when no project file exists up to the filesystem root.
	ErrConfigNotFound = zerr.New("could not find respawn.yaml, respawn.yml or respawn.toml")

	// ErrInvalidExtension is returned when an intercepted extension does not start with a dot.
	ErrInvalidExtension = zerr.New("extension must start with '.'")

	// ErrInvalidDuration is returned when a configured duration is negative or malformed.
	ErrInvalidDuration = zerr.New("invalid duration")

	// ErrInvalidCompilerOption is returned when a passthrough compiler option is malformed.
	ErrInvalidCompilerOption = zerr.New("invalid compiler option")

	// ErrNoCommand is returned when the leader is started without a command to supervise.
	ErrNoCommand = zerr.New("no command to supervise")

	// ErrProcessStartFailed is returned when the supervised child cannot be spawned.
	ErrProcessStartFailed = zerr.New("failed to start supervised process")

	// ErrProcessSignalFailed is returned when signalling the supervised child fails
	// for a reason other than the process already being gone.
	ErrProcessSignalFailed = zerr.New("failed to signal supervised process")

	// ErrSupervisorStopped is returned when a restart is requested after the
	// supervisor was stopped.
	ErrSupervisorStopped = zerr.New("supervisor is stopped")

	// ErrSocketListenFailed is returned when the leader cannot listen on its socket.
	ErrSocketListenFailed = zerr.New("failed to listen on leader socket")

	// ErrLeaderUnavailable is returned when the child cannot reach the leader.
	ErrLeaderUnavailable = zerr.New("leader is not reachable")

	// ErrLeaderRequestFailed is returned when the leader answers a request with an error.
	ErrLeaderRequestFailed = zerr.New("leader request failed")

	// ErrNotSupervised is returned when child-side commands run without a leader environment.
	ErrNotSupervised = zerr.New("not running under respawn: " + EnvSocketPath + " is not set")

	// ErrBridgeTimeout is returned when a synchronous bridge call is not answered in time.
	ErrBridgeTimeout = zerr.New("sync bridge call timed out")

	// ErrBridgeNoResponse is returned when a bridge caller wakes without a response message.
	ErrBridgeNoResponse = zerr.New("sync bridge woke without a response")

	// ErrBridgeIDMismatch is returned when a bridge response carries another call's id.
	ErrBridgeIDMismatch = zerr.New("sync bridge response id mismatch")

	// ErrBridgeWorkerCrashed is returned when the bridge worker panics.
	ErrBridgeWorkerCrashed = zerr.New("sync bridge worker crashed")

	// ErrBridgeClosed is returned when a call is made on a closed bridge.
	ErrBridgeClosed = zerr.New("sync bridge is closed")
)
