package domain

import (
	"os"
	"strconv"
	"strings"
)

// Environment contract between the leader and its supervised child.
const (
	// EnvSocketPath carries the leader's unix socket path.
	EnvSocketPath = "RESPAWN_SOCKET_PATH"
	// EnvExtensions carries the comma-joined list of intercepted extensions.
	EnvExtensions = "RESPAWN_EXTENSIONS"
	// EnvESM is "true" when import-style interception is enabled.
	EnvESM = "RESPAWN_ESM"
	// EnvParentPID carries the pid of the supervising leader.
	EnvParentPID = "RESPAWN_PARENT_PID"
	// EnvChannelFD carries the file descriptor of the message relay channel.
	EnvChannelFD = "RESPAWN_CHANNEL_FD"
)

// ChildEnv describes what the leader tells its child through the environment.
type ChildEnv struct {
	SocketPath string
	Extensions []string
	ESM        bool
	ParentPID  int
	ChannelFD  int
}

// Environ renders the contract as KEY=VALUE pairs.
// Zero-valued optional fields are omitted.
func (e ChildEnv) Environ() []string {
	env := []string{
		EnvSocketPath + "=" + e.SocketPath,
		EnvExtensions + "=" + strings.Join(e.Extensions, ","),
		EnvESM + "=" + strconv.FormatBool(e.ESM),
	}
	if e.ParentPID > 0 {
		env = append(env, EnvParentPID+"="+strconv.Itoa(e.ParentPID))
	}
	if e.ChannelFD > 0 {
		env = append(env, EnvChannelFD+"="+strconv.Itoa(e.ChannelFD))
	}
	return env
}

// ChildEnvFromLookup reads the contract through lookup, typically os.LookupEnv.
// ok is false when no socket path is present.
func ChildEnvFromLookup(lookup func(string) (string, bool)) (ChildEnv, bool) {
	socket, ok := lookup(EnvSocketPath)
	if !ok || socket == "" {
		return ChildEnv{}, false
	}

	env := ChildEnv{SocketPath: socket}
	if exts, ok := lookup(EnvExtensions); ok && exts != "" {
		env.Extensions = strings.Split(exts, ",")
	}
	if esm, ok := lookup(EnvESM); ok {
		env.ESM, _ = strconv.ParseBool(esm)
	}
	if pid, ok := lookup(EnvParentPID); ok {
		env.ParentPID, _ = strconv.Atoi(pid)
	}
	if fd, ok := lookup(EnvChannelFD); ok {
		env.ChannelFD, _ = strconv.Atoi(fd)
	}
	return env, true
}

// ChildEnvFromOS reads the contract from the process environment.
func ChildEnvFromOS() (ChildEnv, bool) {
	return ChildEnvFromLookup(os.LookupEnv)
}

// MergeEnv overlays overrides onto base, replacing keys already present.
func MergeEnv(base, overrides []string) []string {
	index := make(map[string]int, len(base))
	out := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		k, _, _ := strings.Cut(kv, "=")
		if i, seen := index[k]; seen {
			out[i] = kv
			continue
		}
		index[k] = len(out)
		out = append(out, kv)
	}
	for _, kv := range overrides {
		k, _, _ := strings.Cut(kv, "=")
		if i, seen := index[k]; seen {
			out[i] = kv
			continue
		}
		index[k] = len(out)
		out = append(out, kv)
	}
	return out
}
