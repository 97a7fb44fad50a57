package domain

import "path/filepath"

const (
	// RespawnDirName is the name of the per-project working directory.
	RespawnDirName = ".respawn"

	// OutDirName is the name of the compiled artifact directory.
	OutDirName = "out"

	// YAMLFileName is the preferred project file name.
	YAMLFileName = "respawn.yaml"

	// YMLFileName is the alternate YAML project file name.
	YMLFileName = "respawn.yml"

	// TOMLFileName is the TOML project file name.
	TOMLFileName = "respawn.toml"

	// SocketFileName is the name of the leader's unix socket inside its session directory.
	SocketFileName = "ipc.sock"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// SocketPerm restricts the leader socket to its owner (rw-------).
	SocketPerm = 0o600
)

// ProjectFileNames lists project file names in lookup order.
var ProjectFileNames = []string{YAMLFileName, YMLFileName, TOMLFileName}

// IsProjectFile reports whether path names a project file.
func IsProjectFile(path string) bool {
	base := filepath.Base(path)
	for _, name := range ProjectFileNames {
		if base == name {
			return true
		}
	}
	return false
}

// DefaultOutDir returns the default artifact directory for a project root.
func DefaultOutDir(root string) string {
	return filepath.Join(root, RespawnDirName, OutDirName)
}
