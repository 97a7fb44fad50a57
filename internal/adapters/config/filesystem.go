package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileSystem abstracts the filesystem reads the loader performs.
type FileSystem interface {
	// Stat returns file info for the given path.
	Stat(path string) (fs.FileInfo, error)
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem on the host filesystem.
type OSFS struct{}

// Stat returns file info for the given path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	// #nosec G304 -- path is a project file candidate built by the loader
	return os.ReadFile(path)
}

// MapFS serves an fs.FS, typically fstest.MapFS, as if it were mounted at Root.
type MapFS struct {
	FS   fs.FS
	Root string
}

// Stat returns file info for the given path.
func (m MapFS) Stat(path string) (fs.FileInfo, error) {
	return fs.Stat(m.FS, m.rel(path))
}

// ReadFile reads the entire file at path.
func (m MapFS) ReadFile(path string) ([]byte, error) {
	return fs.ReadFile(m.FS, m.rel(path))
}

// rel maps an absolute path under Root into the fs.FS namespace. Paths outside Root
// are returned unchanged so lookups fail with fs.ErrNotExist or fs.ErrInvalid.
func (m MapFS) rel(path string) string {
	if !filepath.IsAbs(path) {
		return path
	}
	if path == m.Root {
		return "."
	}
	prefix := strings.TrimSuffix(m.Root, string(filepath.Separator)) + string(filepath.Separator)
	if !strings.HasPrefix(path, prefix) {
		return path
	}
	return filepath.ToSlash(strings.TrimPrefix(path, prefix))
}
