// Package config loads respawn project files.
package config

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.trai.ch/respawn/internal/core/domain"
	"go.trai.ch/respawn/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader for YAML and TOML project files.
type Loader struct {
	Logger ports.Logger
	FS     FileSystem
}

// NewLoader creates a Loader reading the host filesystem.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, FS: OSFS{}}
}

// Load reads the project file located directly in dir.
func (l *Loader) Load(dir string) (*domain.Project, error) {
	dir = filepath.Clean(dir)
	path, ok := l.find(dir)
	if !ok {
		return nil, zerr.With(domain.ErrConfigNotFound, "dir", dir)
	}
	return l.loadFile(path)
}

// Discover walks up from cwd to the nearest project file. Without one, the default
// project rooted at cwd is returned.
func (l *Loader) Discover(cwd string) (*domain.Project, error) {
	cwd = filepath.Clean(cwd)
	for dir := cwd; ; {
		if path, ok := l.find(dir); ok {
			return l.loadFile(path)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	project := domain.NewDefaultProject(cwd)
	if err := project.Validate(); err != nil {
		return nil, err
	}
	return project, nil
}

// find returns the project file in dir, warning when more than one is present.
func (l *Loader) find(dir string) (string, bool) {
	var found []string
	for _, name := range domain.ProjectFileNames {
		candidate := filepath.Join(dir, name)
		if info, err := l.FS.Stat(candidate); err == nil && !info.IsDir() {
			found = append(found, candidate)
		}
	}
	if len(found) == 0 {
		return "", false
	}
	if len(found) > 1 {
		l.Logger.Warn("multiple project files in " + dir + ", using " + filepath.Base(found[0]))
	}
	return found[0], true
}

func (l *Loader) loadFile(path string) (*domain.Project, error) {
	data, err := l.FS.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "file", path)
	}

	var file Projectfile
	if filepath.Ext(path) == ".toml" {
		err = decodeTOML(data, &file)
	} else {
		err = decodeYAML(data, &file)
	}
	if err != nil {
		return nil, zerr.With(err, "file", path)
	}

	project, err := toProject(path, &file)
	if err != nil {
		return nil, zerr.With(err, "file", path)
	}
	return project, nil
}

func decodeYAML(data []byte, target *Projectfile) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}
	return nil
}

func decodeTOML(data []byte, target *Projectfile) error {
	md, err := toml.Decode(string(data), target)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return zerr.With(domain.ErrConfigParseFailed, "unknown_keys", strings.Join(keys, ","))
	}
	return nil
}

func toProject(path string, file *Projectfile) (*domain.Project, error) {
	root := filepath.Dir(path)
	project := &domain.Project{
		Root:       root,
		ConfigPath: path,
		Extensions: slices.Clone(file.Extensions),
		Ignore:     slices.Clone(file.Ignore),
		OutDir:     file.OutDir,
		ESM:        file.ESM,
		Compiler: domain.CompilerOptions{
			Command:      slices.Clone(file.Compiler.Command),
			OutExtension: file.Compiler.OutExtension,
			Target:       file.Compiler.Target,
			SourceMaps:   file.Compiler.SourceMaps,
			Extra:        file.Compiler.Options,
		},
	}

	var err error
	if project.Reload.Debounce, err = parseDuration("debounce", file.Reload.Debounce); err != nil {
		return nil, err
	}
	if project.Reload.StopTimeout, err = parseDuration("stop_timeout", file.Reload.StopTimeout); err != nil {
		return nil, err
	}

	if err := project.Validate(); err != nil {
		return nil, err
	}
	return project, nil
}

// parseDuration parses a duration string; empty means unset.
func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, zerr.With(zerr.With(domain.ErrInvalidDuration, field, value), "reason", err.Error())
	}
	return d, nil
}
