package domain

import (
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.trai.ch/zerr"
)

const (
	// DefaultDebounce is the window that collapses bursts of change events into one reload.
	DefaultDebounce = 15 * time.Millisecond
	// DefaultStopTimeout is the grace window before a graceful stop escalates to SIGKILL.
	DefaultStopTimeout = 5 * time.Second
	// DefaultOutExtension is the extension given to compiled artifacts.
	DefaultOutExtension = ".js"
)

// DefaultExtensions are the source extensions intercepted when none are configured.
var DefaultExtensions = []string{".ts", ".tsx", ".jsx"}

// alwaysSkipped are directory names never scanned for group members.
var alwaysSkipped = map[string]bool{
	".git":         true,
	".jj":          true,
	"node_modules": true,
	RespawnDirName: true,
}

// CompilerOptions configures the black-box compiler engine.
// Recognized fields are named; anything else travels opaquely in Extra.
type CompilerOptions struct {
	// Command is the external compiler invocation. The source path is appended.
	// An empty command copies sources through unchanged.
	Command []string
	// OutExtension replaces the source extension on artifacts.
	OutExtension string
	// Target is the language level handed to the compiler.
	Target string
	// SourceMaps requests inline source maps.
	SourceMaps bool
	// Extra holds passthrough options the engine does not interpret.
	Extra map[string]string
}

var recognizedOptionNames = []string{"command", "outextension", "target", "sourcemaps"}

// Validate checks the options and fills defaults.
func (o *CompilerOptions) Validate() error {
	if o.OutExtension == "" {
		o.OutExtension = DefaultOutExtension
	}
	if !strings.HasPrefix(o.OutExtension, ".") {
		return zerr.With(ErrInvalidExtension, "out_extension", o.OutExtension)
	}
	for key := range o.Extra {
		if strings.TrimSpace(key) == "" {
			return zerr.With(ErrInvalidCompilerOption, "reason", "empty key")
		}
		if slices.Contains(recognizedOptionNames, strings.ToLower(key)) {
			return zerr.With(zerr.With(ErrInvalidCompilerOption, "key", key), "reason", "shadows a named option")
		}
	}
	return nil
}

// ReloadOptions tunes the reload loop.
type ReloadOptions struct {
	Debounce    time.Duration
	StopTimeout time.Duration
}

// Project is a loaded project configuration anchored at Root.
type Project struct {
	// Root is the directory holding the project file, or the workspace root for defaults.
	Root string
	// ConfigPath is the project file, empty when defaults are used.
	ConfigPath string
	// Extensions are the intercepted source extensions.
	Extensions []string
	// Ignore holds glob patterns, relative to Root, excluded from compilation.
	Ignore []string
	// OutDir is where compiled artifacts are written.
	OutDir string
	// ESM enables import-style interception in the child.
	ESM      bool
	Compiler CompilerOptions
	Reload   ReloadOptions
}

// NewDefaultProject returns the configuration used when no project file exists.
func NewDefaultProject(root string) *Project {
	p := &Project{
		Root:       root,
		Extensions: slices.Clone(DefaultExtensions),
		OutDir:     DefaultOutDir(root),
		Compiler:   CompilerOptions{OutExtension: DefaultOutExtension},
		Reload: ReloadOptions{
			Debounce:    DefaultDebounce,
			StopTimeout: DefaultStopTimeout,
		},
	}
	return p
}

// Validate checks the project and fills defaults.
func (p *Project) Validate() error {
	if len(p.Extensions) == 0 {
		p.Extensions = slices.Clone(DefaultExtensions)
	}
	for _, ext := range p.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return zerr.With(ErrInvalidExtension, "extension", ext)
		}
	}
	if p.OutDir == "" {
		p.OutDir = DefaultOutDir(p.Root)
	} else if !filepath.IsAbs(p.OutDir) {
		p.OutDir = filepath.Join(p.Root, p.OutDir)
	}
	if p.Reload.Debounce < 0 {
		return zerr.With(ErrInvalidDuration, "debounce", p.Reload.Debounce.String())
	}
	if p.Reload.Debounce == 0 {
		p.Reload.Debounce = DefaultDebounce
	}
	if p.Reload.StopTimeout < 0 {
		return zerr.With(ErrInvalidDuration, "stop_timeout", p.Reload.StopTimeout.String())
	}
	if p.Reload.StopTimeout == 0 {
		p.Reload.StopTimeout = DefaultStopTimeout
	}
	return p.Compiler.Validate()
}

// Intercepts reports whether file has one of the project's intercepted extensions.
func (p *Project) Intercepts(file string) bool {
	return slices.Contains(p.Extensions, filepath.Ext(file))
}

// SkipDir reports whether the directory at abs should never be scanned.
func (p *Project) SkipDir(abs string) bool {
	if alwaysSkipped[filepath.Base(abs)] {
		return true
	}
	return abs == p.OutDir
}

// IsIgnored reports whether file matches one of the ignore patterns.
// Patterns are matched against the slash-separated path relative to Root, against the
// base name, and against every leading directory so that "dist" ignores "dist/a.ts".
func (p *Project) IsIgnored(file string) bool {
	if len(p.Ignore) == 0 {
		return false
	}
	rel, err := filepath.Rel(p.Root, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)

	candidates := []string{rel, path.Base(rel)}
	for dir := path.Dir(rel); dir != "." && dir != "/"; dir = path.Dir(dir) {
		candidates = append(candidates, dir, path.Base(dir))
	}

	for _, pattern := range p.Ignore {
		pattern = strings.TrimSuffix(filepath.ToSlash(pattern), "/")
		pattern = strings.TrimSuffix(pattern, "/**")
		for _, candidate := range candidates {
			if ok, _ := path.Match(pattern, candidate); ok {
				return true
			}
		}
	}
	return false
}

// Contains reports whether file lies under Root.
func (p *Project) Contains(file string) bool {
	return IsWithin(p.Root, file)
}

// IsWithin reports whether path equals root or lies below it.
func IsWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
