// Package compiler implements the incremental compile engine: per-root build groups,
// artifact lookup and invalidation.
package compiler

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/respawn/internal/core/domain"
	"go.trai.ch/respawn/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Engine implements ports.CompileEngine. All operations are serialized.
type Engine struct {
	workspace   *domain.Project
	loader      ports.ConfigLoader
	transformer ports.Transformer
	logger      ports.Logger
	parallelism int

	mu       sync.Mutex
	groups   map[string]*domain.BuildGroup
	owners   map[string]string
	projects map[string]*domain.Project
	roots    map[string]string
	dirty    map[string]struct{}
	// written holds the content hash of every artifact on disk. It survives
	// InvalidateBuildSet so unchanged artifacts are never rewritten.
	writeMu sync.Mutex
	written map[string]uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithParallelism bounds concurrent compilations within a group.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

// New creates an Engine for the workspace project.
func New(
	workspace *domain.Project,
	loader ports.ConfigLoader,
	transformer ports.Transformer,
	logger ports.Logger,
	opts ...Option,
) *Engine {
	e := &Engine{
		workspace:   workspace,
		loader:      loader,
		transformer: transformer,
		logger:      logger,
		parallelism: runtime.NumCPU(),
		written:     make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.reset()
	return e
}

func (e *Engine) reset() {
	e.groups = make(map[string]*domain.BuildGroup)
	e.owners = make(map[string]string)
	e.projects = make(map[string]*domain.Project)
	e.roots = make(map[string]string)
	e.dirty = make(map[string]struct{})
}

// Compile builds the group owning file if needed and returns its destination map.
// Ignored files yield a single ignored marker.
func (e *Engine) Compile(ctx context.Context, file string) (domain.DestinationMap, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	file = filepath.Clean(file)
	project, err := e.projectFor(file)
	if err != nil {
		return nil, err
	}
	if e.excluded(project, file) {
		return domain.DestinationMap{file: domain.IgnoredDestination}, nil
	}

	group, ok := e.groups[project.Root]
	if !ok {
		if group, err = e.buildGroup(ctx, project); err != nil {
			return nil, err
		}
	}

	_, member := group.Members[file]
	_, dirty := e.dirty[file]
	if !member || dirty {
		// Outside the scanned tree (a skipped directory), created since the scan, or
		// changed before the next rebuild.
		if err := e.compileFiles(ctx, group, []string{file}); err != nil {
			return nil, err
		}
		group.Members[file] = struct{}{}
		e.owners[file] = group.Root
		delete(e.dirty, file)
	}

	if _, ok := group.Artifacts[file]; !ok {
		return nil, unbuilt(file, "compilation failed")
	}
	return group.Destinations(), nil
}

// FileGroup returns the destination map of the group owning file without building.
func (e *Engine) FileGroup(file string) (domain.DestinationMap, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	file = filepath.Clean(file)
	if root, ok := e.owners[file]; ok {
		group := e.groups[root]
		if _, built := group.Artifacts[file]; built {
			return group.Destinations(), nil
		}
		return nil, unbuilt(file, "no artifact")
	}

	project, err := e.projectFor(file)
	if err != nil {
		return nil, err
	}
	if e.excluded(project, file) {
		return domain.DestinationMap{file: domain.IgnoredDestination}, nil
	}
	return nil, unbuilt(file, "no build group")
}

// Invalidate marks file dirty and evicts its cached artifact.
func (e *Engine) Invalidate(file string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	file = filepath.Clean(file)
	e.dirty[file] = struct{}{}
	if root, ok := e.owners[file]; ok {
		delete(e.groups[root].Artifacts, file)
	}
}

// InvalidateBuildSet discards every build group and every cached root lookup.
func (e *Engine) InvalidateBuildSet() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

// Rebuild recompiles every dirty file whose group is still valid. Files that no
// longer exist leave their group.
func (e *Engine) Rebuild(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pending := make(map[string][]string)
	for file := range e.dirty {
		root, ok := e.owners[file]
		if !ok {
			continue
		}
		group := e.groups[root]
		if _, err := os.Stat(file); err != nil {
			delete(group.Members, file)
			delete(group.Artifacts, file)
			delete(e.owners, file)
			continue
		}
		pending[root] = append(pending[root], file)
	}
	clear(e.dirty)

	for root, files := range pending {
		if err := e.compileFiles(ctx, e.groups[root], files); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) excluded(project *domain.Project, file string) bool {
	return !project.Intercepts(file) || project.IsIgnored(file)
}

// projectFor resolves the project whose root owns file: the nearest ancestor holding
// a project file, stopping at the workspace root.
func (e *Engine) projectFor(file string) (*domain.Project, error) {
	if !e.workspace.Contains(file) {
		return nil, zerr.With(unbuilt(file, "outside workspace"), "workspace", e.workspace.Root)
	}

	var visited []string
	root := e.workspace.Root
	for dir := filepath.Dir(file); dir != e.workspace.Root && domain.IsWithin(e.workspace.Root, dir); dir = filepath.Dir(dir) {
		if cached, ok := e.roots[dir]; ok {
			root = cached
			break
		}
		visited = append(visited, dir)
		if hasProjectFile(dir) {
			root = dir
			break
		}
	}
	for _, dir := range visited {
		e.roots[dir] = root
	}

	return e.loadProject(root)
}

func (e *Engine) loadProject(root string) (*domain.Project, error) {
	if root == e.workspace.Root {
		return e.workspace, nil
	}
	if project, ok := e.projects[root]; ok {
		return project, nil
	}
	project, err := e.loader.Load(root)
	if err != nil {
		return nil, err
	}
	e.projects[root] = project
	return project, nil
}

func hasProjectFile(dir string) bool {
	for _, name := range domain.ProjectFileNames {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

// buildGroup scans project.Root for members and compiles all of them.
func (e *Engine) buildGroup(ctx context.Context, project *domain.Project) (*domain.BuildGroup, error) {
	group := domain.NewBuildGroup(project)

	err := filepath.WalkDir(project.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == project.Root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			if path == project.Root {
				return nil
			}
			if project.SkipDir(path) || hasProjectFile(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && !e.excluded(project, path) {
			group.Members[path] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to scan build group"), "root", project.Root)
	}

	files := make([]string, 0, len(group.Members))
	for file := range group.Members {
		files = append(files, file)
	}
	if err := e.compileFiles(ctx, group, files); err != nil {
		return nil, err
	}

	for _, file := range files {
		e.owners[file] = group.Root
		delete(e.dirty, file)
	}
	e.groups[group.Root] = group
	return group, nil
}

// compileFiles compiles files of group in parallel. Single-file failures are logged
// and leave the file without an artifact; only cancellation aborts.
func (e *Engine) compileFiles(ctx context.Context, group *domain.BuildGroup, files []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)

	for _, file := range files {
		g.Go(func() error {
			artifact, err := e.compileOne(gctx, group, file)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				delete(group.Artifacts, file)
				if gctx.Err() != nil {
					return gctx.Err()
				}
				e.logger.Error(err)
				return nil
			}
			group.Artifacts[file] = artifact
			return nil
		})
	}
	return g.Wait()
}

func (e *Engine) compileOne(ctx context.Context, group *domain.BuildGroup, file string) (*domain.CompiledFile, error) {
	res, err := e.transformer.Transform(ctx, domain.TransformRequest{
		Source:  file,
		Root:    group.Root,
		OutDir:  group.Project.OutDir,
		Options: group.Project.Compiler,
	})
	if err != nil {
		return nil, err
	}

	hash := xxhash.Sum64(res.Code)
	if err := e.writeArtifact(res.Destination, res.Code, hash); err != nil {
		return nil, zerr.With(err, "file", file)
	}

	return &domain.CompiledFile{
		Source:      file,
		Root:        group.Root,
		Destination: res.Destination,
		Options:     group.Project.Compiler,
		Hash:        hash,
	}, nil
}

// writeArtifact writes code to dest unless the same content is already there.
func (e *Engine) writeArtifact(dest string, code []byte, hash uint64) error {
	e.writeMu.Lock()
	prev, known := e.written[dest]
	e.writeMu.Unlock()
	if known && prev == hash {
		if _, err := os.Stat(dest); err == nil {
			return nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrArtifactWriteFailed.Error()), "destination", dest)
	}
	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, code, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrArtifactWriteFailed.Error()), "destination", dest)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return zerr.With(zerr.Wrap(err, domain.ErrArtifactWriteFailed.Error()), "destination", dest)
	}

	e.writeMu.Lock()
	e.written[dest] = hash
	e.writeMu.Unlock()
	return nil
}

func unbuilt(file, reason string) error {
	return zerr.With(zerr.With(domain.ErrUnbuilt, "file", file), "reason", reason)
}
