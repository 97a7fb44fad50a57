package compiler_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/respawn/internal/adapters/transform"
	"go.trai.ch/respawn/internal/core/domain"
	"go.trai.ch/respawn/internal/core/ports/mocks"
	"go.trai.ch/respawn/internal/engine/compiler"
	"go.uber.org/mock/gomock"
)

// countingTransformer runs the passthrough transformer and counts calls per file.
type countingTransformer struct {
	inner *transform.Transformer
	fail  map[string]bool

	mu    sync.Mutex
	calls map[string]int
}

func (c *countingTransformer) Transform(ctx context.Context, req domain.TransformRequest) (domain.TransformResult, error) {
	c.mu.Lock()
	c.calls[req.Source]++
	c.mu.Unlock()
	if c.fail[req.Source] {
		return domain.TransformResult{}, errors.New("syntax error")
	}
	return c.inner.Transform(ctx, req)
}

func (c *countingTransformer) count(file string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[file]
}

type fixture struct {
	root        string
	engine      *compiler.Engine
	transformer *countingTransformer
	loader      *mocks.MockConfigLoader
	logger      *mocks.MockLogger
}

func newFixture(t *testing.T, configure func(*domain.Project)) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	root := t.TempDir()
	project := domain.NewDefaultProject(root)
	if configure != nil {
		configure(project)
	}
	require.NoError(t, project.Validate())

	logger := mocks.NewMockLogger(ctrl)
	loader := mocks.NewMockConfigLoader(ctrl)
	tr := &countingTransformer{
		inner: transform.New(logger),
		fail:  map[string]bool{},
		calls: map[string]int{},
	}

	return &fixture{
		root:        root,
		engine:      compiler.New(project, loader, tr, logger, compiler.WithParallelism(2)),
		transformer: tr,
		loader:      loader,
		logger:      logger,
	}
}

func (f *fixture) write(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(f.root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	return path
}

func readArtifact(t *testing.T, m domain.DestinationMap, file string) string {
	t.Helper()
	dest, ok := m[file]
	require.True(t, ok, "no destination for %s", file)
	require.False(t, dest.Ignored)
	data, err := os.ReadFile(dest.Path)
	require.NoError(t, err)
	return string(data)
}

func TestEngine_Compile_BuildsWholeGroup(t *testing.T) {
	f := newFixture(t, nil)
	a := f.write(t, "src/a.ts", "a1")
	b := f.write(t, "src/lib/b.tsx", "b1")
	f.write(t, "README.md", "docs")
	f.write(t, "node_modules/dep/index.ts", "dep")

	m, err := f.engine.Compile(t.Context(), a)
	require.NoError(t, err)

	assert.Len(t, m, 2)
	assert.Equal(t, "a1", readArtifact(t, m, a))
	assert.Equal(t, "b1", readArtifact(t, m, b))
	assert.Equal(t, ".js", filepath.Ext(m[b].Path))

	group, err := f.engine.FileGroup(a)
	require.NoError(t, err)
	assert.Equal(t, m, group)
	assert.Contains(t, group, a)
}

func TestEngine_Compile_GroupIsBuiltOnce(t *testing.T) {
	f := newFixture(t, nil)
	a := f.write(t, "a.ts", "a")
	b := f.write(t, "b.ts", "b")

	_, err := f.engine.Compile(t.Context(), a)
	require.NoError(t, err)
	_, err = f.engine.Compile(t.Context(), b)
	require.NoError(t, err)

	assert.Equal(t, 1, f.transformer.count(a))
	assert.Equal(t, 1, f.transformer.count(b))
}

func TestEngine_Compile_IgnoredFile(t *testing.T) {
	f := newFixture(t, func(p *domain.Project) { p.Ignore = []string{"*.gen.ts"} })
	gen := f.write(t, "types.gen.ts", "generated")
	a := f.write(t, "a.ts", "a")

	m, err := f.engine.Compile(t.Context(), gen)
	require.NoError(t, err)
	assert.Equal(t, domain.DestinationMap{gen: domain.IgnoredDestination}, m)

	group, err := f.engine.FileGroup(gen)
	require.NoError(t, err)
	assert.Equal(t, domain.DestinationMap{gen: domain.IgnoredDestination}, group)

	m, err = f.engine.Compile(t.Context(), a)
	require.NoError(t, err)
	assert.NotContains(t, m, gen)
	assert.Zero(t, f.transformer.count(gen))
}

func TestEngine_Compile_NonInterceptedExtensionIsIgnored(t *testing.T) {
	f := newFixture(t, nil)
	js := f.write(t, "plain.js", "module.exports = 1")

	m, err := f.engine.Compile(t.Context(), js)
	require.NoError(t, err)
	assert.True(t, m[js].Ignored)
}

func TestEngine_FileGroup_UnbuiltBeforeCompile(t *testing.T) {
	f := newFixture(t, nil)
	a := f.write(t, "a.ts", "a")

	_, err := f.engine.FileGroup(a)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrUnbuilt.Error())
}

func TestEngine_InvalidateBuildSet(t *testing.T) {
	f := newFixture(t, nil)
	a := f.write(t, "a.ts", "a")

	_, err := f.engine.Compile(t.Context(), a)
	require.NoError(t, err)

	f.engine.InvalidateBuildSet()

	_, err = f.engine.FileGroup(a)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrUnbuilt.Error())

	_, err = f.engine.Compile(t.Context(), a)
	require.NoError(t, err)
	_, err = f.engine.FileGroup(a)
	require.NoError(t, err)
	assert.Equal(t, 2, f.transformer.count(a))
}

func TestEngine_InvalidateAndRebuild_KeepsSiblingArtifacts(t *testing.T) {
	f := newFixture(t, nil)
	a := f.write(t, "a.ts", "a1")
	b := f.write(t, "b.ts", "b1")

	before, err := f.engine.Compile(t.Context(), a)
	require.NoError(t, err)

	f.write(t, "a.ts", "a2")
	f.engine.Invalidate(a)

	_, err = f.engine.FileGroup(a)
	require.Error(t, err, "an invalidated file has no artifact until rebuilt")

	group, err := f.engine.FileGroup(b)
	require.NoError(t, err)
	assert.Equal(t, before[b], group[b])

	require.NoError(t, f.engine.Rebuild(t.Context()))

	after, err := f.engine.FileGroup(a)
	require.NoError(t, err)
	assert.Equal(t, "a2", readArtifact(t, after, a))
	assert.Equal(t, "b1", readArtifact(t, after, b))
	assert.Equal(t, 2, f.transformer.count(a))
	assert.Equal(t, 1, f.transformer.count(b))
}

func TestEngine_Compile_RecompilesInvalidatedFile(t *testing.T) {
	f := newFixture(t, nil)
	a := f.write(t, "a.ts", "a1")

	_, err := f.engine.Compile(t.Context(), a)
	require.NoError(t, err)

	f.write(t, "a.ts", "a2")
	f.engine.Invalidate(a)

	m, err := f.engine.Compile(t.Context(), a)
	require.NoError(t, err)
	assert.Equal(t, "a2", readArtifact(t, m, a))

	require.NoError(t, f.engine.Rebuild(t.Context()))
	assert.Equal(t, 2, f.transformer.count(a), "the rebuild has nothing left to do")
}

func TestEngine_Rebuild_DropsDeletedFiles(t *testing.T) {
	f := newFixture(t, nil)
	a := f.write(t, "a.ts", "a")
	b := f.write(t, "b.ts", "b")

	_, err := f.engine.Compile(t.Context(), a)
	require.NoError(t, err)

	require.NoError(t, os.Remove(b))
	f.engine.Invalidate(b)
	require.NoError(t, f.engine.Rebuild(t.Context()))

	group, err := f.engine.FileGroup(a)
	require.NoError(t, err)
	assert.NotContains(t, group, b)
}

func TestEngine_Rebuild_IgnoresFilesWithoutGroup(t *testing.T) {
	f := newFixture(t, nil)
	a := f.write(t, "a.ts", "a")

	f.engine.Invalidate(a)
	require.NoError(t, f.engine.Rebuild(t.Context()))

	assert.Zero(t, f.transformer.count(a))
}

func TestEngine_CompilationFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, nil)
	a := f.write(t, "a.ts", "a")
	broken := f.write(t, "broken.ts", "!!")
	f.transformer.fail[broken] = true

	f.logger.EXPECT().Error(gomock.Any()).Times(1)

	m, err := f.engine.Compile(t.Context(), a)
	require.NoError(t, err)
	assert.Contains(t, m, a)
	assert.NotContains(t, m, broken)

	_, err = f.engine.Compile(t.Context(), broken)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrUnbuilt.Error())
}

func TestEngine_NestedProjectFormsItsOwnGroup(t *testing.T) {
	f := newFixture(t, nil)
	a := f.write(t, "a.ts", "a")
	f.write(t, "pkg/"+domain.YAMLFileName, "")
	inner := f.write(t, "pkg/src/inner.ts", "inner")

	pkgRoot := filepath.Join(f.root, "pkg")
	pkgProject := domain.NewDefaultProject(pkgRoot)
	pkgProject.Compiler.OutExtension = ".mjs"
	f.loader.EXPECT().Load(pkgRoot).Return(pkgProject, nil).Times(1)

	outer, err := f.engine.Compile(t.Context(), a)
	require.NoError(t, err)
	assert.Equal(t, []string{a}, keys(outer))

	nested, err := f.engine.Compile(t.Context(), inner)
	require.NoError(t, err)
	assert.Equal(t, []string{inner}, keys(nested))
	assert.Equal(t, ".mjs", filepath.Ext(nested[inner].Path))
	assert.True(t, domain.IsWithin(domain.DefaultOutDir(pkgRoot), nested[inner].Path))
}

func TestEngine_OutsideWorkspaceIsUnbuilt(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.engine.Compile(t.Context(), filepath.Join(filepath.Dir(f.root), "elsewhere.ts"))
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrUnbuilt.Error())
}

func TestEngine_UnchangedArtifactIsNotRewritten(t *testing.T) {
	f := newFixture(t, nil)
	a := f.write(t, "a.ts", "same")

	m, err := f.engine.Compile(t.Context(), a)
	require.NoError(t, err)

	// Content the engine did not write survives when the compiled hash is unchanged.
	require.NoError(t, os.WriteFile(m[a].Path, []byte("marker"), domain.FilePerm))

	f.engine.InvalidateBuildSet()
	m, err = f.engine.Compile(t.Context(), a)
	require.NoError(t, err)
	assert.Equal(t, "marker", readArtifact(t, m, a))

	f.write(t, "a.ts", "changed")
	f.engine.InvalidateBuildSet()
	m, err = f.engine.Compile(t.Context(), a)
	require.NoError(t, err)
	assert.Equal(t, "changed", readArtifact(t, m, a))
}

func TestEngine_CanceledContext(t *testing.T) {
	f := newFixture(t, nil)
	a := f.write(t, "a.ts", "a")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	f.logger.EXPECT().Error(gomock.Any()).AnyTimes()

	_, err := f.engine.Compile(ctx, a)
	assert.Error(t, err)
}

func keys(m domain.DestinationMap) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
