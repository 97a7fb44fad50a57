// Package transform runs the configured compiler on single source files.
package transform

import (
	"bytes"
	"context"
	"errors"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/respawn/internal/core/domain"
	"go.trai.ch/respawn/internal/core/ports"
	"go.trai.ch/zerr"
)

// Environment handed to an external compiler alongside the source path argument.
const (
	EnvOutFile    = "RESPAWN_OUT_FILE"
	EnvTarget     = "RESPAWN_TARGET"
	EnvSourceMaps = "RESPAWN_SOURCE_MAPS"
	EnvOptionPref = "RESPAWN_OPTION_"
)

// Transformer implements ports.Transformer. Without a configured command it copies
// the source through unchanged; otherwise the command's stdout is the compiled code.
type Transformer struct {
	logger ports.Logger
}

// New creates a Transformer. Compiler stderr is forwarded to logger line by line.
func New(logger ports.Logger) *Transformer {
	return &Transformer{logger: logger}
}

// Transform compiles req.Source.
func (t *Transformer) Transform(ctx context.Context, req domain.TransformRequest) (domain.TransformResult, error) {
	dest, err := Destination(req)
	if err != nil {
		return domain.TransformResult{}, err
	}

	var code []byte
	if len(req.Options.Command) == 0 {
		// #nosec G304 -- source is a group member discovered under the project root
		code, err = os.ReadFile(req.Source)
		if err != nil {
			return domain.TransformResult{}, zerr.With(zerr.Wrap(err, domain.ErrCompilationFailed.Error()), "file", req.Source)
		}
	} else {
		code, err = t.run(ctx, req, dest)
		if err != nil {
			return domain.TransformResult{}, err
		}
	}

	return domain.TransformResult{Code: code, Destination: dest}, nil
}

func (t *Transformer) run(ctx context.Context, req domain.TransformRequest, dest string) ([]byte, error) {
	name := req.Options.Command[0]
	args := append(append([]string(nil), req.Options.Command[1:]...), req.Source)

	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // compiler command comes from the project file
	cmd.Dir = req.Root
	cmd.Env = domain.MergeEnv(os.Environ(), compilerEnv(req.Options, dest))

	var stdout bytes.Buffer
	stderr := &logWriter{logger: t.logger, prefix: filepath.Base(name) + ": "}
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	_ = stderr.Close()
	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		wrapped := zerr.Wrap(err, domain.ErrCompilationFailed.Error())
		wrapped = zerr.With(wrapped, "file", req.Source)
		return nil, zerr.With(wrapped, "exit_code", exitCode)
	}
	return stdout.Bytes(), nil
}

func compilerEnv(opts domain.CompilerOptions, dest string) []string {
	env := []string{
		EnvOutFile + "=" + dest,
		EnvSourceMaps + "=" + strconv.FormatBool(opts.SourceMaps),
	}
	if opts.Target != "" {
		env = append(env, EnvTarget+"="+opts.Target)
	}

	for _, k := range slices.Sorted(maps.Keys(opts.Extra)) {
		env = append(env, EnvOptionPref+envKey(k)+"="+opts.Extra[k])
	}
	return env
}

// envKey upper-cases k and replaces anything outside [A-Z0-9_] with '_'.
func envKey(k string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, k)
}

// RootKey names the artifact subdirectory of a build group root.
func RootKey(root string) string {
	return strconv.FormatUint(xxhash.Sum64String(filepath.Clean(root)), 16)
}

// Destination returns the artifact path for req:
// <OutDir>/<RootKey(Root)>/<Source relative to Root, with the out extension>.
func Destination(req domain.TransformRequest) (string, error) {
	rel, err := filepath.Rel(req.Root, req.Source)
	if err != nil || !domain.IsWithin(req.Root, req.Source) {
		return "", zerr.With(zerr.With(domain.ErrOutsideWorkspace, "file", req.Source), "root", req.Root)
	}

	ext := req.Options.OutExtension
	if ext == "" {
		ext = domain.DefaultOutExtension
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ext
	return filepath.Join(req.OutDir, RootKey(req.Root), rel), nil
}

// logWriter forwards complete lines to the logger as warnings.
type logWriter struct {
	logger ports.Logger
	prefix string
	buf    []byte
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.emit(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) emit(line []byte) {
	msg := strings.TrimSuffix(string(line), "\r")
	if msg == "" {
		return
	}
	w.logger.Warn(w.prefix + msg)
}
