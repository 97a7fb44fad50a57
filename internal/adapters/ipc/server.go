package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.trai.ch/respawn/internal/core/domain"
	"go.trai.ch/respawn/internal/core/ports"
	"go.trai.ch/zerr"
)

const shutdownTimeout = 2 * time.Second

var (
	errBadRequest   = zerr.New("bad request")
	errHandlerPanic = zerr.New("leader handler panicked")
)

// Server answers the child's compile and file-required calls. Handlers run one
// at a time.
type Server struct {
	engine ports.CompileEngine
	watch  *domain.WatchSet
	logger ports.Logger

	mu         sync.Mutex
	closed     atomic.Bool
	listener   net.Listener
	httpServer *http.Server
	socketPath string
}

// NewServer creates a server for engine. Files reported by the child are
// registered into watch.
func NewServer(engine ports.CompileEngine, watch *domain.WatchSet, logger ports.Logger) *Server {
	s := &Server{
		engine: engine,
		watch:  watch,
		logger: logger,
	}
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the protocol's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+CompilePath, s.handleCompile)
	mux.HandleFunc("POST "+FileRequiredPath, s.handleFileRequired)
	return s.recoverPanics(mux)
}

// recoverPanics answers 500 when a handler panics instead of dropping the connection.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel panic value
				panic(rec)
			}
			err := zerr.With(zerr.Wrap(zerr.New(fmt.Sprint(rec)), errHandlerPanic.Error()), "path", r.URL.Path)
			s.fail(w, http.StatusInternalServerError, err)
		}()
		next.ServeHTTP(w, r)
	})
}

// Listen binds the unix socket at socketPath, replacing a stale one.
func (s *Server) Listen(socketPath string) error {
	if err := os.MkdirAll(filepath.Dir(socketPath), domain.DirPerm); err != nil {
		return zerr.Wrap(err, "failed to create socket directory")
	}
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return zerr.Wrap(err, "failed to remove stale socket")
	}

	lis, err := net.Listen("unix", socketPath)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrSocketListenFailed.Error()), "socket", socketPath)
	}
	if err := os.Chmod(socketPath, domain.SocketPerm); err != nil {
		_ = lis.Close()
		return zerr.Wrap(err, "failed to set socket permissions")
	}

	s.listener = lis
	s.socketPath = socketPath
	return nil
}

// Serve handles requests until ctx ends or Close is called. Listen must be
// called first.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return zerr.New("server is not listening")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		return s.Close()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return zerr.Wrap(err, "leader server failed")
	}
}

// Close stops the server and removes its socket.
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	if s.socketPath != "" {
		_ = os.Remove(s.socketPath)
	}
	if err != nil {
		return zerr.Wrap(err, "failed to shut down leader server")
	}
	return nil
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.fail(w, http.StatusBadRequest, zerr.Wrap(err, errBadRequest.Error()))
		return
	}
	file := strings.TrimSpace(string(body))
	if !filepath.IsAbs(file) {
		s.fail(w, http.StatusBadRequest, zerr.With(zerr.New("compile path must be absolute"), "path", file))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.engine.Compile(r.Context(), file)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, CompileResponse{Filenames: files})
}

func (s *Server) handleFileRequired(w http.ResponseWriter, r *http.Request) {
	var paths []string
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&paths); err != nil {
		s.fail(w, http.StatusBadRequest, zerr.Wrap(err, errBadRequest.Error()))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.watch.Register(paths...)
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	if !s.closed.Load() {
		s.logger.Error(err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
