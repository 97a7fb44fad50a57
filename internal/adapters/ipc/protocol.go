// Package ipc implements the compile protocol between the leader and its
// supervised child: HTTP with JSON bodies over a unix socket.
package ipc

import (
	"encoding/json"
	"net/http"

	"go.trai.ch/respawn/internal/core/domain"
)

const (
	// CompilePath compiles the file named by the request body.
	CompilePath = "/compile"
	// FileRequiredPath registers loaded files with the leader's watch set.
	FileRequiredPath = "/file-required"

	maxBodySize = 1 << 20
)

// CompileResponse is the body of a successful /compile call.
type CompileResponse struct {
	Filenames domain.DestinationMap `json:"filenames"`
}

// StatusResponse is the body of a successful /file-required call.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of every failed call.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
