package app

import (
	"path/filepath"

	"go.trai.ch/respawn/internal/core/domain"
	"go.trai.ch/respawn/internal/core/ports"
)

// router turns watcher events into reload requests. Only files the child loaded
// (the watch set) and project files matter.
type router struct {
	workspace *domain.Project
	engine    ports.CompileEngine
	reloader  ports.Reloader
	watch     *domain.WatchSet
}

func (r *router) route(ev ports.WatchEvent) {
	path := filepath.Clean(ev.Path)
	if domain.IsWithin(r.workspace.OutDir, path) {
		return
	}

	if domain.IsProjectFile(path) {
		r.reloader.EnqueueReload(path, true)
		return
	}

	tracked := r.watch.Contains(path)
	switch {
	case tracked && !ev.Operation.ChangesMembership():
		r.engine.Invalidate(path)
		r.reloader.EnqueueReload(path, false)
	case tracked && ev.Operation == ports.OpCreate:
		// An atomic save replaces the file in place.
		r.engine.Invalidate(path)
		r.reloader.EnqueueReload(path, false)
	case tracked:
		r.reloader.EnqueueReload(path, true)
	case ev.Operation.ChangesMembership() && r.watch.AnyStartsWith(path):
		// A directory holding loaded files moved or vanished.
		r.reloader.EnqueueReload(path, true)
	}
}
