package domain

// ReloadBatch collects the change events of one debounce window.
type ReloadBatch struct {
	// Paths holds changed paths in arrival order.
	Paths []string
	// Invalidate is set when any event required discarding the build set.
	Invalidate bool
}

// Add appends path and ORs in the invalidation flag.
func (b *ReloadBatch) Add(path string, invalidate bool) {
	if path != "" {
		b.Paths = append(b.Paths, path)
	}
	b.Invalidate = b.Invalidate || invalidate
}

// Empty reports whether nothing was queued.
func (b *ReloadBatch) Empty() bool {
	return len(b.Paths) == 0 && !b.Invalidate
}
