package domain

import (
	"path/filepath"
	"strings"
	"sync"
)

type trieNode struct {
	children map[string]*trieNode
	terminal bool
}

// PathTrie stores a set of paths split into segments so that membership and
// segment-wise prefix queries cost O(segments). It is not safe for concurrent use.
type PathTrie struct {
	root trieNode
	seen map[string]struct{}
}

// NewPathTrie creates an empty trie.
func NewPathTrie() *PathTrie {
	return &PathTrie{seen: make(map[string]struct{})}
}

func splitPath(p string) []string {
	p = filepath.Clean(p)
	parts := strings.Split(p, string(filepath.Separator))
	segments := parts[:0]
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// Insert adds path. Re-inserting a known path is a no-op.
func (t *PathTrie) Insert(path string) {
	if _, ok := t.seen[path]; ok {
		return
	}
	t.seen[path] = struct{}{}

	node := &t.root
	for _, segment := range splitPath(path) {
		if node.children == nil {
			node.children = make(map[string]*trieNode)
		}
		next, ok := node.children[segment]
		if !ok {
			next = &trieNode{}
			node.children[segment] = next
		}
		node = next
	}
	node.terminal = true
}

func (t *PathTrie) walk(path string) *trieNode {
	node := &t.root
	for _, segment := range splitPath(path) {
		next, ok := node.children[segment]
		if !ok {
			return nil
		}
		node = next
	}
	return node
}

// Contains reports whether path was inserted.
func (t *PathTrie) Contains(path string) bool {
	if _, ok := t.seen[path]; ok {
		return true
	}
	node := t.walk(path)
	return node != nil && node.terminal
}

// AnyStartsWith reports whether some inserted path has prefix as a segment-wise
// prefix. "/a/b" is a prefix of "/a/b/c" but not of "/a/bc".
func (t *PathTrie) AnyStartsWith(prefix string) bool {
	node := t.walk(prefix)
	return node != nil && (node.terminal || len(node.children) > 0)
}

// Len returns the number of distinct inserted paths.
func (t *PathTrie) Len() int {
	return len(t.seen)
}

// WatchSet is the leader's set of tracked source paths. It is safe for concurrent use.
type WatchSet struct {
	mu   sync.RWMutex
	trie *PathTrie
}

// NewWatchSet creates an empty watch set.
func NewWatchSet() *WatchSet {
	return &WatchSet{trie: NewPathTrie()}
}

// Register adds paths to the set.
func (w *WatchSet) Register(paths ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range paths {
		if p == "" {
			continue
		}
		w.trie.Insert(filepath.Clean(p))
	}
}

// Contains reports whether path is tracked.
func (w *WatchSet) Contains(path string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.trie.Contains(filepath.Clean(path))
}

// AnyStartsWith reports whether any tracked path lives under prefix.
func (w *WatchSet) AnyStartsWith(prefix string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.trie.AnyStartsWith(prefix)
}

// Len returns the number of tracked paths.
func (w *WatchSet) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.trie.Len()
}
