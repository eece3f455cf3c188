package store

import (
	"sync"

	"github.com/google/uuid"
)

// Store holds all documents and task records in memory. Every method takes
// the single lock, so callers observe each mutation atomically: a task never
// appears with a new status but a stale UpdatedAt.
type Store struct {
	mu        sync.RWMutex
	documents map[string]*Document
	tasks     map[uuid.UUID]*Task
	seq       uint64
}

func New() *Store {
	return &Store{
		documents: make(map[string]*Document),
		tasks:     make(map[uuid.UUID]*Task),
	}
}

// nextSeq must be called with s.mu held.
func (s *Store) nextSeq() uint64 {
	s.seq++
	return s.seq
}

// snapshotTask returns a copy so callers can read fields without holding the
// store lock. Parameters and Result are shared, not deep-copied; the store
// never mutates them after creation.
func snapshotTask(t *Task) *Task {
	cp := *t
	return &cp
}

func snapshotDocument(d *Document) *Document {
	cp := *d
	return &cp
}
