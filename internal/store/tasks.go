package store

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type CreateTaskParams struct {
	DocumentID string
	Type       TaskType
	Parameters map[string]any
	Priority   int // 0 means DefaultPriority
}

func (s *Store) CreateTask(p CreateTaskParams) (*Task, error) {
	priority := p.Priority
	if priority == 0 {
		priority = DefaultPriority
	}
	if priority < MinPriority || priority > MaxPriority {
		return nil, ErrInvalidPriority
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[p.DocumentID]; !ok {
		return nil, ErrDocumentNotFound
	}

	now := time.Now().UTC()
	t := &Task{
		ID:         uuid.New(),
		DocumentID: p.DocumentID,
		Type:       p.Type,
		Parameters: p.Parameters,
		Priority:   priority,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
		Seq:        s.nextSeq(),
	}
	s.tasks[t.ID] = t
	return snapshotTask(t), nil
}

func (s *Store) GetTask(id uuid.UUID) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return snapshotTask(t), nil
}

type ListTasksParams struct {
	Status     *TaskStatus
	Type       *TaskType
	DocumentID *string
	Limit      int
	Offset     int
}

// ListTasks returns matching tasks, most recently created first.
func (s *Store) ListTasks(p ListTasksParams) ([]*Task, error) {
	limit := p.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	offset := p.Offset
	if offset < 0 {
		offset = 0
	}

	s.mu.RLock()
	matched := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if p.Status != nil && t.Status != *p.Status {
			continue
		}
		if p.Type != nil && t.Type != *p.Type {
			continue
		}
		if p.DocumentID != nil && t.DocumentID != *p.DocumentID {
			continue
		}
		matched = append(matched, snapshotTask(t))
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].Seq > matched[j].Seq
	})

	if offset >= len(matched) {
		return []*Task{}, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// AllTasks returns a snapshot of every task record, in no particular order.
func (s *Store) AllTasks() []*Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, snapshotTask(t))
	}
	return out
}

func (s *Store) CountTasksByStatus() map[TaskStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[TaskStatus]int, 4)
	for _, t := range s.tasks {
		out[t.Status]++
	}
	return out
}

// MarkProcessing claims a task for execution. Only pending tasks can be
// claimed; anything else returns ErrNotPending so the dispatcher skips
// records that were cancelled or swept while queued.
func (s *Store) MarkProcessing(id uuid.UUID) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	if t.Status != StatusPending {
		return nil, ErrNotPending
	}
	t.Status = StatusProcessing
	t.UpdatedAt = time.Now().UTC()
	return snapshotTask(t), nil
}

// CompleteTask records a successful run. The task must still be processing.
func (s *Store) CompleteTask(id uuid.UUID, result any, elapsed time.Duration) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	if t.Status != StatusProcessing {
		return nil, ErrTerminalState
	}
	t.Status = StatusCompleted
	t.Result = result
	t.Error = ""
	t.ProcessingTime = elapsed
	t.UpdatedAt = time.Now().UTC()
	return snapshotTask(t), nil
}

// FailTask records an unsuccessful run. The task must still be processing.
func (s *Store) FailTask(id uuid.UUID, reason string, elapsed time.Duration) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	if t.Status != StatusProcessing {
		return nil, ErrTerminalState
	}
	t.Status = StatusFailed
	t.Error = reason
	t.ProcessingTime = elapsed
	t.UpdatedAt = time.Now().UTC()
	return snapshotTask(t), nil
}

// FailIfPending fails a task that never started running: cancellation,
// document deletion, or an unroutable type. No processing time is recorded.
func (s *Store) FailIfPending(id uuid.UUID, reason string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	if t.Status != StatusPending {
		return nil, ErrNotPending
	}
	t.Status = StatusFailed
	t.Error = reason
	t.UpdatedAt = time.Now().UTC()
	return snapshotTask(t), nil
}

// FailPendingForDocument fails every pending task that references the given
// document, in one atomic sweep, and reports which task IDs were affected so
// the caller can drop them from its queue. Tasks already processing are left
// alone to finish.
func (s *Store) FailPendingForDocument(documentID, reason string) []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	var swept []uuid.UUID
	for _, t := range s.tasks {
		if t.DocumentID != documentID || t.Status != StatusPending {
			continue
		}
		t.Status = StatusFailed
		t.Error = reason
		t.UpdatedAt = now
		swept = append(swept, t.ID)
	}
	return swept
}
