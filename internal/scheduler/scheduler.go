package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/CleanExpo/Zenith-Fresh-sub004/internal/observability"
	"github.com/CleanExpo/Zenith-Fresh-sub004/internal/queue"
	"github.com/CleanExpo/Zenith-Fresh-sub004/internal/store"
	"github.com/CleanExpo/Zenith-Fresh-sub004/internal/worker"
)

// Failure reasons written to the task record for runs that never reach a
// handler. Clients match on these strings.
const (
	ReasonCancelled       = "cancelled by user"
	ReasonDocumentDeleted = "document deleted"
	ReasonUnsupportedType = "unsupported task type"
)

const DefaultMaxConcurrent = 5

type Config struct {
	// MaxConcurrent caps how many tasks run at once. Zero means
	// DefaultMaxConcurrent.
	MaxConcurrent int
}

// Scheduler owns the task lifecycle: it admits work into the priority queue,
// dispatches it to handlers under the concurrency cap, and records outcomes.
// A single dispatch goroutine drains the queue; submissions and slot releases
// nudge it through a buffered wake channel, so no dispatch is ever missed and
// none runs re-entrantly.
type Scheduler struct {
	store    *store.Store
	queue    *queue.Queue
	registry *worker.Registry
	logger   *zap.Logger

	maxConcurrent int
	sem           chan struct{}
	wake          chan struct{}

	dispatchCtx  context.Context
	stopDispatch context.CancelFunc
	execCtx      context.Context
	killExec     context.CancelFunc

	wg      sync.WaitGroup
	stopped chan struct{}

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

func New(st *store.Store, registry *worker.Registry, logger *zap.Logger, cfg Config) *Scheduler {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}

	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	execCtx, killExec := context.WithCancel(context.Background())

	return &Scheduler{
		store:         st,
		queue:         queue.New(),
		registry:      registry,
		logger:        logger,
		maxConcurrent: maxConcurrent,
		sem:           make(chan struct{}, maxConcurrent),
		wake:          make(chan struct{}, 1),
		dispatchCtx:   dispatchCtx,
		stopDispatch:  stopDispatch,
		execCtx:       execCtx,
		killExec:      killExec,
		stopped:       make(chan struct{}),
		inFlight:      make(map[uuid.UUID]struct{}),
	}
}

// Start launches the dispatch goroutine. Call once.
func (s *Scheduler) Start() {
	s.logger.Info("scheduler started", zap.Int("max_concurrent", s.maxConcurrent))
	go s.dispatch()
}

// Stop shuts the scheduler down: no new tasks are claimed, and tasks already
// running get until ctx expires to finish. After that their contexts are
// cancelled and the remaining handlers are reaped.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.stopDispatch()
	<-s.stopped

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("shutdown deadline reached, cancelling in-flight tasks",
			zap.Int("in_flight", s.InFlight()))
		s.killExec()
		<-done
		return ctx.Err()
	}
}

// SubmitTask validates and stores a new task, enqueues it, and wakes the
// dispatcher.
func (s *Scheduler) SubmitTask(ctx context.Context, p store.CreateTaskParams) (*store.Task, error) {
	task, err := s.store.CreateTask(p)
	if err != nil {
		return nil, err
	}

	s.queue.Push(queue.Item{ID: task.ID, Priority: task.Priority, Seq: task.Seq})
	observability.TasksSubmittedTotal.WithLabelValues(string(task.Type), strconv.Itoa(task.Priority)).Inc()
	observability.QueueDepth.Set(float64(s.queue.Len()))
	s.notify()

	s.logger.Info("task submitted",
		zap.String("task_id", task.ID.String()),
		zap.String("document_id", task.DocumentID),
		zap.String("type", string(task.Type)),
		zap.Int("priority", task.Priority),
	)
	return task, nil
}

func (s *Scheduler) GetTask(id uuid.UUID) (*store.Task, error) {
	return s.store.GetTask(id)
}

func (s *Scheduler) ListTasks(p store.ListTasksParams) ([]*store.Task, error) {
	return s.store.ListTasks(p)
}

// CancelTask withdraws a pending task. It reports false without error when
// the task exists but already left the pending state; processing tasks are
// never interrupted.
func (s *Scheduler) CancelTask(id uuid.UUID) (bool, error) {
	task, err := s.store.FailIfPending(id, ReasonCancelled)
	if errors.Is(err, store.ErrNotPending) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.queue.Remove(id)
	observability.TasksFailedTotal.WithLabelValues(string(task.Type), "cancelled").Inc()
	observability.QueueDepth.Set(float64(s.queue.Len()))

	s.logger.Info("task cancelled",
		zap.String("task_id", id.String()),
		zap.String("type", string(task.Type)),
	)
	return true, nil
}

// AddDocument registers a document for processing.
func (s *Scheduler) AddDocument(p store.AddDocumentParams) (*store.Document, error) {
	doc, err := s.store.AddDocument(p)
	if err != nil {
		return nil, err
	}
	observability.DocumentsTracked.Inc()
	s.logger.Info("document registered",
		zap.String("document_id", doc.ID),
		zap.String("type", string(doc.Type)),
		zap.Int64("size", doc.Size),
	)
	return doc, nil
}

func (s *Scheduler) GetDocument(id string) (*store.Document, error) {
	return s.store.GetDocument(id)
}

func (s *Scheduler) ListDocuments() []*store.Document {
	return s.store.ListDocuments()
}

// DeleteDocument removes a document and fails all of its still-pending tasks
// with ReasonDocumentDeleted. Tasks already processing are left to finish.
// Returns how many pending tasks were swept.
func (s *Scheduler) DeleteDocument(id string) (int, error) {
	if err := s.store.DeleteDocument(id); err != nil {
		return 0, err
	}

	swept := s.store.FailPendingForDocument(id, ReasonDocumentDeleted)
	for _, taskID := range swept {
		s.queue.Remove(taskID)
	}
	observability.DocumentsTracked.Dec()
	observability.QueueDepth.Set(float64(s.queue.Len()))

	s.logger.Info("document deleted",
		zap.String("document_id", id),
		zap.Int("swept_tasks", len(swept)),
	)
	return len(swept), nil
}

func (s *Scheduler) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inFlight)
}

// notify nudges the dispatcher. The channel holds one pending nudge; extra
// sends while one is queued are dropped, which is fine because the dispatcher
// drains the whole queue per nudge.
func (s *Scheduler) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) dispatch() {
	defer close(s.stopped)
	for {
		select {
		case <-s.dispatchCtx.Done():
			return
		case <-s.wake:
		}
		s.drain()
	}
}

// drain moves tasks from the queue into executor goroutines until the queue
// is empty or shutdown begins. A slot is acquired before popping so a task is
// never pulled off the queue without capacity to run it.
func (s *Scheduler) drain() {
	for {
		select {
		case <-s.dispatchCtx.Done():
			return
		case s.sem <- struct{}{}:
		}

		it, ok := s.queue.Pop()
		if !ok {
			<-s.sem
			return
		}
		observability.QueueDepth.Set(float64(s.queue.Len()))

		task, err := s.store.GetTask(it.ID)
		if err != nil {
			<-s.sem
			continue
		}

		h, ok := s.registry.Get(task.Type)
		if !ok {
			s.failUnroutable(task)
			<-s.sem
			continue
		}

		claimed, err := s.store.MarkProcessing(it.ID)
		if err != nil {
			// lost the race with a cancel or sweep
			<-s.sem
			continue
		}

		doc, err := s.store.GetDocument(claimed.DocumentID)
		if err != nil {
			_, _ = s.store.FailTask(claimed.ID, ReasonDocumentDeleted, 0)
			observability.TasksFailedTotal.WithLabelValues(string(claimed.Type), "document_deleted").Inc()
			<-s.sem
			continue
		}

		s.track(claimed.ID)
		observability.TasksStartedTotal.WithLabelValues(string(claimed.Type)).Inc()
		s.wg.Add(1)
		go s.execute(claimed, doc, h)
	}
}

func (s *Scheduler) failUnroutable(task *store.Task) {
	if _, err := s.store.FailIfPending(task.ID, ReasonUnsupportedType); err != nil {
		return
	}
	observability.TasksFailedTotal.WithLabelValues(string(task.Type), "unsupported_type").Inc()
	s.logger.Warn("no handler registered for task type",
		zap.String("task_id", task.ID.String()),
		zap.String("type", string(task.Type)),
	)
}

func (s *Scheduler) execute(task *store.Task, doc *store.Document, h worker.Handler) {
	defer s.wg.Done()
	defer func() {
		s.untrack(task.ID)
		<-s.sem
		s.notify()
	}()

	tr := otel.Tracer("zenith/scheduler")
	ctx, span := tr.Start(s.execCtx, "zenith.process_task")
	defer span.End()
	span.SetAttributes(
		attribute.String("task.id", task.ID.String()),
		attribute.String("task.type", string(task.Type)),
		attribute.String("document.id", task.DocumentID),
		attribute.Int("task.priority", task.Priority),
	)

	start := time.Now()
	result, runErr := runHandler(ctx, h, doc, task.Parameters)
	elapsed := time.Since(start)
	observability.TaskDuration.WithLabelValues(string(task.Type)).Observe(elapsed.Seconds())

	if runErr != nil {
		span.RecordError(runErr)
		span.SetStatus(codes.Error, runErr.Error())
		if _, err := s.store.FailTask(task.ID, runErr.Error(), elapsed); err != nil {
			s.logger.Error("record task failure", zap.String("task_id", task.ID.String()), zap.Error(err))
			return
		}
		observability.TasksFailedTotal.WithLabelValues(string(task.Type), "handler_error").Inc()
		s.logger.Warn("task failed",
			zap.String("task_id", task.ID.String()),
			zap.String("type", string(task.Type)),
			zap.Duration("elapsed", elapsed),
			zap.String("error", runErr.Error()),
		)
		return
	}

	if _, err := s.store.CompleteTask(task.ID, result, elapsed); err != nil {
		s.logger.Error("record task completion", zap.String("task_id", task.ID.String()), zap.Error(err))
		return
	}
	s.store.MarkDocumentProcessed(task.DocumentID, time.Now())
	observability.TasksCompletedTotal.WithLabelValues(string(task.Type)).Inc()

	s.logger.Info("task processed",
		zap.String("task_id", task.ID.String()),
		zap.String("type", string(task.Type)),
		zap.Duration("elapsed", elapsed),
	)
}

// runHandler isolates handler panics so one bad analyzer cannot take down
// the dispatcher's slot accounting.
func runHandler(ctx context.Context, h worker.Handler, doc *store.Document, params map[string]any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, doc, params)
}

func (s *Scheduler) track(id uuid.UUID) {
	s.mu.Lock()
	s.inFlight[id] = struct{}{}
	s.mu.Unlock()
	observability.TasksInFlight.Inc()
}

func (s *Scheduler) untrack(id uuid.UUID) {
	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
	observability.TasksInFlight.Dec()
}

// Stats reports a point-in-time view of scheduler load.
type Stats struct {
	QueueDepth      int                      `json:"queue_depth"`
	InFlight        int                      `json:"in_flight"`
	MaxConcurrent   int                      `json:"max_concurrent"`
	StatusCounts    map[store.TaskStatus]int `json:"status_counts"`
	RegisteredTypes []store.TaskType         `json:"registered_types"`
}

func (s *Scheduler) Stats() Stats {
	return Stats{
		QueueDepth:      s.queue.Len(),
		InFlight:        s.InFlight(),
		MaxConcurrent:   s.maxConcurrent,
		StatusCounts:    s.store.CountTasksByStatus(),
		RegisteredTypes: s.registry.Types(),
	}
}
