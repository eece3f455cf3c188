package worker

import (
	"context"
	"sort"

	"github.com/CleanExpo/Zenith-Fresh-sub004/internal/store"
)

// Handler runs one analysis pass over a document and returns the result
// payload recorded on the task. A handler that returns an error fails the
// task with that error's message.
type Handler func(ctx context.Context, doc *store.Document, params map[string]any) (any, error)

type Registry struct {
	handlers map[store.TaskType]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: map[store.TaskType]Handler{}}
}

// Register adds or replaces the handler for a task type. Registration
// happens at boot, before the scheduler starts; the map is read-only after
// that.
func (r *Registry) Register(taskType store.TaskType, h Handler) {
	r.handlers[taskType] = h
}

func (r *Registry) Get(taskType store.TaskType) (Handler, bool) {
	h, ok := r.handlers[taskType]
	return h, ok
}

// Types returns the registered task types, sorted for stable output.
func (r *Registry) Types() []store.TaskType {
	out := make([]store.TaskType, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
