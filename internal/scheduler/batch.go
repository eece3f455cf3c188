package scheduler

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CleanExpo/Zenith-Fresh-sub004/internal/store"
)

type BatchRequest struct {
	DocumentIDs []string
	Types       []store.TaskType
	// Parameters are shared by every task in the batch.
	Parameters map[string]any
}

type BatchSkip struct {
	DocumentID string         `json:"document_id"`
	Type       store.TaskType `json:"type"`
	Reason     string         `json:"reason"`
}

type BatchResult struct {
	Created []*store.Task `json:"created"`
	Skipped []BatchSkip   `json:"skipped"`
	// TasksByDocument groups created task ids by document, in the order the
	// types were requested. Documents that yielded no task have no key.
	TasksByDocument map[string][]uuid.UUID `json:"tasks_by_document"`
}

// ProcessBatch submits one task per document/type combination at
// BatchPriority. A combination that fails validation is reported in Skipped
// and the rest of the batch proceeds.
func (s *Scheduler) ProcessBatch(ctx context.Context, req BatchRequest) *BatchResult {
	res := &BatchResult{
		Created:         make([]*store.Task, 0, len(req.DocumentIDs)*len(req.Types)),
		Skipped:         make([]BatchSkip, 0),
		TasksByDocument: make(map[string][]uuid.UUID),
	}

	for _, docID := range req.DocumentIDs {
		for _, taskType := range req.Types {
			task, err := s.SubmitTask(ctx, store.CreateTaskParams{
				DocumentID: docID,
				Type:       taskType,
				Parameters: req.Parameters,
				Priority:   store.BatchPriority,
			})
			if err != nil {
				res.Skipped = append(res.Skipped, BatchSkip{
					DocumentID: docID,
					Type:       taskType,
					Reason:     err.Error(),
				})
				continue
			}
			res.Created = append(res.Created, task)
			res.TasksByDocument[docID] = append(res.TasksByDocument[docID], task.ID)
		}
	}

	s.logger.Info("batch submitted",
		zap.Int("documents", len(req.DocumentIDs)),
		zap.Int("types", len(req.Types)),
		zap.Int("created", len(res.Created)),
		zap.Int("skipped", len(res.Skipped)),
	)
	return res
}
