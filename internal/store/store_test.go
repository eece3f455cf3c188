package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addTestDocument(t *testing.T, s *Store, id string) *Document {
	t.Helper()
	d, err := s.AddDocument(AddDocumentParams{
		ID:   id,
		Name: id + ".pdf",
		Type: DocPDF,
		Size: 2048,
	})
	require.NoError(t, err)
	return d
}

func TestCreateTaskDefaultsPriority(t *testing.T) {
	s := New()
	addTestDocument(t, s, "doc-1")

	task, err := s.CreateTask(CreateTaskParams{
		DocumentID: "doc-1",
		Type:       TypeTextExtraction,
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultPriority, task.Priority)
	assert.Equal(t, StatusPending, task.Status)
	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.False(t, task.CreatedAt.IsZero())
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)
	assert.NotZero(t, task.Seq)
}

func TestCreateTaskValidation(t *testing.T) {
	s := New()
	addTestDocument(t, s, "doc-1")

	_, err := s.CreateTask(CreateTaskParams{DocumentID: "missing", Type: TypeClassification})
	require.ErrorIs(t, err, ErrDocumentNotFound)

	for _, p := range []int{-3, 11, 42} {
		_, err := s.CreateTask(CreateTaskParams{DocumentID: "doc-1", Type: TypeClassification, Priority: p})
		assert.ErrorIs(t, err, ErrInvalidPriority, "priority %d", p)
	}

	for _, p := range []int{MinPriority, MaxPriority} {
		task, err := s.CreateTask(CreateTaskParams{DocumentID: "doc-1", Type: TypeClassification, Priority: p})
		require.NoError(t, err)
		assert.Equal(t, p, task.Priority)
	}
}

func TestTaskLifecycleTransitions(t *testing.T) {
	s := New()
	addTestDocument(t, s, "doc-1")

	task, err := s.CreateTask(CreateTaskParams{DocumentID: "doc-1", Type: TypeSummarization})
	require.NoError(t, err)

	claimed, err := s.MarkProcessing(task.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, claimed.Status)

	// a second claim must not succeed
	_, err = s.MarkProcessing(task.ID)
	assert.ErrorIs(t, err, ErrNotPending)

	done, err := s.CompleteTask(task.ID, map[string]any{"summary": "ok"}, 120*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	assert.Equal(t, 120*time.Millisecond, done.ProcessingTime)
	assert.Empty(t, done.Error)
	assert.True(t, done.Terminal())
	assert.False(t, done.UpdatedAt.Before(task.CreatedAt))

	_, err = s.CompleteTask(task.ID, nil, time.Millisecond)
	assert.ErrorIs(t, err, ErrTerminalState)
	_, err = s.FailTask(task.ID, "boom", time.Millisecond)
	assert.ErrorIs(t, err, ErrTerminalState)
}

func TestFailTaskRecordsReason(t *testing.T) {
	s := New()
	addTestDocument(t, s, "doc-1")

	task, err := s.CreateTask(CreateTaskParams{DocumentID: "doc-1", Type: TypeTranslation})
	require.NoError(t, err)
	_, err = s.MarkProcessing(task.ID)
	require.NoError(t, err)

	failed, err := s.FailTask(task.ID, "translation model unavailable", 40*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Equal(t, "translation model unavailable", failed.Error)
	assert.Equal(t, 40*time.Millisecond, failed.ProcessingTime)
}

func TestFailIfPendingOnlyTouchesPending(t *testing.T) {
	s := New()
	addTestDocument(t, s, "doc-1")

	pending, err := s.CreateTask(CreateTaskParams{DocumentID: "doc-1", Type: TypeClassification})
	require.NoError(t, err)

	failed, err := s.FailIfPending(pending.ID, "cancelled by user")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Equal(t, "cancelled by user", failed.Error)
	assert.Zero(t, failed.ProcessingTime)

	running, err := s.CreateTask(CreateTaskParams{DocumentID: "doc-1", Type: TypeClassification})
	require.NoError(t, err)
	_, err = s.MarkProcessing(running.ID)
	require.NoError(t, err)

	_, err = s.FailIfPending(running.ID, "cancelled by user")
	assert.ErrorIs(t, err, ErrNotPending)

	_, err = s.FailIfPending(uuid.New(), "cancelled by user")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestFailPendingForDocumentSweepsOnlyThatDocument(t *testing.T) {
	s := New()
	addTestDocument(t, s, "doc-1")
	addTestDocument(t, s, "doc-2")

	a, _ := s.CreateTask(CreateTaskParams{DocumentID: "doc-1", Type: TypeTextExtraction})
	b, _ := s.CreateTask(CreateTaskParams{DocumentID: "doc-1", Type: TypeClassification})
	running, _ := s.CreateTask(CreateTaskParams{DocumentID: "doc-1", Type: TypeSummarization})
	other, _ := s.CreateTask(CreateTaskParams{DocumentID: "doc-2", Type: TypeTextExtraction})

	_, err := s.MarkProcessing(running.ID)
	require.NoError(t, err)

	swept := s.FailPendingForDocument("doc-1", "document deleted")
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, swept)

	for _, id := range swept {
		got, err := s.GetTask(id)
		require.NoError(t, err)
		assert.Equal(t, StatusFailed, got.Status)
		assert.Equal(t, "document deleted", got.Error)
	}

	stillRunning, _ := s.GetTask(running.ID)
	assert.Equal(t, StatusProcessing, stillRunning.Status)
	untouched, _ := s.GetTask(other.ID)
	assert.Equal(t, StatusPending, untouched.Status)
}

func TestListTasksOrderAndFilters(t *testing.T) {
	s := New()
	addTestDocument(t, s, "doc-1")
	addTestDocument(t, s, "doc-2")

	first, _ := s.CreateTask(CreateTaskParams{DocumentID: "doc-1", Type: TypeTextExtraction})
	second, _ := s.CreateTask(CreateTaskParams{DocumentID: "doc-2", Type: TypeClassification})
	third, _ := s.CreateTask(CreateTaskParams{DocumentID: "doc-1", Type: TypeClassification})

	all, err := s.ListTasks(ListTasksParams{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)
	assert.Equal(t, first.ID, all[2].ID)

	docID := "doc-1"
	byDoc, err := s.ListTasks(ListTasksParams{DocumentID: &docID})
	require.NoError(t, err)
	require.Len(t, byDoc, 2)
	assert.Equal(t, third.ID, byDoc[0].ID)
	assert.Equal(t, first.ID, byDoc[1].ID)

	typ := TypeClassification
	byType, err := s.ListTasks(ListTasksParams{Type: &typ})
	require.NoError(t, err)
	assert.Len(t, byType, 2)

	_, err = s.MarkProcessing(first.ID)
	require.NoError(t, err)
	status := StatusPending
	pendingOnly, err := s.ListTasks(ListTasksParams{Status: &status})
	require.NoError(t, err)
	assert.Len(t, pendingOnly, 2)

	limited, err := s.ListTasks(ListTasksParams{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, second.ID, limited[0].ID)

	empty, err := s.ListTasks(ListTasksParams{Offset: 100})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSnapshotsAreIsolated(t *testing.T) {
	s := New()
	addTestDocument(t, s, "doc-1")

	task, err := s.CreateTask(CreateTaskParams{DocumentID: "doc-1", Type: TypeTextExtraction})
	require.NoError(t, err)

	task.Status = StatusCompleted // mutate the caller's copy only

	fresh, err := s.GetTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, fresh.Status)
}

func TestDocumentRegistry(t *testing.T) {
	s := New()

	doc, err := s.AddDocument(AddDocumentParams{
		ID:       "doc-1",
		Name:     "contract.pdf",
		Type:     DocPDF,
		Size:     4096,
		Language: "en",
		Metadata: map[string]string{"source": "upload"},
	})
	require.NoError(t, err)
	assert.False(t, doc.UploadedAt.IsZero())
	assert.Nil(t, doc.ProcessedAt)

	_, err = s.AddDocument(AddDocumentParams{ID: "doc-1", Type: DocPDF})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = s.AddDocument(AddDocumentParams{ID: "   ", Type: DocPDF})
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	got, err := s.GetDocument("doc-1")
	require.NoError(t, err)
	assert.Equal(t, "contract.pdf", got.Name)

	addTestDocument(t, s, "doc-2")
	docs := s.ListDocuments()
	require.Len(t, docs, 2)

	require.NoError(t, s.DeleteDocument("doc-1"))
	_, err = s.GetDocument("doc-1")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.ErrorIs(t, s.DeleteDocument("doc-1"), ErrDocumentNotFound)
}

func TestMarkDocumentProcessedKeepsFirstTimestamp(t *testing.T) {
	s := New()
	addTestDocument(t, s, "doc-1")

	first := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s.MarkDocumentProcessed("doc-1", first)
	s.MarkDocumentProcessed("doc-1", first.Add(time.Hour))

	doc, err := s.GetDocument("doc-1")
	require.NoError(t, err)
	require.NotNil(t, doc.ProcessedAt)
	assert.True(t, doc.ProcessedAt.Equal(first))

	// unknown document is a no-op
	s.MarkDocumentProcessed("missing", first)
}
