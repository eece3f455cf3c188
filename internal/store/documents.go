package store

import (
	"sort"
	"strings"
	"time"
)

type AddDocumentParams struct {
	ID             string
	Name           string
	Type           DocumentType
	SourceLocation string
	Size           int64
	Language       string
	PageCount      int
	Metadata       map[string]string
}

// AddDocument registers a document so tasks can be submitted against it.
// Re-registering an existing ID is rejected rather than silently replacing
// the record out from under queued work.
func (s *Store) AddDocument(p AddDocumentParams) (*Document, error) {
	id := strings.TrimSpace(p.ID)
	if id == "" {
		return nil, ErrDocumentNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[id]; ok {
		return nil, ErrAlreadyExists
	}

	d := &Document{
		ID:             id,
		Name:           p.Name,
		Type:           p.Type,
		SourceLocation: p.SourceLocation,
		Size:           p.Size,
		Language:       p.Language,
		PageCount:      p.PageCount,
		Metadata:       p.Metadata,
		UploadedAt:     time.Now().UTC(),
	}
	s.documents[id] = d
	return snapshotDocument(d), nil
}

func (s *Store) GetDocument(id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.documents[id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return snapshotDocument(d), nil
}

// ListDocuments returns all registered documents, most recently uploaded
// first.
func (s *Store) ListDocuments() []*Document {
	s.mu.RLock()
	out := make([]*Document, 0, len(s.documents))
	for _, d := range s.documents {
		out = append(out, snapshotDocument(d))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.After(out[j].UploadedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// DeleteDocument removes a document from the registry. Task records that
// reference it are kept for history; sweeping its pending tasks is the
// scheduler's job.
func (s *Store) DeleteDocument(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[id]; !ok {
		return ErrDocumentNotFound
	}
	delete(s.documents, id)
	return nil
}

// MarkDocumentProcessed stamps the document the first time one of its tasks
// completes. Later completions keep the original timestamp.
func (s *Store) MarkDocumentProcessed(id string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.documents[id]
	if !ok || d.ProcessedAt != nil {
		return
	}
	at = at.UTC()
	d.ProcessedAt = &at
}
