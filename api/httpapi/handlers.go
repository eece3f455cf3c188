package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/CleanExpo/Zenith-Fresh-sub004/internal/scheduler"
	"github.com/CleanExpo/Zenith-Fresh-sub004/internal/store"
)

// maxBatchCombinations caps document_ids x types per batch request so one
// call cannot flood the queue.
const maxBatchCombinations = 1000

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type apiError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string, details string) {
	writeJSON(w, status, apiError{Error: msg, Details: details})
}

type addDocumentRequest struct {
	ID             string            `json:"id,omitempty"`
	Name           string            `json:"name"`
	Type           string            `json:"type"`
	SourceLocation string            `json:"source_location,omitempty"`
	Size           int64             `json:"size,omitempty"`
	Language       string            `json:"language,omitempty"`
	PageCount      int               `json:"page_count,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

type documentResponse struct {
	Document store.Document `json:"document"`
}

func (s *Server) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	var req addDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Name == "" {
		writeErr(w, http.StatusBadRequest, "validation_error", "name is required")
		return
	}
	if req.Type == "" {
		writeErr(w, http.StatusBadRequest, "validation_error", "type is required")
		return
	}
	docType := store.DocumentType(req.Type)
	if !store.ValidDocumentType(docType) {
		writeErr(w, http.StatusBadRequest, "validation_error", "unknown document type")
		return
	}
	if req.Size < 0 {
		writeErr(w, http.StatusBadRequest, "validation_error", "size must be >= 0")
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	doc, err := s.scheduler.AddDocument(store.AddDocumentParams{
		ID:             id,
		Name:           req.Name,
		Type:           docType,
		SourceLocation: req.SourceLocation,
		Size:           req.Size,
		Language:       req.Language,
		PageCount:      req.PageCount,
		Metadata:       req.Metadata,
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			writeErr(w, http.StatusConflict, "conflict", "document id already registered")
			return
		}
		writeErr(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, documentResponse{Document: *doc})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	doc, err := s.scheduler.GetDocument(id)
	if err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			writeErr(w, http.StatusNotFound, "not_found", "document not found")
			return
		}
		writeErr(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, documentResponse{Document: *doc})
}

type listDocumentsResponse struct {
	Items []*store.Document `json:"items"`
	Count int               `json:"count"`
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	items := s.scheduler.ListDocuments()
	writeJSON(w, http.StatusOK, listDocumentsResponse{Items: items, Count: len(items)})
}

type deleteDocumentResponse struct {
	Deleted        bool `json:"deleted"`
	CancelledTasks int  `json:"cancelled_tasks"`
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	swept, err := s.scheduler.DeleteDocument(id)
	if err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			writeErr(w, http.StatusNotFound, "not_found", "document not found")
			return
		}
		writeErr(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, deleteDocumentResponse{Deleted: true, CancelledTasks: swept})
}

type createTaskRequest struct {
	DocumentID string         `json:"document_id"`
	Type       string         `json:"type"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Priority   *int           `json:"priority,omitempty"` // 1..10, default 5
}

type createTaskResponse struct {
	Task store.Task `json:"task"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.DocumentID == "" {
		writeErr(w, http.StatusBadRequest, "validation_error", "document_id is required")
		return
	}
	if req.Type == "" {
		writeErr(w, http.StatusBadRequest, "validation_error", "type is required")
		return
	}

	priority := 0
	if req.Priority != nil {
		if *req.Priority < store.MinPriority || *req.Priority > store.MaxPriority {
			writeErr(w, http.StatusBadRequest, "validation_error", "priority must be 1..10")
			return
		}
		priority = *req.Priority
	}

	task, err := s.scheduler.SubmitTask(r.Context(), store.CreateTaskParams{
		DocumentID: req.DocumentID,
		Type:       store.TaskType(req.Type),
		Parameters: req.Parameters,
		Priority:   priority,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDocumentNotFound):
			writeErr(w, http.StatusNotFound, "not_found", "document not found")
		case errors.Is(err, store.ErrInvalidPriority):
			writeErr(w, http.StatusBadRequest, "validation_error", "priority must be 1..10")
		default:
			writeErr(w, http.StatusInternalServerError, "internal_error", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, createTaskResponse{Task: *task})
}

type getTaskResponse struct {
	Task store.Task `json:"task"`
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "validation_error", "invalid task id")
		return
	}

	task, err := s.scheduler.GetTask(id)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			writeErr(w, http.StatusNotFound, "not_found", "task not found")
			return
		}
		writeErr(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, getTaskResponse{Task: *task})
}

type listTasksResponse struct {
	Items  []*store.Task `json:"items"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	qp := r.URL.Query()

	var status *store.TaskStatus
	if v := qp.Get("status"); v != "" {
		sv := store.TaskStatus(v)
		if !store.ValidTaskStatus(sv) {
			writeErr(w, http.StatusBadRequest, "validation_error", "invalid status")
			return
		}
		status = &sv
	}

	var taskType *store.TaskType
	if v := qp.Get("type"); v != "" {
		tv := store.TaskType(v)
		taskType = &tv
	}

	var documentID *string
	if v := qp.Get("document_id"); v != "" {
		documentID = &v
	}

	limit := 50
	if v := qp.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			writeErr(w, http.StatusBadRequest, "validation_error", "limit must be 1..200")
			return
		}
		limit = n
	}

	offset := 0
	if v := qp.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeErr(w, http.StatusBadRequest, "validation_error", "offset must be >= 0")
			return
		}
		offset = n
	}

	items, err := s.scheduler.ListTasks(store.ListTasksParams{
		Status:     status,
		Type:       taskType,
		DocumentID: documentID,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, listTasksResponse{
		Items:  items,
		Limit:  limit,
		Offset: offset,
	})
}

type cancelTaskResponse struct {
	Cancelled bool `json:"cancelled"`
}

func (s *Server) handleCancelTask(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "validation_error", "invalid task id")
		return
	}

	cancelled, err := s.scheduler.CancelTask(id)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			writeErr(w, http.StatusNotFound, "not_found", "task not found")
			return
		}
		writeErr(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	// A task that already left the pending state cannot be withdrawn; the
	// conflict status tells the client the request was understood but lost
	// the race.
	if !cancelled {
		writeJSON(w, http.StatusConflict, cancelTaskResponse{Cancelled: false})
		return
	}
	writeJSON(w, http.StatusOK, cancelTaskResponse{Cancelled: true})
}

type batchRequest struct {
	DocumentIDs []string       `json:"document_ids"`
	Types       []string       `json:"types"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if len(req.DocumentIDs) == 0 {
		writeErr(w, http.StatusBadRequest, "validation_error", "document_ids is required")
		return
	}
	if len(req.Types) == 0 {
		writeErr(w, http.StatusBadRequest, "validation_error", "types is required")
		return
	}
	if len(req.DocumentIDs)*len(req.Types) > maxBatchCombinations {
		writeErr(w, http.StatusBadRequest, "validation_error", "batch exceeds 1000 document/type combinations")
		return
	}

	types := make([]store.TaskType, 0, len(req.Types))
	for _, t := range req.Types {
		if t == "" {
			writeErr(w, http.StatusBadRequest, "validation_error", "types must not contain empty entries")
			return
		}
		types = append(types, store.TaskType(t))
	}

	res := s.scheduler.ProcessBatch(r.Context(), scheduler.BatchRequest{
		DocumentIDs: req.DocumentIDs,
		Types:       types,
		Parameters:  req.Parameters,
	})

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.scheduler.Summarize())
}

func (s *Server) handleSchedulerStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.scheduler.Stats())
}
