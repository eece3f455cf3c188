package store

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string
type TaskType string
type DocumentType string

const (
	StatusPending    TaskStatus = "pending"
	StatusProcessing TaskStatus = "processing"
	StatusCompleted  TaskStatus = "completed"
	StatusFailed     TaskStatus = "failed"
)

// The closed set of analysis kinds. The scheduler treats these as opaque
// dispatch keys; only the handler registry knows what each one does.
const (
	TypeTextExtraction       TaskType = "text_extraction"
	TypeEntityExtraction     TaskType = "entity_extraction"
	TypeClassification       TaskType = "classification"
	TypeSummarization        TaskType = "summarization"
	TypeTranslation          TaskType = "translation"
	TypeSentimentAnalysis    TaskType = "sentiment_analysis"
	TypeContractAnalysis     TaskType = "contract_analysis"
	TypeComplianceCheck      TaskType = "compliance_check"
	TypeStructuredExtraction TaskType = "structured_data_extraction"
	TypeTableExtraction      TaskType = "table_extraction"
	TypeImageAnalysis        TaskType = "image_analysis"
	TypeSignatureDetection   TaskType = "signature_detection"
	TypeQualityAssessment    TaskType = "quality_assessment"
)

const (
	DocPDF          DocumentType = "pdf"
	DocWord         DocumentType = "docx"
	DocSpreadsheet  DocumentType = "xlsx"
	DocPresentation DocumentType = "pptx"
	DocText         DocumentType = "txt"
	DocHTML         DocumentType = "html"
	DocCSV          DocumentType = "csv"
	DocJSON         DocumentType = "json"
	DocXML          DocumentType = "xml"
	DocImage        DocumentType = "image"
)

// Priority bounds for task submission. Zero means "not set" and is replaced
// by DefaultPriority; anything else outside [MinPriority, MaxPriority] is
// rejected. Batch submissions run at BatchPriority.
const (
	MinPriority     = 1
	MaxPriority     = 10
	DefaultPriority = 5
	BatchPriority   = 7
)

type Task struct {
	ID             uuid.UUID      `json:"id"`
	DocumentID     string         `json:"document_id"`
	Type           TaskType       `json:"type"`
	Parameters     map[string]any `json:"parameters,omitempty"`
	Priority       int            `json:"priority"`
	Status         TaskStatus     `json:"status"`
	Result         any            `json:"result,omitempty"`
	Error          string         `json:"error,omitempty"`
	ProcessingTime time.Duration  `json:"processing_time_ns,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`

	// Seq is assigned at creation and strictly increases across tasks. The
	// queue uses it as the FIFO tie-break inside a priority class; listings
	// use it to order tasks created within the same clock tick.
	Seq uint64 `json:"-"`
}

// Terminal reports whether the task can transition no further.
func (t *Task) Terminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusFailed
}

type Document struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Type           DocumentType      `json:"type"`
	SourceLocation string            `json:"source_location,omitempty"`
	Size           int64             `json:"size,omitempty"`
	Language       string            `json:"language,omitempty"`
	PageCount      int               `json:"page_count,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	// ProcessedAt is set the first time any task against this document
	// completes successfully and is never cleared afterwards.
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	UploadedAt  time.Time  `json:"uploaded_at"`
}

func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

func ValidTaskType(t TaskType) bool {
	switch t {
	case TypeTextExtraction, TypeEntityExtraction, TypeClassification,
		TypeSummarization, TypeTranslation, TypeSentimentAnalysis,
		TypeContractAnalysis, TypeComplianceCheck, TypeStructuredExtraction,
		TypeTableExtraction, TypeImageAnalysis, TypeSignatureDetection,
		TypeQualityAssessment:
		return true
	default:
		return false
	}
}

func ValidDocumentType(t DocumentType) bool {
	switch t {
	case DocPDF, DocWord, DocSpreadsheet, DocPresentation, DocText,
		DocHTML, DocCSV, DocJSON, DocXML, DocImage:
		return true
	default:
		return false
	}
}
