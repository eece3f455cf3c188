package scheduler

import (
	"sort"
	"time"

	"github.com/CleanExpo/Zenith-Fresh-sub004/internal/store"
)

type FeatureCount struct {
	Type  store.TaskType `json:"type"`
	Count int            `json:"count"`
}

// Summary is the aggregate view served by the analytics endpoint.
type Summary struct {
	TotalTasks   int                      `json:"total_tasks"`
	StatusCounts map[store.TaskStatus]int `json:"status_counts"`
	TasksByType  map[store.TaskType]int   `json:"tasks_by_type"`

	// AverageProcessingTimeMs averages completed tasks only; queue wait is
	// not processing time, and failed runs would skew the number with
	// whatever fraction of the work they got through.
	AverageProcessingTimeMs float64 `json:"average_processing_time_ms"`

	// SuccessRate is completed tasks over all tasks ever submitted. Zero
	// when nothing has been submitted yet.
	SuccessRate float64 `json:"success_rate"`

	// PopularFeatures ranks task types by submission count, top ten,
	// ties broken alphabetically.
	PopularFeatures []FeatureCount `json:"popular_features"`

	TotalDocuments  int                        `json:"total_documents"`
	DocumentsByType map[store.DocumentType]int `json:"documents_by_type"`
}

const popularFeaturesLimit = 10

// Summarize computes the analytics snapshot from every task ever recorded,
// terminal or not.
func (s *Scheduler) Summarize() Summary {
	tasks := s.store.AllTasks()

	statusCounts := make(map[store.TaskStatus]int, 4)
	typeCounts := make(map[store.TaskType]int)
	var completedDur time.Duration
	completed := 0

	for _, t := range tasks {
		statusCounts[t.Status]++
		typeCounts[t.Type]++
		if t.Status == store.StatusCompleted {
			completed++
			completedDur += t.ProcessingTime
		}
	}

	var avgMs float64
	if completed > 0 {
		avgMs = float64(completedDur) / float64(time.Millisecond) / float64(completed)
	}

	var successRate float64
	if len(tasks) > 0 {
		successRate = float64(completed) / float64(len(tasks))
	}

	features := make([]FeatureCount, 0, len(typeCounts))
	for typ, n := range typeCounts {
		features = append(features, FeatureCount{Type: typ, Count: n})
	}
	sort.Slice(features, func(i, j int) bool {
		if features[i].Count != features[j].Count {
			return features[i].Count > features[j].Count
		}
		return features[i].Type < features[j].Type
	})
	if len(features) > popularFeaturesLimit {
		features = features[:popularFeaturesLimit]
	}

	docs := s.store.ListDocuments()
	docTypes := make(map[store.DocumentType]int)
	for _, d := range docs {
		docTypes[d.Type]++
	}

	return Summary{
		TotalTasks:              len(tasks),
		StatusCounts:            statusCounts,
		TasksByType:             typeCounts,
		AverageProcessingTimeMs: avgMs,
		SuccessRate:             successRate,
		PopularFeatures:         features,
		TotalDocuments:          len(docs),
		DocumentsByType:         docTypes,
	}
}
