package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/CleanExpo/Zenith-Fresh-sub004/internal/store"
)

// DefaultHandlers registers the built-in analyzers. They stand in for the
// real extraction engines: each one burns a short, type-specific amount of
// wall time and derives its output from the document's recorded shape, so
// runs are repeatable without any external service.
func DefaultHandlers() *Registry {
	r := NewRegistry()

	r.Register(store.TypeTextExtraction, extractText)
	r.Register(store.TypeEntityExtraction, extractEntities)
	r.Register(store.TypeClassification, classify)
	r.Register(store.TypeSummarization, summarize)
	r.Register(store.TypeTranslation, translate)
	r.Register(store.TypeSentimentAnalysis, analyzeSentiment)
	r.Register(store.TypeContractAnalysis, analyzeContract)
	r.Register(store.TypeComplianceCheck, checkCompliance)
	r.Register(store.TypeStructuredExtraction, extractStructured)
	r.Register(store.TypeTableExtraction, extractTables)
	r.Register(store.TypeImageAnalysis, analyzeImage)
	r.Register(store.TypeSignatureDetection, detectSignatures)
	r.Register(store.TypeQualityAssessment, assessQuality)

	return r
}

// simulate blocks for d or until the context is cancelled, whichever comes
// first. Handlers report the cancellation so an aborted run fails rather
// than recording a half-made result.
func simulate(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func pages(doc *store.Document) int {
	if doc.PageCount > 0 {
		return doc.PageCount
	}
	p := int(doc.Size / 2500)
	if p < 1 {
		p = 1
	}
	return p
}

func words(doc *store.Document) int64 {
	w := doc.Size / 6
	if w < 1 {
		w = 1
	}
	return w
}

func strParam(params map[string]any, key, fallback string) string {
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func extractText(ctx context.Context, doc *store.Document, _ map[string]any) (any, error) {
	if err := simulate(ctx, 30*time.Millisecond); err != nil {
		return nil, err
	}
	return map[string]any{
		"characters": doc.Size,
		"words":      words(doc),
		"pages":      pages(doc),
	}, nil
}

func extractEntities(ctx context.Context, doc *store.Document, _ map[string]any) (any, error) {
	if err := simulate(ctx, 45*time.Millisecond); err != nil {
		return nil, err
	}
	count := int(words(doc)/80) + 1
	return map[string]any{
		"entity_count": count,
		"kinds":        []string{"person", "organization", "date", "amount"},
	}, nil
}

func classify(ctx context.Context, doc *store.Document, _ map[string]any) (any, error) {
	if err := simulate(ctx, 25*time.Millisecond); err != nil {
		return nil, err
	}
	categories := []string{"contract", "invoice", "report", "correspondence", "form"}
	return map[string]any{
		"category":   categories[int(doc.Size)%len(categories)],
		"confidence": 0.87,
	}, nil
}

func summarize(ctx context.Context, doc *store.Document, _ map[string]any) (any, error) {
	if err := simulate(ctx, 60*time.Millisecond); err != nil {
		return nil, err
	}
	return map[string]any{
		"summary":     fmt.Sprintf("%s: %d-page %s document", doc.Name, pages(doc), doc.Type),
		"input_words": words(doc),
	}, nil
}

func translate(ctx context.Context, doc *store.Document, params map[string]any) (any, error) {
	if err := simulate(ctx, 70*time.Millisecond); err != nil {
		return nil, err
	}
	source := doc.Language
	if source == "" {
		source = "en"
	}
	return map[string]any{
		"source_language": source,
		"target_language": strParam(params, "target_language", "en"),
		"characters":      doc.Size,
	}, nil
}

func analyzeSentiment(ctx context.Context, doc *store.Document, _ map[string]any) (any, error) {
	if err := simulate(ctx, 20*time.Millisecond); err != nil {
		return nil, err
	}
	sentiments := []string{"negative", "neutral", "positive"}
	return map[string]any{
		"sentiment": sentiments[int(doc.Size)%len(sentiments)],
		"score":     0.62,
	}, nil
}

func analyzeContract(ctx context.Context, doc *store.Document, _ map[string]any) (any, error) {
	if err := simulate(ctx, 80*time.Millisecond); err != nil {
		return nil, err
	}
	return map[string]any{
		"clauses_found": pages(doc) * 3,
		"parties":       2,
		"risk_level":    "medium",
	}, nil
}

func checkCompliance(ctx context.Context, doc *store.Document, params map[string]any) (any, error) {
	if err := simulate(ctx, 55*time.Millisecond); err != nil {
		return nil, err
	}
	return map[string]any{
		"framework":  strParam(params, "framework", "gdpr"),
		"compliant":  doc.Size%7 != 0,
		"checks_run": 12,
	}, nil
}

func extractStructured(ctx context.Context, doc *store.Document, params map[string]any) (any, error) {
	if err := simulate(ctx, 50*time.Millisecond); err != nil {
		return nil, err
	}
	return map[string]any{
		"schema":           strParam(params, "schema", "generic"),
		"fields_extracted": int(doc.Size%40) + 5,
	}, nil
}

func extractTables(ctx context.Context, doc *store.Document, _ map[string]any) (any, error) {
	if err := simulate(ctx, 40*time.Millisecond); err != nil {
		return nil, err
	}
	tables := pages(doc) / 2
	return map[string]any{
		"tables": tables,
		"rows":   tables * 14,
	}, nil
}

func analyzeImage(ctx context.Context, doc *store.Document, _ map[string]any) (any, error) {
	if err := simulate(ctx, 65*time.Millisecond); err != nil {
		return nil, err
	}
	return map[string]any{
		"regions_detected": int(doc.Size%9) + 1,
		"contains_text":    doc.Type != store.DocImage || doc.Size%2 == 0,
	}, nil
}

func detectSignatures(ctx context.Context, doc *store.Document, _ map[string]any) (any, error) {
	if err := simulate(ctx, 35*time.Millisecond); err != nil {
		return nil, err
	}
	return map[string]any{
		"signatures_found": int(doc.Size % 3),
		"pages_scanned":    pages(doc),
	}, nil
}

func assessQuality(ctx context.Context, doc *store.Document, _ map[string]any) (any, error) {
	if err := simulate(ctx, 30*time.Millisecond); err != nil {
		return nil, err
	}
	score := 1.0 - float64(doc.Size%20)/100
	return map[string]any{
		"score":    score,
		"readable": score > 0.85,
	}, nil
}
