package scan

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/go-core/log"

	"github.com/purnamedha/sirascan/internal/classify"
	"github.com/purnamedha/sirascan/internal/dedup"
	"github.com/purnamedha/sirascan/internal/event"
	"github.com/purnamedha/sirascan/internal/report"
)

var tracer = otel.Tracer("github.com/purnamedha/sirascan/internal/scan")

// Engine is the pure pipeline core: normalize, classify, deduplicate, rank.
// It performs no I/O, holds no shared state between runs, and processes one
// materialized batch per call on the calling goroutine.
type Engine struct {
	classifier *classify.Classifier
	dedup      *dedup.Deduplicator
	logger     log.Logger
	hooks      EngineHooks
}

// EngineHooks are optional observation callbacks, used to wire metrics
// without the engine depending on a metrics registry.
type EngineHooks struct {
	OnComplete func(e *CompleteEvent)
}

// CompleteEvent describes one finished pipeline run.
type CompleteEvent struct {
	Duration   float64
	RawCount   int
	Skipped    int
	MergedAway int
	Events     int
	BySeverity map[string]int
}

// RunResult is what the pipeline hands to the serving layer.
type RunResult struct {
	Report       *report.Report
	RawCount     int
	SkippedItems int
	MergedAway   int
}

// NewEngine creates a pipeline engine.
func NewEngine(classifier *classify.Classifier, dd *dedup.Deduplicator, logger log.Logger, hooks EngineHooks) *Engine {
	if logger == nil {
		logger = log.Nop()
	}
	return &Engine{
		classifier: classifier,
		dedup:      dd,
		logger:     logger,
		hooks:      hooks,
	}
}

// Run executes the pipeline over one batch of raw items. Items without a
// title are skipped and counted; every surviving event is classified before
// dedup so the layer-agreement gate has layers to compare. An error here
// means the aggregator's distinct-id invariant broke, which is an internal
// defect, not bad input: the whole run is discarded.
func (e *Engine) Run(ctx context.Context, items []event.RawItem) (*RunResult, error) {
	ctx, span := tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.Int("pipeline.raw_items", len(items)),
	))
	defer span.End()

	start := time.Now()

	events := make([]*event.Event, 0, len(items))
	var skipped int
	for _, raw := range items {
		ev, err := event.Normalize(raw)
		if err != nil {
			if errors.Is(err, event.ErrNoTitle) {
				skipped++
				e.logger.Warn(ctx, "skipping item without title", "source", raw.Source, "url", raw.URL)
				continue
			}
			return nil, err
		}
		e.classifier.Classify(ev)
		events = append(events, ev)
	}

	deduped := e.dedup.Dedup(events)
	mergedAway := len(events) - len(deduped)

	rep, err := report.Build(deduped, time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("pipeline.skipped", skipped),
		attribute.Int("pipeline.merged_away", mergedAway),
		attribute.Int("pipeline.events", rep.Summary.Total),
	)

	if e.hooks.OnComplete != nil {
		e.hooks.OnComplete(&CompleteEvent{
			Duration:   time.Since(start).Seconds(),
			RawCount:   len(items),
			Skipped:    skipped,
			MergedAway: mergedAway,
			Events:     rep.Summary.Total,
			BySeverity: rep.Summary.BySeverity,
		})
	}

	e.logger.Info(ctx, "pipeline run complete",
		"raw_items", len(items),
		"skipped", skipped,
		"merged_away", mergedAway,
		"events", rep.Summary.Total,
	)

	return &RunResult{
		Report:       rep,
		RawCount:     len(items),
		SkippedItems: skipped,
		MergedAway:   mergedAway,
	}, nil
}
