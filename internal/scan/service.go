package scan

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"

	"github.com/purnamedha/sirascan/internal/event"
	"github.com/purnamedha/sirascan/internal/feeds"
	"github.com/purnamedha/sirascan/internal/report"
)

// Notifier delivers a completed scan result to an external channel.
type Notifier interface {
	Send(ctx context.Context, result *Result) error
}

// Briefer produces an optional narrative digest for a finished report.
type Briefer interface {
	Brief(ctx context.Context, rep *report.Report) (string, error)
}

// SubmitResult is the outcome of submitting a scan request.
type SubmitResult struct {
	ID string
}

// Service is the business boundary for scan operations: it owns result
// lifecycle, fans in the acquisition sources, and dispatches the pipeline
// asynchronously.
type Service struct {
	store    Store
	engine   *Engine
	registry *feeds.Registry
	logger   log.Logger
	metrics  *Metrics
	notifier Notifier
	briefer  Briefer
}

// NewService creates a scan service. notifier and briefer may be nil.
func NewService(store Store, engine *Engine, registry *feeds.Registry, logger log.Logger, metrics *Metrics, notifier Notifier, briefer Briefer) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		store:    store,
		engine:   engine,
		registry: registry,
		logger:   logger,
		metrics:  metrics,
		notifier: notifier,
		briefer:  briefer,
	}
}

// Submit creates a pending scan over the last days of news and kicks it off
// asynchronously. The returned ID can be polled via Get.
func (s *Service) Submit(ctx context.Context, days int) (*SubmitResult, error) {
	if days <= 0 {
		days = DefaultDays
	}
	id := ulid.Make().String()
	result := &Result{
		ID:        id,
		Status:    StatusPending,
		Days:      days,
		CreatedAt: time.Now(),
	}
	if err := s.store.Put(ctx, result); err != nil {
		return nil, fmt.Errorf("store scan: %w", err)
	}
	if s.metrics != nil {
		s.metrics.SubmitsTotal.WithLabelValues("accepted").Inc()
	}

	// run detached from the request context - pass only the ID to avoid
	// sharing the Result pointer with the store.
	go s.runScan(context.WithoutCancel(ctx), id, days)

	return &SubmitResult{ID: id}, nil
}

// Get retrieves a scan result by ID.
func (s *Service) Get(ctx context.Context, id string) (*Result, bool, error) {
	return s.store.Get(ctx, id)
}

// Latest retrieves the most recently completed scan result.
func (s *Service) Latest(ctx context.Context) (*Result, bool, error) {
	return s.store.Latest(ctx)
}

func (s *Service) runScan(ctx context.Context, id string, days int) {
	L := s.logger.With("scan_id", id, "days", days)
	start := time.Now()

	result, ok, err := s.store.Get(ctx, id)
	if err != nil || !ok {
		L.Error(ctx, err, "failed to fetch result for scan")
		return
	}

	result.Status = StatusInProgress
	if err := s.store.Put(ctx, result); err != nil {
		L.Error(ctx, err, "failed to update status to in_progress")
		return
	}

	items, sourceErrors := s.fetchAll(ctx, L, days)

	rr, err := s.engine.Run(ctx, items)
	if err != nil {
		// pipeline errors are internal defects; fail the scan loudly
		L.Error(ctx, err, "pipeline run failed")
		result.Status = StatusFailed
		result.Error = err.Error()
		result.CompletedAt = time.Now()
		result.Duration = time.Since(start).Seconds()
		if s.metrics != nil {
			s.metrics.ScansTotal.WithLabelValues(string(StatusFailed)).Inc()
		}
		if err := s.store.Put(ctx, result); err != nil {
			L.Error(ctx, err, "failed to persist failed scan")
		}
		return
	}

	result.RawCount = rr.RawCount
	result.SkippedItems = rr.SkippedItems
	result.MergedAway = rr.MergedAway
	result.SourceErrors = sourceErrors
	result.Report = rr.Report

	if s.briefer != nil {
		briefing, err := s.briefer.Brief(ctx, rr.Report)
		if err != nil {
			// briefing is best-effort garnish; the scan stands without it
			L.Error(ctx, err, "briefing failed")
			if s.metrics != nil {
				s.metrics.BriefingsTotal.WithLabelValues("error").Inc()
			}
		} else {
			result.Briefing = briefing
			if s.metrics != nil {
				s.metrics.BriefingsTotal.WithLabelValues("success").Inc()
			}
		}
	}

	result.Status = StatusComplete
	result.CompletedAt = time.Now()
	result.Duration = time.Since(start).Seconds()
	if err := s.store.Put(ctx, result); err != nil {
		L.Error(ctx, err, "failed to persist scan result")
		return
	}
	if s.metrics != nil {
		s.metrics.ScansTotal.WithLabelValues(string(StatusComplete)).Inc()
		s.metrics.ScanDuration.Observe(result.Duration)
	}

	if s.notifier != nil {
		if err := s.notifier.Send(ctx, result); err != nil {
			L.Error(ctx, err, "scan notification failed")
		}
	}

	L.Info(ctx, "scan complete",
		"duration", result.Duration,
		"raw_items", result.RawCount,
		"events", result.Report.Summary.Total,
		"source_errors", sourceErrors,
	)
}

// fetchAll visits every registered source in order and concatenates their
// items into one materialized batch. Source failures are counted and logged
// but never abort the scan; partial news beats no news.
func (s *Service) fetchAll(ctx context.Context, L log.Logger, days int) ([]event.RawItem, int) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	var items []event.RawItem
	var failures int
	for _, src := range s.registry.Sources() {
		fetchCtx, span := tracer.Start(ctx, "source.fetch", trace.WithAttributes(
			attribute.String("source.name", src.Name()),
		))
		fetchStart := time.Now()
		got, err := src.Fetch(fetchCtx, cutoff)
		if s.metrics != nil {
			s.metrics.SourceFetchDuration.WithLabelValues(src.Name()).Observe(time.Since(fetchStart).Seconds())
		}
		if err != nil {
			failures++
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			L.Error(ctx, err, "source fetch failed", "source", src.Name())
			if s.metrics != nil {
				s.metrics.SourceFetchesTotal.WithLabelValues(src.Name(), "error").Inc()
			}
			// a source can fail after yielding partial results
		}
		if s.metrics != nil && err == nil {
			s.metrics.SourceFetchesTotal.WithLabelValues(src.Name(), "success").Inc()
			s.metrics.SourceItems.WithLabelValues(src.Name()).Observe(float64(len(got)))
		}
		span.SetAttributes(attribute.Int("source.items", len(got)))
		span.End()
		L.Info(ctx, "source fetched", "source", src.Name(), "items", len(got))
		items = append(items, got...)
	}
	return items, failures
}
