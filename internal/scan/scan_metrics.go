package scan

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the scan subsystem.
type Metrics struct {
	ScansTotal          *prometheus.CounterVec
	ScanDuration        prometheus.Histogram
	SubmitsTotal        *prometheus.CounterVec
	PipelineDuration    prometheus.Histogram
	RawItems            prometheus.Histogram
	SkippedItemsTotal   prometheus.Counter
	MergedAwayTotal     prometheus.Counter
	EventsOut           prometheus.Histogram
	EventsBySeverity    *prometheus.CounterVec
	SourceFetchesTotal  *prometheus.CounterVec
	SourceFetchDuration *prometheus.HistogramVec
	SourceItems         *prometheus.HistogramVec
	BriefingsTotal      *prometheus.CounterVec
}

// NewMetrics registers and returns scan metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ScansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sirascan_scans_total",
			Help: "Total scan runs by final status.",
		}, []string{"status"}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sirascan_scan_duration_seconds",
			Help:    "End-to-end duration of scan runs, fetch included.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1s .. ~512s
		}),
		SubmitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sirascan_submits_total",
			Help: "Total scan submissions by result.",
		}, []string{"result"}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sirascan_pipeline_duration_seconds",
			Help:    "Duration of the in-memory pipeline (no fetch).",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8), // 1ms .. ~16s
		}),
		RawItems: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sirascan_raw_items",
			Help:    "Raw items entering the pipeline per run.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1 .. 512
		}),
		SkippedItemsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sirascan_skipped_items_total",
			Help: "Raw items skipped for missing titles.",
		}),
		MergedAwayTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sirascan_merged_away_total",
			Help: "Events folded into a canonical duplicate.",
		}),
		EventsOut: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sirascan_events_out",
			Help:    "Deduplicated events per run.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1 .. 512
		}),
		EventsBySeverity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sirascan_events_by_severity_total",
			Help: "Classified events by severity.",
		}, []string{"severity"}),
		SourceFetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sirascan_source_fetches_total",
			Help: "Source fetches by source name and status.",
		}, []string{"source", "status"}),
		SourceFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sirascan_source_fetch_duration_seconds",
			Help:    "Duration of source fetches.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 8), // 0.1s .. ~12.8s
		}, []string{"source"}),
		SourceItems: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sirascan_source_items",
			Help:    "Items yielded per source fetch.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8), // 1 .. 128
		}, []string{"source"}),
		BriefingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sirascan_briefings_total",
			Help: "LLM briefing attempts by status.",
		}, []string{"status"}),
	}

	reg.MustRegister(
		m.ScansTotal,
		m.ScanDuration,
		m.SubmitsTotal,
		m.PipelineDuration,
		m.RawItems,
		m.SkippedItemsTotal,
		m.MergedAwayTotal,
		m.EventsOut,
		m.EventsBySeverity,
		m.SourceFetchesTotal,
		m.SourceFetchDuration,
		m.SourceItems,
		m.BriefingsTotal,
	)

	return m
}

// Hooks returns an EngineHooks that feeds the pipeline metrics.
func (m *Metrics) Hooks() EngineHooks {
	return EngineHooks{
		OnComplete: func(e *CompleteEvent) {
			m.PipelineDuration.Observe(e.Duration)
			m.RawItems.Observe(float64(e.RawCount))
			m.SkippedItemsTotal.Add(float64(e.Skipped))
			m.MergedAwayTotal.Add(float64(e.MergedAway))
			m.EventsOut.Observe(float64(e.Events))
			for sev, n := range e.BySeverity {
				m.EventsBySeverity.WithLabelValues(sev).Add(float64(n))
			}
		},
	}
}
