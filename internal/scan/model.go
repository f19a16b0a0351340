package scan

import (
	"time"

	"github.com/purnamedha/sirascan/internal/report"
)

const (
	// DefaultDays is the lookback window when a scan request names none.
	DefaultDays = 7

	// DefaultMaxDays caps the lookback window a caller may request.
	DefaultMaxDays = 90
)

// Status tracks where a scan is in its lifecycle.
type Status string

const (
	// StatusPending means created, not yet started
	StatusPending Status = "pending"

	// StatusInProgress means sources are being fetched or the pipeline is running
	StatusInProgress Status = "in_progress"

	// StatusComplete means finished successfully
	StatusComplete Status = "complete"

	// StatusFailed means finished with errors
	StatusFailed Status = "failed"
)

// Result is the outcome of one scan run.
type Result struct {
	ID           string         `json:"id"`
	Status       Status         `json:"status"`
	Days         int            `json:"days"`
	RawCount     int            `json:"raw_count"`
	SkippedItems int            `json:"skipped_items"`
	MergedAway   int            `json:"merged_away"`
	SourceErrors int            `json:"source_errors,omitempty"`
	Report       *report.Report `json:"report,omitempty"`
	Briefing     string         `json:"briefing,omitempty"`
	Error        string         `json:"error,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	CompletedAt  time.Time      `json:"completed_at,omitempty"`
	Duration     float64        `json:"duration_seconds,omitempty"`
}
