// Package scanapi exposes the scan pipeline over HTTP.
package scanapi

import (
	"context"
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/purnamedha/sirascan/internal/scan"
)

// ScanService defines the business operations scanapi needs.
type ScanService interface {
	Submit(ctx context.Context, days int) (*scan.SubmitResult, error)
	Get(ctx context.Context, id string) (*scan.Result, bool, error)
	Latest(ctx context.Context) (*scan.Result, bool, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger      log.Logger
	svc         ScanService
	defaultDays int
	maxDays     int
}

// New creates a new API handler. defaultDays fills scan requests that name
// no window; maxDays caps what a request may ask for. Zero values fall back
// to the scan package defaults.
func New(logger log.Logger, svc ScanService, defaultDays, maxDays int) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("scan service is required"))
	}
	if defaultDays <= 0 {
		defaultDays = scan.DefaultDays
	}
	if maxDays <= 0 {
		maxDays = scan.DefaultMaxDays
	}
	return &API{
		logger:      logger,
		svc:         svc,
		defaultDays: defaultDays,
		maxDays:     maxDays,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/scans", a.handleSubmitScan)
		r.Get("/scans/latest", a.handleLatestScan)
		r.Get("/scans/{id}", a.handleGetScan)
	})
}

func (a *API) handleGetScan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("sirascan.scan.id", id))

	result, ok, err := a.svc.Get(r.Context(), id)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to get scan result", "id", id)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	span.SetAttributes(attribute.String("sirascan.scan.status", string(result.Status)))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

func (a *API) handleLatestScan(w http.ResponseWriter, r *http.Request) {
	result, ok, err := a.svc.Latest(r.Context())
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to get latest scan")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, `{"error":"no completed scans"}`, http.StatusNotFound)
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("sirascan.scan.id", result.ID))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}
