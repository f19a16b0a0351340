package scanapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// submitRequest is the POST /scans body. Both the body and the days field
// are optional; absent days falls back to the service default.
type submitRequest struct {
	Days int `json:"days"`
}

func (a *API) handleSubmitScan(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}
	if req.Days < 0 || req.Days > a.maxDays {
		msg := fmt.Sprintf(`{"error":"days must be between 1 and %d"}`, a.maxDays)
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	if req.Days == 0 {
		req.Days = a.defaultDays
	}

	sub, err := a.svc.Submit(r.Context(), req.Days)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to submit scan", "days", req.Days)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	a.logger.Info(r.Context(), "scan accepted", "scan_id", sub.ID, "days", req.Days)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	// nothing to do with errors here
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id": sub.ID,
	})
}
