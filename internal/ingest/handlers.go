package ingest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type processRequest struct {
	VehicleID string `json:"vehicle_id"`
	OrgID     string `json:"org_id"`
	Date      string `json:"date"` // YYYY-MM-DD
	BasePath  string `json:"base_path,omitempty"`
}

// ProcessHandler handles POST /process: ingest one vehicle's daily file
// set and return the batch report.
func ProcessHandler(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.VehicleID == "" || req.OrgID == "" {
		http.Error(w, "vehicle_id and org_id are required", http.StatusBadRequest)
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	basePath := req.BasePath
	if basePath == "" {
		basePath = DataPath
	}

	report := DefaultOrchestrator.ProcessVehicleDay(r.Context(), req.VehicleID, req.OrgID, date, basePath)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(report)
}

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	r.Post("/process", ProcessHandler)
	return r
}
