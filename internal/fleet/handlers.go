package fleet

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// scopeFromQuery builds the aggregation scope from query params:
// ?date=YYYY-MM-DD, ?from=...&to=..., or ?scope=alltime.
func scopeFromQuery(r *http.Request) (Scope, bool) {
	q := r.URL.Query()

	if q.Get("scope") == "alltime" {
		return AllTimeScope(), true
	}
	if d := q.Get("date"); d != "" {
		day, err := time.Parse("2006-01-02", d)
		if err != nil {
			return Scope{}, false
		}
		return DayScope(day.UTC()), true
	}
	from, errF := time.Parse("2006-01-02", q.Get("from"))
	to, errT := time.Parse("2006-01-02", q.Get("to"))
	if errF != nil || errT != nil || to.Before(from) {
		return Scope{}, false
	}
	// Inclusive end of the "to" day.
	return RangeScope(from.UTC(), to.UTC().Add(24*time.Hour-time.Nanosecond)), true
}

// GetVehicleKPI handles GET /kpi/{vehicleID}.
func GetVehicleKPI(w http.ResponseWriter, r *http.Request) {
	vehicleID := chi.URLParam(r, "vehicleID")
	orgID := r.URL.Query().Get("org")
	if vehicleID == "" || orgID == "" {
		http.Error(w, "vehicleID and org are required", http.StatusBadRequest)
		return
	}

	scope, ok := scopeFromQuery(r)
	if !ok {
		http.Error(w, "provide date=, from=&to=, or scope=alltime", http.StatusBadRequest)
		return
	}

	result, err := DefaultComposer.ComputeKPI(r.Context(), vehicleID, orgID, scope)
	if err != nil {
		log.Printf("[fleet] kpi vehicle=%s: %v", vehicleID, err)
		http.Error(w, "Failed to compute KPI", http.StatusInternalServerError)
		return
	}

	writeJSON(w, result)
}

// GetFleetKPI handles GET /kpi. ?vehicles=a,b,c selects a subset;
// ?vehicles=all (or absent) covers every vehicle with sessions.
func GetFleetKPI(w http.ResponseWriter, r *http.Request) {
	orgID := r.URL.Query().Get("org")
	if orgID == "" {
		http.Error(w, "org is required", http.StatusBadRequest)
		return
	}

	scope, ok := scopeFromQuery(r)
	if !ok {
		http.Error(w, "provide date=, from=&to=, or scope=alltime", http.StatusBadRequest)
		return
	}

	var vehicleIDs []string
	if v := r.URL.Query().Get("vehicles"); v != "" && v != "all" {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				vehicleIDs = append(vehicleIDs, id)
			}
		}
	}

	result, err := DefaultComposer.ComputeFleetKPI(r.Context(), vehicleIDs, orgID, scope)
	if err != nil {
		log.Printf("[fleet] fleet kpi org=%s: %v", orgID, err)
		http.Error(w, "Failed to compute fleet KPI", http.StatusInternalServerError)
		return
	}

	writeJSON(w, result)
}

// GetZones handles GET /zones.
func GetZones(w http.ResponseWriter, r *http.Request) {
	orgID := r.URL.Query().Get("org")
	if orgID == "" {
		http.Error(w, "org is required", http.StatusBadRequest)
		return
	}

	zones, err := Zones.ZonesByOrg(r.Context(), orgID)
	if err != nil {
		log.Printf("[fleet] zones org=%s: %v", orgID, err)
		http.Error(w, "Failed to load zones", http.StatusInternalServerError)
		return
	}

	writeJSON(w, zones)
}
