package fleet

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Get("/kpi/{vehicleID}", GetVehicleKPI)
	r.Get("/kpi", GetFleetKPI)
	r.Get("/zones", GetZones)

	return r
}
