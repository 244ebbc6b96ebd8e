package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/FleetVision/FV-Backend/internal/config"
	"github.com/FleetVision/FV-Backend/internal/db"
	"github.com/FleetVision/FV-Backend/internal/fleet"
	"github.com/FleetVision/FV-Backend/internal/ingest"
	"github.com/FleetVision/FV-Backend/internal/middleware"
	"github.com/FleetVision/FV-Backend/internal/parsers"
	"github.com/FleetVision/FV-Backend/internal/scheduler"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	db.Connect()

	fleet.Init(cfg.SpeedLimits)
	ingest.Init(parsers.Default(), cfg.DataPath)

	var sched *scheduler.Service
	if cfg.SchedulerEnabled {
		sched = scheduler.New(time.Duration(cfg.SchedulerHours)*time.Hour, fleet.Sessions, fleet.DefaultComposer)
		sched.Start(context.Background())
		defer sched.Stop()
	}

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Use(middleware.LogMiddleware)
	r.Get("/", RootHandler)

	r.Mount("/fleet", fleet.SetupRoutes())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitMiddleware(cfg.IngestRatePerSec, cfg.IngestBurst))
		r.Mount("/ingest", ingest.SetupRoutes())
	})

	fmt.Println("Server listening on port :" + cfg.Port + "...")

	http.ListenAndServe("0.0.0.0:"+cfg.Port, r)
}
