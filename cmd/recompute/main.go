package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/FleetVision/FV-Backend/internal/config"
	"github.com/FleetVision/FV-Backend/internal/db"
	"github.com/FleetVision/FV-Backend/internal/fleet"
	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load(".env.local")

	var (
		vehicleID = flag.String("vehicle", "", "vehicle id (empty = whole fleet)")
		orgID     = flag.String("org", "", "organization id (required)")
		from      = flag.String("from", "", "start date YYYY-MM-DD")
		to        = flag.String("to", "", "end date YYYY-MM-DD")
		allTime   = flag.Bool("alltime", false, "ignore dates, aggregate everything")
	)
	flag.Parse()

	if *orgID == "" {
		log.Fatal("-org is required")
	}

	var scope fleet.Scope
	if *allTime {
		scope = fleet.AllTimeScope()
	} else {
		fromDay, err := time.Parse("2006-01-02", *from)
		if err != nil {
			log.Fatalf("-from: %v", err)
		}
		toDay, err := time.Parse("2006-01-02", *to)
		if err != nil {
			log.Fatalf("-to: %v", err)
		}
		scope = fleet.RangeScope(fromDay.UTC(), toDay.UTC().Add(24*time.Hour-time.Nanosecond))
	}

	cfg := config.Load()
	db.Connect()
	fleet.Init(cfg.SpeedLimits)

	ctx := context.Background()

	var (
		result fleet.KPIResult
		err    error
	)
	if *vehicleID != "" {
		result, err = fleet.DefaultComposer.ComputeKPI(ctx, *vehicleID, *orgID, scope)
	} else {
		result, err = fleet.DefaultComposer.ComputeFleetKPI(ctx, nil, *orgID, scope)
	}
	if err != nil {
		log.Fatalf("Recompute failed: %v", err)
	}

	fmt.Printf("✓ Recomputed scope %s\n", scope.Key())
	fmt.Printf("  totalTime=%.1fmin distance=%.2fkm maxSpeed=%.1f meanSpeed=%.1f samples=%d\n",
		result.TotalTime, result.Distance, result.MaxSpeed, result.MeanSpeed, result.SampleCount)
	if len(result.Corrections) > 0 {
		fmt.Printf("  corrections: %v\n", result.Corrections)
	}
}
