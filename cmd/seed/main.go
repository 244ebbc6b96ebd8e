package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/FleetVision/FV-Backend/internal/config"
	"github.com/FleetVision/FV-Backend/internal/db"
	"github.com/FleetVision/FV-Backend/internal/fleet"
	"github.com/FleetVision/FV-Backend/internal/seeds"
	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load(".env.local")

	zonesPath := flag.String("zones", "seeds/zones.yaml", "path to the zone seed file")
	flag.Parse()

	cfg := config.Load()
	db.Connect()
	fleet.Init(cfg.SpeedLimits)

	if err := seeds.SeedZones(*zonesPath); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	fmt.Println("✓ Zones seeded")
}
