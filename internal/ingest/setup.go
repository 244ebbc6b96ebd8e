package ingest

import (
	"log"

	"github.com/FleetVision/FV-Backend/internal/db"
	"github.com/FleetVision/FV-Backend/internal/fleet"
)

var (
	DefaultOrchestrator *Orchestrator

	// DataPath is the base directory incoming sensor files land in.
	DataPath string
)

// Init wires the orchestrator. The parser set is injected by the caller so
// this package never depends on a concrete file format.
func Init(parserSet []Parser, dataPath string) {
	if err := db.DB.AutoMigrate(&IngestionRun{}); err != nil {
		log.Fatal("Failed to auto-migrate ingestion tables: ", err)
	}

	DataPath = dataPath
	DefaultOrchestrator = NewOrchestrator(
		parserSet,
		fleet.DefaultAssigner,
		fleet.Records,
		&GormRunStore{DB: db.DB},
	)

	log.Printf("[ingest] initialized with %d parsers, data path %s", len(parserSet), dataPath)
}
