package fleet

import (
	"log"

	"github.com/FleetVision/FV-Backend/internal/db"
)

// Package-level wiring, initialized once at boot.
var (
	DefaultResolver *Resolver
	DefaultAssigner *Assigner
	DefaultComposer *Composer

	Sessions  *GormSessionStore
	Records   *GormRecordStore
	Zones     *GormZoneStore
	Snapshots *GormSnapshotStore
)

func Init(limits SpeedLimits) {
	if err := db.EnsureSchema(db.DB, "fleet"); err != nil {
		log.Fatal("Failed to ensure schema fleet: ", err)
	}

	if err := db.DB.AutoMigrate(
		&Session{},
		&Zone{},
		&GPSRecord{},
		&RotativoEvent{},
		&StabilityRecord{},
		&PowerRecord{},
		&IncidentEvent{},
		&KPISnapshot{},
	); err != nil {
		log.Fatal("Failed to auto-migrate fleet tables: ", err)
	}

	Sessions = &GormSessionStore{DB: db.DB}
	Records = &GormRecordStore{DB: db.DB}
	Zones = &GormZoneStore{DB: db.DB}
	Snapshots = &GormSnapshotStore{DB: db.DB}

	DefaultResolver = NewResolver(limits)
	DefaultAssigner = NewAssigner(Sessions)
	DefaultComposer = NewComposer(DefaultResolver, Sessions, Records, Zones, Snapshots)

	log.Printf("[fleet] initialized (limits park=%.0f workshop=%.0f sensitive=%.0f outside=%.0f)",
		limits.Park, limits.Workshop, limits.Sensitive, limits.Outside)
}
