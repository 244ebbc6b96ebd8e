package seeds

import (
	"fmt"
	"log"
	"os"

	"github.com/FleetVision/FV-Backend/internal/db"
	"github.com/FleetVision/FV-Backend/internal/fleet"
	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type zoneSeed struct {
	Name string         `yaml:"name"`
	Org  string         `yaml:"org"`
	Type fleet.ZoneType `yaml:"type"`
	Ring []struct {
		Lat float64 `yaml:"lat"`
		Lng float64 `yaml:"lng"`
	} `yaml:"ring"`
}

// SeedZones loads zone definitions from a YAML file. Zones that already
// exist (same org and name) are skipped.
func SeedZones(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read %s: %w", path, err)
	}

	var seedList []zoneSeed
	if err := yaml.Unmarshal(data, &seedList); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	created := 0
	for _, seed := range seedList {
		var existing fleet.Zone
		err := db.DB.First(&existing, "org_id = ? AND name = ?", seed.Org, seed.Name).Error

		if err == nil {
			log.Printf("[seeds] zone exists, skipping: %s/%s", seed.Org, seed.Name)
			continue
		} else if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("DB error on zone %s: %w", seed.Name, err)
		}

		zone := fleet.Zone{
			ID:    uuid.New(),
			OrgID: seed.Org,
			Name:  seed.Name,
			Type:  seed.Type,
		}
		lats := make(pq.Float64Array, len(seed.Ring))
		lngs := make(pq.Float64Array, len(seed.Ring))
		for i, p := range seed.Ring {
			lats[i] = p.Lat
			lngs[i] = p.Lng
		}
		zone.RingLats = lats
		zone.RingLngs = lngs

		if len(seed.Ring) < 4 {
			log.Printf("[seeds] warning: zone %s has a degenerate ring (%d points), it will never match", seed.Name, len(seed.Ring))
		}

		if err := db.DB.Create(&zone).Error; err != nil {
			return fmt.Errorf("failed to create zone %s: %w", seed.Name, err)
		}
		created++
	}

	log.Printf("[seeds] seeded %d zones (%d in file)", created, len(seedList))
	return nil
}
