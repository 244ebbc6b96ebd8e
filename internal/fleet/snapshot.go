package fleet

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// KPISnapshot is the persisted copy of a KPIResult for one (vehicle,
// scope). Each recomputation overwrites the prior snapshot; no history is
// retained.
type KPISnapshot struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VehicleID  string    `gorm:"size:64;uniqueIndex:idx_snapshot_scope" json:"vehicle_id"`
	OrgID      string    `gorm:"size:64;uniqueIndex:idx_snapshot_scope" json:"org_id"`
	ScopeKey   string    `gorm:"size:128;uniqueIndex:idx_snapshot_scope" json:"scope_key"`
	TotalTime  float64   `json:"total_time"`
	Distance   float64   `json:"distance"`
	MaxSpeed   float64   `json:"max_speed"`
	Payload    string    `gorm:"type:text" json:"payload"`
	ComputedAt time.Time `json:"computed_at"`
}

func (KPISnapshot) TableName() string { return "fleet.kpi_snapshots" }

func newSnapshot(vehicleID, orgID, scopeKey string, r KPIResult) (*KPISnapshot, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return &KPISnapshot{
		ID:         uuid.New(),
		VehicleID:  vehicleID,
		OrgID:      orgID,
		ScopeKey:   scopeKey,
		TotalTime:  r.TotalTime,
		Distance:   r.Distance,
		MaxSpeed:   r.MaxSpeed,
		Payload:    string(payload),
		ComputedAt: time.Now().UTC(),
	}, nil
}
