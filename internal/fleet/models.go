package fleet

import (
	"time"

	"github.com/FleetVision/FV-Backend/internal/geo"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ZoneType classifies a geofenced area. Anything unrecognized is treated
// as ZoneOutside for speed-limit purposes.
type ZoneType string

const (
	ZonePark      ZoneType = "park"
	ZoneWorkshop  ZoneType = "workshop"
	ZoneSensitive ZoneType = "sensitive-area"
	ZoneOutside   ZoneType = "outside"
)

// Severity buckets for incident events.
type Severity string

const (
	SeverityCritical  Severity = "critical"
	SeverityDangerous Severity = "dangerous"
	SeverityModerate  Severity = "moderate"
	SeverityLight     Severity = "light"
)

// GPSRecord is one positioning sample as produced by the GPS file parser.
type GPSRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;index" json:"session_id"`
	VehicleID string    `gorm:"index:idx_gps_vehicle_ts,unique;size:64" json:"vehicle_id"`
	OrgID     string    `gorm:"index;size:64" json:"org_id"`
	Timestamp time.Time `gorm:"index:idx_gps_vehicle_ts,unique" json:"timestamp"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Speed     float64   `json:"speed"` // km/h, same units as zone limits
}

func (GPSRecord) TableName() string { return "fleet.gps_records" }

// RotativoEvent is one auxiliary-signal transition. Raw preserves the
// source token (0/1, "ON", "ENCENDIDO", ...) for debugging.
type RotativoEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;index" json:"session_id"`
	VehicleID string    `gorm:"index:idx_rotativo_vehicle_ts,unique;size:64" json:"vehicle_id"`
	OrgID     string    `gorm:"index;size:64" json:"org_id"`
	Timestamp time.Time `gorm:"index:idx_rotativo_vehicle_ts,unique" json:"timestamp"`
	State     bool      `json:"state"`
	Raw       string    `gorm:"size:32" json:"raw"`
}

func (RotativoEvent) TableName() string { return "fleet.rotativo_events" }

// StabilityRecord is one inertial sample. Kept raw for audit; only the
// incidents derived from these rows enter KPI math.
type StabilityRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;index" json:"session_id"`
	VehicleID string    `gorm:"index:idx_stability_vehicle_ts,unique;size:64" json:"vehicle_id"`
	OrgID     string    `gorm:"index;size:64" json:"org_id"`
	Timestamp time.Time `gorm:"index:idx_stability_vehicle_ts,unique" json:"timestamp"`
	AccelX    float64   `json:"accel_x"`
	AccelY    float64   `json:"accel_y"`
	AccelZ    float64   `json:"accel_z"`
}

func (StabilityRecord) TableName() string { return "fleet.stability_records" }

// PowerRecord is one power-bus sample (voltage/current). Counted in batch
// reports, not used in KPI math.
type PowerRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;index" json:"session_id"`
	VehicleID string    `gorm:"index:idx_power_vehicle_ts,unique;size:64" json:"vehicle_id"`
	OrgID     string    `gorm:"index;size:64" json:"org_id"`
	Timestamp time.Time `gorm:"index:idx_power_vehicle_ts,unique" json:"timestamp"`
	Voltage   float64   `json:"voltage"`
	Current   float64   `json:"current"`
}

func (PowerRecord) TableName() string { return "fleet.power_records" }

// IncidentEvent is a classified driving event (harsh curve, point of
// interest, ...). DetailKind/DetailJSON hold the tagged payload variant,
// see detail.go.
type IncidentEvent struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID  uuid.UUID `gorm:"type:uuid;index" json:"session_id"`
	VehicleID  string    `gorm:"index;size:64" json:"vehicle_id"`
	OrgID      string    `gorm:"index;size:64" json:"org_id"`
	Timestamp  time.Time `gorm:"index" json:"timestamp"`
	Type       string    `gorm:"size:128" json:"type"`
	Lat        *float64  `json:"lat,omitempty"`
	Lng        *float64  `json:"lng,omitempty"`
	DetailKind string    `gorm:"size:32" json:"detail_kind,omitempty"`
	DetailJSON string    `gorm:"type:text" json:"detail_json,omitempty"`
}

func (IncidentEvent) TableName() string { return "fleet.incident_events" }

// Zone is a geofenced area owned by an organization. The polygon ring is
// stored as parallel lat/lng arrays; membership tests use the ring's
// bounding box (see geo.BoundingBoxContains).
type Zone struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID     string          `gorm:"index;size:64" json:"org_id"`
	Name      string          `json:"name"`
	Type      ZoneType        `gorm:"size:32" json:"type"`
	RingLats  pq.Float64Array `gorm:"type:float8[]" json:"ring_lats"`
	RingLngs  pq.Float64Array `gorm:"type:float8[]" json:"ring_lngs"`
	CreatedAt time.Time       `json:"created_at"`
}

func (Zone) TableName() string { return "fleet.zones" }

// Ring returns the polygon ring as points. A length mismatch between the
// two arrays marks the geometry malformed; callers get an empty ring, which
// never matches any point.
func (z Zone) Ring() []geo.Point {
	if len(z.RingLats) != len(z.RingLngs) {
		return nil
	}
	ring := make([]geo.Point, len(z.RingLats))
	for i := range z.RingLats {
		ring[i] = geo.Point{Lat: z.RingLats[i], Lng: z.RingLngs[i]}
	}
	return ring
}

// Session groups all sensor records of one contiguous operating interval
// of a vehicle. Bounds only ever grow as overlapping batches are assigned.
type Session struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VehicleID         string    `gorm:"index:idx_session_vehicle;size:64" json:"vehicle_id"`
	OrgID             string    `gorm:"index;size:64" json:"org_id"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	Sequence          int       `json:"sequence"`
	CreatedByRun      uuid.UUID `gorm:"type:uuid" json:"created_by_run"`
	LastExtendedByRun uuid.UUID `gorm:"type:uuid" json:"last_extended_by_run"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (Session) TableName() string { return "fleet.sessions" }

// Duration returns the session's own span.
func (s Session) Duration() time.Duration { return s.EndTime.Sub(s.StartTime) }

// TimeRange is an inclusive [Start,End] span.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsZero reports whether the range was never populated (e.g. a batch with
// no valid timestamps).
func (tr TimeRange) IsZero() bool { return tr.Start.IsZero() || tr.End.IsZero() }

// Overlaps reports inclusive overlap with other.
func (tr TimeRange) Overlaps(other TimeRange) bool {
	return !tr.Start.After(other.End) && !other.Start.After(tr.End)
}

// Union grows tr to cover other.
func (tr TimeRange) Union(other TimeRange) TimeRange {
	out := tr
	if other.Start.Before(out.Start) {
		out.Start = other.Start
	}
	if other.End.After(out.End) {
		out.End = other.End
	}
	return out
}

// VehicleState is the derived situational state for one GPS sample. Never
// persisted; recomputed on every aggregation request.
type VehicleState struct {
	Timestamp     time.Time  `json:"timestamp"`
	Lat           float64    `json:"lat"`
	Lng           float64    `json:"lng"`
	Speed         float64    `json:"speed"`
	ZoneID        *uuid.UUID `json:"zone_id,omitempty"`
	ZoneType      ZoneType   `json:"zone_type"`
	RotativoOn    bool       `json:"rotativo_on"`
	SpeedLimit    float64    `json:"speed_limit"`
	SpeedExceeded bool       `json:"speed_exceeded"`
	Exceedance    float64    `json:"exceedance"`
}

func (v VehicleState) Point() geo.Point { return geo.Point{Lat: v.Lat, Lng: v.Lng} }
