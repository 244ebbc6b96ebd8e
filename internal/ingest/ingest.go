package ingest

import (
	"time"

	"github.com/FleetVision/FV-Backend/internal/fleet"
	"github.com/google/uuid"
)

// FileKind names one of the four per-day sensor files a vehicle produces.
type FileKind string

const (
	KindGPS       FileKind = "gps"
	KindRotativo  FileKind = "rotativo"
	KindStability FileKind = "estabilidad"
	KindPower     FileKind = "energia"
)

// Batch is the typed output of parsing one sensor file. A parser fills
// only the slices its kind produces; the stability parser additionally
// derives incident events from flagged rows.
type Batch struct {
	GPS       []fleet.GPSRecord
	Rotativo  []fleet.RotativoEvent
	Stability []fleet.StabilityRecord
	Power     []fleet.PowerRecord
	Incidents []fleet.IncidentEvent

	Discarded int
}

// Count is the number of usable records in the batch.
func (b Batch) Count() int {
	return len(b.GPS) + len(b.Rotativo) + len(b.Stability) + len(b.Power) + len(b.Incidents)
}

// Span is the inclusive [min,max] timestamp range over every record in the
// batch. A batch with no records yields a zero range, which the session
// assigner rejects.
func (b Batch) Span() fleet.TimeRange {
	var span fleet.TimeRange

	grow := func(ts time.Time) {
		if ts.IsZero() {
			return
		}
		if span.Start.IsZero() || ts.Before(span.Start) {
			span.Start = ts
		}
		if span.End.IsZero() || ts.After(span.End) {
			span.End = ts
		}
	}

	for _, r := range b.GPS {
		grow(r.Timestamp)
	}
	for _, r := range b.Rotativo {
		grow(r.Timestamp)
	}
	for _, r := range b.Stability {
		grow(r.Timestamp)
	}
	for _, r := range b.Power {
		grow(r.Timestamp)
	}
	for _, r := range b.Incidents {
		grow(r.Timestamp)
	}

	return span
}

// stamp fills ownership fields on every record of the batch.
func (b *Batch) stamp(sessionID uuid.UUID, vehicleID, orgID string) {
	for i := range b.GPS {
		b.GPS[i].ID = uuid.New()
		b.GPS[i].SessionID = sessionID
		b.GPS[i].VehicleID = vehicleID
		b.GPS[i].OrgID = orgID
	}
	for i := range b.Rotativo {
		b.Rotativo[i].ID = uuid.New()
		b.Rotativo[i].SessionID = sessionID
		b.Rotativo[i].VehicleID = vehicleID
		b.Rotativo[i].OrgID = orgID
	}
	for i := range b.Stability {
		b.Stability[i].ID = uuid.New()
		b.Stability[i].SessionID = sessionID
		b.Stability[i].VehicleID = vehicleID
		b.Stability[i].OrgID = orgID
	}
	for i := range b.Power {
		b.Power[i].ID = uuid.New()
		b.Power[i].SessionID = sessionID
		b.Power[i].VehicleID = vehicleID
		b.Power[i].OrgID = orgID
	}
	for i := range b.Incidents {
		b.Incidents[i].ID = uuid.New()
		b.Incidents[i].SessionID = sessionID
		b.Incidents[i].VehicleID = vehicleID
		b.Incidents[i].OrgID = orgID
	}
}

// Parser turns one sensor file's bytes into typed records. Implementations
// live outside this package; the orchestrator only sees the interface.
type Parser interface {
	Kind() FileKind
	// Filename is the expected file name inside a vehicle's day directory.
	Filename() string
	Parse(data []byte) (Batch, error)
}
