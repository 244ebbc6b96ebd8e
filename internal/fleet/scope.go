package fleet

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// ScopeKind selects the aggregation window.
type ScopeKind string

const (
	ScopeDay     ScopeKind = "day"
	ScopeRange   ScopeKind = "range"
	ScopeAllTime ScopeKind = "alltime"
)

// Scope is an aggregation window for one vehicle or a fleet.
type Scope struct {
	Kind ScopeKind
	From time.Time
	To   time.Time
}

func DayScope(day time.Time) Scope {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return Scope{Kind: ScopeDay, From: start, To: start.Add(24*time.Hour - time.Nanosecond)}
}

func RangeScope(from, to time.Time) Scope {
	return Scope{Kind: ScopeRange, From: from, To: to}
}

func AllTimeScope() Scope {
	return Scope{Kind: ScopeAllTime}
}

// Key identifies the scope for snapshot overwrite semantics.
func (s Scope) Key() string {
	switch s.Kind {
	case ScopeDay:
		return "day:" + s.From.Format("2006-01-02")
	case ScopeRange:
		return fmt.Sprintf("range:%s..%s", s.From.Format("2006-01-02"), s.To.Format("2006-01-02"))
	default:
		return "alltime"
	}
}

// Days is the number of calendar days the scope covers, at least 1.
func (s Scope) Days() int {
	if s.Kind == ScopeAllTime || s.To.Before(s.From) {
		return 1
	}
	days := int(s.To.Sub(s.From).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	return days
}

// RecordStore is the read/write collaborator for sensor records. Range
// queries return rows in ascending timestamp order.
type RecordStore interface {
	GPSInRange(ctx context.Context, vehicleID, orgID string, span TimeRange) ([]GPSRecord, error)
	RotativoInRange(ctx context.Context, vehicleID, orgID string, span TimeRange) ([]RotativoEvent, error)
	IncidentsInRange(ctx context.Context, vehicleID, orgID string, span TimeRange) ([]IncidentEvent, error)

	// Insert* skip rows already present (same vehicle and timestamp), so a
	// re-run for the same date does not duplicate records.
	InsertGPS(ctx context.Context, recs []GPSRecord) (int, error)
	InsertRotativo(ctx context.Context, recs []RotativoEvent) (int, error)
	InsertStability(ctx context.Context, recs []StabilityRecord) (int, error)
	InsertPower(ctx context.Context, recs []PowerRecord) (int, error)
	InsertIncidents(ctx context.Context, recs []IncidentEvent) (int, error)
}

// SessionReader is the query side of session storage used by aggregation.
type SessionReader interface {
	Intersecting(ctx context.Context, vehicleID, orgID string, span TimeRange) ([]Session, error)
	AllForVehicle(ctx context.Context, vehicleID, orgID string) ([]Session, error)
	VehicleIDs(ctx context.Context, orgID string) ([]string, error)
}

// ZoneStore lists an organization's zones. Order is stable (creation
// order) because it is the tie-break for overlapping zones.
type ZoneStore interface {
	ZonesByOrg(ctx context.Context, orgID string) ([]Zone, error)
}

// SnapshotStore persists KPI snapshots, overwriting per (vehicle, scope).
type SnapshotStore interface {
	Save(ctx context.Context, snap *KPISnapshot) error
}

// Composer orchestrates the aggregation pipeline across scopes: load the
// sessions a scope touches, pool their records into one timeline, run the
// aggregator once, cap, validate, snapshot.
type Composer struct {
	resolver  *Resolver
	sessions  SessionReader
	records   RecordStore
	zones     ZoneStore
	snapshots SnapshotStore
}

func NewComposer(resolver *Resolver, sessions SessionReader, records RecordStore, zones ZoneStore, snapshots SnapshotStore) *Composer {
	return &Composer{
		resolver:  resolver,
		sessions:  sessions,
		records:   records,
		zones:     zones,
		snapshots: snapshots,
	}
}

// ComputeKPI aggregates one vehicle over the scope. Empty or partial data
// degrades to a zeroed/partial result; only storage failures propagate.
func (c *Composer) ComputeKPI(ctx context.Context, vehicleID, orgID string, scope Scope) (KPIResult, error) {
	var (
		sessions []Session
		err      error
	)
	if scope.Kind == ScopeAllTime {
		sessions, err = c.sessions.AllForVehicle(ctx, vehicleID, orgID)
	} else {
		sessions, err = c.sessions.Intersecting(ctx, vehicleID, orgID, TimeRange{Start: scope.From, End: scope.To})
	}
	if err != nil {
		return KPIResult{}, fmt.Errorf("load sessions vehicle=%s: %w", vehicleID, err)
	}

	zones, err := c.zones.ZonesByOrg(ctx, orgID)
	if err != nil {
		return KPIResult{}, fmt.Errorf("load zones org=%s: %w", orgID, err)
	}

	var (
		samples   []GPSRecord
		aux       []RotativoEvent
		incidents []IncidentEvent
	)
	for _, s := range sessions {
		span := TimeRange{Start: s.StartTime, End: s.EndTime}

		gps, err := c.records.GPSInRange(ctx, vehicleID, orgID, span)
		if err != nil {
			return KPIResult{}, fmt.Errorf("load gps session=%s: %w", s.ID, err)
		}
		samples = append(samples, gps...)

		ev, err := c.records.RotativoInRange(ctx, vehicleID, orgID, span)
		if err != nil {
			return KPIResult{}, fmt.Errorf("load rotativo session=%s: %w", s.ID, err)
		}
		aux = append(aux, ev...)

		inc, err := c.records.IncidentsInRange(ctx, vehicleID, orgID, span)
		if err != nil {
			return KPIResult{}, fmt.Errorf("load incidents session=%s: %w", s.ID, err)
		}
		incidents = append(incidents, inc...)
	}

	// Sessions are disjoint but arrive in whatever order the store returns
	// them; the timeline builder requires ascending samples.
	sort.Slice(samples, func(i, j int) bool { return samples[i].Timestamp.Before(samples[j].Timestamp) })
	sort.Slice(aux, func(i, j int) bool { return aux[i].Timestamp.Before(aux[j].Timestamp) })

	timeline := c.resolver.BuildTimeline(samples, aux, zones)
	r := Aggregate(timeline, incidents)
	r.VehicleID = vehicleID
	r.OrgID = orgID
	r.From = scope.From
	r.To = scope.To

	days := scope.Days()
	if scope.Kind == ScopeAllTime {
		// All-time is bounded by what the sessions themselves span, not by
		// calendar days.
		var budget float64
		for _, s := range sessions {
			budget += s.Duration().Minutes()
		}
		if r.TotalTime > budget {
			r.TotalTime = budget
		}
		days = calendarDays(sessions)
		r.From, r.To = sessionExtent(sessions)
	}

	r = Validate(r, days)

	if c.snapshots != nil {
		snap, err := newSnapshot(vehicleID, orgID, scope.Key(), r)
		if err != nil {
			return r, fmt.Errorf("encode snapshot: %w", err)
		}
		if err := c.snapshots.Save(ctx, snap); err != nil {
			return r, fmt.Errorf("save snapshot vehicle=%s scope=%s: %w", vehicleID, scope.Key(), err)
		}
	}

	return r, nil
}

// ComputeFleetKPI aggregates several vehicles (or every vehicle of the
// org when vehicleIDs is empty) and merges the per-vehicle results.
func (c *Composer) ComputeFleetKPI(ctx context.Context, vehicleIDs []string, orgID string, scope Scope) (KPIResult, error) {
	if len(vehicleIDs) == 0 {
		ids, err := c.sessions.VehicleIDs(ctx, orgID)
		if err != nil {
			return KPIResult{}, fmt.Errorf("list vehicles org=%s: %w", orgID, err)
		}
		vehicleIDs = ids
	}
	if len(vehicleIDs) == 0 {
		r := KPIResult{OrgID: orgID, From: scope.From, To: scope.To}
		r.SyncLegacy()
		return r, nil
	}

	results := make([]KPIResult, len(vehicleIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range vehicleIDs {
		g.Go(func() error {
			r, err := c.ComputeKPI(gctx, id, orgID, scope)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return KPIResult{}, err
	}

	merged := MergeFleet(results)
	merged.OrgID = orgID
	log.Printf("[kpi] fleet aggregate org=%s vehicles=%d scope=%s", orgID, len(vehicleIDs), scope.Key())
	return merged, nil
}

// MergeFleet folds per-vehicle results into one fleet summary: additive
// fields sum, maxSpeed takes the max, meanSpeed is the unweighted mean of
// the per-vehicle means. A single result passes through unmodified.
func MergeFleet(results []KPIResult) KPIResult {
	if len(results) == 1 {
		return results[0]
	}

	var out KPIResult
	for _, r := range results {
		out.TotalTime += r.TotalTime
		out.ZoneTime.merge(r.ZoneTime)
		out.ZoneTimeRotativoOn.merge(r.ZoneTimeRotativoOn)
		out.ZoneTimeRotativoOff.merge(r.ZoneTimeRotativoOff)
		out.SpeedingTime += r.SpeedingTime
		out.SpeedingTimeByZone.merge(r.SpeedingTimeByZone)
		out.ExceedanceLight += r.ExceedanceLight
		out.ExceedanceModerate += r.ExceedanceModerate
		out.ExceedanceSevere += r.ExceedanceSevere
		out.ExceedanceVerySevere += r.ExceedanceVerySevere
		out.Incidents.merge(r.Incidents)
		out.IncidentsByZone.merge(r.IncidentsByZone)
		if r.MaxSpeed > out.MaxSpeed {
			out.MaxSpeed = r.MaxSpeed
		}
		out.MeanSpeed += r.MeanSpeed
		out.Distance += r.Distance
		out.MotionTime += r.MotionTime
		out.StoppedTime += r.StoppedTime
		out.SampleCount += r.SampleCount

		if out.From.IsZero() || (!r.From.IsZero() && r.From.Before(out.From)) {
			out.From = r.From
		}
		if r.To.After(out.To) {
			out.To = r.To
		}
	}
	if len(results) > 0 {
		out.MeanSpeed /= float64(len(results))
	}

	out.SyncLegacy()
	return out
}

func calendarDays(sessions []Session) int {
	if len(sessions) == 0 {
		return 1
	}
	from, to := sessionExtent(sessions)
	days := int(to.Sub(from).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	return days
}

func sessionExtent(sessions []Session) (time.Time, time.Time) {
	var from, to time.Time
	for _, s := range sessions {
		if from.IsZero() || s.StartTime.Before(from) {
			from = s.StartTime
		}
		if s.EndTime.After(to) {
			to = s.EndTime
		}
	}
	return from, to
}
