package fleet

import (
	"math"
	"testing"
	"time"
)

// Scenario: two samples 10 minutes apart in a park zone, first sample at
// 60 km/h against a 20 km/h limit.
func TestAggregate_ParkSpeeding(t *testing.T) {
	r := NewResolver(DefaultSpeedLimits())
	zones := []Zone{squareZone("org", ZonePark, 40.0, -3.1, 40.1, -3.0)}

	samples := []GPSRecord{
		sample(t0, 40.05, -3.05, 60),
		sample(t0.Add(10*time.Minute), 40.05, -3.05, 10),
	}
	result := Aggregate(r.BuildTimeline(samples, nil, zones), nil)

	if result.TiempoEnParque != 10 {
		t.Errorf("expected tiempoEnParque=10, got %f", result.TiempoEnParque)
	}
	if result.ZoneTime.Park != 10 {
		t.Errorf("expected park time 10, got %f", result.ZoneTime.Park)
	}
	// 60 in a 20 zone: exceedance 40 lands in the >30 band.
	if result.ExceedanceVerySevere != 1 {
		t.Errorf("expected one very-severe exceedance, got %d", result.ExceedanceVerySevere)
	}
	if result.ExceedanceLight+result.ExceedanceModerate+result.ExceedanceSevere != 0 {
		t.Error("expected no other exceedance buckets")
	}
	if result.SpeedingTime != 10 {
		t.Errorf("expected 10 speeding minutes, got %f", result.SpeedingTime)
	}
	if result.MaxSpeed != 60 {
		t.Errorf("expected maxSpeed 60, got %f", result.MaxSpeed)
	}
	if result.MeanSpeed != 35 {
		t.Errorf("expected meanSpeed 35 (unweighted), got %f", result.MeanSpeed)
	}
}

func TestAggregate_Empty(t *testing.T) {
	result := Aggregate(nil, nil)

	if result.TotalTime != 0 || result.Distance != 0 || result.MaxSpeed != 0 ||
		result.MeanSpeed != 0 || result.SampleCount != 0 {
		t.Errorf("expected zeroed result, got %+v", result)
	}
	if result.TotalPuntosGPS != 0 {
		t.Errorf("expected totalPuntosGPS=0, got %d", result.TotalPuntosGPS)
	}
	if result.ZoneTime.Sum() != 0 {
		t.Errorf("expected no zone time, got %f", result.ZoneTime.Sum())
	}
	if result.Incidents.total() != 0 {
		t.Error("expected no incidents")
	}
}

// Interval time belongs to the earlier sample's zone (left-endpoint
// convention), not the later one's.
func TestAggregate_LeftEndpointAttribution(t *testing.T) {
	r := NewResolver(DefaultSpeedLimits())
	zones := []Zone{squareZone("org", ZonePark, 40.0, -3.1, 40.1, -3.0)}

	samples := []GPSRecord{
		sample(t0, 40.05, -3.05, 0),                   // in park
		sample(t0.Add(10*time.Minute), 41.0, -3.05, 0), // outside
		sample(t0.Add(15*time.Minute), 41.0, -3.05, 0), // outside
	}
	result := Aggregate(r.BuildTimeline(samples, nil, zones), nil)

	if result.ZoneTime.Park != 10 {
		t.Errorf("expected 10 park minutes (interval owned by first sample), got %f", result.ZoneTime.Park)
	}
	if result.ZoneTime.Outside != 5 {
		t.Errorf("expected 5 outside minutes, got %f", result.ZoneTime.Outside)
	}
	if result.TotalTime != 15 {
		t.Errorf("expected 15 total minutes, got %f", result.TotalTime)
	}
}

func TestAggregate_SingleSampleNoTime(t *testing.T) {
	r := NewResolver(DefaultSpeedLimits())
	result := Aggregate(r.BuildTimeline([]GPSRecord{sample(t0, 40.0, -3.0, 80)}, nil, nil), nil)

	if result.TotalTime != 0 {
		t.Errorf("single sample must contribute no time, got %f", result.TotalTime)
	}
	if result.SampleCount != 1 {
		t.Errorf("expected sample count 1, got %d", result.SampleCount)
	}
	// Speed statistics and exceedance counts still see the sample.
	if result.MaxSpeed != 80 {
		t.Errorf("expected maxSpeed 80, got %f", result.MaxSpeed)
	}
	if result.ExceedanceSevere != 1 { // 80 vs 50 outside: band (20,30]
		t.Errorf("expected severe exceedance count 1, got %d", result.ExceedanceSevere)
	}
}

func TestAggregate_MotionStoppedSplit(t *testing.T) {
	r := NewResolver(DefaultSpeedLimits())
	samples := []GPSRecord{
		sample(t0, 40.0, -3.0, 6),                    // moving (just above threshold)
		sample(t0.Add(4*time.Minute), 40.0, -3.0, 5), // stopped (threshold is strict >)
		sample(t0.Add(7*time.Minute), 40.0, -3.0, 0),
	}
	result := Aggregate(r.BuildTimeline(samples, nil, nil), nil)

	if result.MotionTime != 4 {
		t.Errorf("expected 4 motion minutes, got %f", result.MotionTime)
	}
	if result.StoppedTime != 3 {
		t.Errorf("expected 3 stopped minutes, got %f", result.StoppedTime)
	}
}

func TestAggregate_RotativoSplit(t *testing.T) {
	r := NewResolver(DefaultSpeedLimits())
	zones := []Zone{squareZone("org", ZonePark, 40.0, -3.1, 40.1, -3.0)}
	events := []RotativoEvent{{Timestamp: t0.Add(10 * time.Minute), State: true}}

	samples := []GPSRecord{
		sample(t0, 40.05, -3.05, 0),
		sample(t0.Add(10*time.Minute), 40.05, -3.05, 0),
		sample(t0.Add(25*time.Minute), 40.05, -3.05, 0),
	}
	result := Aggregate(r.BuildTimeline(samples, events, zones), nil)

	if result.ZoneTimeRotativoOff.Park != 10 {
		t.Errorf("expected 10 park minutes with rotativo off, got %f", result.ZoneTimeRotativoOff.Park)
	}
	if result.ZoneTimeRotativoOn.Park != 15 {
		t.Errorf("expected 15 park minutes with rotativo on, got %f", result.ZoneTimeRotativoOn.Park)
	}
}

func TestAggregate_Distance(t *testing.T) {
	r := NewResolver(DefaultSpeedLimits())
	samples := []GPSRecord{
		sample(t0, 40.0, -3.0, 10),
		sample(t0.Add(time.Minute), 40.0, -3.0117, 10), // ~1km
		sample(t0.Add(2*time.Minute), 40.0, -3.0, 10),  // ~1km back
	}
	result := Aggregate(r.BuildTimeline(samples, nil, nil), nil)

	if math.Abs(result.Distance-2.0) > 0.1 {
		t.Errorf("expected ~2km, got %f", result.Distance)
	}
}

func TestAggregate_IncidentAttribution(t *testing.T) {
	r := NewResolver(DefaultSpeedLimits())
	zones := []Zone{squareZone("org", ZonePark, 40.0, -3.1, 40.1, -3.0)}

	samples := []GPSRecord{
		sample(t0, 40.05, -3.05, 0),                    // park
		sample(t0.Add(10*time.Minute), 41.0, -3.05, 0), // outside
	}
	incidents := []IncidentEvent{
		// During the park interval.
		{Timestamp: t0.Add(5 * time.Minute), Type: "curva_brusca"},
		// Before the timeline: attributed to the first state (park).
		{Timestamp: t0.Add(-5 * time.Minute), Type: "frenado_peligroso"},
		// After the last sample: attributed to the last state (outside).
		{Timestamp: t0.Add(30 * time.Minute), Type: "warning_leve"},
	}
	result := Aggregate(r.BuildTimeline(samples, nil, zones), incidents)

	if result.Incidents.Critical != 1 || result.Incidents.Dangerous != 1 || result.Incidents.Moderate != 1 {
		t.Fatalf("unexpected severity counts: %+v", result.Incidents)
	}
	if result.IncidentsByZone.Park.Critical != 1 {
		t.Errorf("expected critical incident in park, got %+v", result.IncidentsByZone.Park)
	}
	if result.IncidentsByZone.Park.Dangerous != 1 {
		t.Errorf("expected pre-timeline incident attributed to first state (park), got %+v", result.IncidentsByZone.Park)
	}
	if result.IncidentsByZone.Outside.Moderate != 1 {
		t.Errorf("expected trailing incident in outside, got %+v", result.IncidentsByZone.Outside)
	}
	if result.EventosAltos != 2 {
		t.Errorf("expected eventosAltos=critical+dangerous=2, got %d", result.EventosAltos)
	}
}

// Incidents against an empty timeline are counted by severity but
// attributed to no zone.
func TestAggregate_IncidentsWithoutTimeline(t *testing.T) {
	incidents := []IncidentEvent{{Timestamp: t0, Type: "curva_brusca"}}
	result := Aggregate(nil, incidents)

	if result.Incidents.Critical != 1 {
		t.Errorf("expected one critical, got %+v", result.Incidents)
	}
	byZone := result.IncidentsByZone
	total := byZone.Park.total() + byZone.Workshop.total() + byZone.Outside.total() + byZone.Sensitive.total()
	if total != 0 {
		t.Errorf("expected no zone attribution with empty timeline, got %d", total)
	}
}

// The mean is over samples, not time-weighted: a dense cluster of slow
// samples pulls it down regardless of duration.
func TestAggregate_MeanNotTimeWeighted(t *testing.T) {
	r := NewResolver(DefaultSpeedLimits())
	samples := []GPSRecord{
		sample(t0, 40.0, -3.0, 100),
		sample(t0.Add(60*time.Minute), 40.0, -3.0, 0),
		sample(t0.Add(60*time.Minute+time.Second), 40.0, -3.0, 0),
		sample(t0.Add(60*time.Minute+2*time.Second), 40.0, -3.0, 0),
	}
	result := Aggregate(r.BuildTimeline(samples, nil, nil), nil)

	if result.MeanSpeed != 25 {
		t.Errorf("expected mean 25 across 4 samples, got %f", result.MeanSpeed)
	}
}
