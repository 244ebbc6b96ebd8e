package fleet

import (
	"reflect"
	"strings"
	"testing"
)

func TestValidate_ClampsMaxSpeed(t *testing.T) {
	r := KPIResult{MaxVelocidad: 350, MaxSpeed: 350}
	out := Validate(r, 1)

	if out.MaxSpeed != 200 {
		t.Errorf("expected maxSpeed clamped to 200, got %f", out.MaxSpeed)
	}
	if out.MaxVelocidad != 200 {
		t.Errorf("expected legacy maxVelocidad synced to 200, got %f", out.MaxVelocidad)
	}
	if len(out.Corrections) == 0 {
		t.Fatal("expected a recorded correction")
	}
	if !strings.Contains(out.Corrections[0], "maxSpeed") {
		t.Errorf("expected maxSpeed correction, got %q", out.Corrections[0])
	}
}

func TestValidate_ClampsDistanceAndTime(t *testing.T) {
	r := KPIResult{Distance: 1500, TotalTime: 3000}
	out := Validate(r, 1)

	if out.Distance != 1000 {
		t.Errorf("expected distance clamped to 1000, got %f", out.Distance)
	}
	// 3000 min > 1 day; clamped to 1440, then reconciled to the zone sum (0).
	if out.TotalTime != 0 {
		t.Errorf("expected totalTime reconciled to zone sum 0, got %f", out.TotalTime)
	}
}

func TestValidate_TimeCapScalesWithDays(t *testing.T) {
	r := KPIResult{TotalTime: 2000}
	r.ZoneTime.Outside = 2000
	out := Validate(r, 2)

	if out.TotalTime != 2000 {
		t.Errorf("2000 min fits in 2 days and matches zone sum, got %f", out.TotalTime)
	}

	out = Validate(KPIResult{TotalTime: 4000, ZoneTime: ZoneTimes{Outside: 2000}}, 2)
	if out.TotalTime != 2000 {
		t.Errorf("expected clamp then reconcile to 2000, got %f", out.TotalTime)
	}
}

// The zone-time sum is authoritative: a drifted totalTime is overwritten.
func TestValidate_ReconcilesZoneTimeSum(t *testing.T) {
	r := KPIResult{TotalTime: 100}
	r.ZoneTime = ZoneTimes{Park: 30, Workshop: 20, Outside: 40, Sensitive: 5}
	out := Validate(r, 1)

	if out.TotalTime != 95 {
		t.Errorf("expected totalTime overwritten with zone sum 95, got %f", out.TotalTime)
	}
	if out.TiempoTotal != 95 {
		t.Errorf("expected legacy tiempoTotal synced, got %f", out.TiempoTotal)
	}

	// Within the 1-minute tolerance nothing changes.
	r = KPIResult{TotalTime: 95.5}
	r.ZoneTime = ZoneTimes{Park: 30, Workshop: 20, Outside: 40, Sensitive: 5}
	out = Validate(r, 1)
	if out.TotalTime != 95.5 {
		t.Errorf("expected totalTime untouched within tolerance, got %f", out.TotalTime)
	}
	if len(out.Corrections) != 0 {
		t.Errorf("expected no corrections, got %v", out.Corrections)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	r := KPIResult{MaxSpeed: 350, MeanSpeed: 250, Distance: 1200, TotalTime: 500}
	r.ZoneTime = ZoneTimes{Park: 200, Outside: 100}

	once := Validate(r, 1)
	twice := Validate(once, 1)

	// Corrections accumulate log lines; the numbers must not move.
	once.Corrections = nil
	twice.Corrections = nil
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Validate is not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestValidate_CleanResultUntouched(t *testing.T) {
	r := KPIResult{MaxSpeed: 90, MeanSpeed: 45, Distance: 120, TotalTime: 300}
	r.ZoneTime = ZoneTimes{Park: 100, Workshop: 50, Outside: 150}
	out := Validate(r, 1)

	if len(out.Corrections) != 0 {
		t.Errorf("expected no corrections for a plausible result, got %v", out.Corrections)
	}
	if out.MaxSpeed != 90 || out.TotalTime != 300 {
		t.Errorf("expected values untouched, got %+v", out)
	}
}

// Zone-time closure: after validation the four buckets always sum to
// totalTime.
func TestValidate_ZoneTimeClosure(t *testing.T) {
	cases := []KPIResult{
		{TotalTime: 120, ZoneTime: ZoneTimes{Park: 60, Outside: 55}},
		{TotalTime: 0, ZoneTime: ZoneTimes{Workshop: 33}},
		{TotalTime: 99.5, ZoneTime: ZoneTimes{Park: 50, Sensitive: 49.8}},
	}
	for i, r := range cases {
		out := Validate(r, 1)
		if diff := out.ZoneTime.Sum() - out.TotalTime; diff > 1 || diff < -1 {
			t.Errorf("case %d: closure violated, sum=%f total=%f", i, out.ZoneTime.Sum(), out.TotalTime)
		}
	}
}
