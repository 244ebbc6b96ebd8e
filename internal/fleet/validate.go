package fleet

import (
	"fmt"
	"log"
	"math"
)

// Plausibility bounds. Aggregation over corrupted batches occasionally
// produces physically impossible numbers (GPS glitches reporting 300+ km/h,
// coordinate jumps inflating distance); the validator clamps instead of
// rejecting so that a bad batch never blanks the dashboard.
const (
	MaxPlausibleSpeed    = 200.0  // km/h
	MaxPlausibleDistance = 1000.0 // km per aggregation scope
	MinutesPerDay        = 1440.0
	zoneTimeTolerance    = 1.0 // minutes
)

// Validate clamps implausible values and reconciles internal sums. It
// never fails; every correction is appended to the result and logged.
// days is the number of calendar days covered by the aggregation scope.
// Validate is idempotent.
func Validate(r KPIResult, days int) KPIResult {
	if days < 1 {
		days = 1
	}

	correct := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		r.Corrections = append(r.Corrections, msg)
		log.Printf("[kpi] correction vehicle=%s: %s", r.VehicleID, msg)
	}

	if r.MaxSpeed > MaxPlausibleSpeed {
		correct("maxSpeed %.1f clamped to %.0f", r.MaxSpeed, MaxPlausibleSpeed)
		r.MaxSpeed = MaxPlausibleSpeed
	}
	if r.MeanSpeed > MaxPlausibleSpeed {
		correct("meanSpeed %.1f clamped to %.0f", r.MeanSpeed, MaxPlausibleSpeed)
		r.MeanSpeed = MaxPlausibleSpeed
	}
	if r.Distance > MaxPlausibleDistance {
		correct("distance %.1f clamped to %.0f", r.Distance, MaxPlausibleDistance)
		r.Distance = MaxPlausibleDistance
	}

	maxTime := MinutesPerDay * float64(days)
	if r.TotalTime > maxTime {
		correct("totalTime %.1f clamped to %.0f (%d days)", r.TotalTime, maxTime, days)
		r.TotalTime = maxTime
	}

	// The per-zone buckets are the authoritative accounting; a totalTime
	// that drifted from their sum is overwritten, not trusted.
	if sum := r.ZoneTime.Sum(); math.Abs(sum-r.TotalTime) > zoneTimeTolerance {
		correct("totalTime %.1f reconciled to zone-time sum %.1f", r.TotalTime, sum)
		r.TotalTime = sum
	}

	r.SyncLegacy()
	return r
}
