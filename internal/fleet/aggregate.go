package fleet

import (
	"sort"

	"github.com/FleetVision/FV-Backend/internal/geo"
)

// MotionThreshold is the speed above which an interval counts as "in
// motion" rather than stopped, in km/h.
const MotionThreshold = 5.0

// Aggregate folds a resolved timeline plus incident events into one KPI
// record. Pure function: no storage, no clock.
//
// Interval time uses the left-endpoint convention: the elapsed minutes
// between consecutive samples belong wholly to the earlier sample's zone
// and rotativo state. A timeline of 0 or 1 samples contributes no time.
func Aggregate(timeline []VehicleState, incidents []IncidentEvent) KPIResult {
	var r KPIResult

	for i := range timeline {
		cur := timeline[i]

		if cur.Speed > r.MaxSpeed {
			r.MaxSpeed = cur.Speed
		}
		r.MeanSpeed += cur.Speed
		r.SampleCount++

		if cur.SpeedExceeded {
			switch {
			case cur.Exceedance <= 10:
				r.ExceedanceLight++
			case cur.Exceedance <= 20:
				r.ExceedanceModerate++
			case cur.Exceedance <= 30:
				r.ExceedanceSevere++
			default:
				r.ExceedanceVerySevere++
			}
		}

		if i+1 >= len(timeline) {
			continue
		}
		next := timeline[i+1]

		minutes := next.Timestamp.Sub(cur.Timestamp).Minutes()
		r.TotalTime += minutes
		r.ZoneTime.add(cur.ZoneType, minutes)
		if cur.RotativoOn {
			r.ZoneTimeRotativoOn.add(cur.ZoneType, minutes)
		} else {
			r.ZoneTimeRotativoOff.add(cur.ZoneType, minutes)
		}

		if cur.SpeedExceeded {
			r.SpeedingTime += minutes
			r.SpeedingTimeByZone.add(cur.ZoneType, minutes)
		}

		if cur.Speed > MotionThreshold {
			r.MotionTime += minutes
		} else {
			r.StoppedTime += minutes
		}

		r.Distance += geo.Distance(cur.Point(), next.Point())
	}

	if r.SampleCount > 0 {
		r.MeanSpeed /= float64(r.SampleCount)
	}

	for _, inc := range incidents {
		sev := ClassifySeverity(inc.Type)
		r.Incidents.add(sev)

		if zt, ok := zoneAt(timeline, inc); ok {
			r.IncidentsByZone.add(zt, sev)
		}
	}

	r.SyncLegacy()
	return r
}

// zoneAt finds the zone the vehicle was in at (or most recently before)
// the incident's timestamp. Incidents preceding the whole timeline take
// the first state; an empty timeline attributes nothing.
func zoneAt(timeline []VehicleState, inc IncidentEvent) (ZoneType, bool) {
	if len(timeline) == 0 {
		return ZoneOutside, false
	}

	i := sort.Search(len(timeline), func(i int) bool {
		return timeline[i].Timestamp.After(inc.Timestamp)
	})
	if i == 0 {
		return timeline[0].ZoneType, true
	}
	return timeline[i-1].ZoneType, true
}
