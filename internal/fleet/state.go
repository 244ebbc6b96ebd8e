package fleet

import (
	"sort"

	"github.com/FleetVision/FV-Backend/internal/geo"
)

// SpeedLimits maps zone types to their speed limit in km/h. Outside is
// both the limit for the "outside" pseudo-zone and the fallback for
// unrecognized zone types.
type SpeedLimits struct {
	Park      float64 `yaml:"park"`
	Workshop  float64 `yaml:"workshop"`
	Sensitive float64 `yaml:"sensitive"`
	Outside   float64 `yaml:"outside"`
}

// DefaultSpeedLimits are the fleet-wide defaults; overridable per deploy
// through config.
func DefaultSpeedLimits() SpeedLimits {
	return SpeedLimits{Park: 20, Workshop: 10, Sensitive: 30, Outside: 50}
}

func (l SpeedLimits) For(zt ZoneType) float64 {
	switch zt {
	case ZonePark:
		return l.Park
	case ZoneWorkshop:
		return l.Workshop
	case ZoneSensitive:
		return l.Sensitive
	default:
		return l.Outside
	}
}

// Resolver derives the situational state of a GPS sample: zone membership,
// rotativo state, speed limit and exceedance.
type Resolver struct {
	Limits SpeedLimits
}

func NewResolver(limits SpeedLimits) *Resolver {
	return &Resolver{Limits: limits}
}

// rotativoStateAt returns the state of the last event at or before ts.
// events must be sorted ascending by timestamp. No prior event means OFF.
func rotativoStateAt(events []RotativoEvent, sample GPSRecord) bool {
	// First event strictly after the sample; everything before it is a
	// candidate.
	i := sort.Search(len(events), func(i int) bool {
		return events[i].Timestamp.After(sample.Timestamp)
	})
	if i == 0 {
		return false
	}
	return events[i-1].State
}

// zoneFor returns the first zone in input order whose bounding box contains
// the point. Zones may overlap; input order is the tie-break.
func zoneFor(zones []Zone, p geo.Point) *Zone {
	for i := range zones {
		if geo.BoundingBoxContains(zones[i].Ring(), p) {
			return &zones[i]
		}
	}
	return nil
}

// ResolveState computes the situational state for one sample. auxEvents
// must be sorted ascending by timestamp.
func (r *Resolver) ResolveState(sample GPSRecord, auxEvents []RotativoEvent, zones []Zone) VehicleState {
	state := VehicleState{
		Timestamp:  sample.Timestamp,
		Lat:        sample.Lat,
		Lng:        sample.Lng,
		Speed:      sample.Speed,
		ZoneType:   ZoneOutside,
		RotativoOn: rotativoStateAt(auxEvents, sample),
	}

	if z := zoneFor(zones, geo.Point{Lat: sample.Lat, Lng: sample.Lng}); z != nil {
		id := z.ID
		state.ZoneID = &id
		state.ZoneType = z.Type
	}

	state.SpeedLimit = r.Limits.For(state.ZoneType)
	if sample.Speed > state.SpeedLimit {
		state.SpeedExceeded = true
		state.Exceedance = sample.Speed - state.SpeedLimit
	}

	return state
}

// BuildTimeline resolves every sample in order. samples must already be
// sorted ascending; the builder does not re-sort. Empty input yields an
// empty timeline.
func (r *Resolver) BuildTimeline(samples []GPSRecord, auxEvents []RotativoEvent, zones []Zone) []VehicleState {
	if len(samples) == 0 {
		return nil
	}

	timeline := make([]VehicleState, len(samples))
	for i, s := range samples {
		timeline[i] = r.ResolveState(s, auxEvents, zones)
	}
	return timeline
}
