package fleet

import "time"

// ZoneTimes holds minutes accumulated per zone bucket.
type ZoneTimes struct {
	Park      float64 `json:"park"`
	Workshop  float64 `json:"workshop"`
	Outside   float64 `json:"outside"`
	Sensitive float64 `json:"sensitive"`
}

func (z *ZoneTimes) add(zt ZoneType, minutes float64) {
	switch zt {
	case ZonePark:
		z.Park += minutes
	case ZoneWorkshop:
		z.Workshop += minutes
	case ZoneSensitive:
		z.Sensitive += minutes
	default:
		z.Outside += minutes
	}
}

func (z *ZoneTimes) merge(o ZoneTimes) {
	z.Park += o.Park
	z.Workshop += o.Workshop
	z.Outside += o.Outside
	z.Sensitive += o.Sensitive
}

// Sum is the authoritative total across the four buckets.
func (z ZoneTimes) Sum() float64 {
	return z.Park + z.Workshop + z.Outside + z.Sensitive
}

// SeverityCounts holds incident counts per severity bucket.
type SeverityCounts struct {
	Critical  int `json:"critical"`
	Dangerous int `json:"dangerous"`
	Moderate  int `json:"moderate"`
	Light     int `json:"light"`
}

func (s *SeverityCounts) add(sev Severity) {
	switch sev {
	case SeverityCritical:
		s.Critical++
	case SeverityDangerous:
		s.Dangerous++
	case SeverityModerate:
		s.Moderate++
	default:
		s.Light++
	}
}

func (s *SeverityCounts) merge(o SeverityCounts) {
	s.Critical += o.Critical
	s.Dangerous += o.Dangerous
	s.Moderate += o.Moderate
	s.Light += o.Light
}

func (s SeverityCounts) total() int {
	return s.Critical + s.Dangerous + s.Moderate + s.Light
}

// ZoneSeverityCounts cross-tabulates incidents by zone and severity.
type ZoneSeverityCounts struct {
	Park      SeverityCounts `json:"park"`
	Workshop  SeverityCounts `json:"workshop"`
	Outside   SeverityCounts `json:"outside"`
	Sensitive SeverityCounts `json:"sensitive"`
}

func (z *ZoneSeverityCounts) add(zt ZoneType, sev Severity) {
	switch zt {
	case ZonePark:
		z.Park.add(sev)
	case ZoneWorkshop:
		z.Workshop.add(sev)
	case ZoneSensitive:
		z.Sensitive.add(sev)
	default:
		z.Outside.add(sev)
	}
}

func (z *ZoneSeverityCounts) merge(o ZoneSeverityCounts) {
	z.Park.merge(o.Park)
	z.Workshop.merge(o.Workshop)
	z.Outside.merge(o.Outside)
	z.Sensitive.merge(o.Sensitive)
}

// KPIResult is the flat aggregate for one vehicle/scope. The Spanish
// fields mirror a subset of the primary fields under the names the legacy
// dashboard consumes; SyncLegacy keeps them aligned.
type KPIResult struct {
	VehicleID string    `json:"vehicle_id,omitempty"`
	OrgID     string    `json:"org_id,omitempty"`
	From      time.Time `json:"from,omitempty"`
	To        time.Time `json:"to,omitempty"`

	TotalTime           float64   `json:"total_time"` // minutes
	ZoneTime            ZoneTimes `json:"zone_time"`
	ZoneTimeRotativoOn  ZoneTimes `json:"zone_time_rotativo_on"`
	ZoneTimeRotativoOff ZoneTimes `json:"zone_time_rotativo_off"`

	SpeedingTime       float64   `json:"speeding_time"`
	SpeedingTimeByZone ZoneTimes `json:"speeding_time_by_zone"`

	// Exceedance magnitude bands: (0,10], (10,20], (20,30], >30 km/h over
	// the limit. Sample counts, not time.
	ExceedanceLight      int `json:"exceedance_light"`
	ExceedanceModerate   int `json:"exceedance_moderate"`
	ExceedanceSevere     int `json:"exceedance_severe"`
	ExceedanceVerySevere int `json:"exceedance_very_severe"`

	Incidents       SeverityCounts     `json:"incidents"`
	IncidentsByZone ZoneSeverityCounts `json:"incidents_by_zone"`

	MaxSpeed    float64 `json:"max_speed"`
	MeanSpeed   float64 `json:"mean_speed"`
	Distance    float64 `json:"distance"` // km
	MotionTime  float64 `json:"motion_time"`
	StoppedTime float64 `json:"stopped_time"`
	SampleCount int     `json:"sample_count"`

	// Legacy dashboard fields.
	TiempoEnParque     float64 `json:"tiempoEnParque"`
	TiempoEnTaller     float64 `json:"tiempoEnTaller"`
	TiempoFuera        float64 `json:"tiempoFuera"`
	TiempoZonaSensible float64 `json:"tiempoZonaSensible"`
	TiempoTotal        float64 `json:"tiempoTotal"`
	MaxVelocidad       float64 `json:"maxVelocidad"`
	VelocidadPromedio  float64 `json:"velocidadPromedio"`
	DistanciaRecorrida float64 `json:"distanciaRecorrida"`
	TotalPuntosGPS     int     `json:"totalPuntosGPS"`
	EventosAltos       int     `json:"eventosAltos"`

	Corrections []string `json:"corrections,omitempty"`
}

// SyncLegacy refreshes the legacy aliases from the primary fields. Every
// path that mutates a primary field finishes with this.
func (r *KPIResult) SyncLegacy() {
	r.TiempoEnParque = r.ZoneTime.Park
	r.TiempoEnTaller = r.ZoneTime.Workshop
	r.TiempoFuera = r.ZoneTime.Outside
	r.TiempoZonaSensible = r.ZoneTime.Sensitive
	r.TiempoTotal = r.TotalTime
	r.MaxVelocidad = r.MaxSpeed
	r.VelocidadPromedio = r.MeanSpeed
	r.DistanciaRecorrida = r.Distance
	r.TotalPuntosGPS = r.SampleCount
	r.EventosAltos = r.Incidents.Critical + r.Incidents.Dangerous
}
