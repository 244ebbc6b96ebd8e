package fleet

import "encoding/json"

// Incident detail payloads arrive in a handful of known shapes plus
// whatever else a firmware revision decides to send. Known shapes get a
// typed variant; everything else is carried opaquely.

const (
	DetailKindSpeed  = "speed"
	DetailKindCurve  = "curve"
	DetailKindOpaque = "opaque"
)

type SpeedDetail struct {
	Speed float64 `json:"speed"`
	Limit float64 `json:"limit"`
}

type CurveDetail struct {
	LateralG float64 `json:"lateral_g"`
	Heading  float64 `json:"heading"`
}

type OpaqueDetail struct {
	Raw json.RawMessage `json:"raw"`
}

// EncodeDetail stamps the incident with the kind tag and serialized payload
// for the given variant. Unknown variant types fall back to opaque.
func EncodeDetail(inc *IncidentEvent, detail any) error {
	switch detail.(type) {
	case SpeedDetail, *SpeedDetail:
		inc.DetailKind = DetailKindSpeed
	case CurveDetail, *CurveDetail:
		inc.DetailKind = DetailKindCurve
	default:
		inc.DetailKind = DetailKindOpaque
	}

	b, err := json.Marshal(detail)
	if err != nil {
		return err
	}
	inc.DetailJSON = string(b)
	return nil
}

// DecodeDetail returns the typed payload for the incident's kind tag, or an
// OpaqueDetail when the kind is unknown or the payload doesn't parse.
func DecodeDetail(inc IncidentEvent) any {
	raw := []byte(inc.DetailJSON)

	switch inc.DetailKind {
	case DetailKindSpeed:
		var d SpeedDetail
		if err := json.Unmarshal(raw, &d); err == nil {
			return d
		}
	case DetailKindCurve:
		var d CurveDetail
		if err := json.Unmarshal(raw, &d); err == nil {
			return d
		}
	}

	return OpaqueDetail{Raw: json.RawMessage(raw)}
}
