// Package parsers holds the CSV adapters for the four per-day sensor
// files. Each parser is tolerant row-by-row: malformed rows are discarded
// and counted, only an unreadable file as a whole is an error.
package parsers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/FleetVision/FV-Backend/internal/fleet"
	"github.com/FleetVision/FV-Backend/internal/ingest"
)

var ErrMalformed = errors.New("malformed sensor file")

// Timestamps arrive either as RFC 3339 or as epoch milliseconds depending
// on firmware generation.
func parseTimestamp(field string) (time.Time, bool) {
	field = strings.TrimSpace(field)
	if field == "" {
		return time.Time{}, false
	}
	if ts, err := time.Parse(time.RFC3339, field); err == nil {
		return ts, true
	}
	if ms, err := strconv.ParseInt(field, 10, 64); err == nil && ms > 0 {
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}

func parseFloat(field string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	return f, err == nil
}

// readRows parses the CSV payload, skipping an optional header row (any
// first row whose first field is not a timestamp).
func readRows(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, ErrMalformed
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		if _, ok := parseTimestamp(rows[0][0]); !ok {
			rows = rows[1:]
		}
	}
	return rows, nil
}

// GPSParser reads gps.csv: timestamp,lat,lng,speed.
type GPSParser struct{}

func (GPSParser) Kind() ingest.FileKind { return ingest.KindGPS }
func (GPSParser) Filename() string      { return "gps.csv" }

func (GPSParser) Parse(data []byte) (ingest.Batch, error) {
	var batch ingest.Batch

	rows, err := readRows(data)
	if err != nil {
		return batch, err
	}

	for _, row := range rows {
		if len(row) < 4 {
			batch.Discarded++
			continue
		}
		ts, ok := parseTimestamp(row[0])
		lat, okLat := parseFloat(row[1])
		lng, okLng := parseFloat(row[2])
		speed, okSpeed := parseFloat(row[3])
		if !ok || !okLat || !okLng || !okSpeed {
			batch.Discarded++
			continue
		}
		batch.GPS = append(batch.GPS, fleet.GPSRecord{
			Timestamp: ts,
			Lat:       lat,
			Lng:       lng,
			Speed:     speed,
		})
	}

	return batch, nil
}

// RotativoParser reads rotativo.csv: timestamp,state. The state column is
// normalized from whatever encoding the device used.
type RotativoParser struct{}

func (RotativoParser) Kind() ingest.FileKind { return ingest.KindRotativo }
func (RotativoParser) Filename() string      { return "rotativo.csv" }

var rotativoOn = map[string]bool{
	"1": true, "on": true, "true": true, "encendido": true,
}
var rotativoOff = map[string]bool{
	"0": true, "off": true, "false": true, "apagado": true,
}

func (RotativoParser) Parse(data []byte) (ingest.Batch, error) {
	var batch ingest.Batch

	rows, err := readRows(data)
	if err != nil {
		return batch, err
	}

	for _, row := range rows {
		if len(row) < 2 {
			batch.Discarded++
			continue
		}
		ts, ok := parseTimestamp(row[0])
		if !ok {
			batch.Discarded++
			continue
		}

		raw := strings.TrimSpace(row[1])
		token := strings.ToLower(raw)
		var state bool
		switch {
		case rotativoOn[token]:
			state = true
		case rotativoOff[token]:
			state = false
		default:
			batch.Discarded++
			continue
		}

		batch.Rotativo = append(batch.Rotativo, fleet.RotativoEvent{
			Timestamp: ts,
			State:     state,
			Raw:       raw,
		})
	}

	return batch, nil
}

// StabilityParser reads estabilidad.csv:
// timestamp,accel_x,accel_y,accel_z[,event]. Rows carrying an event tag
// additionally yield an incident with a curve detail payload.
type StabilityParser struct{}

func (StabilityParser) Kind() ingest.FileKind { return ingest.KindStability }
func (StabilityParser) Filename() string      { return "estabilidad.csv" }

func (StabilityParser) Parse(data []byte) (ingest.Batch, error) {
	var batch ingest.Batch

	rows, err := readRows(data)
	if err != nil {
		return batch, err
	}

	for _, row := range rows {
		if len(row) < 4 {
			batch.Discarded++
			continue
		}
		ts, ok := parseTimestamp(row[0])
		ax, okX := parseFloat(row[1])
		ay, okY := parseFloat(row[2])
		az, okZ := parseFloat(row[3])
		if !ok || !okX || !okY || !okZ {
			batch.Discarded++
			continue
		}

		batch.Stability = append(batch.Stability, fleet.StabilityRecord{
			Timestamp: ts,
			AccelX:    ax,
			AccelY:    ay,
			AccelZ:    az,
		})

		if len(row) >= 5 && strings.TrimSpace(row[4]) != "" {
			inc := fleet.IncidentEvent{
				Timestamp: ts,
				Type:      strings.TrimSpace(row[4]),
			}
			_ = fleet.EncodeDetail(&inc, fleet.CurveDetail{LateralG: ay})
			batch.Incidents = append(batch.Incidents, inc)
		}
	}

	return batch, nil
}

// PowerParser reads energia.csv: timestamp,voltage,current.
type PowerParser struct{}

func (PowerParser) Kind() ingest.FileKind { return ingest.KindPower }
func (PowerParser) Filename() string      { return "energia.csv" }

func (PowerParser) Parse(data []byte) (ingest.Batch, error) {
	var batch ingest.Batch

	rows, err := readRows(data)
	if err != nil {
		return batch, err
	}

	for _, row := range rows {
		if len(row) < 3 {
			batch.Discarded++
			continue
		}
		ts, ok := parseTimestamp(row[0])
		v, okV := parseFloat(row[1])
		c, okC := parseFloat(row[2])
		if !ok || !okV || !okC {
			batch.Discarded++
			continue
		}
		batch.Power = append(batch.Power, fleet.PowerRecord{
			Timestamp: ts,
			Voltage:   v,
			Current:   c,
		})
	}

	return batch, nil
}

// Default returns the standard parser set for a vehicle's day directory.
func Default() []ingest.Parser {
	return []ingest.Parser{GPSParser{}, RotativoParser{}, StabilityParser{}, PowerParser{}}
}
