package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/FleetVision/FV-Backend/internal/fleet"
	"github.com/google/uuid"
)

// Orchestrator drives the parsing and persistence of one vehicle's daily
// file set. The four file kinds are processed concurrently; one bad or
// missing file is counted in the report and never aborts its siblings.
type Orchestrator struct {
	parsers  []Parser
	assigner *fleet.Assigner
	records  fleet.RecordStore
	runs     RunStore // optional
}

func NewOrchestrator(parsers []Parser, assigner *fleet.Assigner, records fleet.RecordStore, runs RunStore) *Orchestrator {
	return &Orchestrator{parsers: parsers, assigner: assigner, records: records, runs: runs}
}

// ProcessVehicleDay ingests every sensor file under
// basePath/<vehicleID>/<date>/. It always returns a report; per-file
// failures are contained in it.
func (o *Orchestrator) ProcessVehicleDay(ctx context.Context, vehicleID, orgID string, date time.Time, basePath string) BatchReport {
	report := BatchReport{
		RunID:      uuid.New(),
		VehicleID:  vehicleID,
		OrgID:      orgID,
		Date:       date.Format("2006-01-02"),
		TotalFiles: len(o.parsers),
	}
	dayDir := filepath.Join(basePath, vehicleID, report.Date)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, p := range o.parsers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			detail := o.processFile(ctx, p, dayDir, vehicleID, orgID, report.RunID)

			mu.Lock()
			defer mu.Unlock()
			report.Files = append(report.Files, detail)
			if detail.Error == "" {
				report.SuccessfulFiles++
				report.TotalDataPoints += detail.Records
			} else {
				report.FailedFiles++
			}
		}()
	}
	wg.Wait()

	// Fan-out completion order is nondeterministic; keep the report stable.
	sort.Slice(report.Files, func(i, j int) bool { return report.Files[i].Kind < report.Files[j].Kind })

	log.Printf("[ingest] run=%s vehicle=%s date=%s files=%d/%d points=%d",
		report.RunID, vehicleID, report.Date, report.SuccessfulFiles, report.TotalFiles, report.TotalDataPoints)

	if o.runs != nil {
		if err := o.runs.Save(report.toRun()); err != nil {
			log.Printf("[ingest] failed to persist run %s: %v", report.RunID, err)
		}
	}

	return report
}

func (o *Orchestrator) processFile(ctx context.Context, p Parser, dayDir, vehicleID, orgID string, runID uuid.UUID) FileDetail {
	detail := FileDetail{Kind: p.Kind(), File: p.Filename()}
	path := filepath.Join(dayDir, p.Filename())

	data, err := os.ReadFile(path)
	if err != nil {
		detail.Error = fmt.Sprintf("read: %v", err)
		log.Printf("[ingest] vehicle=%s skipping %s: %v", vehicleID, p.Filename(), err)
		return detail
	}

	batch, err := p.Parse(data)
	if err != nil {
		detail.Error = fmt.Sprintf("parse: %v", err)
		log.Printf("[ingest] vehicle=%s unparseable %s: %v", vehicleID, p.Filename(), err)
		return detail
	}
	detail.Records = batch.Count()
	detail.Discarded = batch.Discarded

	session, err := o.assigner.AssignSession(ctx, vehicleID, orgID, batch.Span(), runID)
	if err != nil {
		if errors.Is(err, fleet.ErrMissingTimeRange) {
			detail.Error = "no valid timestamps, batch dropped"
			log.Printf("[ingest] vehicle=%s %s: dropping batch, no valid time range", vehicleID, p.Filename())
		} else {
			detail.Error = fmt.Sprintf("assign session: %v", err)
		}
		return detail
	}

	batch.stamp(session.ID, vehicleID, orgID)

	inserted, err := o.insertBatch(ctx, batch)
	if err != nil {
		detail.Error = fmt.Sprintf("insert: %v", err)
		return detail
	}
	detail.Inserted = inserted

	return detail
}

func (o *Orchestrator) insertBatch(ctx context.Context, b Batch) (int, error) {
	total := 0

	n, err := o.records.InsertGPS(ctx, b.GPS)
	if err != nil {
		return total, err
	}
	total += n

	n, err = o.records.InsertRotativo(ctx, b.Rotativo)
	if err != nil {
		return total, err
	}
	total += n

	n, err = o.records.InsertStability(ctx, b.Stability)
	if err != nil {
		return total, err
	}
	total += n

	n, err = o.records.InsertPower(ctx, b.Power)
	if err != nil {
		return total, err
	}
	total += n

	n, err = o.records.InsertIncidents(ctx, b.Incidents)
	if err != nil {
		return total, err
	}
	total += n

	return total, nil
}
