package ingest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// FileDetail is the per-file outcome of one ingestion run.
type FileDetail struct {
	Kind      FileKind `json:"kind"`
	File      string   `json:"file"`
	Records   int      `json:"records"`
	Inserted  int      `json:"inserted"`
	Discarded int      `json:"discarded"`
	Error     string   `json:"error,omitempty"`
}

// BatchReport summarizes one ProcessVehicleDay run.
type BatchReport struct {
	RunID           uuid.UUID    `json:"run_id"`
	VehicleID       string       `json:"vehicle_id"`
	OrgID           string       `json:"org_id"`
	Date            string       `json:"date"`
	TotalFiles      int          `json:"total_files"`
	SuccessfulFiles int          `json:"successful_files"`
	FailedFiles     int          `json:"failed_files"`
	TotalDataPoints int          `json:"total_data_points"`
	Files           []FileDetail `json:"files"`
}

// IngestionRun is the persisted trace of a batch run, one summary line per
// file. Kept for operator visibility; KPI math never reads it.
type IngestionRun struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	VehicleID       string         `gorm:"index;size:64" json:"vehicle_id"`
	OrgID           string         `gorm:"index;size:64" json:"org_id"`
	Date            string         `gorm:"size:10" json:"date"`
	TotalFiles      int            `json:"total_files"`
	SuccessfulFiles int            `json:"successful_files"`
	FailedFiles     int            `json:"failed_files"`
	TotalDataPoints int            `json:"total_data_points"`
	Details         pq.StringArray `gorm:"type:text[]" json:"details"`
	CreatedAt       time.Time      `json:"created_at"`
}

func (IngestionRun) TableName() string { return "fleet.ingestion_runs" }

func (r BatchReport) toRun() *IngestionRun {
	run := &IngestionRun{
		ID:              r.RunID,
		VehicleID:       r.VehicleID,
		OrgID:           r.OrgID,
		Date:            r.Date,
		TotalFiles:      r.TotalFiles,
		SuccessfulFiles: r.SuccessfulFiles,
		FailedFiles:     r.FailedFiles,
		TotalDataPoints: r.TotalDataPoints,
	}
	for _, f := range r.Files {
		line := fmt.Sprintf("%s %s records=%d inserted=%d discarded=%d",
			f.Kind, f.File, f.Records, f.Inserted, f.Discarded)
		if f.Error != "" {
			line += " error=" + f.Error
		}
		run.Details = append(run.Details, line)
	}
	return run
}

// RunStore persists ingestion run traces.
type RunStore interface {
	Save(run *IngestionRun) error
}

type GormRunStore struct {
	DB *gorm.DB
}

func (s *GormRunStore) Save(run *IngestionRun) error {
	return s.DB.Create(run).Error
}
