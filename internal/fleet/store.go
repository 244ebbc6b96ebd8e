package fleet

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSessionStore implements SessionStore and SessionReader on Postgres.
type GormSessionStore struct {
	DB *gorm.DB
}

func (s *GormSessionStore) FindOverlapping(ctx context.Context, vehicleID, orgID string, span TimeRange) (*Session, error) {
	var sess Session
	err := s.DB.WithContext(ctx).
		Where("vehicle_id = ? AND org_id = ? AND start_time <= ? AND end_time >= ?",
			vehicleID, orgID, span.End, span.Start).
		Order("start_time").
		First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *GormSessionStore) LastSequence(ctx context.Context, vehicleID, orgID string) (int, error) {
	var seq *int
	err := s.DB.WithContext(ctx).Model(&Session{}).
		Where("vehicle_id = ? AND org_id = ?", vehicleID, orgID).
		Select("MAX(sequence)").
		Scan(&seq).Error
	if err != nil {
		return 0, err
	}
	if seq == nil {
		return 0, nil
	}
	return *seq, nil
}

func (s *GormSessionStore) Create(ctx context.Context, sess *Session) error {
	return s.DB.WithContext(ctx).Create(sess).Error
}

func (s *GormSessionStore) UpdateBounds(ctx context.Context, sess *Session) error {
	return s.DB.WithContext(ctx).Model(sess).
		Updates(map[string]any{
			"start_time":           sess.StartTime,
			"end_time":             sess.EndTime,
			"last_extended_by_run": sess.LastExtendedByRun,
		}).Error
}

func (s *GormSessionStore) Intersecting(ctx context.Context, vehicleID, orgID string, span TimeRange) ([]Session, error) {
	var sessions []Session
	err := s.DB.WithContext(ctx).
		Where("vehicle_id = ? AND org_id = ? AND start_time <= ? AND end_time >= ?",
			vehicleID, orgID, span.End, span.Start).
		Order("start_time").
		Find(&sessions).Error
	return sessions, err
}

func (s *GormSessionStore) AllForVehicle(ctx context.Context, vehicleID, orgID string) ([]Session, error) {
	var sessions []Session
	err := s.DB.WithContext(ctx).
		Where("vehicle_id = ? AND org_id = ?", vehicleID, orgID).
		Order("start_time").
		Find(&sessions).Error
	return sessions, err
}

func (s *GormSessionStore) VehicleIDs(ctx context.Context, orgID string) ([]string, error) {
	var ids []string
	err := s.DB.WithContext(ctx).Model(&Session{}).
		Where("org_id = ?", orgID).
		Distinct("vehicle_id").
		Order("vehicle_id").
		Pluck("vehicle_id", &ids).Error
	return ids, err
}

func (s *GormSessionStore) OrgIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.DB.WithContext(ctx).Model(&Session{}).
		Distinct("org_id").
		Order("org_id").
		Pluck("org_id", &ids).Error
	return ids, err
}

// GormRecordStore implements RecordStore on Postgres. Inserts rely on the
// per-table (vehicle_id, timestamp) unique index plus ON CONFLICT DO
// NOTHING for duplicate-skip semantics, so re-running a day is safe.
type GormRecordStore struct {
	DB *gorm.DB
}

func (s *GormRecordStore) GPSInRange(ctx context.Context, vehicleID, orgID string, span TimeRange) ([]GPSRecord, error) {
	var recs []GPSRecord
	err := s.rangeQuery(ctx, vehicleID, orgID, span).Find(&recs).Error
	return recs, err
}

func (s *GormRecordStore) RotativoInRange(ctx context.Context, vehicleID, orgID string, span TimeRange) ([]RotativoEvent, error) {
	var recs []RotativoEvent
	err := s.rangeQuery(ctx, vehicleID, orgID, span).Find(&recs).Error
	return recs, err
}

func (s *GormRecordStore) IncidentsInRange(ctx context.Context, vehicleID, orgID string, span TimeRange) ([]IncidentEvent, error) {
	var recs []IncidentEvent
	err := s.rangeQuery(ctx, vehicleID, orgID, span).Find(&recs).Error
	return recs, err
}

func (s *GormRecordStore) rangeQuery(ctx context.Context, vehicleID, orgID string, span TimeRange) *gorm.DB {
	return s.DB.WithContext(ctx).
		Where("vehicle_id = ? AND org_id = ? AND timestamp >= ? AND timestamp <= ?",
			vehicleID, orgID, span.Start, span.End).
		Order("timestamp")
}

func (s *GormRecordStore) InsertGPS(ctx context.Context, recs []GPSRecord) (int, error) {
	return s.insertSkipDuplicates(ctx, len(recs), &recs)
}

func (s *GormRecordStore) InsertRotativo(ctx context.Context, recs []RotativoEvent) (int, error) {
	return s.insertSkipDuplicates(ctx, len(recs), &recs)
}

func (s *GormRecordStore) InsertStability(ctx context.Context, recs []StabilityRecord) (int, error) {
	return s.insertSkipDuplicates(ctx, len(recs), &recs)
}

func (s *GormRecordStore) InsertPower(ctx context.Context, recs []PowerRecord) (int, error) {
	return s.insertSkipDuplicates(ctx, len(recs), &recs)
}

func (s *GormRecordStore) InsertIncidents(ctx context.Context, recs []IncidentEvent) (int, error) {
	return s.insertSkipDuplicates(ctx, len(recs), &recs)
}

func (s *GormRecordStore) insertSkipDuplicates(ctx context.Context, n int, recs any) (int, error) {
	if n == 0 {
		return 0, nil
	}
	tx := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(recs, 500)
	return int(tx.RowsAffected), tx.Error
}

// GormZoneStore implements ZoneStore. Creation order is preserved because
// it is the tie-break for overlapping zones.
type GormZoneStore struct {
	DB *gorm.DB
}

func (s *GormZoneStore) ZonesByOrg(ctx context.Context, orgID string) ([]Zone, error) {
	var zones []Zone
	err := s.DB.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at, id").
		Find(&zones).Error
	return zones, err
}

// GormSnapshotStore implements SnapshotStore with overwrite-per-scope
// semantics.
type GormSnapshotStore struct {
	DB *gorm.DB
}

func (s *GormSnapshotStore) Save(ctx context.Context, snap *KPISnapshot) error {
	return s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "vehicle_id"}, {Name: "org_id"}, {Name: "scope_key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_time", "distance", "max_speed", "payload", "computed_at",
			}),
		}).
		Create(snap).Error
}
