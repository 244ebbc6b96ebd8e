package fleet

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
)

// SessionStore is the persistence collaborator for operating sessions.
type SessionStore interface {
	// FindOverlapping returns the first session of vehicle/org whose
	// inclusive [start,end] overlaps span, or nil when none exists.
	FindOverlapping(ctx context.Context, vehicleID, orgID string, span TimeRange) (*Session, error)
	// LastSequence returns the highest session sequence for the vehicle,
	// 0 when it has none.
	LastSequence(ctx context.Context, vehicleID, orgID string) (int, error)
	Create(ctx context.Context, s *Session) error
	UpdateBounds(ctx context.Context, s *Session) error
}

// Assigner finds or creates the session that owns a record batch's time
// span, growing the session's bounds when the batch extends past them.
//
// The four file-type parsers of one vehicle run concurrently, so
// find-or-create must be serialized per vehicle: two racing assignments
// for overlapping spans would otherwise create duplicate sessions or lose
// an extension. Distinct vehicles never contend.
type Assigner struct {
	store SessionStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewAssigner(store SessionStore) *Assigner {
	return &Assigner{store: store, locks: make(map[string]*sync.Mutex)}
}

func (a *Assigner) vehicleLock(vehicleID string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()

	l, ok := a.locks[vehicleID]
	if !ok {
		l = &sync.Mutex{}
		a.locks[vehicleID] = l
	}
	return l
}

// AssignSession returns the session that should own the batch covering
// span, extending an overlapping session's bounds or creating a new one
// with the next per-vehicle sequence. runID records provenance.
func (a *Assigner) AssignSession(ctx context.Context, vehicleID, orgID string, span TimeRange, runID uuid.UUID) (*Session, error) {
	if span.IsZero() {
		return nil, fmt.Errorf("assign session vehicle=%s: %w", vehicleID, ErrMissingTimeRange)
	}

	l := a.vehicleLock(vehicleID)
	l.Lock()
	defer l.Unlock()

	existing, err := a.store.FindOverlapping(ctx, vehicleID, orgID, span)
	if err != nil {
		return nil, fmt.Errorf("find overlapping session: %w", err)
	}

	if existing != nil {
		bounds := TimeRange{Start: existing.StartTime, End: existing.EndTime}.Union(span)
		if bounds.Start.Equal(existing.StartTime) && bounds.End.Equal(existing.EndTime) {
			return existing, nil
		}
		existing.StartTime = bounds.Start
		existing.EndTime = bounds.End
		existing.LastExtendedByRun = runID
		if err := a.store.UpdateBounds(ctx, existing); err != nil {
			return nil, fmt.Errorf("extend session %s: %w", existing.ID, err)
		}
		log.Printf("[sessions] extended session %s vehicle=%s to [%s, %s]",
			existing.ID, vehicleID, bounds.Start.Format("15:04:05"), bounds.End.Format("15:04:05"))
		return existing, nil
	}

	seq, err := a.store.LastSequence(ctx, vehicleID, orgID)
	if err != nil {
		return nil, fmt.Errorf("last session sequence: %w", err)
	}

	s := &Session{
		ID:                uuid.New(),
		VehicleID:         vehicleID,
		OrgID:             orgID,
		StartTime:         span.Start,
		EndTime:           span.End,
		Sequence:          seq + 1,
		CreatedByRun:      runID,
		LastExtendedByRun: runID,
	}
	if err := a.store.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	log.Printf("[sessions] created session %s vehicle=%s seq=%d", s.ID, vehicleID, s.Sequence)
	return s, nil
}
