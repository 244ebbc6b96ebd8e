package fleet

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// memSessionStore implements SessionStore in memory. It deliberately does
// NOT serialize callers itself, so it exposes assigner races.
type memSessionStore struct {
	mu       sync.Mutex
	sessions []*Session
}

func (m *memSessionStore) FindOverlapping(_ context.Context, vehicleID, orgID string, span TimeRange) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.VehicleID == vehicleID && s.OrgID == orgID &&
			(TimeRange{Start: s.StartTime, End: s.EndTime}).Overlaps(span) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memSessionStore) LastSequence(_ context.Context, vehicleID, orgID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	max := 0
	for _, s := range m.sessions {
		if s.VehicleID == vehicleID && s.OrgID == orgID && s.Sequence > max {
			max = s.Sequence
		}
	}
	return max, nil
}

func (m *memSessionStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions = append(m.sessions, &cp)
	return nil
}

func (m *memSessionStore) UpdateBounds(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, stored := range m.sessions {
		if stored.ID == s.ID {
			stored.StartTime = s.StartTime
			stored.EndTime = s.EndTime
			stored.LastExtendedByRun = s.LastExtendedByRun
			return nil
		}
	}
	return errors.New("session not found")
}

func (m *memSessionStore) all() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Session(nil), m.sessions...)
}

func span(start, end time.Time) TimeRange { return TimeRange{Start: start, End: end} }

func TestAssignSession_CreatesWithSequence(t *testing.T) {
	store := &memSessionStore{}
	a := NewAssigner(store)
	ctx := context.Background()
	run := uuid.New()

	s1, err := a.AssignSession(ctx, "V1", "org", span(t0, t0.Add(time.Hour)), run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s1.Sequence != 1 {
		t.Errorf("expected sequence 1, got %d", s1.Sequence)
	}

	// Disjoint span: a second session, sequence 2.
	s2, err := a.AssignSession(ctx, "V1", "org", span(t0.Add(3*time.Hour), t0.Add(4*time.Hour)), run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s2.Sequence != 2 {
		t.Errorf("expected sequence 2, got %d", s2.Sequence)
	}
	if s2.ID == s1.ID {
		t.Error("disjoint spans must not share a session")
	}
}

// Scenario: spans [10:00,10:30] and [10:20,11:00] produce one session
// [10:00,11:00].
func TestAssignSession_ExtendsOverlapping(t *testing.T) {
	store := &memSessionStore{}
	a := NewAssigner(store)
	ctx := context.Background()
	run := uuid.New()

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	if _, err := a.AssignSession(ctx, "V1", "org", span(at(10, 0), at(10, 30)), run); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	s, err := a.AssignSession(ctx, "V1", "org", span(at(10, 20), at(11, 0)), run)
	if err != nil {
		t.Fatalf("second assign: %v", err)
	}

	all := store.all()
	if len(all) != 1 {
		t.Fatalf("expected exactly one session, got %d", len(all))
	}
	if !s.StartTime.Equal(at(10, 0)) || !s.EndTime.Equal(at(11, 0)) {
		t.Errorf("expected union [10:00,11:00], got [%s,%s]", s.StartTime, s.EndTime)
	}
}

func TestAssignSession_InclusiveTouchingBoundsOverlap(t *testing.T) {
	store := &memSessionStore{}
	a := NewAssigner(store)
	ctx := context.Background()
	run := uuid.New()

	if _, err := a.AssignSession(ctx, "V1", "org", span(t0, t0.Add(time.Hour)), run); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	// Starts exactly where the first ends: inclusive overlap, extend.
	if _, err := a.AssignSession(ctx, "V1", "org", span(t0.Add(time.Hour), t0.Add(2*time.Hour)), run); err != nil {
		t.Fatalf("second assign: %v", err)
	}

	if n := len(store.all()); n != 1 {
		t.Errorf("expected one session for touching spans, got %d", n)
	}
}

func TestAssignSession_MissingTimeRange(t *testing.T) {
	a := NewAssigner(&memSessionStore{})

	_, err := a.AssignSession(context.Background(), "V1", "org", TimeRange{}, uuid.New())
	if !errors.Is(err, ErrMissingTimeRange) {
		t.Errorf("expected ErrMissingTimeRange, got %v", err)
	}
}

// Concurrent overlapping assignments for one vehicle must end with exactly
// one session spanning the union of all inputs, regardless of
// interleaving.
func TestAssignSession_ConcurrentOverlapping(t *testing.T) {
	store := &memSessionStore{}
	a := NewAssigner(store)
	ctx := context.Background()
	run := uuid.New()

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Every span overlaps [t0+15m, t0+16m], so all must land in
			// the same session.
			s := t0.Add(time.Duration(i) * time.Minute)
			e := t0.Add(time.Duration(i+16) * time.Minute)
			if _, err := a.AssignSession(ctx, "V1", "org", span(s, e), run); err != nil {
				t.Errorf("assign %d: %v", i, err)
			}
		}()
	}
	wg.Wait()

	all := store.all()
	if len(all) != 1 {
		t.Fatalf("expected one session after %d concurrent assigns, got %d", n, len(all))
	}
	got := all[0]
	if !got.StartTime.Equal(t0) || !got.EndTime.Equal(t0.Add(31*time.Minute)) {
		t.Errorf("expected union [%s,%s], got [%s,%s]",
			t0, t0.Add(31*time.Minute), got.StartTime, got.EndTime)
	}
}

// Different vehicles get independent sessions and sequences.
func TestAssignSession_VehiclesIndependent(t *testing.T) {
	store := &memSessionStore{}
	a := NewAssigner(store)
	ctx := context.Background()
	run := uuid.New()

	s1, _ := a.AssignSession(ctx, "V1", "org", span(t0, t0.Add(time.Hour)), run)
	s2, err := a.AssignSession(ctx, "V2", "org", span(t0, t0.Add(time.Hour)), run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s1.ID == s2.ID {
		t.Error("vehicles must not share sessions")
	}
	if s2.Sequence != 1 {
		t.Errorf("expected independent sequence 1 for V2, got %d", s2.Sequence)
	}
}
