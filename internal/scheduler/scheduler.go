// Package scheduler runs the periodic KPI recompute. It is an explicit
// service with a lifecycle, injected where needed, not a process-global.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/FleetVision/FV-Backend/internal/fleet"
)

// VehicleSource lists the organizations and vehicles with recorded
// sessions.
type VehicleSource interface {
	OrgIDs(ctx context.Context) ([]string, error)
	VehicleIDs(ctx context.Context, orgID string) ([]string, error)
}

// Recomputer computes and persists one vehicle/scope KPI.
type Recomputer interface {
	ComputeKPI(ctx context.Context, vehicleID, orgID string, scope fleet.Scope) (fleet.KPIResult, error)
}

// Service recomputes yesterday's per-vehicle KPIs on a fixed interval.
// Per-vehicle failures are logged and skipped; the tick always finishes.
type Service struct {
	interval time.Duration
	source   VehicleSource
	composer Recomputer

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

func New(interval time.Duration, source VehicleSource, composer Recomputer) *Service {
	return &Service{interval: interval, source: source, composer: composer}
}

func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.running = true

	go s.run(ctx)
	log.Printf("[scheduler] started, interval %s", s.interval)
}

func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	done := s.done
	s.running = false
	s.mu.Unlock()

	<-done
	log.Println("[scheduler] stopped")
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Service) tick(ctx context.Context) {
	yesterday := fleet.DayScope(time.Now().UTC().AddDate(0, 0, -1))

	orgs, err := s.source.OrgIDs(ctx)
	if err != nil {
		log.Printf("[scheduler] listing orgs: %v", err)
		return
	}

	var computed, failed int
	for _, org := range orgs {
		vehicles, err := s.source.VehicleIDs(ctx, org)
		if err != nil {
			log.Printf("[scheduler] listing vehicles org=%s: %v", org, err)
			continue
		}
		for _, v := range vehicles {
			if _, err := s.composer.ComputeKPI(ctx, v, org, yesterday); err != nil {
				log.Printf("[scheduler] recompute vehicle=%s org=%s: %v", v, org, err)
				failed++
				continue
			}
			computed++
		}
	}

	log.Printf("[scheduler] tick done scope=%s computed=%d failed=%d", yesterday.Key(), computed, failed)
}
