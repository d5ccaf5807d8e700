package systems

import (
	"log/slog"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/supermatter/components"
)

// HazardSystem removes hazards whose lifetime has run out.
type HazardSystem struct {
	world  *ecs.World
	filter ecs.Filter1[components.Hazard]
	log    *slog.Logger

	expired []ecs.Entity
}

// NewHazardSystem creates a hazard system over w.
func NewHazardSystem(w *ecs.World, logger *slog.Logger) *HazardSystem {
	if logger == nil {
		logger = slog.Default()
	}
	return &HazardSystem{
		world:  w,
		filter: *ecs.NewFilter1[components.Hazard](w),
		log:    logger,
	}
}

// Update removes expired hazards and returns how many it removed.
func (s *HazardSystem) Update(now time.Duration) int {
	s.expired = s.expired[:0]

	query := s.filter.Query()
	for query.Next() {
		if query.Get().Expired(now) {
			s.expired = append(s.expired, query.Entity())
		}
	}

	for _, e := range s.expired {
		s.world.RemoveEntity(e)
	}
	if n := len(s.expired); n > 0 {
		s.log.Debug("hazards expired", "count", n)
	}
	return len(s.expired)
}

// Count returns the number of live hazards by kind.
func (s *HazardSystem) Count() map[components.HazardKind]int {
	counts := make(map[components.HazardKind]int)
	query := s.filter.Query()
	for query.Next() {
		counts[query.Get().Kind]++
	}
	return counts
}
