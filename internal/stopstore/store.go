package stopstore

import (
	"context"

	"github.com/ovtracker-map/internal/common/logger"
	"github.com/ovtracker-map/pkg/ovtrips/models"
)

// Store persists the geocoding result. Save always writes the complete
// document so the stored state is never a partial classification.
type Store interface {
	Load(ctx context.Context) (models.StopStore, error)
	Save(ctx context.Context, store models.StopStore) error
}

// normalize fills nil collections and drops names that are listed as both
// resolved and unmatched, keeping the resolved entry.
func normalize(s models.StopStore, log logger.Logger) models.StopStore {
	if s.Stops == nil {
		s.Stops = map[string]models.StopCoordinate{}
	}
	unmatched := make([]string, 0, len(s.Unmatched))
	seen := make(map[string]bool, len(s.Unmatched))
	for _, name := range s.Unmatched {
		if _, ok := s.Stops[name]; ok {
			log.Warn("Stop listed as both resolved and unmatched, keeping coordinates", "stop", name)
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		unmatched = append(unmatched, name)
	}
	s.Unmatched = unmatched
	return s
}
