package resolver

import (
	"context"

	"github.com/ovtracker-map/internal/geocode/nominatim"
	"github.com/ovtracker-map/pkg/ovtrips/models"
)

type Geocoder interface {
	Search(ctx context.Context, query string) (*nominatim.Place, error)
}

type StoreSaver interface {
	Save(ctx context.Context, store models.StopStore) error
}
