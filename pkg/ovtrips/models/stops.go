package models

import "time"

// StopCoordinate is a geocoded stop, keyed in the store by the literal CSV name.
type StopCoordinate struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Label string  `json:"label"`
	Query string  `json:"query"`
}

// StopStore is the persisted result of geocoding. A name is either a key of
// Stops, listed in Unmatched, or absent; never both.
type StopStore struct {
	GeneratedAt time.Time                 `json:"generatedAt"`
	Stops       map[string]StopCoordinate `json:"stops"`
	Unmatched   []string                  `json:"unmatched"`
}

func NewStopStore() StopStore {
	return StopStore{
		Stops:     map[string]StopCoordinate{},
		Unmatched: []string{},
	}
}

// Clone returns a deep copy so callers can treat StopStore as a value.
func (s StopStore) Clone() StopStore {
	out := StopStore{
		GeneratedAt: s.GeneratedAt,
		Stops:       make(map[string]StopCoordinate, len(s.Stops)),
		Unmatched:   make([]string, len(s.Unmatched)),
	}
	for name, c := range s.Stops {
		out.Stops[name] = c
	}
	copy(out.Unmatched, s.Unmatched)
	return out
}

func (s StopStore) IsUnmatched(name string) bool {
	for _, n := range s.Unmatched {
		if n == name {
			return true
		}
	}
	return false
}

// Classified reports whether name was already resolved or marked unmatched.
func (s StopStore) Classified(name string) bool {
	if _, ok := s.Stops[name]; ok {
		return true
	}
	return s.IsUnmatched(name)
}

// WithResolved returns a copy with name resolved to c.
func (s StopStore) WithResolved(name string, c StopCoordinate) StopStore {
	out := s.Clone()
	out.Stops[name] = c
	out.Unmatched = removeName(out.Unmatched, name)
	return out
}

// WithUnmatched returns a copy with name classified as unmatched.
func (s StopStore) WithUnmatched(name string) StopStore {
	out := s.Clone()
	delete(out.Stops, name)
	if !out.IsUnmatched(name) {
		out.Unmatched = append(out.Unmatched, name)
	}
	return out
}

// Coordinates is the read-only view the aggregator needs.
func (s StopStore) Coordinates() map[string]LatLng {
	out := make(map[string]LatLng, len(s.Stops))
	for name, c := range s.Stops {
		out[name] = LatLng{Lat: c.Lat, Lng: c.Lng}
	}
	return out
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func removeName(names []string, name string) []string {
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
