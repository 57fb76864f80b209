package aggregator

import (
	"sort"

	"github.com/ovtracker-map/pkg/ovtrips/models"
)

// Display scaling for the map layer
const (
	RouteWeightMin = 2.0
	RouteWeightMax = 10.0
	StopRadiusMin  = 4.0
	StopRadiusMax  = 14.0
)

// Result is everything the presentation layer renders for one filter.
type Result struct {
	Filter        Filter                    `json:"filter"`
	Trips         []models.Trip             `json:"trips"`
	Routes        []models.RouteAggregate   `json:"routes"`
	VisibleRoutes []models.RouteAggregate   `json:"visibleRoutes"`
	Stops         []models.StopAggregate    `json:"stops"`
	Products      []models.ProductAggregate `json:"products"`
	Missing       []string                  `json:"missing"`
}

type routeKey struct {
	origin, destination string
}

// Aggregate filters trips and derives route, stop and product statistics.
// It has no side effects and gives identical output for identical input.
func Aggregate(trips []models.Trip, coords map[string]models.LatLng, f Filter) Result {
	filtered := f.Apply(trips)

	res := Result{
		Filter:        f,
		Trips:         filtered,
		Routes:        []models.RouteAggregate{},
		VisibleRoutes: []models.RouteAggregate{},
		Stops:         []models.StopAggregate{},
		Products:      []models.ProductAggregate{},
		Missing:       []string{},
	}

	productIndex := make(map[string]int)
	routeIndex := make(map[routeKey]int)
	stopIndex := make(map[string]int)
	missing := make(map[string]bool)

	for _, t := range filtered {
		if i, ok := productIndex[t.Product]; ok {
			res.Products[i].Count++
		} else {
			productIndex[t.Product] = len(res.Products)
			res.Products = append(res.Products, models.ProductAggregate{Name: t.Product, Count: 1})
		}

		if !t.IsJourney() || t.Origin == "" || t.Destination == "" {
			continue
		}
		from, okFrom := coords[t.Origin]
		to, okTo := coords[t.Destination]
		if !okFrom {
			missing[t.Origin] = true
		}
		if !okTo {
			missing[t.Destination] = true
		}
		if !okFrom || !okTo {
			continue
		}

		key := routeKey{t.Origin, t.Destination}
		i, ok := routeIndex[key]
		if !ok {
			i = len(res.Routes)
			routeIndex[key] = i
			res.Routes = append(res.Routes, models.RouteAggregate{
				Origin:      t.Origin,
				Destination: t.Destination,
				From:        from,
				To:          to,
				Products:    []models.ProductCount{},
				Dates:       []models.Date{},
			})
		}
		route := &res.Routes[i]
		route.Count++
		route.Dates = append(route.Dates, t.Date)
		route.Products = addProduct(route.Products, t.Product)

		res.Stops = addStop(res.Stops, stopIndex, t.Origin, from)
		res.Stops = addStop(res.Stops, stopIndex, t.Destination, to)
	}

	for i := range res.Routes {
		res.Routes[i].DominantProduct = dominantProduct(res.Routes[i].Products)
	}

	sort.SliceStable(res.Routes, func(i, j int) bool { return res.Routes[i].Count > res.Routes[j].Count })
	sort.SliceStable(res.Stops, func(i, j int) bool { return res.Stops[i].Count > res.Stops[j].Count })
	sort.SliceStable(res.Products, func(i, j int) bool { return res.Products[i].Count > res.Products[j].Count })

	res.VisibleRoutes = visibleRoutes(res.Routes, f.MinRouteTrips)
	scaleStops(res.Stops)

	for name := range missing {
		res.Missing = append(res.Missing, name)
	}
	sort.Strings(res.Missing)

	return res
}

func addProduct(tally []models.ProductCount, product string) []models.ProductCount {
	for i := range tally {
		if tally[i].Product == product {
			tally[i].Count++
			return tally
		}
	}
	return append(tally, models.ProductCount{Product: product, Count: 1})
}

func addStop(stops []models.StopAggregate, index map[string]int, name string, at models.LatLng) []models.StopAggregate {
	if i, ok := index[name]; ok {
		stops[i].Count++
		return stops
	}
	index[name] = len(stops)
	coord := at
	return append(stops, models.StopAggregate{Name: name, Count: 1, Coordinate: &coord})
}

// dominantProduct picks the highest tally; ties go to the first encountered.
func dominantProduct(tally []models.ProductCount) string {
	best := -1
	name := ""
	for _, p := range tally {
		if p.Count > best {
			best = p.Count
			name = p.Product
		}
	}
	return name
}

// visibleRoutes keeps routes meeting the threshold and scales their weight
// against the busiest visible route.
func visibleRoutes(routes []models.RouteAggregate, minTrips int) []models.RouteAggregate {
	if minTrips < 1 {
		minTrips = 1
	}
	visible := []models.RouteAggregate{}
	maxCount := 0
	for _, r := range routes {
		if r.Count < minTrips {
			continue
		}
		visible = append(visible, r)
		if r.Count > maxCount {
			maxCount = r.Count
		}
	}
	for i := range visible {
		visible[i].Weight = scale(visible[i].Count, maxCount, RouteWeightMin, RouteWeightMax)
	}
	return visible
}

func scaleStops(stops []models.StopAggregate) {
	maxCount := 0
	for _, s := range stops {
		if s.Count > maxCount {
			maxCount = s.Count
		}
	}
	for i := range stops {
		stops[i].Radius = scale(stops[i].Count, maxCount, StopRadiusMin, StopRadiusMax)
	}
}

func scale(count, maxCount int, lo, hi float64) float64 {
	if maxCount <= 0 {
		return lo
	}
	return lo + (hi-lo)*float64(count)/float64(maxCount)
}
