package aggregator

import (
	"reflect"
	"testing"

	"github.com/ovtracker-map/pkg/ovtrips/models"
)

func date(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func trip(t *testing.T, day, from, to, transaction, product string) models.Trip {
	return models.Trip{
		ID:          day + "-" + from + "-" + to,
		Date:        date(t, day),
		Origin:      from,
		Destination: to,
		Transaction: transaction,
		Product:     product,
	}
}

var coords = map[string]models.LatLng{
	"A": {Lat: 52.0, Lng: 4.0},
	"B": {Lat: 52.1, Lng: 4.1},
	"C": {Lat: 52.2, Lng: 4.2},
}

func sampleTrips(t *testing.T) []models.Trip {
	return []models.Trip{
		trip(t, "01-03-2024", "A", "B", "Reis", "Dal Voordeel"),
		trip(t, "02-03-2024", "A", "B", "Reis", "Dal Voordeel"),
		trip(t, "03-03-2024", "B", "A", "Reis", "Vol tarief"),
		trip(t, "04-03-2024", "A", "B", "Reis", "Vol tarief"),
		trip(t, "05-03-2024", "B", "A", "Reis", "Vol tarief"),
		trip(t, "06-03-2024", "A", "X", "Reis", "Dal Voordeel"),
		trip(t, "07-03-2024", "", "", "Saldo opgeladen", "Automatisch opladen"),
		trip(t, "08-03-2024", "C", "A", "Reis", "Dal Voordeel"),
	}
}

func TestDirectionalRoutes(t *testing.T) {
	trips := sampleTrips(t)
	res := Aggregate(trips, coords, DefaultFilter(trips))

	counts := map[string]int{}
	for _, r := range res.Routes {
		counts[r.Origin+"->"+r.Destination] = r.Count
	}
	if counts["A->B"] != 3 || counts["B->A"] != 2 {
		t.Errorf("Expected A->B=3 and B->A=2, got %v", counts)
	}
	if len(res.Routes) != 3 {
		t.Errorf("Expected 3 routes, got %d", len(res.Routes))
	}
	if res.Routes[0].Origin != "A" || res.Routes[0].Destination != "B" {
		t.Errorf("Busiest route should come first, got %s->%s", res.Routes[0].Origin, res.Routes[0].Destination)
	}
}

func TestMissingCoordinates(t *testing.T) {
	trips := sampleTrips(t)
	res := Aggregate(trips, coords, DefaultFilter(trips))

	if !reflect.DeepEqual(res.Missing, []string{"X"}) {
		t.Errorf("Missing = %v, expected [X]", res.Missing)
	}
	for _, r := range res.Routes {
		if r.Origin == "X" || r.Destination == "X" {
			t.Errorf("Route touching X must be excluded: %+v", r)
		}
	}
	for _, s := range res.Stops {
		if s.Name == "X" {
			t.Error("Stop X must not be aggregated")
		}
		if s.Name == "A" && s.Count != 6 {
			// A->B x3, B->A x2, C->A x1; the A->X trip is not counted
			t.Errorf("Expected A count 6, got %d", s.Count)
		}
	}
}

func TestProductsCountEveryFilteredTrip(t *testing.T) {
	trips := sampleTrips(t)
	f := DefaultFilter(trips)
	f.IncludeNonJourney = true
	res := Aggregate(trips, coords, f)

	if len(res.Trips) != 8 {
		t.Fatalf("Expected all 8 trips, got %d", len(res.Trips))
	}
	want := []models.ProductAggregate{
		{Name: "Dal Voordeel", Count: 4},
		{Name: "Vol tarief", Count: 3},
		{Name: "Automatisch opladen", Count: 1},
	}
	if !reflect.DeepEqual(res.Products, want) {
		t.Errorf("Products = %v, expected %v", res.Products, want)
	}
	if len(res.Routes) != 3 {
		t.Errorf("Non-journey trips must not create routes, got %d routes", len(res.Routes))
	}
}

func TestNonJourneyExcludedByDefault(t *testing.T) {
	trips := sampleTrips(t)
	res := Aggregate(trips, coords, DefaultFilter(trips))

	for _, tr := range res.Trips {
		if !tr.IsJourney() {
			t.Errorf("Non-journey trip %s passed the default filter", tr.ID)
		}
	}
	for _, p := range res.Products {
		if p.Name == "Automatisch opladen" {
			t.Error("Top-up product must not be counted when non-journeys are excluded")
		}
	}
}

func TestDominantProduct(t *testing.T) {
	trips := sampleTrips(t)
	res := Aggregate(trips, coords, DefaultFilter(trips))

	for _, r := range res.Routes {
		switch r.Origin + "->" + r.Destination {
		case "A->B":
			if r.DominantProduct != "Dal Voordeel" {
				t.Errorf("A->B dominant = %q", r.DominantProduct)
			}
		case "B->A":
			if r.DominantProduct != "Vol tarief" {
				t.Errorf("B->A dominant = %q", r.DominantProduct)
			}
		}
	}

	tie := []models.ProductCount{{Product: "First", Count: 2}, {Product: "Second", Count: 2}}
	if got := dominantProduct(tie); got != "First" {
		t.Errorf("Tie should go to first encountered, got %q", got)
	}
}

func TestEmptyProductSet(t *testing.T) {
	trips := sampleTrips(t)
	f := DefaultFilter(trips)
	f.IncludeNonJourney = true
	f.Products = map[string]bool{}

	res := Aggregate(trips, coords, f)
	if len(res.Trips) != 0 || len(res.Routes) != 0 || len(res.VisibleRoutes) != 0 ||
		len(res.Stops) != 0 || len(res.Products) != 0 || len(res.Missing) != 0 {
		t.Errorf("Expected nothing for an empty product set, got %+v", res)
	}
}

func TestFilterMatch(t *testing.T) {
	trips := sampleTrips(t)
	base := DefaultFilter(trips)

	tests := []struct {
		name   string
		mutate func(f *Filter)
		want   int
	}{
		{"default", func(f *Filter) {}, 7},
		{"date range inclusive", func(f *Filter) {
			f.From = date(t, "02-03-2024")
			f.To = date(t, "04-03-2024")
		}, 3},
		{"single product", func(f *Filter) { f.Products = map[string]bool{"Vol tarief": true} }, 3},
		{"search case-insensitive", func(f *Filter) { f.Search = "c a" }, 1},
		{"search matches destination", func(f *Filter) { f.Search = "x" }, 1},
		{"search no match", func(f *Filter) { f.Search = "zzz" }, 0},
		{"unbounded dates", func(f *Filter) {
			f.From = models.Date{}
			f.To = models.Date{}
		}, 7},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := base
			tc.mutate(&f)
			if got := len(f.Apply(trips)); got != tc.want {
				t.Errorf("Apply() returned %d trips, expected %d", got, tc.want)
			}
		})
	}
}

func TestVisibleRoutesAndWeights(t *testing.T) {
	trips := sampleTrips(t)
	f := DefaultFilter(trips)
	f.MinRouteTrips = 2
	res := Aggregate(trips, coords, f)

	if len(res.VisibleRoutes) != 2 {
		t.Fatalf("Expected 2 routes at threshold 2, got %d", len(res.VisibleRoutes))
	}
	if got := res.VisibleRoutes[0].Weight; got != RouteWeightMax {
		t.Errorf("Busiest visible route weight = %v, expected %v", got, RouteWeightMax)
	}
	count, maxCount := 2.0, 3.0
	want := RouteWeightMin + (RouteWeightMax-RouteWeightMin)*count/maxCount
	if got := res.VisibleRoutes[1].Weight; got != want {
		t.Errorf("Second route weight = %v, expected %v", got, want)
	}

	// Weights are relative to the visible set, not all routes
	f.MinRouteTrips = 1
	f.Products = map[string]bool{"Vol tarief": true}
	res = Aggregate(trips, coords, f)
	if res.VisibleRoutes[0].Weight != RouteWeightMax {
		t.Errorf("Expected top weight to rescale to the filtered set, got %v", res.VisibleRoutes[0].Weight)
	}

	for _, s := range res.Stops {
		if s.Radius < StopRadiusMin || s.Radius > StopRadiusMax {
			t.Errorf("Stop %s radius %v out of range", s.Name, s.Radius)
		}
		if s.Coordinate == nil {
			t.Errorf("Stop %s has no coordinate", s.Name)
		}
	}
}

func TestAggregateIsDeterministic(t *testing.T) {
	trips := sampleTrips(t)
	f := DefaultFilter(trips)
	first := Aggregate(trips, coords, f)
	second := Aggregate(trips, coords, f)
	if !reflect.DeepEqual(first, second) {
		t.Error("Aggregate() is not deterministic")
	}
}

func TestObservedOptions(t *testing.T) {
	opts := ObservedOptions(sampleTrips(t))
	if opts.From.String() != "2024-03-01" || opts.To.String() != "2024-03-08" {
		t.Errorf("Unexpected span %s..%s", opts.From, opts.To)
	}
	want := []string{"Automatisch opladen", "Dal Voordeel", "Vol tarief"}
	if !reflect.DeepEqual(opts.Products, want) {
		t.Errorf("Products = %v, expected %v", opts.Products, want)
	}
}
