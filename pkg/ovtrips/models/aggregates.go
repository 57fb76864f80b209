package models

// ProductCount is one entry of a per-route product tally.
type ProductCount struct {
	Product string `json:"product"`
	Count   int    `json:"count"`
}

// RouteAggregate accumulates trips between an ordered pair of stops.
type RouteAggregate struct {
	Origin          string         `json:"origin"`
	Destination     string         `json:"destination"`
	From            LatLng         `json:"from"`
	To              LatLng         `json:"to"`
	Count           int            `json:"count"`
	Products        []ProductCount `json:"products"`
	Dates           []Date         `json:"dates"`
	DominantProduct string         `json:"dominantProduct"`
	Weight          float64        `json:"weight,omitempty"`
}

type StopAggregate struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Coordinate *LatLng `json:"coordinate"`
	Radius     float64 `json:"radius"`
}

type ProductAggregate struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
