package resolver

import (
	"strings"

	"github.com/ovtracker-map/pkg/ovtrips/models"
)

const country = "Netherlands"

// defaultCity is where most of the travel history happens, so unqualified
// names are assumed to be there.
const defaultCity = "Amsterdam"

// Rule names reported with each guess
const (
	RuleUnknown  = "unknown"
	RuleOverride = "override"
	RuleComma    = "comma"
	RulePrefix   = "city-prefix"
	RuleCitySet  = "city-set"
	RuleFallback = "fallback"
)

// Overrides for names the heuristics get wrong. Keys are literal CSV names.
var builtinOverrides = map[string]string{
	"Centraal Station":     "Amsterdam Centraal, Stationsplein, Amsterdam, Netherlands",
	"Station Zuid":         "Station Amsterdam Zuid, Zuidplein, Amsterdam, Netherlands",
	"Station RAI":          "Station Amsterdam RAI, Europaboulevard, Amsterdam, Netherlands",
	"Station Lelylaan":     "Station Amsterdam Lelylaan, Amsterdam, Netherlands",
	"Station Sloterdijk":   "Station Amsterdam Sloterdijk, Amsterdam, Netherlands",
	"Schiphol Airport":     "Schiphol Plaza, Haarlemmermeer, Netherlands",
	"Den Haag Centraal":    "Den Haag Centraal, Koningin Julianaplein, Den Haag, Netherlands",
	"Rotterdam Centraal":   "Rotterdam Centraal, Stationsplein, Rotterdam, Netherlands",
	"Bijlmer ArenA":        "Station Amsterdam Bijlmer ArenA, Amsterdam, Netherlands",
	"Leidseplein":          "Leidseplein, Amsterdam, Netherlands",
	"Zandvoort aan Zee":    "Station Zandvoort aan Zee, Stationsplein, Zandvoort, Netherlands",
	"Purmerend Busstation": "Tramplein, Purmerend, Netherlands",
	"Utrecht Centraal":     "Utrecht Centraal, Stationsplein, Utrecht, Netherlands",
	"Haarlem Station":      "Station Haarlem, Stationsplein, Haarlem, Netherlands",
	"Amstelveen Stadshart": "Stadshart, Amstelveen, Netherlands",
	"Centrum Amstelveen":   "Stadshart, Amstelveen, Netherlands",
	"Noord":                "Station Noord, Buikslotermeerplein, Amsterdam, Netherlands",
	"Muziekgebouw Bimhuis": "Muziekgebouw aan 't IJ, Piet Heinkade, Amsterdam, Netherlands",
	"Olympisch Stadion":    "Olympisch Stadion, Amsterdam, Netherlands",
}

// Names starting with one of these already carry their city.
var cityPrefixes = []string{
	"Amsterdam",
	"Amstelveen",
	"Almere",
	"Alkmaar",
	"Amersfoort",
	"Arnhem",
	"Delft",
	"Den Haag",
	"Diemen",
	"Duivendrecht",
	"Eindhoven",
	"Groningen",
	"Haarlem",
	"Hoofddorp",
	"Leiden",
	"Nijmegen",
	"Purmerend",
	"Rotterdam",
	"Schiphol",
	"Utrecht",
	"Zaandam",
	"Zandvoort",
}

type citySet struct {
	city  string
	stops map[string]bool
}

func newCitySet(city string, stops ...string) citySet {
	set := citySet{city: city, stops: make(map[string]bool, len(stops))}
	for _, s := range stops {
		set.stops[s] = true
	}
	return set
}

// Stop names seen in the history that belong outside the default city.
var citySets = []citySet{
	newCitySet("Den Haag",
		"Buitenhof", "Kurhaus", "Madurodam", "Lange Poten", "Malieveld",
		"Scheveningen Haven", "Ternoot", "Brouwersgracht Den Haag"),
	newCitySet("Rotterdam",
		"Beurs", "Blaak", "Leuvehaven", "Wilhelminaplein", "Zuidplein",
		"Kralingse Zoom", "Eendrachtsplein", "Coolsingel"),
	newCitySet("Purmerend",
		"Tramplein", "Waterlandplein", "Koemarkt", "Weidevenne", "Wagenweg"),
	newCitySet("Zandvoort",
		"Boulevard Paulus Loot", "Louis Davidsstraat", "Boulevard Barnaart",
		"Thorbeckestraat", "Circuit Park"),
}

// Guess is the query derived for a stop name.
type Guess struct {
	Query string
	Rule  string
	Skip  bool
}

type rule struct {
	name  string
	guess func(g *Guesser, name string) (string, bool)
}

// Evaluated top to bottom, first match wins.
var rules = []rule{
	{RuleOverride, func(g *Guesser, name string) (string, bool) {
		q, ok := g.overrides[name]
		return q, ok
	}},
	{RuleComma, func(_ *Guesser, name string) (string, bool) {
		return name + ", " + country, strings.Contains(name, ",")
	}},
	{RulePrefix, func(_ *Guesser, name string) (string, bool) {
		for _, prefix := range cityPrefixes {
			if strings.HasPrefix(name, prefix) {
				return name + ", " + country, true
			}
		}
		return "", false
	}},
	{RuleCitySet, func(_ *Guesser, name string) (string, bool) {
		for _, set := range citySets {
			if set.stops[name] {
				return name + ", " + set.city + ", " + country, true
			}
		}
		return "", false
	}},
	{RuleFallback, func(_ *Guesser, name string) (string, bool) {
		return name + ", " + defaultCity + ", " + country, true
	}},
}

// Guesser turns CSV stop names into geocoder queries.
type Guesser struct {
	overrides map[string]string
}

// NewGuesser uses the built-in override table extended (and, on equal
// names, replaced) by extra.
func NewGuesser(extra map[string]string) *Guesser {
	overrides := make(map[string]string, len(builtinOverrides)+len(extra))
	for name, q := range builtinOverrides {
		overrides[name] = q
	}
	for name, q := range extra {
		overrides[name] = q
	}
	return &Guesser{overrides: overrides}
}

func (g *Guesser) GuessQuery(name string) Guess {
	if strings.TrimSpace(name) == "" || name == models.UnknownStop {
		return Guess{Rule: RuleUnknown, Skip: true}
	}
	for _, r := range rules {
		if q, ok := r.guess(g, name); ok {
			return Guess{Query: q, Rule: r.name}
		}
	}
	// unreachable: the fallback always matches
	return Guess{Rule: RuleUnknown, Skip: true}
}
