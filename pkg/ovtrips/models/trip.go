package models

// Transaction type marking an actual journey; everything else is a top-up,
// refund or service transaction.
const TransactionJourney = "Reis"

// UnknownStop is the name the export uses when a check-in or check-out
// location is not known.
const UnknownStop = "Onbekend"

// Trip is one row of the transport-card export with a parseable date.
type Trip struct {
	ID          string `json:"id"`
	Date        Date   `json:"date"`
	CheckIn     string `json:"checkIn"`
	CheckOut    string `json:"checkOut"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Transaction string `json:"transaction"`
	Product     string `json:"product"`
	Class       string `json:"class"`
	Note        string `json:"note"`
}

func (t Trip) IsJourney() bool {
	return t.Transaction == TransactionJourney
}
