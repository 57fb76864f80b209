package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ovtracker-map/internal/common/logger"
	"github.com/ovtracker-map/pkg/ovtrips/models"
)

// Column names in the transport-card export
const (
	ColDate        = "Datum"
	ColCheckIn     = "Check in"
	ColCheckOut    = "Check uit"
	ColOrigin      = "Vertrek"
	ColDestination = "Bestemming"
	ColTransaction = "Transactie"
	ColProduct     = "Product"
	ColClass       = "Kl"
	ColNote        = "Opmerking"
)

const utf8BOM = "\ufeff"

type Parser struct {
	logger    logger.Logger
	delimiter rune
}

func New(logger logger.Logger, delimiter rune) *Parser {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Parser{logger: logger, delimiter: delimiter}
}

// Result is the outcome of parsing one export.
type Result struct {
	Trips   []models.Trip
	Rows    int
	Dropped int // rows with an unparseable date
}

func (p *Parser) ParseFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trips file: %w", err)
	}
	defer f.Close()

	res, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return res, nil
}

func (p *Parser) Parse(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.delimiter
	reader.FieldsPerRecord = -1 // Variable number of fields

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	headerMap := make(map[string]int)
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		headerMap[strings.TrimSpace(h)] = i
	}
	if _, ok := headerMap[ColDate]; !ok {
		return nil, fmt.Errorf("missing %q column in header", ColDate)
	}

	res := &Result{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record %d: %w", res.Rows+1, err)
		}

		index := res.Rows
		res.Rows++

		trip, err := p.parseTrip(record, headerMap, index)
		if err != nil {
			res.Dropped++
			p.logger.Debug("Skipping row with unparseable date", "row", index, "error", err)
			continue
		}
		res.Trips = append(res.Trips, trip)
	}

	p.logger.Info("Trips parsed",
		"rows", res.Rows,
		"trips", len(res.Trips),
		"dropped", res.Dropped)

	return res, nil
}

func (p *Parser) getString(record []string, headerMap map[string]int, field string) string {
	if idx, ok := headerMap[field]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}

func (p *Parser) parseTrip(record []string, headerMap map[string]int, index int) (models.Trip, error) {
	rawDate := p.getString(record, headerMap, ColDate)
	date, err := models.ParseDate(rawDate)
	if err != nil {
		return models.Trip{}, err
	}

	checkIn := p.getString(record, headerMap, ColCheckIn)

	return models.Trip{
		// Date and check-in alone are not unique in real exports
		ID:          rawDate + "-" + checkIn + "-" + strconv.Itoa(index),
		Date:        date,
		CheckIn:     checkIn,
		CheckOut:    p.getString(record, headerMap, ColCheckOut),
		Origin:      p.getString(record, headerMap, ColOrigin),
		Destination: p.getString(record, headerMap, ColDestination),
		Transaction: p.getString(record, headerMap, ColTransaction),
		Product:     p.getString(record, headerMap, ColProduct),
		Class:       p.getString(record, headerMap, ColClass),
		Note:        p.getString(record, headerMap, ColNote),
	}, nil
}

// StopNames lists every origin and destination name in first-seen order,
// without duplicates or blanks.
func StopNames(trips []models.Trip) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}
	for _, t := range trips {
		add(t.Origin)
		add(t.Destination)
	}
	return names
}
