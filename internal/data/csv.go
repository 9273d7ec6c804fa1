package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"mibel-dam/internal/model"
)

// RowError identifies a malformed input row by its 1-based line number.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// LoadBidsCSV reads a day's bids from a CSV file. The expected header is
//
//	hour,zone,direction,price_eur_mwh,quantity_mwh[,agent,unit,technology]
//
// Headers are matched case-insensitively after trimming, and the column
// names of the original MIBEL workbook are accepted as aliases (PERIOD is
// 1-based and shifted to hour 0..23; COUNTRY, TRANSACTION TYPE with
// SELL/BUY, BID PRICE (EUR/MWH), BID ENERGY (MWH)).
//
// Every malformed row is rejected here, before the bids can reach the
// clearing core; the returned error joins one RowError per bad line.
func LoadBidsCSV(path string) ([]model.Bid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: no bid rows", path)
	}

	cols, err := mapBidHeader(records[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var bids []model.Bid
	var rowErrs []error
	for i, rec := range records[1:] {
		line := i + 2
		bid, err := parseBidRow(rec, cols)
		if err != nil {
			rowErrs = append(rowErrs, &RowError{Line: line, Err: err})
			continue
		}
		bids = append(bids, bid)
	}
	if len(rowErrs) > 0 {
		return nil, errors.Join(rowErrs...)
	}
	return bids, nil
}

type bidColumns struct {
	hour, zone, direction, price, quantity int
	agent, unit, technology                int
	hourIsPeriod                           bool
}

func mapBidHeader(header []string) (bidColumns, error) {
	cols := bidColumns{
		hour: -1, zone: -1, direction: -1, price: -1, quantity: -1,
		agent: -1, unit: -1, technology: -1,
	}
	for i, raw := range header {
		switch normalize(raw) {
		case "hour":
			cols.hour = i
		case "period":
			cols.hour, cols.hourIsPeriod = i, true
		case "zone", "country":
			cols.zone = i
		case "direction", "transaction type":
			cols.direction = i
		case "price_eur_mwh", "price", "bid price (eur/mwh)":
			cols.price = i
		case "quantity_mwh", "quantity", "bid energy (mwh)":
			cols.quantity = i
		case "agent":
			cols.agent = i
		case "unit":
			cols.unit = i
		case "technology":
			cols.technology = i
		}
	}
	if cols.hour < 0 || cols.zone < 0 || cols.direction < 0 || cols.price < 0 || cols.quantity < 0 {
		return cols, errors.New("header must contain hour, zone, direction, price_eur_mwh, quantity_mwh")
	}
	return cols, nil
}

func parseBidRow(rec []string, cols bidColumns) (model.Bid, error) {
	field := func(i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	hour, err := strconv.Atoi(field(cols.hour))
	if err != nil {
		return model.Bid{}, fmt.Errorf("bad hour %q", field(cols.hour))
	}
	if cols.hourIsPeriod {
		hour--
	}
	zone, err := model.ParseZone(field(cols.zone))
	if err != nil {
		return model.Bid{}, err
	}
	dir, err := model.ParseDirection(field(cols.direction))
	if err != nil {
		return model.Bid{}, err
	}
	price, err := strconv.ParseFloat(field(cols.price), 64)
	if err != nil {
		return model.Bid{}, fmt.Errorf("bad price %q", field(cols.price))
	}
	qty, err := strconv.ParseFloat(field(cols.quantity), 64)
	if err != nil {
		return model.Bid{}, fmt.Errorf("bad quantity %q", field(cols.quantity))
	}

	bid := model.Bid{
		Zone:        zone,
		Direction:   dir,
		Hour:        hour,
		PriceEURMWh: price,
		QuantityMWh: qty,
		Agent:       field(cols.agent),
		Unit:        field(cols.unit),
		Technology:  field(cols.technology),
	}
	if err := bid.Validate(); err != nil {
		return model.Bid{}, err
	}
	return bid, nil
}

// LoadCapacitiesCSV reads one interconnector capacity pair per hour from
// a CSV with header hour,pt_to_es_mw,es_to_pt_mw. Every hour 0..23 must
// appear exactly once.
func LoadCapacitiesCSV(path string) (model.DayCapacities, error) {
	var day model.DayCapacities

	f, err := os.Open(path)
	if err != nil {
		return day, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return day, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) < 2 {
		return day, fmt.Errorf("%s: no capacity rows", path)
	}

	idx := map[string]int{}
	for i, raw := range records[0] {
		idx[normalize(raw)] = i
	}
	hCol, ok1 := idx["hour"]
	ptCol, ok2 := idx["pt_to_es_mw"]
	esCol, ok3 := idx["es_to_pt_mw"]
	if !ok1 || !ok2 || !ok3 {
		return day, fmt.Errorf("%s: header must contain hour, pt_to_es_mw, es_to_pt_mw", path)
	}

	seen := [model.HoursPerDay]bool{}
	var rowErrs []error
	for i, rec := range records[1:] {
		line := i + 2
		hour, err := strconv.Atoi(strings.TrimSpace(rec[hCol]))
		if err != nil || hour < 0 || hour >= model.HoursPerDay {
			rowErrs = append(rowErrs, &RowError{Line: line, Err: fmt.Errorf("bad hour %q", rec[hCol])})
			continue
		}
		if seen[hour] {
			rowErrs = append(rowErrs, &RowError{Line: line, Err: fmt.Errorf("duplicate hour %d", hour)})
			continue
		}
		ptToES, err1 := strconv.ParseFloat(strings.TrimSpace(rec[ptCol]), 64)
		esToPT, err2 := strconv.ParseFloat(strings.TrimSpace(rec[esCol]), 64)
		if err1 != nil || err2 != nil {
			rowErrs = append(rowErrs, &RowError{Line: line, Err: errors.New("bad capacity value")})
			continue
		}
		c := model.InterconnectorCapacity{PTToESMW: ptToES, ESToPTMW: esToPT}
		if err := c.Validate(); err != nil {
			rowErrs = append(rowErrs, &RowError{Line: line, Err: err})
			continue
		}
		seen[hour] = true
		day[hour] = c
	}
	if len(rowErrs) > 0 {
		return day, errors.Join(rowErrs...)
	}
	for h, ok := range seen {
		if !ok {
			return day, fmt.Errorf("%s: missing capacity for hour %d", path, h)
		}
	}
	return day, nil
}

// ApplyTieBreak perturbs each bid price by epsilon×U[0,1) with a seeded
// generator, so equal-priced bids get a deterministic strict ordering.
// Returns a new slice; the input bids are never mutated. A non-positive
// epsilon returns the input unchanged.
func ApplyTieBreak(bids []model.Bid, epsilonEURMWh float64, seed int64) []model.Bid {
	if epsilonEURMWh <= 0 {
		return bids
	}
	rng := rand.New(rand.NewSource(seed))
	out := make([]model.Bid, len(bids))
	for i, b := range bids {
		b.PriceEURMWh += epsilonEURMWh * rng.Float64()
		out[i] = b
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(strings.TrimSpace(s)), " "))
}
