package model

// BidClearing pairs a bid with its cleared quantity. Partial acceptance is
// allowed, so ClearedMWh is anywhere in [0, bid quantity].
type BidClearing struct {
	Bid        Bid
	ClearedMWh float64
}

// Traded reports whether the bid cleared a meaningful quantity.
func (c BidClearing) Traded(tol float64) bool {
	return c.ClearedMWh > tol
}

// HourlyResult is the cleared outcome of one hour. Created by the result
// extractor; immutable thereafter.
//
// FlowMW is signed: positive flows PT→ES, negative ES→PT.
type HourlyResult struct {
	Hour int

	PricePT float64
	PriceES float64

	FlowMW    float64
	Congested bool

	// Clearings is aligned with the hour's bid set (insertion order).
	Clearings []BidClearing

	TotalSupplyMWh float64
	TotalDemandMWh float64
}

// ZonePrice returns the uniform clearing price of one zone.
func (r *HourlyResult) ZonePrice(z Zone) float64 {
	if z == ZonePT {
		return r.PricePT
	}
	return r.PriceES
}

// FlowPTToES and FlowESToPT split the signed flow into the two directional
// magnitudes used by the session export.
func (r *HourlyResult) FlowPTToES() float64 {
	if r.FlowMW > 0 {
		return r.FlowMW
	}
	return 0
}

func (r *HourlyResult) FlowESToPT() float64 {
	if r.FlowMW < 0 {
		return -r.FlowMW
	}
	return 0
}
