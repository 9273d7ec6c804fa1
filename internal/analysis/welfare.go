package analysis

import (
	"math"

	"mibel-dam/internal/model"
)

// Welfare is the per-hour surplus accounting of a cleared hour.
//
// Mandatory (price-taking) demand carries no stated value, so it is
// excluded from consumer surplus, matching the usual convention for
// inelastic load.
type Welfare struct {
	ProducerSurplusEUR float64
	ConsumerSurplusEUR float64
	TotalWelfareEUR    float64
	CongestionRentEUR  float64
}

// Compute derives surpluses and congestion rent from a cleared hour.
// mandatoryPriceEURMWh is the price-taking threshold used at clearing
// time (≤ 0 if disabled).
func Compute(res *model.HourlyResult, mandatoryPriceEURMWh float64) Welfare {
	var w Welfare
	for _, c := range res.Clearings {
		if c.ClearedMWh <= 0 {
			continue
		}
		price := res.ZonePrice(c.Bid.Zone)
		switch {
		case c.Bid.Direction == model.Supply:
			w.ProducerSurplusEUR += (price - c.Bid.PriceEURMWh) * c.ClearedMWh
		case mandatoryPriceEURMWh > 0 && c.Bid.PriceEURMWh >= mandatoryPriceEURMWh:
			// price-taking load, no stated value
		default:
			w.ConsumerSurplusEUR += (c.Bid.PriceEURMWh - price) * c.ClearedMWh
		}
	}
	w.TotalWelfareEUR = w.ProducerSurplusEUR + w.ConsumerSurplusEUR
	w.CongestionRentEUR = math.Abs(res.FlowMW) * math.Abs(res.PricePT-res.PriceES)
	return w
}
