package analysis

import (
	"math"

	"mibel-dam/internal/clearing"
)

// ZoneStats aggregates one zone's prices over the cleared hours of a day.
type ZoneStats struct {
	AvgPriceEURMWh float64
	MinPriceEURMWh float64
	MaxPriceEURMWh float64
}

// DaySummary condenses a 24-hour session for logs and API responses.
type DaySummary struct {
	ClearedHours   int
	FailedHours    int
	CongestedHours int

	PT ZoneStats
	ES ZoneStats

	TotalTradedMWh     float64
	TotalWelfareEUR    float64
	CongestionRentEUR  float64
	ProducerSurplusEUR float64
	ConsumerSurplusEUR float64
}

// Summarize folds a day result into a DaySummary. Failed hours count but
// contribute nothing to the aggregates.
func Summarize(day *clearing.DayResult, mandatoryPriceEURMWh float64) DaySummary {
	s := DaySummary{
		PT: ZoneStats{MinPriceEURMWh: math.Inf(1), MaxPriceEURMWh: math.Inf(-1)},
		ES: ZoneStats{MinPriceEURMWh: math.Inf(1), MaxPriceEURMWh: math.Inf(-1)},
	}
	for _, o := range day.Hours {
		if !o.OK() {
			s.FailedHours++
			continue
		}
		res := o.Result
		s.ClearedHours++
		if res.Congested {
			s.CongestedHours++
		}
		accumulate(&s.PT, res.PricePT)
		accumulate(&s.ES, res.PriceES)
		s.TotalTradedMWh += res.TotalDemandMWh

		w := Compute(res, mandatoryPriceEURMWh)
		s.TotalWelfareEUR += w.TotalWelfareEUR
		s.CongestionRentEUR += w.CongestionRentEUR
		s.ProducerSurplusEUR += w.ProducerSurplusEUR
		s.ConsumerSurplusEUR += w.ConsumerSurplusEUR
	}
	if s.ClearedHours > 0 {
		s.PT.AvgPriceEURMWh /= float64(s.ClearedHours)
		s.ES.AvgPriceEURMWh /= float64(s.ClearedHours)
	} else {
		s.PT = ZoneStats{}
		s.ES = ZoneStats{}
	}
	return s
}

func accumulate(z *ZoneStats, price float64) {
	z.AvgPriceEURMWh += price
	z.MinPriceEURMWh = math.Min(z.MinPriceEURMWh, price)
	z.MaxPriceEURMWh = math.Max(z.MaxPriceEURMWh, price)
}
