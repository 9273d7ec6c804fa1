package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mibel-dam/internal/clearing"
	"mibel-dam/internal/model"
)

func clearedHour() *model.HourlyResult {
	return &model.HourlyResult{
		Hour:    0,
		PricePT: 40,
		PriceES: 40,
		FlowMW:  20,
		Clearings: []model.BidClearing{
			{Bid: model.Bid{Zone: model.ZonePT, Direction: model.Supply, PriceEURMWh: 30, QuantityMWh: 100}, ClearedMWh: 100},
			{Bid: model.Bid{Zone: model.ZonePT, Direction: model.Demand, PriceEURMWh: 50, QuantityMWh: 80}, ClearedMWh: 80},
			{Bid: model.Bid{Zone: model.ZoneES, Direction: model.Demand, PriceEURMWh: 45, QuantityMWh: 20}, ClearedMWh: 20},
		},
		TotalSupplyMWh: 100,
		TotalDemandMWh: 100,
	}
}

func TestComputeSurpluses(t *testing.T) {
	w := Compute(clearedHour(), 3880)

	// Producer: (40-30)*100. Consumer: (50-40)*80 + (45-40)*20.
	require.InDelta(t, 1000, w.ProducerSurplusEUR, 1e-9)
	require.InDelta(t, 900, w.ConsumerSurplusEUR, 1e-9)
	require.InDelta(t, 1900, w.TotalWelfareEUR, 1e-9)
	require.InDelta(t, 0, w.CongestionRentEUR, 1e-9)
}

func TestComputeCongestionRent(t *testing.T) {
	res := clearedHour()
	res.PriceES = 100

	w := Compute(res, 3880)
	require.InDelta(t, 20*60, w.CongestionRentEUR, 1e-9)
}

// Price-taking load has no stated value and must not inflate consumer
// surplus with its artificial bid price.
func TestComputeExcludesMandatoryDemand(t *testing.T) {
	res := &model.HourlyResult{
		PricePT: 30,
		PriceES: 30,
		Clearings: []model.BidClearing{
			{Bid: model.Bid{Zone: model.ZonePT, Direction: model.Supply, PriceEURMWh: 30, QuantityMWh: 40}, ClearedMWh: 40},
			{Bid: model.Bid{Zone: model.ZonePT, Direction: model.Demand, PriceEURMWh: 4000, QuantityMWh: 40}, ClearedMWh: 40},
		},
	}

	w := Compute(res, 3880)
	require.InDelta(t, 0, w.ConsumerSurplusEUR, 1e-9)

	// With the threshold disabled the same bid counts as ordinary demand.
	w = Compute(res, -1)
	require.InDelta(t, (4000-30)*40, w.ConsumerSurplusEUR, 1e-9)
}

func TestComputeIgnoresRejectedBids(t *testing.T) {
	res := &model.HourlyResult{
		PricePT: 40,
		PriceES: 40,
		Clearings: []model.BidClearing{
			{Bid: model.Bid{Zone: model.ZonePT, Direction: model.Supply, PriceEURMWh: 90, QuantityMWh: 100}, ClearedMWh: 0},
		},
	}
	w := Compute(res, 3880)
	require.Zero(t, w.ProducerSurplusEUR)
	require.Zero(t, w.TotalWelfareEUR)
}

func TestSummarize(t *testing.T) {
	day := &clearing.DayResult{}
	for h := 0; h < model.HoursPerDay; h++ {
		res := clearedHour()
		res.Hour = h
		day.Hours[h].Result = res
	}
	// Spread the prices and congest one hour.
	day.Hours[5].Result.PricePT = 20
	day.Hours[5].Result.PriceES = 80
	day.Hours[5].Result.Congested = true
	// Fail one hour.
	day.Hours[9] = clearing.HourOutcome{Err: &clearing.HourError{
		Hour: 9, Kind: clearing.KindInfeasible,
	}}

	s := Summarize(day, 3880)

	require.Equal(t, 23, s.ClearedHours)
	require.Equal(t, 1, s.FailedHours)
	require.Equal(t, 1, s.CongestedHours)

	require.InDelta(t, (22*40+20)/23.0, s.PT.AvgPriceEURMWh, 1e-9)
	require.Equal(t, 20.0, s.PT.MinPriceEURMWh)
	require.Equal(t, 40.0, s.PT.MaxPriceEURMWh)
	require.Equal(t, 80.0, s.ES.MaxPriceEURMWh)

	require.InDelta(t, 23*100, s.TotalTradedMWh, 1e-9)
	require.Greater(t, s.CongestionRentEUR, 0.0)
	require.InDelta(t, s.TotalWelfareEUR, s.ProducerSurplusEUR+s.ConsumerSurplusEUR, 1e-9)
}

func TestSummarizeAllFailed(t *testing.T) {
	day := &clearing.DayResult{}
	for h := 0; h < model.HoursPerDay; h++ {
		day.Hours[h].Err = &clearing.HourError{Hour: h, Kind: clearing.KindValidation}
	}

	s := Summarize(day, 3880)
	require.Zero(t, s.ClearedHours)
	require.Equal(t, model.HoursPerDay, s.FailedHours)
	require.Zero(t, s.PT.MinPriceEURMWh)
	require.Zero(t, s.ES.MaxPriceEURMWh)
}
