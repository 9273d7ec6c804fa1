package main

import (
	"context"
	"flag"
	"fmt"

	"go.uber.org/zap"

	"mibel-dam/internal/analysis"
	"mibel-dam/internal/clearing"
	"mibel-dam/internal/config"
	"mibel-dam/internal/model"
	"mibel-dam/internal/report"
	"mibel-dam/internal/solver"
)

// Demo:
// - Build a synthetic 24-hour bid day in code (no input files)
// - Clear it and print per-hour prices and flows
// - Optionally write the session CSV to show how the pieces fit together
func main() {
	outCSV := flag.String("out", "", "Optional path to write the session CSV")
	capMW := flag.Float64("cap", 400, "Interconnector capacity in each direction (MW)")
	flag.Parse()

	log := zap.NewNop()
	cfg := config.Default()

	day, err := model.PartitionByHour(demoBids())
	if err != nil {
		panic(err)
	}
	caps := model.UniformCapacities(model.InterconnectorCapacity{
		PTToESMW: *capMW,
		ESToPTMW: *capMW,
	})

	engine := clearing.New(solver.NewSimplex(), log, cfg.EngineParams())
	result, err := engine.ClearDay(context.Background(), day, caps, cfg.Workers)
	if err != nil {
		panic(err)
	}

	fmt.Printf("%-5s %-10s %-10s %-10s %-10s\n", "hour", "price_pt", "price_es", "flow_mw", "congested")
	for h, o := range result.Hours {
		if !o.OK() {
			fmt.Printf("%-5d %s: %v\n", h, o.Err.Kind, o.Err.Err)
			continue
		}
		r := o.Result
		fmt.Printf("%-5d %-10.2f %-10.2f %-10.2f %-10v\n", h, r.PricePT, r.PriceES, r.FlowMW, r.Congested)
	}

	summary := analysis.Summarize(result, cfg.MandatoryPriceEURMWh)
	fmt.Printf("\navg PT=%.2f ES=%.2f EUR/MWh, %d congested hours, welfare %.0f EUR\n",
		summary.PT.AvgPriceEURMWh, summary.ES.AvgPriceEURMWh,
		summary.CongestedHours, summary.TotalWelfareEUR)

	if *outCSV != "" {
		if err := report.WriteSessionCSV(*outCSV, result, cfg.MandatoryPriceEURMWh); err != nil {
			panic(err)
		}
		fmt.Printf("wrote %s\n", *outCSV)
	}
}

// demoBids builds a day with a morning/evening demand peak in ES and
// cheap baseload in PT, so the interconnector congests during peak hours.
func demoBids() []model.Bid {
	var bids []model.Bid
	for h := 0; h < model.HoursPerDay; h++ {
		peak := 0.0
		if h >= 8 && h <= 10 || h >= 18 && h <= 21 {
			peak = 1.0
		}

		// PT: cheap hydro baseload plus a mid-priced thermal unit.
		bids = append(bids,
			model.Bid{Zone: model.ZonePT, Direction: model.Supply, Hour: h,
				PriceEURMWh: 18, QuantityMWh: 900, Agent: "HIDRO-PT", Technology: "HYDRO"},
			model.Bid{Zone: model.ZonePT, Direction: model.Supply, Hour: h,
				PriceEURMWh: 55, QuantityMWh: 600, Agent: "TERMO-PT", Technology: "CCGT"},
			model.Bid{Zone: model.ZonePT, Direction: model.Demand, Hour: h,
				PriceEURMWh: 120, QuantityMWh: 700 + 150*peak, Agent: "COMER-PT"},
		)

		// ES: pricier supply and a bigger, peakier demand.
		bids = append(bids,
			model.Bid{Zone: model.ZoneES, Direction: model.Supply, Hour: h,
				PriceEURMWh: 42, QuantityMWh: 1200, Agent: "GEN-ES", Technology: "WIND"},
			model.Bid{Zone: model.ZoneES, Direction: model.Supply, Hour: h,
				PriceEURMWh: 75, QuantityMWh: 800, Agent: "GAS-ES", Technology: "CCGT"},
			model.Bid{Zone: model.ZoneES, Direction: model.Demand, Hour: h,
				PriceEURMWh: 150, QuantityMWh: 1500 + 600*peak, Agent: "COMER-ES"},
		)
	}
	return bids
}
