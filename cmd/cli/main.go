package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"mibel-dam/internal/analysis"
	"mibel-dam/internal/clearing"
	"mibel-dam/internal/config"
	"mibel-dam/internal/data"
	"mibel-dam/internal/model"
	"mibel-dam/internal/report"
	"mibel-dam/internal/solver"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "clear":
		cmdClear(os.Args[2:])
	case "validate":
		cmdValidate(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli clear --bids bids.csv --out results/session --config examples/config.yaml [--capacity capacities.csv] [--plot results/prices.png]")
	fmt.Println("  cli validate --bids bids.csv [--capacity capacities.csv]")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - clear writes <out>_session.csv and <out>_trades.csv, one row per hour / per bid")
	fmt.Println("  - failed hours are marked INFEASIBLE/SOLVER_FAILURE in the session CSV, never zero-filled")
}

func cmdClear(args []string) {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	bidsPath := fs.String("bids", "", "Path to bids CSV (hour,zone,direction,price_eur_mwh,quantity_mwh)")
	capPath := fs.String("capacity", "", "Optional path to capacities CSV (hour,pt_to_es_mw,es_to_pt_mw)")
	cfgPath := fs.String("config", "", "Optional path to YAML config")
	outPrefix := fs.String("out", "results/market", "Output prefix for the session and trades CSVs")
	plotPath := fs.String("plot", "", "Optional path for the PT-vs-ES price chart PNG")
	_ = fs.Parse(args)

	if *bidsPath == "" {
		fmt.Fprintln(os.Stderr, "--bids is required")
		os.Exit(2)
	}

	log, err := zap.NewDevelopment()
	if err != nil {
		fatal(err)
	}
	defer log.Sync()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fatal(err)
		}
		cfg = *loaded
	}

	day, caps, err := loadInputs(*bidsPath, *capPath, cfg)
	if err != nil {
		fatal(err)
	}

	engine := clearing.New(solver.NewSimplex(), log, cfg.EngineParams())
	result, err := engine.ClearDay(context.Background(), day, caps, cfg.Workers)
	if err != nil {
		fatal(err)
	}

	if err := os.MkdirAll(filepath.Dir(*outPrefix), 0o755); err != nil {
		fatal(err)
	}
	sessionPath := *outPrefix + "_session.csv"
	tradesPath := *outPrefix + "_trades.csv"
	if err := report.WriteSessionCSV(sessionPath, result, cfg.MandatoryPriceEURMWh); err != nil {
		fatal(err)
	}
	if err := report.WriteTradesCSV(tradesPath, day, result, cfg.Tolerance); err != nil {
		fatal(err)
	}
	if *plotPath != "" {
		if err := report.WritePriceChart(*plotPath, result); err != nil {
			fatal(err)
		}
	}

	summary := analysis.Summarize(result, cfg.MandatoryPriceEURMWh)
	fmt.Printf("Cleared %d/%d hours (%d congested, %d failed)\n",
		summary.ClearedHours, model.HoursPerDay, summary.CongestedHours, summary.FailedHours)
	fmt.Printf("Avg price PT=%.2f ES=%.2f EUR/MWh | traded %.1f MWh | welfare %.2f EUR\n",
		summary.PT.AvgPriceEURMWh, summary.ES.AvgPriceEURMWh,
		summary.TotalTradedMWh, summary.TotalWelfareEUR)
	for _, h := range result.FailedHours() {
		fmt.Printf("  hour %d: %v\n", h, result.Hours[h].Err)
	}
	fmt.Printf("Wrote %s and %s\n", sessionPath, tradesPath)
}

func cmdValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	bidsPath := fs.String("bids", "", "Path to bids CSV")
	capPath := fs.String("capacity", "", "Optional path to capacities CSV")
	_ = fs.Parse(args)

	if *bidsPath == "" {
		fmt.Fprintln(os.Stderr, "--bids is required")
		os.Exit(2)
	}

	bids, err := data.LoadBidsCSV(*bidsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bids invalid:\n%v\n", err)
		os.Exit(1)
	}
	if _, err := model.PartitionByHour(bids); err != nil {
		fmt.Fprintf(os.Stderr, "bids invalid: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%d bids OK\n", len(bids))

	if *capPath != "" {
		if _, err := data.LoadCapacitiesCSV(*capPath); err != nil {
			fmt.Fprintf(os.Stderr, "capacities invalid:\n%v\n", err)
			os.Exit(1)
		}
		fmt.Println("capacities OK")
	}
}

func loadInputs(bidsPath, capPath string, cfg config.Config) (model.DayBids, model.DayCapacities, error) {
	bids, err := data.LoadBidsCSV(bidsPath)
	if err != nil {
		return model.DayBids{}, model.DayCapacities{}, fmt.Errorf("load bids: %w", err)
	}
	bids = data.ApplyTieBreak(bids, cfg.TieBreak.EpsilonEURMWh, cfg.TieBreak.Seed)

	day, err := model.PartitionByHour(bids)
	if err != nil {
		return model.DayBids{}, model.DayCapacities{}, err
	}

	caps := cfg.DefaultCapacities()
	if capPath == "" {
		capPath = cfg.Capacity.File
	}
	if capPath != "" {
		caps, err = data.LoadCapacitiesCSV(capPath)
		if err != nil {
			return model.DayBids{}, model.DayCapacities{}, fmt.Errorf("load capacities: %w", err)
		}
	}
	return day, caps, nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
