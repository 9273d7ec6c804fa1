// Package report serializes daily clearing results: the per-hour session
// sheet, the per-bid trade sheet and the PT-vs-ES price chart. These are
// export collaborators of the core; all paths are explicit parameters.
package report

import (
	"encoding/csv"
	"os"
	"strconv"

	"mibel-dam/internal/analysis"
	"mibel-dam/internal/clearing"
	"mibel-dam/internal/model"
)

// WriteSessionCSV writes one row per hour: prices, flows, totals and
// welfare for cleared hours; a status and the error text for failed
// hours, with the numeric cells left blank rather than zero-filled.
func WriteSessionCSV(path string, day *clearing.DayResult, mandatoryPriceEURMWh float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"hour",
		"status",
		"price_pt_eur_mwh",
		"price_es_eur_mwh",
		"congested",
		"flow_pt_to_es_mw",
		"flow_es_to_pt_mw",
		"total_supply_mwh",
		"total_demand_mwh",
		"producer_surplus_eur",
		"consumer_surplus_eur",
		"total_welfare_eur",
		"congestion_rent_eur",
		"error",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for h, o := range day.Hours {
		var row []string
		if o.OK() {
			res := o.Result
			welfare := analysis.Compute(res, mandatoryPriceEURMWh)
			row = []string{
				strconv.Itoa(h),
				"CLEARED",
				fmtFloat(res.PricePT),
				fmtFloat(res.PriceES),
				fmtBool(res.Congested),
				fmtFloat(res.FlowPTToES()),
				fmtFloat(res.FlowESToPT()),
				fmtFloat(res.TotalSupplyMWh),
				fmtFloat(res.TotalDemandMWh),
				fmtFloat(welfare.ProducerSurplusEUR),
				fmtFloat(welfare.ConsumerSurplusEUR),
				fmtFloat(welfare.TotalWelfareEUR),
				fmtFloat(welfare.CongestionRentEUR),
				"",
			}
		} else {
			row = []string{
				strconv.Itoa(h),
				o.Err.Kind.String(),
				"", "", "", "", "", "", "", "", "", "", "",
				o.Err.Error(),
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteTradesCSV writes one row per bid of the day: bid terms plus the
// clearing outcome. Bids of failed hours keep their terms and the hour's
// status, with the outcome cells blank.
func WriteTradesCSV(path string, bids model.DayBids, day *clearing.DayResult, tol float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"hour",
		"zone",
		"direction",
		"agent",
		"unit",
		"technology",
		"bid_price_eur_mwh",
		"bid_energy_mwh",
		"status",
		"was_traded",
		"clearing_price_eur_mwh",
		"traded_energy_mwh",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for h := 0; h < model.HoursPerDay; h++ {
		o := day.Hours[h]
		for j, b := range bids[h].All() {
			row := []string{
				strconv.Itoa(h),
				string(b.Zone),
				string(b.Direction),
				b.Agent,
				b.Unit,
				b.Technology,
				fmtFloat(b.PriceEURMWh),
				fmtFloat(b.QuantityMWh),
			}
			if o.OK() {
				c := o.Result.Clearings[j]
				row = append(row,
					"CLEARED",
					fmtBool(c.Traded(tol)),
					fmtFloat(o.Result.ZonePrice(b.Zone)),
					fmtFloat(c.ClearedMWh),
				)
			} else {
				row = append(row, o.Err.Kind.String(), "", "", "")
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

func fmtBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
