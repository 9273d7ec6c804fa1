package models

// ClearResponse is the outcome of a 24-hour clearing run.
type ClearResponse struct {
	Status  string       `json:"status"` // "ok" or "partial"
	Summary DaySummary   `json:"summary"`
	Hours   []HourResult `json:"hours"`
}

// HourResult reports one hour. Price and flow fields are pointers so a
// failed hour serializes as null, never as a misleading zero.
type HourResult struct {
	Hour   int    `json:"hour"`
	Status string `json:"status"` // CLEARED, INFEASIBLE, SOLVER_FAILURE, INVALID_INPUT
	Error  string `json:"error,omitempty"`

	PricePTEURMWh *float64 `json:"price_pt_eur_mwh,omitempty"`
	PriceESEURMWh *float64 `json:"price_es_eur_mwh,omitempty"`
	FlowMW        *float64 `json:"flow_mw,omitempty"`
	Congested     *bool    `json:"congested,omitempty"`

	TotalSupplyMWh *float64 `json:"total_supply_mwh,omitempty"`
	TotalDemandMWh *float64 `json:"total_demand_mwh,omitempty"`
	DeficitMWh     *float64 `json:"deficit_mwh,omitempty"`

	Trades []TradeRow `json:"trades,omitempty"`
}

type TradeRow struct {
	Zone                string  `json:"zone"`
	Direction           string  `json:"direction"`
	Agent               string  `json:"agent,omitempty"`
	Unit                string  `json:"unit,omitempty"`
	Technology          string  `json:"technology,omitempty"`
	BidPriceEURMWh      float64 `json:"bid_price_eur_mwh"`
	BidEnergyMWh        float64 `json:"bid_energy_mwh"`
	WasTraded           bool    `json:"was_traded"`
	ClearingPriceEURMWh float64 `json:"clearing_price_eur_mwh"`
	TradedEnergyMWh     float64 `json:"traded_energy_mwh"`
}

// DaySummary aggregates the cleared hours.
type DaySummary struct {
	ClearedHours   int `json:"cleared_hours"`
	FailedHours    int `json:"failed_hours"`
	CongestedHours int `json:"congested_hours"`

	AvgPricePTEURMWh float64 `json:"avg_price_pt_eur_mwh"`
	AvgPriceESEURMWh float64 `json:"avg_price_es_eur_mwh"`

	TotalTradedMWh    float64 `json:"total_traded_mwh"`
	TotalWelfareEUR   float64 `json:"total_welfare_eur"`
	CongestionRentEUR float64 `json:"congestion_rent_eur"`
}

// ErrorResponse is the envelope for request-level failures.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}
