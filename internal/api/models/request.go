package models

// ClearRequest asks for a full 24-hour clearing of the supplied bids.
type ClearRequest struct {
	Bids []BidRow `json:"bids" binding:"required"`

	// Capacities overrides the interconnector limits per hour; hours not
	// listed use DefaultCapacity, and DefaultCapacity itself falls back
	// to the server config.
	Capacities      []CapacityRow `json:"capacities,omitempty"`
	DefaultCapacity *CapacityPair `json:"default_capacity,omitempty"`

	Options ClearOptions `json:"options"`
}

type BidRow struct {
	Hour        int     `json:"hour"`
	Zone        string  `json:"zone"`
	Direction   string  `json:"direction"`
	PriceEURMWh float64 `json:"price_eur_mwh"`
	QuantityMWh float64 `json:"quantity_mwh"`
	Agent       string  `json:"agent,omitempty"`
	Unit        string  `json:"unit,omitempty"`
	Technology  string  `json:"technology,omitempty"`
}

type CapacityRow struct {
	Hour int `json:"hour"`
	CapacityPair
}

type CapacityPair struct {
	PTToESMW float64 `json:"pt_to_es_mw"`
	ESToPTMW float64 `json:"es_to_pt_mw"`
}

type ClearOptions struct {
	// Workers overrides the clearing pool size (1..24).
	Workers int `json:"workers,omitempty"`

	// IncludeTrades adds per-bid clearing rows to each hour's result.
	IncludeTrades bool `json:"include_trades,omitempty"`

	// MandatoryPriceEURMWh overrides the price-taking demand threshold;
	// nil keeps the server default, negative disables it.
	MandatoryPriceEURMWh *float64 `json:"mandatory_price_eur_mwh,omitempty"`
}
