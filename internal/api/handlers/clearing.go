package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mibel-dam/internal/analysis"
	"mibel-dam/internal/api/models"
	"mibel-dam/internal/clearing"
	"mibel-dam/internal/config"
	"mibel-dam/internal/model"
	"mibel-dam/internal/solver"
)

// ClearingHandler runs full-day clearings for API clients.
type ClearingHandler struct {
	log *zap.Logger
	cfg config.Config
}

func NewClearingHandler(log *zap.Logger, cfg config.Config) *ClearingHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ClearingHandler{log: log, cfg: cfg}
}

// RunClearing handles POST /api/v1/clear.
func (h *ClearingHandler) RunClearing(c *gin.Context) {
	var req models.ClearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	bids, rowErrs := convertBids(req.Bids)
	if len(rowErrs) > 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_BIDS",
				Message: fmt.Sprintf("%d bid rows rejected", len(rowErrs)),
				Details: rowErrs,
			},
		})
		return
	}

	day, err := model.PartitionByHour(bids)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "INVALID_BIDS", Message: err.Error()},
		})
		return
	}

	caps, err := h.capacities(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "INVALID_CAPACITIES", Message: err.Error()},
		})
		return
	}

	params := h.cfg.EngineParams()
	if req.Options.MandatoryPriceEURMWh != nil {
		params.MandatoryPriceEURMWh = *req.Options.MandatoryPriceEURMWh
	}
	workers := h.cfg.Workers
	if req.Options.Workers > 0 {
		workers = req.Options.Workers
	}

	engine := clearing.New(solver.NewSimplex(), h.log, params)
	result, err := engine.ClearDay(c.Request.Context(), day, caps, workers)
	if err != nil {
		// Only defect-class failures abort a run.
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "MODELING_DEFECT", Message: err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, buildResponse(result, params, req.Options.IncludeTrades))
}

func convertBids(rows []models.BidRow) ([]model.Bid, []string) {
	bids := make([]model.Bid, 0, len(rows))
	var errs []string
	for i, r := range rows {
		zone, err := model.ParseZone(r.Zone)
		if err != nil {
			errs = append(errs, fmt.Sprintf("bid %d: %v", i, err))
			continue
		}
		dir, err := model.ParseDirection(r.Direction)
		if err != nil {
			errs = append(errs, fmt.Sprintf("bid %d: %v", i, err))
			continue
		}
		b := model.Bid{
			Zone:        zone,
			Direction:   dir,
			Hour:        r.Hour,
			PriceEURMWh: r.PriceEURMWh,
			QuantityMWh: r.QuantityMWh,
			Agent:       r.Agent,
			Unit:        r.Unit,
			Technology:  r.Technology,
		}
		if err := b.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("bid %d: %v", i, err))
			continue
		}
		bids = append(bids, b)
	}
	return bids, errs
}

func (h *ClearingHandler) capacities(req models.ClearRequest) (model.DayCapacities, error) {
	caps := h.cfg.DefaultCapacities()
	if req.DefaultCapacity != nil {
		pair := model.InterconnectorCapacity{
			PTToESMW: req.DefaultCapacity.PTToESMW,
			ESToPTMW: req.DefaultCapacity.ESToPTMW,
		}
		if err := pair.Validate(); err != nil {
			return caps, err
		}
		caps = model.UniformCapacities(pair)
	}
	for _, row := range req.Capacities {
		if row.Hour < 0 || row.Hour >= model.HoursPerDay {
			return caps, fmt.Errorf("capacity hour %d out of range", row.Hour)
		}
		pair := model.InterconnectorCapacity{PTToESMW: row.PTToESMW, ESToPTMW: row.ESToPTMW}
		if err := pair.Validate(); err != nil {
			return caps, fmt.Errorf("capacity hour %d: %w", row.Hour, err)
		}
		caps[row.Hour] = pair
	}
	return caps, nil
}

func buildResponse(day *clearing.DayResult, params clearing.Params, includeTrades bool) models.ClearResponse {
	summary := analysis.Summarize(day, params.MandatoryPriceEURMWh)
	resp := models.ClearResponse{
		Status: "ok",
		Summary: models.DaySummary{
			ClearedHours:      summary.ClearedHours,
			FailedHours:       summary.FailedHours,
			CongestedHours:    summary.CongestedHours,
			AvgPricePTEURMWh:  summary.PT.AvgPriceEURMWh,
			AvgPriceESEURMWh:  summary.ES.AvgPriceEURMWh,
			TotalTradedMWh:    summary.TotalTradedMWh,
			TotalWelfareEUR:   summary.TotalWelfareEUR,
			CongestionRentEUR: summary.CongestionRentEUR,
		},
		Hours: make([]models.HourResult, 0, model.HoursPerDay),
	}
	if summary.FailedHours > 0 {
		resp.Status = "partial"
	}

	for h, o := range day.Hours {
		hr := models.HourResult{Hour: h}
		if !o.OK() {
			hr.Status = o.Err.Kind.String()
			hr.Error = o.Err.Error()
			if o.Err.DeficitMWh > 0 {
				hr.DeficitMWh = ptr(o.Err.DeficitMWh)
			}
			resp.Hours = append(resp.Hours, hr)
			continue
		}
		res := o.Result
		hr.Status = "CLEARED"
		hr.PricePTEURMWh = ptr(res.PricePT)
		hr.PriceESEURMWh = ptr(res.PriceES)
		hr.FlowMW = ptr(res.FlowMW)
		hr.Congested = ptrBool(res.Congested)
		hr.TotalSupplyMWh = ptr(res.TotalSupplyMWh)
		hr.TotalDemandMWh = ptr(res.TotalDemandMWh)
		if includeTrades {
			hr.Trades = make([]models.TradeRow, 0, len(res.Clearings))
			for _, cl := range res.Clearings {
				hr.Trades = append(hr.Trades, models.TradeRow{
					Zone:                string(cl.Bid.Zone),
					Direction:           string(cl.Bid.Direction),
					Agent:               cl.Bid.Agent,
					Unit:                cl.Bid.Unit,
					Technology:          cl.Bid.Technology,
					BidPriceEURMWh:      cl.Bid.PriceEURMWh,
					BidEnergyMWh:        cl.Bid.QuantityMWh,
					WasTraded:           cl.Traded(params.Tolerance),
					ClearingPriceEURMWh: res.ZonePrice(cl.Bid.Zone),
					TradedEnergyMWh:     cl.ClearedMWh,
				})
			}
		}
		resp.Hours = append(resp.Hours, hr)
	}
	return resp
}

func ptr(v float64) *float64 { return &v }
func ptrBool(v bool) *bool   { return &v }
