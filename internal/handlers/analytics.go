package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kosarica/grooming-service/internal/alerts"
	"github.com/kosarica/grooming-service/internal/heatmap"
	"github.com/kosarica/grooming-service/internal/opportunity"
	"github.com/kosarica/grooming-service/internal/types"
)

// Dashboard runs every analysis over the period
// @Summary Analytics dashboard
// @Description Forecast, RFM segments, revenue heatmap, alerts and external signals for one period
// @Tags analytics
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD or RFC 3339), defaults to 30 days ago"
// @Param to query string false "End date, inclusive when a bare date, defaults to now"
// @Success 200 {object} analytics.Dashboard
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /analytics/dashboard [get]
func (h *Handler) Dashboard(c *gin.Context) {
	p, err := h.period(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	d, err := h.service.Dashboard(c.Request.Context(), p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Forecast projects revenue seven days ahead
// @Summary Revenue forecast
// @Tags analytics
// @Produce json
// @Param from query string false "Start date"
// @Param to query string false "End date"
// @Success 200 {object} forecast.Result
// @Failure 400 {object} map[string]string "Bad request"
// @Router /analytics/forecast [get]
func (h *Handler) Forecast(c *gin.Context) {
	p, err := h.period(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	res, err := h.service.Forecast(c.Request.Context(), p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Segments classifies clients by recency, frequency and spend
// @Summary Client segments
// @Tags analytics
// @Produce json
// @Param from query string false "Start date"
// @Param to query string false "End date"
// @Success 200 {object} analytics.Segments
// @Router /analytics/segments [get]
func (h *Handler) Segments(c *gin.Context) {
	p, err := h.period(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	res, err := h.service.Segments(c.Request.Context(), p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HeatmapResponse is the heatmap with its peak and quietest day
type HeatmapResponse struct {
	Days     heatmap.Heatmap `json:"days"`
	Busiest  *heatmap.Peak   `json:"busiest"`
	Quietest *string         `json:"quietest"`
	Total    float64         `json:"total"`
}

// Heatmap returns revenue by weekday and block
// @Summary Revenue heatmap
// @Tags analytics
// @Produce json
// @Param from query string false "Start date"
// @Param to query string false "End date"
// @Success 200 {object} HeatmapResponse
// @Router /analytics/heatmap [get]
func (h *Handler) Heatmap(c *gin.Context) {
	p, err := h.period(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	hm, err := h.service.Heatmap(c.Request.Context(), p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp := HeatmapResponse{Days: hm, Total: hm.Total()}
	if peak, ok := hm.Busiest(); ok {
		resp.Busiest = &peak
	}
	if day, ok := hm.Quietest(); ok {
		resp.Quietest = &day
	}
	c.JSON(http.StatusOK, resp)
}

// AlertsResponse wraps the generated alerts
type AlertsResponse struct {
	Alerts []types.Alert `json:"alerts" jsonschema:"required"`
	Total  int           `json:"total" jsonschema:"required"`
}

// Alerts evaluates every alert rule over the period
// @Summary Business alerts
// @Tags analytics
// @Produce json
// @Param from query string false "Start date"
// @Param to query string false "End date"
// @Success 200 {object} AlertsResponse
// @Router /analytics/alerts [get]
func (h *Handler) Alerts(c *gin.Context) {
	p, err := h.period(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	out, err := h.service.Alerts(c.Request.Context(), p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, AlertsResponse{Alerts: out, Total: len(out)})
}

// EvaluateAlerts runs the alert rules over a snapshot sent by the caller
// @Summary Evaluate alerts on a snapshot
// @Tags analytics
// @Accept json
// @Produce json
// @Param request body alerts.Input true "Snapshot"
// @Success 200 {object} AlertsResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Router /analytics/alerts/evaluate [post]
func (h *Handler) EvaluateAlerts(c *gin.Context) {
	var in alerts.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondError(c, ErrInvalidRequest{Field: "body", Reason: err.Error()})
		return
	}
	out := h.service.EvaluateAlerts(in)
	c.JSON(http.StatusOK, AlertsResponse{Alerts: out, Total: len(out)})
}

// OpportunityRequest carries the signals to score
type OpportunityRequest struct {
	Weather types.Weather `json:"weather"`
	Traffic types.Traffic `json:"traffic"`
	Trends  types.Trends  `json:"trends"`
}

// Opportunity scores caller-supplied signals
// @Summary Score a business opportunity
// @Tags analytics
// @Accept json
// @Produce json
// @Param request body OpportunityRequest true "Signals"
// @Success 200 {object} opportunity.Result
// @Failure 400 {object} map[string]string "Bad request"
// @Router /analytics/opportunity [post]
func (h *Handler) Opportunity(c *gin.Context) {
	var req OpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, ErrInvalidRequest{Field: "body", Reason: err.Error()})
		return
	}
	c.JSON(http.StatusOK, opportunity.Score(req.Weather, req.Traffic, req.Trends))
}

// Signals returns weather, traffic and demand at the shop
// @Summary External signals
// @Description Live values when the upstream APIs answer, cached or built-in values otherwise
// @Tags signals
// @Produce json
// @Success 200 {object} signals.Snapshot
// @Router /signals [get]
func (h *Handler) Signals(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Signals(c.Request.Context()))
}
