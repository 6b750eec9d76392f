package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kosarica/grooming-service/internal/analytics"
	"github.com/kosarica/grooming-service/internal/calendar"
	"github.com/kosarica/grooming-service/internal/classification"
	"github.com/kosarica/grooming-service/internal/live"
	"github.com/kosarica/grooming-service/internal/types"
)

// Pinger reports whether the database is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the /internal API on top of the analytics service
type Handler struct {
	service *analytics.Service
	hub     *live.Hub
	db      Pinger
	grid    calendar.Grid
	logger  zerolog.Logger
}

// New creates a handler. hub and db may be nil.
func New(service *analytics.Service, hub *live.Hub, db Pinger, grid calendar.Grid, logger zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		hub:     hub,
		db:      db,
		grid:    grid,
		logger:  logger.With().Str("component", "handlers").Logger(),
	}
}

// Register mounts every route on r, which is expected to be the /internal
// group
func (h *Handler) Register(r gin.IRouter) {
	a := r.Group("/analytics")
	a.GET("/dashboard", h.Dashboard)
	a.GET("/forecast", h.Forecast)
	a.GET("/segments", h.Segments)
	a.GET("/heatmap", h.Heatmap)
	a.GET("/alerts", h.Alerts)
	a.POST("/alerts/evaluate", h.EvaluateAlerts)
	a.POST("/opportunity", h.Opportunity)

	r.GET("/signals", h.Signals)
	r.GET("/availability", h.Availability)

	cal := r.Group("/calendar")
	cal.GET("/events", h.CalendarEvents)
	cal.POST("/normalize", h.NormalizeAppointments)
	cal.POST("/reschedule", h.Reschedule)
	cal.POST("/layout", h.Layout)

	cl := r.Group("/classification")
	cl.POST("/classify", h.Classify)
	cl.GET("/rules", h.GetRules)
	cl.PUT("/rules", h.PutRules)
	r.POST("/transactions/:id/classify", h.ClassifyTransaction)

	r.PATCH("/catalog/products/:id/category", h.UpdateProductCategory)
	r.GET("/reports/comprehensive", h.ComprehensiveReport)

	if h.hub != nil {
		r.GET("/ws", live.ServeWS(h.hub))
	}
}

// ErrInvalidRequest reports a request parameter that cannot be used
type ErrInvalidRequest struct {
	Field  string
	Reason string
}

func (e ErrInvalidRequest) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// respondError maps err to a status code and writes {"error": ...}
func (h *Handler) respondError(c *gin.Context, err error) {
	var invalidReq ErrInvalidRequest
	var invalidRule classification.ErrInvalidRule
	switch {
	case errors.As(err, &invalidReq), errors.As(err, &invalidRule):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, types.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, context.Canceled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request cancelled"})
	default:
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

const dateLayout = "2006-01-02"

// parseTime accepts RFC 3339 or a bare date in the business location.
// endOfDay moves a bare date to the start of the next day.
func parseTime(field, value string, loc *time.Location, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), nil
	}
	t, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, ErrInvalidRequest{Field: field, Reason: "expected YYYY-MM-DD or RFC 3339"}
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

// PeriodQuery is the from/to pair accepted by the analytics routes
type PeriodQuery struct {
	From string `form:"from" json:"from,omitempty" jsonschema:"description=Start date (YYYY-MM-DD or RFC 3339)"`
	To   string `form:"to" json:"to,omitempty" jsonschema:"description=End date, inclusive when a bare date"`
}

// period resolves the query into a period. Missing bounds fall back to the
// trailing 30 days.
func (h *Handler) period(c *gin.Context) (analytics.Period, error) {
	var q PeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return analytics.Period{}, ErrInvalidRequest{Field: "query", Reason: err.Error()}
	}
	p := h.service.DefaultPeriod()
	loc := h.service.Location()
	if q.To != "" {
		to, err := parseTime("to", q.To, loc, true)
		if err != nil {
			return analytics.Period{}, err
		}
		p.To = to
		if q.From == "" {
			p.From = to.Add(-analytics.DefaultLookback)
		}
	}
	if q.From != "" {
		from, err := parseTime("from", q.From, loc, false)
		if err != nil {
			return analytics.Period{}, err
		}
		p.From = from
	}
	if err := p.Validate(); err != nil {
		return analytics.Period{}, ErrInvalidRequest{Field: "period", Reason: err.Error()}
	}
	return p, nil
}
