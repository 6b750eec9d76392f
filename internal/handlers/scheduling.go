package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kosarica/grooming-service/internal/calendar"
	"github.com/kosarica/grooming-service/internal/types"
)

// AvailabilityResponse lists the block statuses of one date
type AvailabilityResponse struct {
	Date   string                    `json:"date" jsonschema:"required"`
	Blocks []types.AvailabilityBlock `json:"blocks" jsonschema:"required"`
}

// Availability reports per-block booking status for a date
// @Summary Block availability
// @Description Never fails: when appointments cannot be read every block is reported available
// @Tags scheduling
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} AvailabilityResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Router /availability [get]
func (h *Handler) Availability(c *gin.Context) {
	loc := h.service.Location()
	date := time.Now().In(loc)
	if q := c.Query("date"); q != "" {
		d, err := time.ParseInLocation(dateLayout, q, loc)
		if err != nil {
			h.respondError(c, ErrInvalidRequest{Field: "date", Reason: "expected YYYY-MM-DD"})
			return
		}
		date = d
	}
	blocks := h.service.Availability(c.Request.Context(), date)
	c.JSON(http.StatusOK, AvailabilityResponse{Date: date.Format(dateLayout), Blocks: blocks})
}

// CalendarEvents returns the normalized events starting in the range
// @Summary Calendar events
// @Tags scheduling
// @Produce json
// @Param from query string false "Start date, defaults to today"
// @Param to query string false "End date, inclusive when a bare date, defaults to a week after from"
// @Success 200 {object} analytics.CalendarView
// @Failure 400 {object} map[string]string "Bad request"
// @Router /calendar/events [get]
func (h *Handler) CalendarEvents(c *gin.Context) {
	loc := h.service.Location()
	now := time.Now().In(loc)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if q := c.Query("from"); q != "" {
		t, err := parseTime("from", q, loc, false)
		if err != nil {
			h.respondError(c, err)
			return
		}
		from = t
	}
	to := from.AddDate(0, 0, 7)
	if q := c.Query("to"); q != "" {
		t, err := parseTime("to", q, loc, true)
		if err != nil {
			h.respondError(c, err)
			return
		}
		to = t
	}
	if !to.After(from) {
		h.respondError(c, ErrInvalidRequest{Field: "to", Reason: "must be after from"})
		return
	}

	view, err := h.service.Calendar(c.Request.Context(), from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// NormalizeRequest carries raw appointment rows
type NormalizeRequest struct {
	Appointments []types.RawAppointment `json:"appointments" binding:"required"`
}

// NormalizeAppointments converts raw rows into calendar events
// @Summary Normalize raw appointments
// @Tags scheduling
// @Accept json
// @Produce json
// @Param request body NormalizeRequest true "Raw rows"
// @Success 200 {object} calendar.Result
// @Failure 400 {object} map[string]string "Bad request"
// @Router /calendar/normalize [post]
func (h *Handler) NormalizeAppointments(c *gin.Context) {
	var req NormalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, ErrInvalidRequest{Field: "body", Reason: err.Error()})
		return
	}
	c.JSON(http.StatusOK, calendar.Normalize(req.Appointments, h.service.Location()))
}

// RescheduleRequest describes a drag or resize in the calendar view
type RescheduleRequest struct {
	Mode  string              `json:"mode" binding:"required,oneof=move resize" jsonschema:"enum=move,enum=resize"`
	Event types.CalendarEvent `json:"event"`
	// DeltaMinutes is used when Pixels is zero
	DeltaMinutes  float64 `json:"delta_minutes"`
	Pixels        float64 `json:"pixels"`
	PixelsPerHour float64 `json:"pixels_per_hour"`
	Column        int     `json:"column"`
	// Resources are the column resource IDs, left to right
	Resources []string `json:"resources"`
	// Events are checked for overlaps with the new slot
	Events []types.CalendarEvent `json:"events"`
}

// RescheduleResponse is the snapped slot and any conflicts
type RescheduleResponse struct {
	Reschedule calendar.Reschedule `json:"reschedule"`
	Conflicts  []string            `json:"conflicts"`
}

// Reschedule converts a drag or resize into a new slot
// @Summary Reschedule an event
// @Description Snaps the delta to the slot size, clamps to opening hours and lists overlapping events
// @Tags scheduling
// @Accept json
// @Produce json
// @Param request body RescheduleRequest true "Drag"
// @Success 200 {object} RescheduleResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Router /calendar/reschedule [post]
func (h *Handler) Reschedule(c *gin.Context) {
	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, ErrInvalidRequest{Field: "body", Reason: err.Error()})
		return
	}
	if !req.Event.End.After(req.Event.Start) {
		h.respondError(c, ErrInvalidRequest{Field: "event", Reason: "end must be after start"})
		return
	}

	grid := h.grid
	grid.Resources = req.Resources
	loc := h.service.Location()
	req.Event.Start = req.Event.Start.In(loc)
	req.Event.End = req.Event.End.In(loc)

	delta := grid.Snap(time.Duration(req.DeltaMinutes * float64(time.Minute)))
	if req.Pixels != 0 {
		delta = grid.OffsetToDelta(req.Pixels, req.PixelsPerHour)
	}

	var r calendar.Reschedule
	if req.Mode == "resize" {
		r = grid.Resize(req.Event, delta)
	} else {
		r = grid.Move(req.Event, delta, req.Column)
	}

	conflicts := calendar.Conflicts(req.Events, r)
	if conflicts == nil {
		conflicts = []string{}
	}
	c.JSON(http.StatusOK, RescheduleResponse{Reschedule: r, Conflicts: conflicts})
}

// LayoutRequest carries the events of one view
type LayoutRequest struct {
	Events []types.CalendarEvent `json:"events" binding:"required"`
}

// Layout assigns side-by-side lanes to overlapping events
// @Summary Lane layout
// @Tags scheduling
// @Accept json
// @Produce json
// @Param request body LayoutRequest true "Events"
// @Success 200 {array} calendar.Placement
// @Failure 400 {object} map[string]string "Bad request"
// @Router /calendar/layout [post]
func (h *Handler) Layout(c *gin.Context) {
	var req LayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, ErrInvalidRequest{Field: "body", Reason: err.Error()})
		return
	}
	placements := calendar.Layout(req.Events)
	if placements == nil {
		placements = []calendar.Placement{}
	}
	c.JSON(http.StatusOK, placements)
}
