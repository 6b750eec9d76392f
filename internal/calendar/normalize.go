// Package calendar builds the calendar view model from raw appointment rows
// and computes drag-and-drop reschedules on it.
package calendar

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/kosarica/grooming-service/internal/classification"
	"github.com/kosarica/grooming-service/internal/types"
)

const defaultTitle = "Cita"

// Drop records an appointment left out of the view and why
type Drop struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Result is the normalized view. Dropped lists every input that produced no
// event, so len(Events)+len(Dropped) equals the input length.
type Result struct {
	Events  []types.CalendarEvent `json:"events"`
	Dropped []Drop                `json:"dropped"`
}

type relation struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Category string `json:"category"`
}

func (r relation) displayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.FullName
}

// decodeRelation accepts a joined row as an object or a single-element array.
// Anything else yields an empty relation.
func decodeRelation(raw json.RawMessage) relation {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return relation{}
	}

	var r relation
	if raw[0] == '[' {
		var list []relation
		if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
			return relation{}
		}
		return list[0]
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return relation{}
	}
	return r
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// ParseTimestamp parses an ISO 8601 date-time. Values with an offset use it;
// values without one are read in loc. Date-only and free-form values fail.
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// StyleFor maps a service category or name to a display style
func StyleFor(service string) types.EventStyle {
	s := classification.Fold(service)
	switch {
	case strings.Contains(s, "corte") || strings.Contains(s, "cut"):
		return types.StyleCut
	case strings.Contains(s, "bano") || strings.Contains(s, "bath"):
		return types.StyleBath
	default:
		return types.StyleNeutral
	}
}

// Title joins the pet and service names
func Title(pet, service string) string {
	switch {
	case pet != "" && service != "":
		return pet + " · " + service
	case pet != "":
		return pet
	case service != "":
		return service
	default:
		return defaultTitle
	}
}

// ToAppointment resolves a raw row into the canonical appointment shape.
// ok is false when the start or end cannot be parsed or the end is not after
// the start; reason explains which.
func ToAppointment(raw types.RawAppointment, loc *time.Location) (appt types.Appointment, reason string, ok bool) {
	appt, reason, ok = ParseAppointment(raw, loc)
	if !ok {
		return types.Appointment{}, reason, false
	}
	if !appt.End.After(appt.Start) {
		return types.Appointment{}, "end_time is not after start_time", false
	}
	return appt, "", true
}

// ParseAppointment is ToAppointment without the ordering check. Occupancy
// counts by start time, so a row with a bad end still holds its slot.
func ParseAppointment(raw types.RawAppointment, loc *time.Location) (appt types.Appointment, reason string, ok bool) {
	start, ok := ParseTimestamp(raw.StartTime, loc)
	if !ok {
		return types.Appointment{}, "invalid start_time", false
	}
	end, ok := ParseTimestamp(raw.EndTime, loc)
	if !ok {
		return types.Appointment{}, "invalid end_time", false
	}

	pet := decodeRelation(raw.Pet)
	client := decodeRelation(raw.Client)
	service := decodeRelation(raw.Service)

	status := raw.Status
	if status == "" {
		status = types.AppointmentScheduled
	}

	return types.Appointment{
		ID:              raw.ID,
		Start:           start,
		End:             end,
		Status:          status,
		EmployeeID:      raw.EmployeeID,
		PetName:         pet.displayName(),
		ClientName:      client.displayName(),
		ServiceName:     service.displayName(),
		ServiceCategory: service.Category,
		Notes:           raw.Notes,
	}, "", true
}

// Normalize converts raw rows into calendar events sorted by start and ID.
// Rows with unusable timestamps are dropped individually.
func Normalize(raw []types.RawAppointment, loc *time.Location) Result {
	if loc == nil {
		loc = time.UTC
	}

	res := Result{
		Events:  make([]types.CalendarEvent, 0, len(raw)),
		Dropped: make([]Drop, 0),
	}
	for _, r := range raw {
		appt, reason, ok := ToAppointment(r, loc)
		if !ok {
			res.Dropped = append(res.Dropped, Drop{ID: r.ID, Reason: reason})
			continue
		}
		res.Events = append(res.Events, ToEvent(appt))
	}

	sort.SliceStable(res.Events, func(i, j int) bool {
		if !res.Events[i].Start.Equal(res.Events[j].Start) {
			return res.Events[i].Start.Before(res.Events[j].Start)
		}
		return res.Events[i].ID < res.Events[j].ID
	})
	return res
}

// ToEvent builds the view model of a canonical appointment
func ToEvent(appt types.Appointment) types.CalendarEvent {
	styleKey := appt.ServiceCategory
	if styleKey == "" {
		styleKey = appt.ServiceName
	}
	resource := ""
	if appt.EmployeeID != nil {
		resource = *appt.EmployeeID
	}

	a := appt
	return types.CalendarEvent{
		ID:          appt.ID,
		Title:       Title(appt.PetName, appt.ServiceName),
		Start:       appt.Start,
		End:         appt.End,
		Style:       StyleFor(styleKey),
		Status:      appt.Status,
		ResourceID:  resource,
		Appointment: &a,
	}
}
