package types

import (
	"encoding/json"
	"time"
)

// AppointmentStatus is the booking state of an appointment
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentNoShow    AppointmentStatus = "no_show"
)

// RawAppointment is an appointment row as the data store returns it. Joined
// relations may arrive as an object or as a single-element array.
type RawAppointment struct {
	ID         string            `json:"id"`
	StartTime  string            `json:"start_time"`
	EndTime    string            `json:"end_time"`
	Status     AppointmentStatus `json:"status"`
	Notes      *string           `json:"notes,omitempty"`
	EmployeeID *string           `json:"employee_id,omitempty"`
	Pet        json.RawMessage   `json:"pets,omitempty"`
	Client     json.RawMessage   `json:"clients,omitempty"`
	Service    json.RawMessage   `json:"services,omitempty"`
}

// Appointment is the canonical appointment after boundary normalization
type Appointment struct {
	ID              string            `json:"id"`
	Start           time.Time         `json:"start"`
	End             time.Time         `json:"end"`
	Status          AppointmentStatus `json:"status"`
	EmployeeID      *string           `json:"employee_id,omitempty"`
	PetName         string            `json:"pet_name"`
	ClientName      string            `json:"client_name"`
	ServiceName     string            `json:"service_name"`
	ServiceCategory string            `json:"service_category"`
	Notes           *string           `json:"notes,omitempty"`
}

// EventStyle is the display style tag of a calendar event
type EventStyle string

const (
	StyleCut     EventStyle = "cut"
	StyleBath    EventStyle = "bath"
	StyleNeutral EventStyle = "neutral"
)

// CalendarEvent is the view model of one appointment
type CalendarEvent struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Start       time.Time         `json:"start"`
	End         time.Time         `json:"end"`
	Style       EventStyle        `json:"style"`
	Status      AppointmentStatus `json:"status"`
	ResourceID  string            `json:"resource_id,omitempty"`
	Appointment *Appointment      `json:"appointment"`
}
