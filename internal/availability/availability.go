// Package availability computes remaining capacity per time block of a day.
package availability

import (
	"time"

	"github.com/kosarica/grooming-service/internal/types"
)

// Occupancy thresholds, as booked/capacity
const (
	fullOccupancy    = 1.0
	limitedOccupancy = 0.6
)

// Block is a fixed hour range of the booking day, [StartHour, EndHour)
type Block struct {
	ID        string `json:"id" mapstructure:"id"`
	Label     string `json:"label" mapstructure:"label"`
	StartHour int    `json:"start_hour" mapstructure:"start_hour"`
	EndHour   int    `json:"end_hour" mapstructure:"end_hour"`
}

// DefaultBlocks are the check-in windows offered at the front desk
func DefaultBlocks() []Block {
	return []Block{
		{ID: "morning", Label: "Mañana (9:00 - 12:00)", StartHour: 9, EndHour: 12},
		{ID: "midday", Label: "Mediodía (12:00 - 15:00)", StartHour: 12, EndHour: 15},
		{ID: "afternoon", Label: "Tarde (15:00 - 18:00)", StartHour: 15, EndHour: 18},
	}
}

// StatusFor maps an occupancy ratio to a status
func StatusFor(booked, capacity int) types.AvailabilityStatus {
	if capacity <= 0 {
		return types.StatusFull
	}
	occupancy := float64(booked) / float64(capacity)
	switch {
	case occupancy >= fullOccupancy:
		return types.StatusFull
	case occupancy >= limitedOccupancy:
		return types.StatusLimited
	default:
		return types.StatusAvailable
	}
}

// Compute counts the non-cancelled appointments of date per block, using the
// start hour in date's location, and derives a status for each block.
// Appointments starting outside every block are not counted.
func Compute(date time.Time, blocks []Block, appointments []types.Appointment, capacity int) []types.AvailabilityBlock {
	loc := date.Location()
	y, m, d := date.Date()

	booked := make([]int, len(blocks))
	for _, a := range appointments {
		if a.Status == types.AppointmentCancelled || a.Start.IsZero() {
			continue
		}
		start := a.Start.In(loc)
		if sy, sm, sd := start.Date(); sy != y || sm != m || sd != d {
			continue
		}
		hour := start.Hour()
		for i, b := range blocks {
			if hour >= b.StartHour && hour < b.EndHour {
				booked[i]++
				break
			}
		}
	}

	out := make([]types.AvailabilityBlock, 0, len(blocks))
	for i, b := range blocks {
		out = append(out, types.AvailabilityBlock{
			ID:        b.ID,
			Label:     b.Label,
			StartHour: b.StartHour,
			EndHour:   b.EndHour,
			Booked:    booked[i],
			Capacity:  capacity,
			Status:    StatusFor(booked[i], capacity),
		})
	}
	return out
}

// FailOpen reports every block as available. It is used when appointments
// cannot be fetched so the booking flow is never blocked.
func FailOpen(blocks []Block, capacity int) []types.AvailabilityBlock {
	out := make([]types.AvailabilityBlock, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, types.AvailabilityBlock{
			ID:        b.ID,
			Label:     b.Label,
			StartHour: b.StartHour,
			EndHour:   b.EndHour,
			Capacity:  capacity,
			Status:    types.StatusAvailable,
		})
	}
	return out
}
