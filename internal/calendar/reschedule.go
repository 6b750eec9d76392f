package calendar

import (
	"sort"
	"time"

	"github.com/kosarica/grooming-service/internal/types"
)

// Grid is the time geometry of the calendar view. Columns map to resources
// (groomers) left to right.
type Grid struct {
	Slot         time.Duration
	DayStartHour int
	DayEndHour   int
	Resources    []string
}

// Reschedule is the outcome of dropping a dragged or resized event
type Reschedule struct {
	EventID    string        `json:"event_id"`
	Start      time.Time     `json:"start"`
	End        time.Time     `json:"end"`
	ResourceID string        `json:"resource_id"`
	Delta      time.Duration `json:"delta"`
	Changed    bool          `json:"changed"`
}

// Snap rounds d to the nearest slot. Halfway values round away from zero.
func (g Grid) Snap(d time.Duration) time.Duration {
	if g.Slot <= 0 {
		return d
	}
	return d.Round(g.Slot)
}

// OffsetToDelta converts a vertical drag distance into a snapped duration
func (g Grid) OffsetToDelta(pixels, pixelsPerHour float64) time.Duration {
	if pixelsPerHour <= 0 {
		return 0
	}
	return g.Snap(time.Duration(pixels / pixelsPerHour * float64(time.Hour)))
}

// Column returns the column index of resourceID, or -1
func (g Grid) Column(resourceID string) int {
	for i, r := range g.Resources {
		if r == resourceID {
			return i
		}
	}
	return -1
}

func (g Grid) window(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	open := time.Date(y, m, d, g.DayStartHour, 0, 0, 0, t.Location())
	closing := time.Date(y, m, d, g.DayEndHour, 0, 0, 0, t.Location())
	return open, closing
}

// Move shifts ev by the snapped delta, keeping its duration, and reassigns it
// to the resource under column. A column outside the grid keeps the current
// resource. The start is clamped so the event stays within opening hours.
func (g Grid) Move(ev types.CalendarEvent, delta time.Duration, column int) Reschedule {
	duration := ev.End.Sub(ev.Start)
	start := ev.Start.Add(g.Snap(delta))

	open, closing := g.window(start)
	if start.Before(open) {
		start = open
	}
	if latest := closing.Add(-duration); start.After(latest) {
		start = latest
		if start.Before(open) {
			start = open
		}
	}

	resource := ev.ResourceID
	if column >= 0 && column < len(g.Resources) {
		resource = g.Resources[column]
	}

	return Reschedule{
		EventID:    ev.ID,
		Start:      start,
		End:        start.Add(duration),
		ResourceID: resource,
		Delta:      start.Sub(ev.Start),
		Changed:    !start.Equal(ev.Start) || resource != ev.ResourceID,
	}
}

// Resize moves the end of ev by the snapped delta. The event keeps at least
// one slot and does not run past closing time.
func (g Grid) Resize(ev types.CalendarEvent, delta time.Duration) Reschedule {
	end := ev.End.Add(g.Snap(delta))

	minSlot := g.Slot
	if minSlot <= 0 {
		minSlot = time.Minute
	}
	if minEnd := ev.Start.Add(minSlot); end.Before(minEnd) {
		end = minEnd
	}
	if _, closing := g.window(ev.Start); end.After(closing) && closing.After(ev.Start) {
		end = closing
	}

	return Reschedule{
		EventID:    ev.ID,
		Start:      ev.Start,
		End:        end,
		ResourceID: ev.ResourceID,
		Delta:      end.Sub(ev.End),
		Changed:    !end.Equal(ev.End),
	}
}

// Conflicts returns the IDs of events on the same resource that overlap the
// rescheduled slot, excluding the moved event itself.
func Conflicts(events []types.CalendarEvent, r Reschedule) []string {
	var ids []string
	for _, ev := range events {
		if ev.ID == r.EventID || ev.ResourceID != r.ResourceID {
			continue
		}
		if ev.Status == types.AppointmentCancelled {
			continue
		}
		if ev.Start.Before(r.End) && r.Start.Before(ev.End) {
			ids = append(ids, ev.ID)
		}
	}
	return ids
}

// Placement is the horizontal position of an event inside its resource
// column: lane Column out of Columns side-by-side lanes.
type Placement struct {
	EventID string `json:"event_id"`
	Column  int    `json:"column"`
	Columns int    `json:"columns"`
}

// Layout assigns lanes to overlapping events of the same resource. Events
// that overlap transitively share a lane count; each event takes the first
// lane that is free at its start.
func Layout(events []types.CalendarEvent) []Placement {
	byResource := make(map[string][]types.CalendarEvent)
	var resources []string
	for _, ev := range events {
		if _, ok := byResource[ev.ResourceID]; !ok {
			resources = append(resources, ev.ResourceID)
		}
		byResource[ev.ResourceID] = append(byResource[ev.ResourceID], ev)
	}
	sort.Strings(resources)

	out := make([]Placement, 0, len(events))
	for _, res := range resources {
		group := byResource[res]
		sort.SliceStable(group, func(i, j int) bool {
			if !group[i].Start.Equal(group[j].Start) {
				return group[i].Start.Before(group[j].Start)
			}
			return group[i].ID < group[j].ID
		})

		var (
			cluster    []Placement
			laneEnds   []time.Time
			clusterEnd time.Time
		)
		flush := func() {
			for i := range cluster {
				cluster[i].Columns = len(laneEnds)
			}
			out = append(out, cluster...)
			cluster = nil
			laneEnds = nil
		}

		for _, ev := range group {
			if len(cluster) > 0 && !ev.Start.Before(clusterEnd) {
				flush()
			}
			lane := -1
			for i, end := range laneEnds {
				if !ev.Start.Before(end) {
					lane = i
					break
				}
			}
			if lane < 0 {
				lane = len(laneEnds)
				laneEnds = append(laneEnds, ev.End)
			} else {
				laneEnds[lane] = ev.End
			}
			if len(cluster) == 0 || ev.End.After(clusterEnd) {
				clusterEnd = ev.End
			}
			cluster = append(cluster, Placement{EventID: ev.ID, Column: lane})
		}
		if len(cluster) > 0 {
			flush()
		}
	}
	return out
}
