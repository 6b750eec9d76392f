package analytics

import (
	"context"
	"fmt"
	"time"
)

// Change kinds passed to a Publisher
const (
	ChangeCalendar  = "calendar"
	ChangeCatalog   = "catalog"
	ChangeAnalytics = "analytics"
)

// CalendarWindow is how far ahead a recomputed calendar view reaches
const CalendarWindow = 7 * 24 * time.Hour

// Publisher receives recomputed views. kind is one of the Change constants.
type Publisher func(kind string, payload any)

// CatalogChange is published when products change
type CatalogChange struct {
	Collections []string `json:"collections"`
}

// AnalyticsChange is the refreshed alert set after data changes
type AnalyticsChange struct {
	Period Period `json:"period"`
	Alerts int    `json:"alerts"`
	// Severity counts alerts per severity
	Severity map[string]int `json:"severity"`
}

// Recompute rebuilds the views affected by a set of changed collections and
// hands them to publish. Every view is rebuilt from scratch, so running it
// twice for the same change is harmless.
func (s *Service) Recompute(ctx context.Context, collections []string, publish Publisher) (err error) {
	ctx, done := s.start(ctx, "recompute")
	defer done(&err)

	var calendarDirty, catalogDirty, analyticsDirty bool
	for _, c := range collections {
		switch c {
		case "appointments":
			calendarDirty = true
		case "products":
			catalogDirty = true
			analyticsDirty = true
		case "transactions", "clients":
			analyticsDirty = true
		default:
			// unknown collection, refresh everything
			calendarDirty, catalogDirty, analyticsDirty = true, true, true
		}
	}

	if calendarDirty {
		from := s.now().In(s.config.Location)
		from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, s.config.Location)
		view, err := s.Calendar(ctx, from, from.Add(CalendarWindow))
		if err != nil {
			return fmt.Errorf("failed to recompute calendar: %w", err)
		}
		publish(ChangeCalendar, view)
	}
	if catalogDirty {
		publish(ChangeCatalog, CatalogChange{Collections: collections})
	}
	if analyticsDirty {
		p := s.DefaultPeriod()
		d, err := s.Dashboard(ctx, p)
		if err != nil {
			return fmt.Errorf("failed to recompute analytics: %w", err)
		}
		change := AnalyticsChange{Period: p, Alerts: len(d.Alerts), Severity: map[string]int{}}
		for _, a := range d.Alerts {
			change.Severity[string(a.Severity)]++
		}
		publish(ChangeAnalytics, change)
	}
	return nil
}
