// Package segmentation projects transactions into per-client RFM profiles.
package segmentation

import (
	"math"
	"sort"
	"time"

	"github.com/kosarica/grooming-service/internal/types"
)

// Segment thresholds. Spend is in the shop currency, recency in days.
const (
	vipMinSpent         = 5000
	vipMaxRecency       = 45
	loyalMinVisits      = 8
	loyalMaxRecency     = 60
	promisingMinVisits  = 2
	promisingMaxRecency = 30
	atRiskMinRecency    = 90
	atRiskMinSpent      = 2000
	lostMinRecency      = 120
)

type aggregate struct {
	spent     float64
	visits    int
	lastVisit time.Time
}

// Segment aggregates transactions per client and assigns each client exactly
// one lifecycle segment. Transactions without a client or a valid date are
// ignored. Clients without transactions are not materialized.
func Segment(transactions []types.Transaction, roster []types.Client, now time.Time) []types.ClientProfile {
	byClient := make(map[string]*aggregate)
	for _, tx := range transactions {
		if tx.ClientID == nil || *tx.ClientID == "" || !tx.HasValidDate() {
			continue
		}
		agg, ok := byClient[*tx.ClientID]
		if !ok {
			agg = &aggregate{}
			byClient[*tx.ClientID] = agg
		}
		agg.spent += tx.TotalAmount
		agg.visits++
		if tx.CreatedAt.After(agg.lastVisit) {
			agg.lastVisit = tx.CreatedAt
		}
	}

	names := make(map[string]string, len(roster))
	for _, c := range roster {
		names[c.ID] = c.Name
	}

	profiles := make([]types.ClientProfile, 0, len(byClient))
	for id, agg := range byClient {
		name, ok := names[id]
		if !ok || name == "" {
			name = id
		}
		recency := RecencyDays(now, agg.lastVisit)
		profiles = append(profiles, types.ClientProfile{
			ClientID:    id,
			Name:        name,
			TotalSpent:  agg.spent,
			VisitCount:  agg.visits,
			LastVisit:   agg.lastVisit,
			RecencyDays: recency,
			Segment:     Assign(agg.spent, agg.visits, recency),
			Score:       Score(agg.spent, agg.visits, recency),
		})
	}

	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].TotalSpent != profiles[j].TotalSpent {
			return profiles[i].TotalSpent > profiles[j].TotalSpent
		}
		return profiles[i].ClientID < profiles[j].ClientID
	})
	return profiles
}

// RecencyDays is the number of days since lastVisit, rounded up.
func RecencyDays(now, lastVisit time.Time) int {
	days := math.Ceil(now.Sub(lastVisit).Hours() / 24)
	if days < 0 {
		return 0
	}
	return int(days)
}

// Assign returns the first segment whose condition holds, in priority order.
func Assign(totalSpent float64, visits, recencyDays int) types.Segment {
	switch {
	case totalSpent > vipMinSpent && recencyDays < vipMaxRecency:
		return types.SegmentVIP
	case visits > loyalMinVisits && recencyDays < loyalMaxRecency:
		return types.SegmentLoyal
	case visits > promisingMinVisits && recencyDays < promisingMaxRecency:
		return types.SegmentPromising
	case recencyDays > atRiskMinRecency && totalSpent > atRiskMinSpent:
		return types.SegmentAtRisk
	case recencyDays > lostMinRecency:
		return types.SegmentLost
	default:
		return types.SegmentNew
	}
}

// Score is a 0-100 ranking blend of monetary, frequency and recency.
func Score(totalSpent float64, visits, recencyDays int) int {
	monetary := math.Min(100, totalSpent/100)
	frequency := math.Min(100, float64(visits)*10)
	recency := math.Max(0, float64(100-recencyDays))
	return int(math.Round(monetary*0.5 + frequency*0.3 + recency*0.2))
}

// Summary counts profiles per segment. Every segment is present.
func Summary(profiles []types.ClientProfile) map[types.Segment]int {
	out := map[types.Segment]int{
		types.SegmentVIP:       0,
		types.SegmentLoyal:     0,
		types.SegmentPromising: 0,
		types.SegmentNew:       0,
		types.SegmentAtRisk:    0,
		types.SegmentLost:      0,
	}
	for _, p := range profiles {
		out[p.Segment]++
	}
	return out
}

// SpendOf sums total spent for profiles in the given segment
func SpendOf(profiles []types.ClientProfile, seg types.Segment) float64 {
	var total float64
	for _, p := range profiles {
		if p.Segment == seg {
			total += p.TotalSpent
		}
	}
	return total
}
