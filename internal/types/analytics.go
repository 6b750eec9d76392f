package types

import "time"

// Segment is a client lifecycle segment
type Segment string

const (
	SegmentVIP       Segment = "VIP"
	SegmentLoyal     Segment = "Leal"
	SegmentPromising Segment = "Prometedor"
	SegmentNew       Segment = "Nuevo"
	SegmentAtRisk    Segment = "En Riesgo"
	SegmentLost      Segment = "Perdido"
)

// ClientProfile is the RFM projection of one client. It is never persisted.
type ClientProfile struct {
	ClientID    string    `json:"client_id"`
	Name        string    `json:"name"`
	TotalSpent  float64   `json:"total_spent"`
	VisitCount  int       `json:"visit_count"`
	LastVisit   time.Time `json:"last_visit"`
	RecencyDays int       `json:"recency_days"`
	Segment     Segment   `json:"segment"`
	Score       int       `json:"score"`
}

// TrendPoint is the revenue of one calendar day
type TrendPoint struct {
	Date           string  `json:"date"`
	ServiceRevenue float64 `json:"service_revenue"`
	ProductRevenue float64 `json:"product_revenue"`
	TotalRevenue   float64 `json:"total_revenue"`
}

// ForecastPoint is a projected day
type ForecastPoint struct {
	Date      string  `json:"date"`
	DayIndex  int     `json:"day_index"`
	Predicted float64 `json:"predicted"`
}

// Severity orders alerts by urgency
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Rank returns a sortable weight, higher is more urgent
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// AlertCategory groups alerts by the rule family that raised them
type AlertCategory string

const (
	AlertFinancial AlertCategory = "financial"
	AlertClients   AlertCategory = "clients"
	AlertExternal  AlertCategory = "external"
	AlertInventory AlertCategory = "inventory"
)

// Alert is regenerated on every analysis run
type Alert struct {
	ID        string        `json:"id"`
	Category  AlertCategory `json:"category"`
	Severity  Severity      `json:"severity"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	CreatedAt time.Time     `json:"created_at"`
}

// AvailabilityStatus is the remaining capacity of a block
type AvailabilityStatus string

const (
	StatusAvailable AvailabilityStatus = "available"
	StatusLimited   AvailabilityStatus = "limited"
	StatusFull      AvailabilityStatus = "full"
)

// AvailabilityBlock is a coarse scheduling window for one date
type AvailabilityBlock struct {
	ID        string             `json:"id"`
	Label     string             `json:"label"`
	StartHour int                `json:"start_hour"`
	EndHour   int                `json:"end_hour"`
	Booked    int                `json:"booked"`
	Capacity  int                `json:"capacity"`
	Status    AvailabilityStatus `json:"status"`
}
