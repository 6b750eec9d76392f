// Package report assembles the comprehensive business report and renders it
// as JSON, XLSX or PDF.
//
// Sections a role may not see are set to nil rather than dropped, so the
// document has the same shape for every caller.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/kosarica/grooming-service/internal/alerts"
	"github.com/kosarica/grooming-service/internal/forecast"
	"github.com/kosarica/grooming-service/internal/heatmap"
	"github.com/kosarica/grooming-service/internal/segmentation"
	"github.com/kosarica/grooming-service/internal/types"
)

const topClients = 10

// Role is the staff role requesting a report
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

// ParseRole maps a header value to a role. Unknown values get the least
// privileged role.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleManager:
		return RoleManager
	default:
		return RoleStaff
	}
}

// Permissions select the sections a report includes
type Permissions struct {
	Financial bool `json:"financial"`
	Clients   bool `json:"clients"`
}

// PermissionsForRole returns what role may see
func PermissionsForRole(role Role) Permissions {
	switch role {
	case RoleAdmin, RoleManager:
		return Permissions{Financial: true, Clients: true}
	default:
		return Permissions{}
	}
}

// Period is the half-open reporting window
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Financial summarizes revenue
type Financial struct {
	TotalRevenue     float64            `json:"total_revenue"`
	ServiceRevenue   float64            `json:"service_revenue"`
	ProductRevenue   float64            `json:"product_revenue"`
	TaxCollected     float64            `json:"tax_collected"`
	TransactionCount int                `json:"transaction_count"`
	AverageTicket    float64            `json:"average_ticket"`
	ByPaymentMethod  map[string]float64 `json:"by_payment_method"`
	Daily            []types.TrendPoint `json:"daily"`
}

// Clients summarizes the RFM segmentation
type Clients struct {
	Total       int                   `json:"total"`
	Segments    map[types.Segment]int `json:"segments"`
	AtRiskSpend float64               `json:"at_risk_spend"`
	Top         []types.ClientProfile `json:"top"`
}

// Operations summarizes when the business is busy and what needs restocking.
// Heatmap and Busiest carry revenue amounts and are nil without financial
// permission.
type Operations struct {
	Heatmap          *heatmap.Heatmap `json:"heatmap"`
	Busiest          *heatmap.Peak    `json:"busiest"`
	QuietestDay      *string          `json:"quietest_day"`
	LowStockProducts []types.Product  `json:"low_stock_products"`
}

// Predictions is the revenue projection
type Predictions struct {
	Slope         float64               `json:"slope"`
	Forecast      []types.ForecastPoint `json:"forecast"`
	NextWeekTotal float64               `json:"next_week_total"`
}

// Report is the comprehensive report document
type Report struct {
	Period          Period                  `json:"period"`
	Permissions     Permissions             `json:"permissions"`
	Financial       *Financial              `json:"financial"`
	Clients         *Clients                `json:"clients"`
	Operations      Operations              `json:"operations"`
	Predictions     *Predictions            `json:"predictions"`
	Alerts          []types.Alert           `json:"alerts"`
	Recommendations []string                `json:"recommendations"`
	External        *alerts.ExternalFactors `json:"external_data"`
	GeneratedAt     time.Time               `json:"generated_at"`
}

// Input is everything a report is built from. Transactions should already be
// limited to Period.
type Input struct {
	Period       Period
	Transactions []types.Transaction
	Profiles     []types.ClientProfile
	Forecast     forecast.Result
	Products     []types.Product
	Alerts       []types.Alert
	External     *alerts.ExternalFactors
	Classify     forecast.ItemClassifier
	Now          time.Time
}

// Assemble builds the report for the given permissions
func Assemble(in Input, perms Permissions) Report {
	hm := heatmap.Build(in.Transactions)
	r := Report{
		Period:      in.Period,
		Permissions: perms,
		Operations: Operations{
			LowStockProducts: lowStock(in.Products),
		},
		Alerts:      visibleAlerts(in.Alerts, perms),
		External:    in.External,
		GeneratedAt: in.Now,
	}
	if day, ok := hm.Quietest(); ok {
		r.Operations.QuietestDay = &day
	}

	if perms.Financial {
		r.Operations.Heatmap = &hm
		if peak, ok := hm.Busiest(); ok {
			r.Operations.Busiest = &peak
		}
		r.Financial = financial(in)
		r.Predictions = predictions(in.Forecast)
	}
	if perms.Clients {
		r.Clients = clients(in.Profiles)
	}
	r.Recommendations = recommend(r)
	return r
}

func visibleAlerts(in []types.Alert, perms Permissions) []types.Alert {
	out := make([]types.Alert, 0, len(in))
	for _, a := range in {
		if a.Category == types.AlertFinancial && !perms.Financial {
			continue
		}
		if a.Category == types.AlertClients && !perms.Clients {
			continue
		}
		out = append(out, a)
	}
	return out
}

func financial(in Input) *Financial {
	f := &Financial{
		ByPaymentMethod: map[string]float64{},
		Daily:           in.Forecast.History,
	}
	if f.Daily == nil {
		f.Daily = []types.TrendPoint{}
	}
	for _, tx := range in.Transactions {
		f.TotalRevenue += tx.TotalAmount
		f.TaxCollected += tx.TaxAmount
		f.TransactionCount++
		method := tx.PaymentMethod
		if method == "" {
			method = "unknown"
		}
		f.ByPaymentMethod[method] += tx.TotalAmount
		if in.Classify != nil {
			service, product := forecast.Split(tx, in.Classify)
			f.ServiceRevenue += service
			f.ProductRevenue += product
		}
	}
	if f.TransactionCount > 0 {
		f.AverageTicket = round2(f.TotalRevenue / float64(f.TransactionCount))
	}
	return f
}

func predictions(res forecast.Result) *Predictions {
	p := &Predictions{Slope: res.Slope, Forecast: res.Forecast}
	if p.Forecast == nil {
		p.Forecast = []types.ForecastPoint{}
	}
	for _, fp := range p.Forecast {
		p.NextWeekTotal += fp.Predicted
	}
	p.NextWeekTotal = round2(p.NextWeekTotal)
	return p
}

func clients(profiles []types.ClientProfile) *Clients {
	c := &Clients{
		Total:       len(profiles),
		Segments:    segmentation.Summary(profiles),
		AtRiskSpend: segmentation.SpendOf(profiles, types.SegmentAtRisk),
	}
	// profiles arrive sorted by spend
	n := len(profiles)
	if n > topClients {
		n = topClients
	}
	c.Top = append([]types.ClientProfile{}, profiles[:n]...)
	return c
}

func lowStock(products []types.Product) []types.Product {
	out := make([]types.Product, 0)
	for _, p := range products {
		if p.Stock <= p.MinStock {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	return out
}

func recommend(r Report) []string {
	out := make([]string, 0)
	if r.External != nil && r.External.Opportunity != nil && r.External.Opportunity.Recommendation != "" {
		out = append(out, r.External.Opportunity.Recommendation)
	}
	if r.Predictions != nil && r.Predictions.Slope < 0 {
		out = append(out, "El pronóstico es descendente: refuerza la promoción de servicios de grooming esta semana.")
	}
	if r.Clients != nil {
		if n := r.Clients.Segments[types.SegmentAtRisk]; n > 0 {
			out = append(out, fmt.Sprintf("Contacta a los %d clientes en riesgo con una oferta de regreso.", n))
		}
		if n := r.Clients.Segments[types.SegmentNew]; n > 0 {
			out = append(out, fmt.Sprintf("Da seguimiento a los %d clientes nuevos para convertirlos en recurrentes.", n))
		}
	}
	if r.Operations.QuietestDay != nil {
		out = append(out, fmt.Sprintf("Ofrece descuentos el %s, el día de menor demanda.", weekdayES(*r.Operations.QuietestDay)))
	}
	if n := len(r.Operations.LowStockProducts); n > 0 {
		out = append(out, fmt.Sprintf("Reabastece %d productos por debajo del mínimo.", n))
	}
	return out
}

var weekdaysES = map[string]string{
	"Sunday":    "domingo",
	"Monday":    "lunes",
	"Tuesday":   "martes",
	"Wednesday": "miércoles",
	"Thursday":  "jueves",
	"Friday":    "viernes",
	"Saturday":  "sábado",
}

func weekdayES(day string) string {
	if es, ok := weekdaysES[day]; ok {
		return es
	}
	return day
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
