// Package alerts evaluates business rules over an analysis snapshot.
package alerts

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kosarica/grooming-service/internal/opportunity"
	"github.com/kosarica/grooming-service/internal/segmentation"
	"github.com/kosarica/grooming-service/internal/types"
)

// Thresholds for the financial rules, as fractions of the previous period.
const (
	revenueDropCritical = 0.5
	revenueDropWarning  = 0.2
	revenueRiseInfo     = 0.2
	forecastDecline     = 0.1
	rainNoShowMM        = 5
	window              = 7 * 24 * time.Hour
)

var alertNamespace = uuid.MustParse("3c0f5d2e-8a41-4c36-9a7e-1f2b6d9e4a10")

// ExternalFactors are the signals the external rules look at. Opportunity is
// computed from the signals when nil.
type ExternalFactors struct {
	Weather     types.Weather       `json:"weather"`
	Traffic     types.Traffic       `json:"traffic"`
	Trends      types.Trends        `json:"trends"`
	Opportunity *opportunity.Result `json:"opportunity,omitempty"`
}

// Input is the snapshot rules run against. Now defaults to the latest
// transaction date.
type Input struct {
	Transactions []types.Transaction   `json:"transactions"`
	Predictions  []types.ForecastPoint `json:"predictions"`
	Clients      []types.ClientProfile `json:"clients"`
	Inventory    []types.Product       `json:"inventory"`
	External     *ExternalFactors      `json:"external_factors"`
	Now          time.Time             `json:"now"`
}

type rule struct {
	name string
	eval func(in Input, now time.Time) []types.Alert
}

// rules run in this order; ranking is stable so ties keep it
var rules = []rule{
	{"revenue-trend", revenueTrend},
	{"forecast-decline", forecastTrend},
	{"client-risk", clientRisk},
	{"external", externalFactors},
	{"inventory", inventory},
}

// Generate runs every rule and returns alerts ranked by severity. It does not
// modify in and returns an empty slice when nothing fires.
func Generate(in Input) []types.Alert {
	now := in.Now
	if now.IsZero() {
		now = latest(in.Transactions)
	}

	out := make([]types.Alert, 0)
	for _, r := range rules {
		out = append(out, evalSafe(r, in, now)...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Rank() > out[j].Severity.Rank()
	})
	return out
}

func evalSafe(r rule, in Input, now time.Time) (alerts []types.Alert) {
	defer func() {
		if recover() != nil {
			alerts = nil
		}
	}()
	return r.eval(in, now)
}

func newAlert(cat types.AlertCategory, sev types.Severity, key, title, message string, now time.Time) types.Alert {
	return types.Alert{
		ID:        uuid.NewSHA1(alertNamespace, []byte(string(cat)+"|"+key)).String(),
		Category:  cat,
		Severity:  sev,
		Title:     title,
		Message:   message,
		CreatedAt: now,
	}
}

func latest(txs []types.Transaction) time.Time {
	var t time.Time
	for _, tx := range txs {
		if tx.CreatedAt.After(t) {
			t = tx.CreatedAt
		}
	}
	return t
}

func revenueTrend(in Input, now time.Time) []types.Alert {
	if len(in.Transactions) == 0 || now.IsZero() {
		return nil
	}

	currentStart := now.Add(-window)
	previousStart := now.Add(-2 * window)

	var current, previous float64
	var older bool
	for _, tx := range in.Transactions {
		if !tx.HasValidDate() || tx.CreatedAt.After(now) {
			continue
		}
		switch {
		case tx.CreatedAt.After(currentStart):
			current += tx.TotalAmount
		case tx.CreatedAt.After(previousStart):
			previous += tx.TotalAmount
			older = true
		default:
			older = true
		}
	}

	if current == 0 {
		if !older {
			return nil
		}
		return []types.Alert{newAlert(types.AlertFinancial, types.SeverityWarning, "no-sales",
			"Sin ventas recientes",
			"No se registraron ventas en los últimos 7 días.", now)}
	}
	if previous <= 0 {
		return nil
	}

	change := (current - previous) / previous
	switch {
	case change < -revenueDropCritical:
		return []types.Alert{newAlert(types.AlertFinancial, types.SeverityCritical, "revenue-drop",
			"Caída fuerte de ingresos",
			fmt.Sprintf("Los ingresos de los últimos 7 días (%.2f) cayeron %.0f%% frente a la semana anterior (%.2f).", current, -change*100, previous), now)}
	case change < -revenueDropWarning:
		return []types.Alert{newAlert(types.AlertFinancial, types.SeverityWarning, "revenue-drop",
			"Ingresos a la baja",
			fmt.Sprintf("Los ingresos de los últimos 7 días (%.2f) cayeron %.0f%% frente a la semana anterior (%.2f).", current, -change*100, previous), now)}
	case change > revenueRiseInfo:
		return []types.Alert{newAlert(types.AlertFinancial, types.SeverityInfo, "revenue-rise",
			"Ingresos en aumento",
			fmt.Sprintf("Los ingresos de los últimos 7 días (%.2f) subieron %.0f%% frente a la semana anterior (%.2f).", current, change*100, previous), now)}
	}
	return nil
}

func forecastTrend(in Input, now time.Time) []types.Alert {
	if len(in.Predictions) < 2 {
		return nil
	}
	first := in.Predictions[0].Predicted
	last := in.Predictions[len(in.Predictions)-1].Predicted
	if first <= 0 || last >= first*(1-forecastDecline) {
		return nil
	}
	return []types.Alert{newAlert(types.AlertFinancial, types.SeverityWarning, "forecast-decline",
		"Pronóstico descendente",
		fmt.Sprintf("Se proyecta que los ingresos diarios bajen de %.2f a %.2f en los próximos %d días.", first, last, len(in.Predictions)), now)}
}

func clientRisk(in Input, now time.Time) []types.Alert {
	if len(in.Clients) == 0 {
		return nil
	}
	summary := segmentation.Summary(in.Clients)

	var out []types.Alert
	if n := summary[types.SegmentAtRisk]; n > 0 {
		spend := segmentation.SpendOf(in.Clients, types.SegmentAtRisk)
		out = append(out, newAlert(types.AlertClients, types.SeverityWarning, "at-risk",
			"Clientes en riesgo",
			fmt.Sprintf("%d clientes con historial de gasto de %.2f no han regresado en más de 90 días.", n, spend), now))
	}
	if n := summary[types.SegmentLost]; n > 0 {
		out = append(out, newAlert(types.AlertClients, types.SeverityInfo, "lost",
			"Clientes perdidos",
			fmt.Sprintf("%d clientes no han regresado en más de 120 días. Considera una campaña de reactivación.", n), now))
	}
	if n := summary[types.SegmentVIP]; n > 0 {
		out = append(out, newAlert(types.AlertClients, types.SeverityInfo, "vip",
			"Clientes VIP activos",
			fmt.Sprintf("%d clientes VIP activos. Ofréceles beneficios de lealtad.", n), now))
	}
	return out
}

func externalFactors(in Input, now time.Time) []types.Alert {
	ext := in.External
	if ext == nil {
		return nil
	}
	opp := ext.Opportunity
	if opp == nil {
		scored := opportunity.Score(ext.Weather, ext.Traffic, ext.Trends)
		opp = &scored
	}

	var out []types.Alert
	switch opp.Level {
	case opportunity.LevelHigh:
		out = append(out, newAlert(types.AlertExternal, types.SeverityInfo, "opportunity-high",
			"Alta oportunidad de negocio",
			fmt.Sprintf("Puntaje de oportunidad %d/100. %s", opp.Score, opp.Recommendation), now))
	case opportunity.LevelLow:
		out = append(out, newAlert(types.AlertExternal, types.SeverityWarning, "opportunity-low",
			"Baja oportunidad de negocio",
			fmt.Sprintf("Puntaje de oportunidad %d/100. %s", opp.Score, opp.Recommendation), now))
	}
	if ext.Weather.PrecipitationMM > rainNoShowMM {
		out = append(out, newAlert(types.AlertExternal, types.SeverityWarning, "rain",
			"Lluvia intensa",
			fmt.Sprintf("Se esperan %.1f mm de lluvia. Confirma las citas del día para reducir inasistencias.", ext.Weather.PrecipitationMM), now))
	}
	if ext.Traffic.Level == types.TrafficHigh {
		out = append(out, newAlert(types.AlertExternal, types.SeverityInfo, "traffic",
			"Tráfico intenso",
			"El tráfico en la zona es alto. Los clientes podrían llegar tarde.", now))
	}
	return out
}

func inventory(in Input, now time.Time) []types.Alert {
	var out []types.Alert
	for _, p := range in.Inventory {
		switch {
		case p.Stock <= 0:
			out = append(out, newAlert(types.AlertInventory, types.SeverityCritical, "out:"+p.ID,
				"Producto agotado",
				fmt.Sprintf("%s está agotado.", p.Name), now))
		case p.Stock <= p.MinStock:
			out = append(out, newAlert(types.AlertInventory, types.SeverityWarning, "low:"+p.ID,
				"Inventario bajo",
				fmt.Sprintf("%s tiene %d unidades (mínimo %d).", p.Name, p.Stock, p.MinStock), now))
		}
	}
	return out
}
