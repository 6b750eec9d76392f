// Package forecast buckets revenue per day and projects it forward with an
// ordinary least-squares line.
package forecast

import (
	"math"
	"sort"
	"time"

	"github.com/kosarica/grooming-service/internal/types"
)

// Horizon is the number of projected days
const Horizon = 7

const dateLayout = "2006-01-02"

// ItemClassifier decides the revenue line of a single line item
type ItemClassifier func(types.LineItem) types.RevenueTarget

// Result holds the daily history and its projection
type Result struct {
	History   []types.TrendPoint    `json:"history"`
	Forecast  []types.ForecastPoint `json:"forecast"`
	Slope     float64               `json:"slope"`
	Intercept float64               `json:"intercept"`
}

type day struct {
	date    time.Time
	service float64
	product float64
}

// Forecast buckets transactions by calendar day in each timestamp's own
// location and fits a line over the daily totals. With fewer than two days
// the forecast is empty.
func Forecast(transactions []types.Transaction, classify ItemClassifier) Result {
	days := make(map[string]*day)
	for _, tx := range transactions {
		if !tx.HasValidDate() {
			continue
		}
		key := tx.CreatedAt.Format(dateLayout)
		d, ok := days[key]
		if !ok {
			y, m, dd := tx.CreatedAt.Date()
			d = &day{date: time.Date(y, m, dd, 0, 0, 0, 0, tx.CreatedAt.Location())}
			days[key] = d
		}
		service, product := Split(tx, classify)
		d.service += service
		d.product += product
	}

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := Result{
		History:  make([]types.TrendPoint, 0, len(keys)),
		Forecast: []types.ForecastPoint{},
	}
	totals := make([]float64, 0, len(keys))
	for _, k := range keys {
		d := days[k]
		total := d.service + d.product
		result.History = append(result.History, types.TrendPoint{
			Date:           k,
			ServiceRevenue: d.service,
			ProductRevenue: d.product,
			TotalRevenue:   total,
		})
		totals = append(totals, total)
	}

	if len(totals) < 2 {
		return result
	}

	slope, intercept := LinearRegression(totals)
	result.Slope = slope
	result.Intercept = intercept

	last := days[keys[len(keys)-1]].date
	n := len(totals)
	result.Forecast = make([]types.ForecastPoint, 0, Horizon)
	for i := 0; i < Horizon; i++ {
		x := n + i
		predicted := math.Max(0, slope*float64(x)+intercept)
		result.Forecast = append(result.Forecast, types.ForecastPoint{
			Date:      last.AddDate(0, 0, i+1).Format(dateLayout),
			DayIndex:  x,
			Predicted: predicted,
		})
	}
	return result
}

// LinearRegression fits y = slope*x + intercept with x the zero-based index
// of each value. It returns zeros for fewer than two points.
func LinearRegression(ys []float64) (slope, intercept float64) {
	n := float64(len(ys))
	if len(ys) < 2 {
		return 0, 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denominator := n*sumXX - sumX*sumX
	if denominator == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denominator
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// Split divides a transaction total into service and product revenue.
// Single-flagged transactions go entirely to their line. Transactions with
// both or neither flag are split by item amounts; without items or a
// classifier the total counts as product revenue.
func Split(tx types.Transaction, classify ItemClassifier) (service, product float64) {
	switch {
	case tx.IsGrooming && !tx.IsStore:
		return tx.TotalAmount, 0
	case tx.IsStore && !tx.IsGrooming:
		return 0, tx.TotalAmount
	}

	if classify == nil || len(tx.Items) == 0 {
		return 0, tx.TotalAmount
	}

	var groomingItems, allItems float64
	for _, item := range tx.Items {
		amount := item.Amount()
		allItems += amount
		if classify(item) == types.TargetGrooming {
			groomingItems += amount
		}
	}
	if allItems <= 0 {
		return 0, tx.TotalAmount
	}

	service = tx.TotalAmount * groomingItems / allItems
	return service, tx.TotalAmount - service
}
