package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kosarica/grooming-service/internal/alerts"
	"github.com/kosarica/grooming-service/internal/forecast"
	"github.com/kosarica/grooming-service/internal/opportunity"
	"github.com/kosarica/grooming-service/internal/types"
)

var day0 = time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC) // Monday

func groomingOnly(types.LineItem) types.RevenueTarget { return types.TargetGrooming }

func sampleInput() Input {
	txs := []types.Transaction{
		{ID: "t1", CreatedAt: day0, TotalAmount: 100, TaxAmount: 16, PaymentMethod: "cash"},
		{ID: "t2", CreatedAt: day0.Add(24 * time.Hour), TotalAmount: 300, PaymentMethod: "card"},
	}
	opp := opportunity.Score(types.Weather{TemperatureC: 22}, types.Traffic{Level: types.TrafficLow}, types.Trends{Interest: 90})
	return Input{
		Period:       Period{From: day0.Add(-time.Hour), To: day0.Add(48 * time.Hour)},
		Transactions: txs,
		Profiles: []types.ClientProfile{
			{ClientID: "c1", Name: "Ana", TotalSpent: 300, Segment: types.SegmentAtRisk},
			{ClientID: "c2", Name: "Beto", TotalSpent: 100, Segment: types.SegmentNew},
		},
		Forecast: forecast.Forecast(txs, groomingOnly),
		Products: []types.Product{
			{ID: "p1", Name: "Shampoo", Stock: 1, MinStock: 3},
			{ID: "p2", Name: "Collar", Stock: 10, MinStock: 3},
		},
		Alerts: []types.Alert{
			{ID: "a1", Category: types.AlertFinancial, Severity: types.SeverityWarning, Title: "Ingresos a la baja"},
			{ID: "a2", Category: types.AlertClients, Severity: types.SeverityWarning, Title: "Clientes en riesgo"},
			{ID: "a3", Category: types.AlertInventory, Severity: types.SeverityWarning, Title: "Inventario bajo"},
		},
		External: &alerts.ExternalFactors{Opportunity: &opp},
		Classify: groomingOnly,
		Now:      day0.Add(72 * time.Hour),
	}
}

func TestPermissionsForRole(t *testing.T) {
	assert.Equal(t, Permissions{Financial: true, Clients: true}, PermissionsForRole(RoleAdmin))
	assert.Equal(t, Permissions{Financial: true, Clients: true}, PermissionsForRole(RoleManager))
	assert.Equal(t, Permissions{}, PermissionsForRole(RoleStaff))
	assert.Equal(t, RoleStaff, ParseRole("intruder"))
	assert.Equal(t, RoleAdmin, ParseRole(" Admin "))
}

func TestAssemble_FullAccess(t *testing.T) {
	r := Assemble(sampleInput(), PermissionsForRole(RoleAdmin))

	require.NotNil(t, r.Financial)
	assert.Equal(t, 400.0, r.Financial.TotalRevenue)
	assert.Equal(t, 400.0, r.Financial.ServiceRevenue)
	assert.Equal(t, 200.0, r.Financial.AverageTicket)
	assert.Equal(t, 16.0, r.Financial.TaxCollected)
	assert.Equal(t, map[string]float64{"cash": 100, "card": 300}, r.Financial.ByPaymentMethod)
	assert.Len(t, r.Financial.Daily, 2)

	require.NotNil(t, r.Predictions)
	assert.Len(t, r.Predictions.Forecast, forecast.Horizon)
	assert.Greater(t, r.Predictions.Slope, 0.0)

	require.NotNil(t, r.Clients)
	assert.Equal(t, 2, r.Clients.Total)
	assert.Equal(t, 300.0, r.Clients.AtRiskSpend)
	assert.Equal(t, 1, r.Clients.Segments[types.SegmentAtRisk])

	assert.Len(t, r.Alerts, 3)
	require.Len(t, r.Operations.LowStockProducts, 1)
	assert.Equal(t, "p1", r.Operations.LowStockProducts[0].ID)
	require.NotNil(t, r.Operations.Busiest)
	assert.Equal(t, "Tuesday", r.Operations.Busiest.Weekday)

	assert.Contains(t, r.Recommendations, "Contacta a los 1 clientes en riesgo con una oferta de regreso.")
	assert.Equal(t, r.External.Opportunity.Recommendation, r.Recommendations[0])
}

func TestAssemble_StaffSeesNullSections(t *testing.T) {
	r := Assemble(sampleInput(), PermissionsForRole(RoleStaff))

	assert.Nil(t, r.Financial)
	assert.Nil(t, r.Predictions)
	assert.Nil(t, r.Clients)
	require.Len(t, r.Alerts, 1)
	assert.Equal(t, types.AlertInventory, r.Alerts[0].Category)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{"financial", "clients", "predictions"} {
		raw, ok := doc[key]
		require.True(t, ok, "key %s must be present", key)
		assert.Equal(t, "null", string(raw))
	}
	assert.Contains(t, doc, "external_data")

	var ops map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc["operations"], &ops))
	for _, key := range []string{"heatmap", "busiest"} {
		raw, ok := ops[key]
		require.True(t, ok, "operations.%s must be present", key)
		assert.Equal(t, "null", string(raw))
	}
	require.NotNil(t, r.Operations.QuietestDay)
	assert.Len(t, r.Operations.LowStockProducts, 1)
}

func TestAssemble_StaffSeesNoAmounts(t *testing.T) {
	in := Input{
		Transactions: []types.Transaction{{
			ID:          "t1",
			CreatedAt:   time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC),
			TotalAmount: 1234.5,
		}},
	}

	r := Assemble(in, PermissionsForRole(RoleStaff))
	assert.Nil(t, r.Operations.Heatmap)
	assert.Nil(t, r.Operations.Busiest)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "1234.5")

	r = Assemble(in, PermissionsForRole(RoleAdmin))
	require.NotNil(t, r.Operations.Heatmap)
	require.NotNil(t, r.Operations.Busiest)
	assert.Equal(t, 1234.5, r.Operations.Busiest.Amount)
}

func TestAssemble_Empty(t *testing.T) {
	r := Assemble(Input{}, PermissionsForRole(RoleAdmin))

	require.NotNil(t, r.Financial)
	assert.Zero(t, r.Financial.TotalRevenue)
	assert.NotNil(t, r.Financial.Daily)
	assert.NotNil(t, r.Predictions.Forecast)
	assert.NotNil(t, r.Alerts)
	assert.NotNil(t, r.Recommendations)
	assert.Nil(t, r.Operations.Busiest)
	assert.Nil(t, r.Operations.QuietestDay)
	assert.Empty(t, r.Clients.Top)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, Assemble(sampleInput(), PermissionsForRole(RoleStaff))))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetForecast, SheetSegments, SheetAlerts}, f.GetSheetList())

	v, err := f.GetCellValue(SheetForecast, "A1")
	require.NoError(t, err)
	assert.Equal(t, deniedText, v)

	v, err = f.GetCellValue(SheetAlerts, "C2")
	require.NoError(t, err)
	assert.Equal(t, "Inventario bajo", v)
}

func TestWriteXLSX_FullAccess(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, Assemble(sampleInput(), PermissionsForRole(RoleAdmin))))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetForecast)
	require.NoError(t, err)
	// header, 2 history days, 7 forecast days
	assert.Len(t, rows, 1+2+forecast.Horizon)
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, Assemble(sampleInput(), PermissionsForRole(RoleManager))))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
