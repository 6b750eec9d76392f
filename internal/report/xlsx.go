package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/kosarica/grooming-service/internal/types"
)

// Sheet names of the XLSX export
const (
	SheetSummary  = "Summary"
	SheetForecast = "Forecast"
	SheetSegments = "Segments"
	SheetAlerts   = "Alerts"
)

const deniedText = "Sin permiso para esta sección"

// WriteXLSX renders r as a workbook. Sections the report withholds are
// written as a single notice row.
func WriteXLSX(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetForecast, SheetSegments, SheetAlerts} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	sheets := []struct {
		name string
		rows [][]interface{}
	}{
		{SheetSummary, summaryRows(r)},
		{SheetForecast, forecastRows(r)},
		{SheetSegments, segmentRows(r)},
		{SheetAlerts, alertRows(r)},
	}
	for _, s := range sheets {
		if err := writeRows(f, s.name, s.rows); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func summaryRows(r Report) [][]interface{} {
	rows := [][]interface{}{
		{"Periodo", r.Period.From.Format("2006-01-02"), r.Period.To.Format("2006-01-02")},
		{"Generado", r.GeneratedAt.Format("2006-01-02 15:04")},
		{},
	}
	if r.Financial == nil {
		rows = append(rows, []interface{}{"Finanzas", deniedText})
	} else {
		fin := r.Financial
		rows = append(rows,
			[]interface{}{"Ingresos totales", fin.TotalRevenue},
			[]interface{}{"Ingresos por servicios", fin.ServiceRevenue},
			[]interface{}{"Ingresos por productos", fin.ProductRevenue},
			[]interface{}{"Impuestos", fin.TaxCollected},
			[]interface{}{"Transacciones", fin.TransactionCount},
			[]interface{}{"Ticket promedio", fin.AverageTicket},
		)
	}
	if r.Operations.Busiest != nil {
		rows = append(rows, []interface{}{"Bloque más activo", r.Operations.Busiest.Weekday, string(r.Operations.Busiest.Block), r.Operations.Busiest.Amount})
	}
	rows = append(rows, []interface{}{"Productos con inventario bajo", len(r.Operations.LowStockProducts)})
	if r.External != nil && r.External.Opportunity != nil {
		rows = append(rows, []interface{}{"Oportunidad", r.External.Opportunity.Score, string(r.External.Opportunity.Level)})
	}

	rows = append(rows, []interface{}{}, []interface{}{"Recomendaciones"})
	for _, rec := range r.Recommendations {
		rows = append(rows, []interface{}{rec})
	}
	return rows
}

func forecastRows(r Report) [][]interface{} {
	if r.Financial == nil || r.Predictions == nil {
		return [][]interface{}{{deniedText}}
	}
	rows := [][]interface{}{{"Fecha", "Servicios", "Productos", "Total", "Tipo"}}
	for _, p := range r.Financial.Daily {
		rows = append(rows, []interface{}{p.Date, p.ServiceRevenue, p.ProductRevenue, p.TotalRevenue, "histórico"})
	}
	for _, p := range r.Predictions.Forecast {
		rows = append(rows, []interface{}{p.Date, nil, nil, p.Predicted, "pronóstico"})
	}
	return rows
}

func segmentRows(r Report) [][]interface{} {
	if r.Clients == nil {
		return [][]interface{}{{deniedText}}
	}
	rows := [][]interface{}{{"Segmento", "Clientes"}}
	for _, seg := range []types.Segment{
		types.SegmentVIP, types.SegmentLoyal, types.SegmentPromising,
		types.SegmentNew, types.SegmentAtRisk, types.SegmentLost,
	} {
		rows = append(rows, []interface{}{string(seg), r.Clients.Segments[seg]})
	}
	rows = append(rows, []interface{}{}, []interface{}{"Cliente", "Gasto total", "Visitas", "Días sin visita", "Segmento"})
	for _, p := range r.Clients.Top {
		rows = append(rows, []interface{}{p.Name, p.TotalSpent, p.VisitCount, p.RecencyDays, string(p.Segment)})
	}
	return rows
}

func alertRows(r Report) [][]interface{} {
	rows := [][]interface{}{{"Severidad", "Categoría", "Título", "Mensaje"}}
	for _, a := range r.Alerts {
		rows = append(rows, []interface{}{string(a.Severity), string(a.Category), a.Title, a.Message})
	}
	return rows
}
