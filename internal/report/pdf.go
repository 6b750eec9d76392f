package report

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

var (
	headerColor       = [3]int{33, 97, 140}
	headerTextColor   = [3]int{255, 255, 255}
	sectionTitleColor = [3]int{33, 97, 140}
	bodyTextColor     = [3]int{40, 40, 40}
	lineColor         = [3]int{200, 200, 200}
)

// WritePDF renders r as a one-column A4 document
func WritePDF(w io.Writer, r Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  Reporte integral"), "", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Periodo %s a %s",
		r.Period.From.Format("2006-01-02"), r.Period.To.Format("2006-01-02"))), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	section := func(title string, lines []string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)
		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(3)
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		for _, l := range lines {
			pdf.MultiCell(190, 5, tr(l), "", "L", false)
		}
		pdf.Ln(5)
	}

	if r.Financial == nil {
		section("Finanzas", []string{deniedText})
	} else {
		fin := r.Financial
		section("Finanzas", []string{
			fmt.Sprintf("Ingresos totales: %.2f", fin.TotalRevenue),
			fmt.Sprintf("Servicios: %.2f  Productos: %.2f", fin.ServiceRevenue, fin.ProductRevenue),
			fmt.Sprintf("Transacciones: %d  Ticket promedio: %.2f", fin.TransactionCount, fin.AverageTicket),
		})
	}

	if r.Predictions == nil {
		section("Pronóstico", []string{deniedText})
	} else {
		lines := []string{fmt.Sprintf("Tendencia diaria: %+.2f  Próximos 7 días: %.2f", r.Predictions.Slope, r.Predictions.NextWeekTotal)}
		for _, p := range r.Predictions.Forecast {
			lines = append(lines, fmt.Sprintf("%s  %.2f", p.Date, p.Predicted))
		}
		section("Pronóstico", lines)
	}

	if r.Clients == nil {
		section("Clientes", []string{deniedText})
	} else {
		lines := []string{fmt.Sprintf("Clientes activos: %d  Gasto en riesgo: %.2f", r.Clients.Total, r.Clients.AtRiskSpend)}
		for _, p := range r.Clients.Top {
			lines = append(lines, fmt.Sprintf("%s  %.2f  (%s)", p.Name, p.TotalSpent, p.Segment))
		}
		section("Clientes", lines)
	}

	ops := []string{fmt.Sprintf("Productos con inventario bajo: %d", len(r.Operations.LowStockProducts))}
	if b := r.Operations.Busiest; b != nil {
		ops = append(ops, fmt.Sprintf("Bloque más activo: %s %s (%.2f)", weekdayES(b.Weekday), b.Block, b.Amount))
	}
	section("Operación", ops)

	alertLines := make([]string, 0, len(r.Alerts))
	for _, a := range r.Alerts {
		alertLines = append(alertLines, fmt.Sprintf("[%s] %s: %s", a.Severity, a.Title, a.Message))
	}
	if len(alertLines) == 0 {
		alertLines = append(alertLines, "Sin alertas.")
	}
	section("Alertas", alertLines)

	if len(r.Recommendations) > 0 {
		section("Recomendaciones", r.Recommendations)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}
