package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kosarica/grooming-service/internal/middleware"
	"github.com/kosarica/grooming-service/internal/report"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// ComprehensiveReport assembles the report for the caller's role
// @Summary Comprehensive report
// @Description Sections the X-Staff-Role may not see are null
// @Tags reports
// @Produce json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce application/pdf
// @Param from query string false "Start date"
// @Param to query string false "End date"
// @Param format query string false "Output format" Enums(json, xlsx, pdf) default(json)
// @Param X-Staff-Role header string false "Caller role" Enums(admin, manager, staff)
// @Success 200 {object} report.Report
// @Failure 400 {object} map[string]string "Bad request"
// @Router /reports/comprehensive [get]
func (h *Handler) ComprehensiveReport(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "xlsx" && format != "pdf" {
		h.respondError(c, ErrInvalidRequest{Field: "format", Reason: "must be json, xlsx or pdf"})
		return
	}
	p, err := h.period(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	r, err := h.service.Report(c.Request.Context(), p, middleware.RoleFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("reporte_%s_%s", p.From.Format(dateLayout), p.To.Format(dateLayout))
	var buf bytes.Buffer
	switch format {
	case "xlsx":
		if err := report.WriteXLSX(&buf, r); err != nil {
			h.respondError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, filename))
		c.Data(http.StatusOK, contentTypeXLSX, buf.Bytes())
	case "pdf":
		if err := report.WritePDF(&buf, r); err != nil {
			h.respondError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, filename))
		c.Data(http.StatusOK, contentTypePDF, buf.Bytes())
	default:
		c.JSON(http.StatusOK, r)
	}
}
