package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"laluna/internal/domain/reports"
	"laluna/internal/infrastructure/http/v1/dto"
)

// ReportsHandler serves the sales dashboard and its PDF export.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// Reports handles GET /orders/reports
func (h *ReportsHandler) Reports(c *gin.Context) {
	var q dto.ReportsQuery
	if !h.BindQuery(c, &q) {
		return
	}

	r, err := h.service.Build(c.Request.Context(), q.Months)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromReports(r))
}

// ReportsPDF handles GET /orders/reports/pdf
func (h *ReportsHandler) ReportsPDF(c *gin.Context) {
	var q dto.ReportsQuery
	if !h.BindQuery(c, &q) {
		return
	}

	pdf, err := h.service.BuildPDF(c.Request.Context(), q.Months)
	if err != nil {
		h.Error(c, err)
		return
	}

	filename := fmt.Sprintf("reporte-ventas-%s.pdf", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
