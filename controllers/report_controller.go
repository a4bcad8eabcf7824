package controllers

import (
	"backoffice/services"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ReportController отдает дашборд, отчеты и выгрузки
type ReportController struct {
	dashboard *services.DashboardService
	exports   *services.ExportService
}

func NewReportController(dashboard *services.DashboardService, exports *services.ExportService) *ReportController {
	return &ReportController{dashboard: dashboard, exports: exports}
}

// Summary - /dashboard/stats и /reports/summary
func (h *ReportController) Summary(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context(), actorOf(c), services.ReportFilter{
		From: c.Query("from"),
		To:   c.Query("to"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ReportController) Customers(c *gin.Context) {
	report, err := h.dashboard.CustomerReport(c.Request.Context(), actorOf(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportDeposits - выгрузка взносов в .xlsx или Tally XML
func (h *ReportController) ExportDeposits(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", services.FormatXLSX))
	data, err := h.exports.Deposits(c.Request.Context(), actorOf(c), depositFilter(c), format)
	if err != nil {
		respondError(c, err)
		return
	}

	contentType := xlsxContentType
	if format == services.FormatXML {
		contentType = "application/xml"
	}
	c.Header("Content-Disposition", `attachment; filename="deposits.`+format+`"`)
	c.Data(http.StatusOK, contentType, data)
}
