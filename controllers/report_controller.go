package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kingfisher-trust/kingfisher-records/config"
	"github.com/kingfisher-trust/kingfisher-records/services"
)

func buildReport(c *gin.Context) (*services.Report, bool) {
	report, err := services.NewReportService(config.GetDB()).BuildReport(
		c.Request.Context(), services.ReportKind(c.Param("kind")), c.Query("start"), c.Query("end"),
	)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return report, true
}

// GetReport handles GET /api/v1/reports/:kind?start=&end=
func GetReport(c *gin.Context) {
	report, ok := buildReport(c)
	if !ok {
		return
	}
	respondData(c, http.StatusOK, report)
}

// ExportReport handles POST /api/v1/reports/:kind/export?start=&end=
func ExportReport(c *gin.Context) {
	storage := services.GetReportStorage()
	if storage == nil {
		respondFailure(c, http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "Report export is not configured")
		return
	}

	report, ok := buildReport(c)
	if !ok {
		return
	}

	result, err := services.NewReportExporter(storage).Export(c.Request.Context(), report)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, result)
}
