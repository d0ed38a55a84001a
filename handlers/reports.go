package handlers

import (
	"fmt"
	"net/http"

	"solar-prediction-api/analytics"
	"solar-prediction-api/logger"
	"solar-prediction-api/middleware"
	"solar-prediction-api/report"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	exporter *report.Exporter
	log      *logger.Logger
}

func NewReportHandler(exporter *report.Exporter, log *logger.Logger) *ReportHandler {
	return &ReportHandler{exporter: exporter, log: log.With("handler", "reports")}
}

func (h *ReportHandler) Export(c *gin.Context) {
	format, err := report.ParseFormat(c.DefaultQuery("format", "csv"))
	if err != nil {
		respondError(c, err)
		return
	}
	period, err := analytics.ParseGranularity(c.DefaultQuery("period", "daily"))
	if err != nil {
		respondError(c, err)
		return
	}

	doc, err := h.exporter.Export(c.Request.Context(), middleware.CurrentUserID(c), format, period)
	if err != nil {
		h.log.Error("Report export failed", "user_id", middleware.CurrentUserID(c), "format", format, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export report"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}
