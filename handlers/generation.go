package handlers

import (
	"net/http"

	"solar-prediction-api/generation"
	"solar-prediction-api/logger"

	"github.com/gin-gonic/gin"
)

type GenerationHandler struct {
	reader *generation.Reader
	log    *logger.Logger
}

func NewGenerationHandler(reader *generation.Reader, log *logger.Logger) *GenerationHandler {
	return &GenerationHandler{reader: reader, log: log.With("handler", "generation")}
}

func (h *GenerationHandler) Today(c *gin.Context) {
	points, err := h.reader.LatestDays(c.Request.Context(), c.Query("city"))
	if err != nil {
		h.log.Error("Error fetching today's power generation", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch today's power generation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": points})
}
