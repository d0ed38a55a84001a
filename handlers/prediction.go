package handlers

import (
	"net/http"

	"solar-prediction-api/apperr"
	"solar-prediction-api/estimator"
	"solar-prediction-api/features"
	"solar-prediction-api/logger"
	"solar-prediction-api/middleware"
	"solar-prediction-api/models"
	"solar-prediction-api/services"

	"github.com/gin-gonic/gin"
)

type PredictionHandler struct {
	svc *services.PredictionService
	log *logger.Logger
}

func NewPredictionHandler(svc *services.PredictionService, log *logger.Logger) *PredictionHandler {
	return &PredictionHandler{svc: svc, log: log.With("handler", "predictions")}
}

type PredictResponse struct {
	models.PredictionResult
	PredictionID string `json:"prediction_id,omitempty"`
}

func (h *PredictionHandler) Predict(c *gin.Context) {
	var raw map[string]interface{}
	if err := c.ShouldBindJSON(&raw); err != nil || raw == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be a JSON object"})
		return
	}

	p, err := h.svc.Predict(c.Request.Context(), middleware.CurrentUserID(c), raw)
	if err != nil {
		if apperr.Status(err) == http.StatusInternalServerError {
			h.log.Error("Error in solar power prediction", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while making the prediction"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PredictResponse{PredictionResult: p.Result, PredictionID: p.PredictionID})
}

func (h *PredictionHandler) Info(c *gin.Context) {
	est := h.svc.Estimator()
	c.JSON(http.StatusOK, gin.H{
		"model_type":          est.ModelType(),
		"model_available":     est.Available(),
		"dataset_source":      est.Source(),
		"required_parameters": features.Catalogue(),
		"output": gin.H{
			"predicted_power_generated": gin.H{
				"type":        "float",
				"description": "Predicted solar power generation",
				"unit":        estimator.Units,
			},
		},
	})
}

func (h *PredictionHandler) List(c *gin.Context) {
	p := ParsePagination(c)
	userID := middleware.CurrentUserID(c)

	preds := h.svc.List(c.Request.Context(), userID, p.Limit, p.Skip)
	c.JSON(http.StatusOK, gin.H{
		"predictions": preds,
		"count":       len(preds),
		"user_id":     userID,
	})
}

func (h *PredictionHandler) Latest(c *gin.Context) {
	rec, ok := h.svc.Latest(c.Request.Context(), middleware.CurrentUserID(c))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "No predictions found for this user"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *PredictionHandler) Stats(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"stats":   h.svc.Stats(c.Request.Context(), userID),
	})
}

func (h *PredictionHandler) Delete(c *gin.Context) {
	if !h.svc.Delete(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Prediction not found or not owned by user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Prediction deleted successfully"})
}

func (h *PredictionHandler) Recommendations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"recommendations": h.svc.Recommendations(c.Request.Context(), middleware.CurrentUserID(c)),
	})
}
