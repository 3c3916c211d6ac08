package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/aquaflow/aquaflow-backend/internal/models"
	"github.com/aquaflow/aquaflow-backend/internal/storage"
)

type createAnomalyInput struct {
	RequestID   uint   `json:"requestId" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// CreateAnomaly records a flagged irregularity. Detection itself happens
// elsewhere; this endpoint (and the queue consumer) only persist the result.
func CreateAnomaly(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input createAnomalyInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, bindingErrors(err))
			return
		}

		anomaly := &models.Anomaly{
			RequestID:   input.RequestID,
			Type:        input.Type,
			Description: input.Description,
		}

		if err := store.CreateAnomaly(anomaly); err != nil {
			internalError(c, "failed to create anomaly", err)
			return
		}

		c.JSON(201, anomaly)
	}
}

// GetAllAnomalies lists every anomaly, resolved or not.
func GetAllAnomalies(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		anomalies, err := store.GetAllAnomalies()
		if err != nil {
			internalError(c, "failed to fetch anomalies", err)
			return
		}
		c.JSON(200, anomalies)
	}
}

// GetAnomaliesByRequest lists anomalies flagged on one water request.
func GetAnomaliesByRequest(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID, ok := parseID(c, "requestId")
		if !ok {
			return
		}

		anomalies, err := store.GetAnomaliesByRequestID(requestID)
		if err != nil {
			internalError(c, "failed to fetch anomalies", err)
			return
		}
		c.JSON(200, anomalies)
	}
}

// ResolveAnomaly flips resolved to true. Resolving an already-resolved
// anomaly is a no-op, not an error.
func ResolveAnomaly(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		anomaly, err := store.ResolveAnomaly(id)
		if err != nil {
			internalError(c, "failed to resolve anomaly", err)
			return
		}
		if anomaly == nil {
			c.JSON(404, gin.H{"error": "Anomaly not found"})
			return
		}

		c.JSON(200, anomaly)
	}
}
