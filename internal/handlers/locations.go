package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/aquaflow/aquaflow-backend/internal/models"
	"github.com/aquaflow/aquaflow-backend/internal/services"
	"github.com/aquaflow/aquaflow-backend/internal/storage"
)

type createDriverLocationInput struct {
	DriverID  uint     `json:"driverId" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
}

// CreateDriverLocation appends a position sample to the location log, warms
// the latest-location cache, and pings websocket subscribers.
func CreateDriverLocation(store storage.Storage, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input createDriverLocationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, bindingErrors(err))
			return
		}

		location := &models.DriverLocation{
			DriverID:  input.DriverID,
			Latitude:  *input.Latitude,
			Longitude: *input.Longitude,
		}

		if err := store.CreateDriverLocation(location); err != nil {
			internalError(c, "failed to create driver location", err)
			return
		}

		if err := services.CacheDriverLocation(c.Request.Context(), location); err != nil {
			logrus.WithError(err).Warn("failed to cache driver location")
		}
		hub.SendDriverLocationUpdate(location)

		c.JSON(201, location)
	}
}

// GetLatestDriverLocation returns the most recent sample for a driver. This
// is a singular lookup, so no samples means 404.
func GetLatestDriverLocation(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := parseID(c, "driverId")
		if !ok {
			return
		}

		ctx := c.Request.Context()
		if cached, err := services.GetCachedDriverLocation(ctx, driverID); err == nil && cached != nil {
			c.JSON(200, cached)
			return
		}

		location, err := store.GetLatestDriverLocation(driverID)
		if err != nil {
			internalError(c, "failed to fetch driver location", err)
			return
		}
		if location == nil {
			c.JSON(404, gin.H{"error": "No location recorded for driver"})
			return
		}

		c.JSON(200, location)
	}
}

// GetAllDriverLocations lists every recorded sample.
func GetAllDriverLocations(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		locations, err := store.GetAllDriverLocations()
		if err != nil {
			internalError(c, "failed to fetch driver locations", err)
			return
		}
		c.JSON(200, locations)
	}
}
