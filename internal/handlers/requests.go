package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aquaflow/aquaflow-backend/internal/models"
	"github.com/aquaflow/aquaflow-backend/internal/services"
	"github.com/aquaflow/aquaflow-backend/internal/storage"
)

type createWaterRequestInput struct {
	RequestID   string   `json:"requestId" binding:"required"`
	UserID      uint     `json:"userId" binding:"required"`
	Address     string   `json:"address" binding:"required"`
	WaterAmount int      `json:"waterAmount" binding:"required,gt=0"`
	Urgency     string   `json:"urgency" binding:"required,oneof=normal urgent emergency"`
	Notes       string   `json:"notes"`
	Latitude    *float64 `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
}

type updateWaterRequestInput struct {
	Status      *string    `json:"status" binding:"omitempty,oneof=pending accepted in_transit completed"`
	DriverID    *uint      `json:"driverId"`
	AcceptedAt  *time.Time `json:"acceptedAt"`
	InTransitAt *time.Time `json:"inTransitAt"`
	DeliveredAt *time.Time `json:"deliveredAt"`
	Rating      *int       `json:"rating" binding:"omitempty,min=1,max=5"`
	Feedback    *string    `json:"feedback"`
}

// CreateWaterRequest files a new delivery request. Status always starts as
// pending with no driver assigned, whatever the payload says.
func CreateWaterRequest(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input createWaterRequestInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, bindingErrors(err))
			return
		}

		owner, err := store.GetUser(input.UserID)
		if err != nil {
			internalError(c, "failed to fetch request owner", err)
			return
		}
		if owner == nil {
			c.JSON(400, gin.H{"error": "Unknown userId"})
			return
		}

		request := &models.WaterRequest{
			RequestID:   input.RequestID,
			UserID:      input.UserID,
			Address:     input.Address,
			WaterAmount: input.WaterAmount,
			Urgency:     input.Urgency,
			Notes:       input.Notes,
			Latitude:    input.Latitude,
			Longitude:   input.Longitude,
		}

		if err := store.CreateWaterRequest(request); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				c.JSON(409, gin.H{"error": "Request ID already exists"})
				return
			}
			internalError(c, "failed to create water request", err)
			return
		}

		c.JSON(201, request)
	}
}

// GetAllWaterRequests lists every request.
func GetAllWaterRequests(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		requests, err := store.GetAllWaterRequests()
		if err != nil {
			internalError(c, "failed to fetch water requests", err)
			return
		}
		c.JSON(200, requests)
	}
}

// GetWaterRequest looks up a single request by numeric id.
func GetWaterRequest(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		request, err := store.GetWaterRequest(id)
		if err != nil {
			internalError(c, "failed to fetch water request", err)
			return
		}
		if request == nil {
			c.JSON(404, gin.H{"error": "Request not found"})
			return
		}

		c.JSON(200, request)
	}
}

// GetWaterRequestByRequestID looks up a single request by its human-readable
// requestId.
func GetWaterRequestByRequestID(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		request, err := store.GetWaterRequestByRequestID(c.Param("requestId"))
		if err != nil {
			internalError(c, "failed to fetch water request", err)
			return
		}
		if request == nil {
			c.JSON(404, gin.H{"error": "Request not found"})
			return
		}

		c.JSON(200, request)
	}
}

// GetUserWaterRequests lists requests owned by a resident.
func GetUserWaterRequests(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := parseID(c, "userId")
		if !ok {
			return
		}

		requests, err := store.GetUserWaterRequests(userID)
		if err != nil {
			internalError(c, "failed to fetch water requests", err)
			return
		}
		c.JSON(200, requests)
	}
}

// GetDriverWaterRequests lists requests assigned to a driver.
func GetDriverWaterRequests(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := parseID(c, "driverId")
		if !ok {
			return
		}

		requests, err := store.GetDriverWaterRequests(driverID)
		if err != nil {
			internalError(c, "failed to fetch water requests", err)
			return
		}
		c.JSON(200, requests)
	}
}

// GetWaterRequestsByStatus lists requests in a given lifecycle state.
func GetWaterRequestsByStatus(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		requests, err := store.GetWaterRequestsByStatus(c.Param("status"))
		if err != nil {
			internalError(c, "failed to fetch water requests", err)
			return
		}
		c.JSON(200, requests)
	}
}

// UpdateWaterRequest merges the provided fields into a request. Status
// changes must follow the lifecycle order; the matching transition timestamp
// is stamped server-side when the payload omits it. The read-modify-write is
// deliberately unguarded: two racing accepts both succeed and the last
// driverId wins.
func UpdateWaterRequest(store storage.Storage, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		var input updateWaterRequestInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, bindingErrors(err))
			return
		}

		request, err := store.GetWaterRequest(id)
		if err != nil {
			internalError(c, "failed to fetch water request", err)
			return
		}
		if request == nil {
			c.JSON(404, gin.H{"error": "Request not found"})
			return
		}

		update, errMsg := buildLifecycleUpdate(request, input)
		if errMsg != "" {
			c.JSON(400, gin.H{"error": errMsg, "kind": "invalid_transition"})
			return
		}

		updated, err := store.UpdateWaterRequest(id, update)
		if err != nil {
			internalError(c, "failed to update water request", err)
			return
		}
		if updated == nil {
			c.JSON(404, gin.H{"error": "Request not found"})
			return
		}

		hub.SendRequestUpdate(updated)
		c.JSON(200, updated)
	}
}

// buildLifecycleUpdate validates a PATCH payload against the request's
// current state and fills in the server-side timestamp defaults. It returns
// a non-empty message when the payload breaks a lifecycle rule.
func buildLifecycleUpdate(request *models.WaterRequest, input updateWaterRequestInput) (storage.WaterRequestUpdate, string) {
	update := storage.WaterRequestUpdate{
		Status:      input.Status,
		DriverID:    input.DriverID,
		AcceptedAt:  input.AcceptedAt,
		InTransitAt: input.InTransitAt,
		DeliveredAt: input.DeliveredAt,
		Rating:      input.Rating,
		Feedback:    input.Feedback,
	}

	finalStatus := models.RequestStatus(request.Status)
	if input.Status != nil {
		next := models.RequestStatus(*input.Status)
		if err := models.CanTransition(finalStatus, next); err != nil {
			return update, err.Error()
		}
		if next != models.StatusPending && request.DriverID == nil && input.DriverID == nil {
			return update, "driverId must be set before the request leaves pending"
		}
		finalStatus = next

		now := time.Now()
		switch next {
		case models.StatusAccepted:
			if input.AcceptedAt == nil && request.AcceptedAt == nil {
				update.AcceptedAt = &now
			}
		case models.StatusInTransit:
			if input.InTransitAt == nil && request.InTransitAt == nil {
				update.InTransitAt = &now
			}
		case models.StatusCompleted:
			if input.DeliveredAt == nil && request.DeliveredAt == nil {
				update.DeliveredAt = &now
			}
		}
	}

	if (input.Rating != nil || input.Feedback != nil) && finalStatus != models.StatusCompleted {
		return update, "rating and feedback apply to completed requests only"
	}

	return update, ""
}

type rateRequestInput struct {
	Rating   int     `json:"rating" binding:"required,min=1,max=5"`
	Feedback *string `json:"feedback"`
}

// AcceptWaterRequest lets the authenticated driver claim a pending request.
// The driver id comes from the token, never from the body.
func AcceptWaterRequest(store storage.Storage, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID := c.GetUint("userId")
		advanceRequest(c, store, hub, models.StatusAccepted, func(request *models.WaterRequest, update *storage.WaterRequestUpdate) string {
			update.DriverID = &driverID
			now := time.Now()
			update.AcceptedAt = &now
			return ""
		})
	}
}

// StartWaterRequestTransit marks an accepted request as on the way. Only the
// assigned driver may do this.
func StartWaterRequestTransit(store storage.Storage, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID := c.GetUint("userId")
		advanceRequest(c, store, hub, models.StatusInTransit, func(request *models.WaterRequest, update *storage.WaterRequestUpdate) string {
			if request.DriverID == nil || *request.DriverID != driverID {
				return "request is assigned to a different driver"
			}
			now := time.Now()
			update.InTransitAt = &now
			return ""
		})
	}
}

// CompleteWaterRequest marks an in-transit request as delivered. Only the
// assigned driver may do this.
func CompleteWaterRequest(store storage.Storage, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID := c.GetUint("userId")
		advanceRequest(c, store, hub, models.StatusCompleted, func(request *models.WaterRequest, update *storage.WaterRequestUpdate) string {
			if request.DriverID == nil || *request.DriverID != driverID {
				return "request is assigned to a different driver"
			}
			now := time.Now()
			update.DeliveredAt = &now
			return ""
		})
	}
}

// advanceRequest is the shared skeleton of the driver action routes: load,
// validate the single-step transition, apply extras, persist, broadcast.
func advanceRequest(c *gin.Context, store storage.Storage, hub *services.Hub, target models.RequestStatus,
	prepare func(*models.WaterRequest, *storage.WaterRequestUpdate) string) {

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	request, err := store.GetWaterRequest(id)
	if err != nil {
		internalError(c, "failed to fetch water request", err)
		return
	}
	if request == nil {
		c.JSON(404, gin.H{"error": "Request not found"})
		return
	}

	if err := models.CanTransition(models.RequestStatus(request.Status), target); err != nil {
		c.JSON(400, gin.H{"error": err.Error(), "kind": "invalid_transition"})
		return
	}

	status := string(target)
	update := storage.WaterRequestUpdate{Status: &status}
	if msg := prepare(request, &update); msg != "" {
		c.JSON(403, gin.H{"error": msg})
		return
	}

	updated, err := store.UpdateWaterRequest(id, update)
	if err != nil {
		internalError(c, "failed to update water request", err)
		return
	}
	if updated == nil {
		c.JSON(404, gin.H{"error": "Request not found"})
		return
	}

	hub.SendRequestUpdate(updated)
	c.JSON(200, updated)
}

// RateWaterRequest records the resident's rating once a delivery completed.
// Only the request owner may rate.
func RateWaterRequest(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		var input rateRequestInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, bindingErrors(err))
			return
		}

		request, err := store.GetWaterRequest(id)
		if err != nil {
			internalError(c, "failed to fetch water request", err)
			return
		}
		if request == nil {
			c.JSON(404, gin.H{"error": "Request not found"})
			return
		}
		if request.UserID != userID {
			c.JSON(403, gin.H{"error": "Only the request owner can rate it"})
			return
		}
		if request.Status != string(models.StatusCompleted) {
			c.JSON(400, gin.H{"error": "Only completed requests can be rated"})
			return
		}

		updated, err := store.UpdateWaterRequest(id, storage.WaterRequestUpdate{
			Rating:   &input.Rating,
			Feedback: input.Feedback,
		})
		if err != nil {
			internalError(c, "failed to update water request", err)
			return
		}

		c.JSON(200, updated)
	}
}

// GetDriverStats summarises a driver's delivery record from the request
// table. Reads are independent of any in-flight accepts; counts may lag a
// racing write.
func GetDriverStats(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := parseID(c, "driverId")
		if !ok {
			return
		}

		requests, err := store.GetDriverWaterRequests(driverID)
		if err != nil {
			internalError(c, "failed to fetch water requests", err)
			return
		}

		var completed, inTransit, accepted, ratingSum, rated int
		var liters int
		for _, r := range requests {
			switch models.RequestStatus(r.Status) {
			case models.StatusCompleted:
				completed++
				liters += r.WaterAmount
			case models.StatusInTransit:
				inTransit++
			case models.StatusAccepted:
				accepted++
			}
			if r.Rating != nil {
				ratingSum += *r.Rating
				rated++
			}
		}

		var avgRating float64
		if rated > 0 {
			avgRating = float64(ratingSum) / float64(rated)
		}

		c.JSON(200, gin.H{
			"driverId":        driverID,
			"assigned":        len(requests),
			"accepted":        accepted,
			"inTransit":       inTransit,
			"completed":       completed,
			"litersDelivered": liters,
			"averageRating":   avgRating,
		})
	}
}
