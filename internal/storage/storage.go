// Package storage is the sole authority for reading and writing application
// entities. Route handlers depend on the Storage interface and never issue
// queries themselves; the interface is satisfied by an in-memory arena and by
// a gorm-backed relational implementation, selected at startup.
package storage

import (
	"errors"
	"time"

	"github.com/aquaflow/aquaflow-backend/internal/models"
)

// ErrDuplicate is returned by create operations when a unique field
// (email, username, requestId) is already taken.
var ErrDuplicate = errors.New("storage: duplicate unique field")

// WaterRequestUpdate carries the fields a PATCH may merge into an existing
// request. Nil means "leave unchanged". Transition legality is the caller's
// responsibility; storage merges blindly.
type WaterRequestUpdate struct {
	Status      *string
	DriverID    *uint
	AcceptedAt  *time.Time
	InTransitAt *time.Time
	DeliveredAt *time.Time
	Rating      *int
	Feedback    *string
}

// Storage is the capability interface over the four entity tables. Lookups
// return (nil, nil) on miss rather than an error; list operations return an
// empty slice on no match.
type Storage interface {
	// Users
	GetUser(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	CreateUser(user *models.User) error
	GetUsersByRole(role string) ([]models.User, error)
	SetUserProfileImage(id uint, url string) (*models.User, error)

	// Water requests
	GetWaterRequest(id uint) (*models.WaterRequest, error)
	GetWaterRequestByRequestID(requestID string) (*models.WaterRequest, error)
	CreateWaterRequest(request *models.WaterRequest) error
	UpdateWaterRequest(id uint, update WaterRequestUpdate) (*models.WaterRequest, error)
	GetUserWaterRequests(userID uint) ([]models.WaterRequest, error)
	GetDriverWaterRequests(driverID uint) ([]models.WaterRequest, error)
	GetWaterRequestsByStatus(status string) ([]models.WaterRequest, error)
	GetAllWaterRequests() ([]models.WaterRequest, error)

	// Driver locations
	CreateDriverLocation(location *models.DriverLocation) error
	GetLatestDriverLocation(driverID uint) (*models.DriverLocation, error)
	GetAllDriverLocations() ([]models.DriverLocation, error)

	// Anomalies
	CreateAnomaly(anomaly *models.Anomaly) error
	GetAnomaliesByRequestID(requestID uint) ([]models.Anomaly, error)
	GetAllAnomalies() ([]models.Anomaly, error)
	ResolveAnomaly(id uint) (*models.Anomaly, error)
}

// applyUpdate merges the provided fields into a request. Shared by both
// implementations so merge semantics cannot drift.
func applyUpdate(request *models.WaterRequest, update WaterRequestUpdate) {
	if update.Status != nil {
		request.Status = *update.Status
	}
	if update.DriverID != nil {
		request.DriverID = update.DriverID
	}
	if update.AcceptedAt != nil {
		request.AcceptedAt = update.AcceptedAt
	}
	if update.InTransitAt != nil {
		request.InTransitAt = update.InTransitAt
	}
	if update.DeliveredAt != nil {
		request.DeliveredAt = update.DeliveredAt
	}
	if update.Rating != nil {
		request.Rating = update.Rating
	}
	if update.Feedback != nil {
		request.Feedback = update.Feedback
	}
}
