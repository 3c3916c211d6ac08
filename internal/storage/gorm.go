package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/aquaflow/aquaflow-backend/internal/models"
)

// GormStorage is the relational implementation of Storage. Uniqueness is
// pre-checked so both postgres and sqlite report ErrDuplicate the same way;
// the database constraint still backstops races.
type GormStorage struct {
	db *gorm.DB
}

// NewGormStorage wraps an open gorm connection.
func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{db: db}
}

func firstOrNil[T any](tx *gorm.DB) (*T, error) {
	var record T
	if err := tx.First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Users

func (s *GormStorage) GetUser(id uint) (*models.User, error) {
	return firstOrNil[models.User](s.db.Where("id = ?", id))
}

func (s *GormStorage) GetUserByEmail(email string) (*models.User, error) {
	return firstOrNil[models.User](s.db.Where("email = ?", email))
}

func (s *GormStorage) GetUserByUsername(username string) (*models.User, error) {
	return firstOrNil[models.User](s.db.Where("username = ?", username))
}

func (s *GormStorage) CreateUser(user *models.User) error {
	var count int64
	if err := s.db.Model(&models.User{}).
		Where("email = ? OR username = ?", user.Email, user.Username).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}
	if user.Role == "" {
		user.Role = string(models.RoleResident)
	}
	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *GormStorage) SetUserProfileImage(id uint, url string) (*models.User, error) {
	user, err := s.GetUser(id)
	if err != nil || user == nil {
		return nil, err
	}
	user.ProfileImageURL = url
	if err := s.db.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *GormStorage) GetUsersByRole(role string) ([]models.User, error) {
	users := []models.User{}
	if err := s.db.Where("role = ?", role).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Water requests

func (s *GormStorage) GetWaterRequest(id uint) (*models.WaterRequest, error) {
	return firstOrNil[models.WaterRequest](s.db.Where("id = ?", id))
}

func (s *GormStorage) GetWaterRequestByRequestID(requestID string) (*models.WaterRequest, error) {
	return firstOrNil[models.WaterRequest](s.db.Where("request_id = ?", requestID))
}

func (s *GormStorage) CreateWaterRequest(request *models.WaterRequest) error {
	var count int64
	if err := s.db.Model(&models.WaterRequest{}).
		Where("request_id = ?", request.RequestID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}
	request.Status = string(models.StatusPending)
	request.DriverID = nil
	request.AcceptedAt = nil
	request.InTransitAt = nil
	request.DeliveredAt = nil
	request.Rating = nil
	request.Feedback = nil
	if err := s.db.Create(request).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *GormStorage) UpdateWaterRequest(id uint, update WaterRequestUpdate) (*models.WaterRequest, error) {
	request, err := s.GetWaterRequest(id)
	if err != nil || request == nil {
		return nil, err
	}
	applyUpdate(request, update)
	if err := s.db.Save(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

func (s *GormStorage) GetUserWaterRequests(userID uint) ([]models.WaterRequest, error) {
	requests := []models.WaterRequest{}
	if err := s.db.Where("user_id = ?", userID).Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *GormStorage) GetDriverWaterRequests(driverID uint) ([]models.WaterRequest, error) {
	requests := []models.WaterRequest{}
	if err := s.db.Where("driver_id = ?", driverID).Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *GormStorage) GetWaterRequestsByStatus(status string) ([]models.WaterRequest, error) {
	requests := []models.WaterRequest{}
	if err := s.db.Where("status = ?", status).Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *GormStorage) GetAllWaterRequests() ([]models.WaterRequest, error) {
	requests := []models.WaterRequest{}
	if err := s.db.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// Driver locations

func (s *GormStorage) CreateDriverLocation(location *models.DriverLocation) error {
	location.Timestamp = time.Now()
	return s.db.Create(location).Error
}

func (s *GormStorage) GetLatestDriverLocation(driverID uint) (*models.DriverLocation, error) {
	return firstOrNil[models.DriverLocation](
		s.db.Where("driver_id = ?", driverID).Order("timestamp DESC, id DESC"))
}

func (s *GormStorage) GetAllDriverLocations() ([]models.DriverLocation, error) {
	locations := []models.DriverLocation{}
	if err := s.db.Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// Anomalies

func (s *GormStorage) CreateAnomaly(anomaly *models.Anomaly) error {
	anomaly.Resolved = false
	return s.db.Create(anomaly).Error
}

func (s *GormStorage) GetAnomaliesByRequestID(requestID uint) ([]models.Anomaly, error) {
	anomalies := []models.Anomaly{}
	if err := s.db.Where("request_id = ?", requestID).Find(&anomalies).Error; err != nil {
		return nil, err
	}
	return anomalies, nil
}

func (s *GormStorage) GetAllAnomalies() ([]models.Anomaly, error) {
	anomalies := []models.Anomaly{}
	if err := s.db.Find(&anomalies).Error; err != nil {
		return nil, err
	}
	return anomalies, nil
}

func (s *GormStorage) ResolveAnomaly(id uint) (*models.Anomaly, error) {
	anomaly, err := firstOrNil[models.Anomaly](s.db.Where("id = ?", id))
	if err != nil || anomaly == nil {
		return nil, err
	}
	anomaly.Resolved = true
	if err := s.db.Save(anomaly).Error; err != nil {
		return nil, err
	}
	return anomaly, nil
}
