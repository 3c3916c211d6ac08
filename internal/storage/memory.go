package storage

import (
	"sync"
	"time"

	"github.com/aquaflow/aquaflow-backend/internal/models"
)

// MemStorage keeps every table in a map keyed by its sequential id. It backs
// tests and broker-free deployments; behaviour matches the gorm
// implementation observable-field for observable-field.
type MemStorage struct {
	mu sync.RWMutex

	users           map[uint]models.User
	waterRequests   map[uint]models.WaterRequest
	driverLocations map[uint]models.DriverLocation
	anomalies       map[uint]models.Anomaly

	userID     uint
	requestID  uint
	locationID uint
	anomalyID  uint
}

// NewMemStorage returns an empty in-memory store.
func NewMemStorage() *MemStorage {
	return &MemStorage{
		users:           make(map[uint]models.User),
		waterRequests:   make(map[uint]models.WaterRequest),
		driverLocations: make(map[uint]models.DriverLocation),
		anomalies:       make(map[uint]models.Anomaly),
	}
}

// Users

func (s *MemStorage) GetUser(id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[id]; ok {
		return &user, nil
	}
	return nil, nil
}

func (s *MemStorage) GetUserByEmail(email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (s *MemStorage) GetUserByUsername(username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (s *MemStorage) CreateUser(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return ErrDuplicate
		}
	}
	s.userID++
	user.ID = s.userID
	user.CreatedAt = time.Now()
	if user.Role == "" {
		user.Role = string(models.RoleResident)
	}
	s.users[user.ID] = *user
	return nil
}

func (s *MemStorage) SetUserProfileImage(id uint, url string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	user.ProfileImageURL = url
	s.users[id] = user
	return &user, nil
}

func (s *MemStorage) GetUsersByRole(role string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := []models.User{}
	for _, user := range s.users {
		if user.Role == role {
			users = append(users, user)
		}
	}
	return users, nil
}

// Water requests

func (s *MemStorage) GetWaterRequest(id uint) (*models.WaterRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if request, ok := s.waterRequests[id]; ok {
		return &request, nil
	}
	return nil, nil
}

func (s *MemStorage) GetWaterRequestByRequestID(requestID string) (*models.WaterRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, request := range s.waterRequests {
		if request.RequestID == requestID {
			r := request
			return &r, nil
		}
	}
	return nil, nil
}

func (s *MemStorage) CreateWaterRequest(request *models.WaterRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.waterRequests {
		if existing.RequestID == request.RequestID {
			return ErrDuplicate
		}
	}
	s.requestID++
	request.ID = s.requestID
	request.CreatedAt = time.Now()
	request.Status = string(models.StatusPending)
	request.DriverID = nil
	request.AcceptedAt = nil
	request.InTransitAt = nil
	request.DeliveredAt = nil
	request.Rating = nil
	request.Feedback = nil
	s.waterRequests[request.ID] = *request
	return nil
}

func (s *MemStorage) UpdateWaterRequest(id uint, update WaterRequestUpdate) (*models.WaterRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.waterRequests[id]
	if !ok {
		return nil, nil
	}
	applyUpdate(&request, update)
	s.waterRequests[id] = request
	return &request, nil
}

func (s *MemStorage) GetUserWaterRequests(userID uint) ([]models.WaterRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	requests := []models.WaterRequest{}
	for _, request := range s.waterRequests {
		if request.UserID == userID {
			requests = append(requests, request)
		}
	}
	return requests, nil
}

func (s *MemStorage) GetDriverWaterRequests(driverID uint) ([]models.WaterRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	requests := []models.WaterRequest{}
	for _, request := range s.waterRequests {
		if request.DriverID != nil && *request.DriverID == driverID {
			requests = append(requests, request)
		}
	}
	return requests, nil
}

func (s *MemStorage) GetWaterRequestsByStatus(status string) ([]models.WaterRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	requests := []models.WaterRequest{}
	for _, request := range s.waterRequests {
		if request.Status == status {
			requests = append(requests, request)
		}
	}
	return requests, nil
}

func (s *MemStorage) GetAllWaterRequests() ([]models.WaterRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	requests := []models.WaterRequest{}
	for _, request := range s.waterRequests {
		requests = append(requests, request)
	}
	return requests, nil
}

// Driver locations

func (s *MemStorage) CreateDriverLocation(location *models.DriverLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locationID++
	location.ID = s.locationID
	location.Timestamp = time.Now()
	s.driverLocations[location.ID] = *location
	return nil
}

func (s *MemStorage) GetLatestDriverLocation(driverID uint) (*models.DriverLocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.DriverLocation
	for id := range s.driverLocations {
		location := s.driverLocations[id]
		if location.DriverID != driverID {
			continue
		}
		if latest == nil || location.Timestamp.After(latest.Timestamp) ||
			(location.Timestamp.Equal(latest.Timestamp) && location.ID > latest.ID) {
			l := location
			latest = &l
		}
	}
	return latest, nil
}

func (s *MemStorage) GetAllDriverLocations() ([]models.DriverLocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	locations := []models.DriverLocation{}
	for _, location := range s.driverLocations {
		locations = append(locations, location)
	}
	return locations, nil
}

// Anomalies

func (s *MemStorage) CreateAnomaly(anomaly *models.Anomaly) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anomalyID++
	anomaly.ID = s.anomalyID
	anomaly.CreatedAt = time.Now()
	anomaly.Resolved = false
	s.anomalies[anomaly.ID] = *anomaly
	return nil
}

func (s *MemStorage) GetAnomaliesByRequestID(requestID uint) ([]models.Anomaly, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	anomalies := []models.Anomaly{}
	for _, anomaly := range s.anomalies {
		if anomaly.RequestID == requestID {
			anomalies = append(anomalies, anomaly)
		}
	}
	return anomalies, nil
}

func (s *MemStorage) GetAllAnomalies() ([]models.Anomaly, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	anomalies := []models.Anomaly{}
	for _, anomaly := range s.anomalies {
		anomalies = append(anomalies, anomaly)
	}
	return anomalies, nil
}

func (s *MemStorage) ResolveAnomaly(id uint) (*models.Anomaly, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	anomaly, ok := s.anomalies[id]
	if !ok {
		return nil, nil
	}
	anomaly.Resolved = true
	s.anomalies[id] = anomaly
	return &anomaly, nil
}
