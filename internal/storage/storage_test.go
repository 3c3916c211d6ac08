package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaflow/aquaflow-backend/internal/models"
)

var (
	_ Storage = (*MemStorage)(nil)
	_ Storage = (*GormStorage)(nil)
)

// runStorageSuite exercises the Storage contract; both implementations must
// pass it unchanged.
func runStorageSuite(t *testing.T, newStore func(t *testing.T) Storage) {
	t.Run("user create assigns id and defaults", func(t *testing.T) {
		store := newStore(t)
		user := &models.User{Username: "alice", Email: "a@x.com", Password: "secret"}
		require.NoError(t, user.HashPassword())
		require.NoError(t, store.CreateUser(user))
		assert.NotZero(t, user.ID)
		assert.Equal(t, "resident", user.Role)
		assert.False(t, user.CreatedAt.IsZero())

		second := &models.User{Username: "bob", Email: "b@x.com"}
		require.NoError(t, store.CreateUser(second))
		assert.NotEqual(t, user.ID, second.ID)
	})

	t.Run("user uniqueness conflicts", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.CreateUser(&models.User{Username: "alice", Email: "a@x.com"}))
		assert.ErrorIs(t, store.CreateUser(&models.User{Username: "alice", Email: "other@x.com"}), ErrDuplicate)
		assert.ErrorIs(t, store.CreateUser(&models.User{Username: "other", Email: "a@x.com"}), ErrDuplicate)

		users, err := store.GetUsersByRole("resident")
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})

	t.Run("user lookups return absence on miss", func(t *testing.T) {
		store := newStore(t)
		user, err := store.GetUser(42)
		require.NoError(t, err)
		assert.Nil(t, user)
		user, err = store.GetUserByEmail("nobody@x.com")
		require.NoError(t, err)
		assert.Nil(t, user)
		user, err = store.GetUserByUsername("nobody")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("set profile image persists and misses on unknown id", func(t *testing.T) {
		store := newStore(t)
		user := &models.User{Username: "alice", Email: "a@x.com"}
		require.NoError(t, store.CreateUser(user))

		updated, err := store.SetUserProfileImage(user.ID, "https://cdn.example.com/p.png")
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, "https://cdn.example.com/p.png", updated.ProfileImageURL)

		fetched, err := store.GetUser(user.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/p.png", fetched.ProfileImageURL)

		missing, err := store.SetUserProfileImage(99, "x")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("water request round trip by id and requestId", func(t *testing.T) {
		store := newStore(t)
		owner := &models.User{Username: "alice", Email: "a@x.com"}
		require.NoError(t, store.CreateUser(owner))

		request := &models.WaterRequest{
			RequestID:   "WD12345",
			UserID:      owner.ID,
			Address:     "1 Main St",
			WaterAmount: 2000,
			Urgency:     "normal",
		}
		require.NoError(t, store.CreateWaterRequest(request))
		assert.Equal(t, "pending", request.Status)
		assert.Nil(t, request.DriverID)
		assert.Nil(t, request.Rating)

		byID, err := store.GetWaterRequest(request.ID)
		require.NoError(t, err)
		require.NotNil(t, byID)
		byRequestID, err := store.GetWaterRequestByRequestID("WD12345")
		require.NoError(t, err)
		require.NotNil(t, byRequestID)
		assert.Equal(t, byID.ID, byRequestID.ID)
		assert.Equal(t, byID.Address, byRequestID.Address)
		assert.Equal(t, byID.WaterAmount, byRequestID.WaterAmount)
		assert.Equal(t, byID.Status, byRequestID.Status)
	})

	t.Run("water request duplicate requestId conflicts", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.CreateWaterRequest(&models.WaterRequest{
			RequestID: "WD1", UserID: 1, Address: "A", WaterAmount: 100, Urgency: "normal",
		}))
		err := store.CreateWaterRequest(&models.WaterRequest{
			RequestID: "WD1", UserID: 2, Address: "B", WaterAmount: 200, Urgency: "urgent",
		})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("update merges fields and reports absence", func(t *testing.T) {
		store := newStore(t)
		request := &models.WaterRequest{RequestID: "WD2", UserID: 1, Address: "A", WaterAmount: 500, Urgency: "urgent"}
		require.NoError(t, store.CreateWaterRequest(request))

		driverID := uint(7)
		status := "accepted"
		now := time.Now()
		updated, err := store.UpdateWaterRequest(request.ID, WaterRequestUpdate{
			Status:     &status,
			DriverID:   &driverID,
			AcceptedAt: &now,
		})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, "accepted", updated.Status)
		require.NotNil(t, updated.DriverID)
		assert.Equal(t, driverID, *updated.DriverID)
		require.NotNil(t, updated.AcceptedAt)
		// untouched fields survive the merge
		assert.Equal(t, "A", updated.Address)
		assert.Equal(t, 500, updated.WaterAmount)

		missing, err := store.UpdateWaterRequest(9999, WaterRequestUpdate{Status: &status})
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("request filters partition by owner driver and status", func(t *testing.T) {
		store := newStore(t)
		for _, r := range []*models.WaterRequest{
			{RequestID: "WD10", UserID: 1, Address: "A", WaterAmount: 100, Urgency: "normal"},
			{RequestID: "WD11", UserID: 1, Address: "B", WaterAmount: 200, Urgency: "urgent"},
			{RequestID: "WD12", UserID: 2, Address: "C", WaterAmount: 300, Urgency: "normal"},
		} {
			require.NoError(t, store.CreateWaterRequest(r))
		}
		driverID := uint(5)
		status := "accepted"
		first, err := store.GetWaterRequestByRequestID("WD10")
		require.NoError(t, err)
		_, err = store.UpdateWaterRequest(first.ID, WaterRequestUpdate{Status: &status, DriverID: &driverID})
		require.NoError(t, err)

		mine, err := store.GetUserWaterRequests(1)
		require.NoError(t, err)
		assert.Len(t, mine, 2)
		for _, r := range mine {
			assert.Equal(t, uint(1), r.UserID)
		}

		assigned, err := store.GetDriverWaterRequests(5)
		require.NoError(t, err)
		require.Len(t, assigned, 1)
		assert.Equal(t, "WD10", assigned[0].RequestID)

		pending, err := store.GetWaterRequestsByStatus("pending")
		require.NoError(t, err)
		assert.Len(t, pending, 2)

		all, err := store.GetAllWaterRequests()
		require.NoError(t, err)
		assert.Len(t, all, 3)

		none, err := store.GetUserWaterRequests(99)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("latest driver location wins by timestamp", func(t *testing.T) {
		store := newStore(t)
		first := &models.DriverLocation{DriverID: 3, Latitude: 0.31, Longitude: 32.58}
		require.NoError(t, store.CreateDriverLocation(first))
		second := &models.DriverLocation{DriverID: 3, Latitude: 0.32, Longitude: 32.59}
		require.NoError(t, store.CreateDriverLocation(second))
		require.NoError(t, store.CreateDriverLocation(&models.DriverLocation{DriverID: 4, Latitude: 1, Longitude: 2}))

		latest, err := store.GetLatestDriverLocation(3)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, second.ID, latest.ID)

		missing, err := store.GetLatestDriverLocation(99)
		require.NoError(t, err)
		assert.Nil(t, missing)

		all, err := store.GetAllDriverLocations()
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("anomaly defaults and idempotent resolve", func(t *testing.T) {
		store := newStore(t)
		anomaly := &models.Anomaly{RequestID: 1, Type: models.AnomalyDelay, Description: "late by 40m"}
		require.NoError(t, store.CreateAnomaly(anomaly))
		assert.False(t, anomaly.Resolved)
		assert.NotZero(t, anomaly.ID)

		resolved, err := store.ResolveAnomaly(anomaly.ID)
		require.NoError(t, err)
		require.NotNil(t, resolved)
		assert.True(t, resolved.Resolved)

		again, err := store.ResolveAnomaly(anomaly.ID)
		require.NoError(t, err)
		require.NotNil(t, again)
		assert.True(t, again.Resolved)

		missing, err := store.ResolveAnomaly(9999)
		require.NoError(t, err)
		assert.Nil(t, missing)

		byRequest, err := store.GetAnomaliesByRequestID(1)
		require.NoError(t, err)
		assert.Len(t, byRequest, 1)
		all, err := store.GetAllAnomalies()
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}
