package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaflow/aquaflow-backend/internal/models"
)

func TestCreateDriverLocation(t *testing.T) {
	r, store := newTestRouter(t)
	driver, _ := seedUser(t, store, "dave", "d@x.com", "driver")

	w := doJSON(r, http.MethodPost, "/api/locations", map[string]interface{}{
		"driverId":  driver.ID,
		"latitude":  -1.2921,
		"longitude": 36.8219,
	}, "")
	require.Equal(t, 201, w.Code)

	var location models.DriverLocation
	decode(t, w, &location)
	assert.NotZero(t, location.ID)
	assert.Equal(t, driver.ID, location.DriverID)
	assert.False(t, location.Timestamp.IsZero())
}

func TestCreateDriverLocationValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	// missing coordinates
	w := doJSON(r, http.MethodPost, "/api/locations", map[string]interface{}{
		"driverId": 1,
	}, "")
	assert.Equal(t, 400, w.Code)

	// latitude out of range
	w = doJSON(r, http.MethodPost, "/api/locations", map[string]interface{}{
		"driverId":  1,
		"latitude":  91.0,
		"longitude": 0.0,
	}, "")
	assert.Equal(t, 400, w.Code)
}

func TestGetLatestDriverLocation(t *testing.T) {
	r, store := newTestRouter(t)
	driver, _ := seedUser(t, store, "dave", "d@x.com", "driver")

	for _, lng := range []float64{36.80, 36.81, 36.82} {
		w := doJSON(r, http.MethodPost, "/api/locations", map[string]interface{}{
			"driverId":  driver.ID,
			"latitude":  -1.29,
			"longitude": lng,
		}, "")
		require.Equal(t, 201, w.Code)
	}

	w := doJSON(r, http.MethodGet, fmt.Sprintf("/api/locations/driver/%d", driver.ID), nil, "")
	require.Equal(t, 200, w.Code)

	var latest models.DriverLocation
	decode(t, w, &latest)
	assert.Equal(t, 36.82, latest.Longitude)

	// singular lookup: no samples means 404
	w = doJSON(r, http.MethodGet, "/api/locations/driver/999", nil, "")
	assert.Equal(t, 404, w.Code)
}

func TestGetAllDriverLocations(t *testing.T) {
	r, store := newTestRouter(t)
	d1, _ := seedUser(t, store, "dave", "d@x.com", "driver")
	d2, _ := seedUser(t, store, "erin", "e@x.com", "driver")

	require.NoError(t, store.CreateDriverLocation(&models.DriverLocation{DriverID: d1.ID, Latitude: 1, Longitude: 2}))
	require.NoError(t, store.CreateDriverLocation(&models.DriverLocation{DriverID: d2.ID, Latitude: 3, Longitude: 4}))

	var locations []models.DriverLocation
	w := doJSON(r, http.MethodGet, "/api/locations", nil, "")
	require.Equal(t, 200, w.Code)
	decode(t, w, &locations)
	assert.Len(t, locations, 2)
}
