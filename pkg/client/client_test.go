package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaflow/aquaflow-backend/internal/handlers"
	"github.com/aquaflow/aquaflow-backend/internal/models"
	"github.com/aquaflow/aquaflow-backend/internal/storage"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret")
	os.Exit(m.Run())
}

// newTestServer runs the real router over an in-memory store, counting GETs
// so tests can observe cache hits and misses.
func newTestServer(t *testing.T) (*Client, *storage.MemStorage, *int64) {
	t.Helper()
	store := storage.NewMemStorage()
	router := handlers.NewRouter(store, nil)

	var gets int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			atomic.AddInt64(&gets, 1)
		}
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	return New(srv.URL), store, &gets
}

func TestReadsAreCachedUntilMutation(t *testing.T) {
	c, store, gets := newTestServer(t)
	ctx := context.Background()

	alice := &models.User{Username: "alice", Email: "a@x.com", Password: "secret", Role: "resident"}
	require.NoError(t, alice.HashPassword())
	require.NoError(t, store.CreateUser(alice))

	first, err := c.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	second, err := c.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, atomic.LoadInt64(gets), "second read should be a cache hit")

	// a mutation on the users resource drops its cached reads
	_, err = c.CreateUser(ctx, CreateUserInput{Username: "bob", Email: "b@x.com", Password: "secret"})
	require.NoError(t, err)

	_, err = c.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt64(gets), "read after mutation should refetch")
}

func TestMutationInvalidatesOnlyItsResource(t *testing.T) {
	c, store, gets := newTestServer(t)
	ctx := context.Background()

	alice := &models.User{Username: "alice", Email: "a@x.com", Password: "secret", Role: "resident"}
	require.NoError(t, alice.HashPassword())
	require.NoError(t, store.CreateUser(alice))

	_, err := c.GetUser(ctx, alice.ID)
	require.NoError(t, err)

	// mutating requests leaves the cached user read alone
	_, err = c.CreateWaterRequest(ctx, CreateWaterRequestInput{
		RequestID:   "WD1",
		UserID:      alice.ID,
		Address:     "1 Main St",
		WaterAmount: 2000,
		Urgency:     "normal",
	})
	require.NoError(t, err)

	_, err = c.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt64(gets))
}

func TestRequestLifecycleThroughClient(t *testing.T) {
	c, store, _ := newTestServer(t)
	ctx := context.Background()

	alice, err := c.CreateUser(ctx, CreateUserInput{Username: "alice", Email: "a@x.com", Password: "secret"})
	require.NoError(t, err)

	dave, err := c.CreateUser(ctx, CreateUserInput{Username: "dave", Email: "d@x.com", Password: "secret", Role: "driver"})
	require.NoError(t, err)

	request, err := c.CreateWaterRequest(ctx, CreateWaterRequestInput{
		RequestID:   "WD12345",
		UserID:      alice.ID,
		Address:     "1 Main St",
		WaterAmount: 2000,
		Urgency:     "urgent",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", request.Status)
	assert.Nil(t, request.DriverID)

	// driver actions need the driver's token
	_, err = c.Login(ctx, "d@x.com", "secret")
	require.NoError(t, err)

	accepted, err := c.AcceptWaterRequest(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, "accepted", accepted.Status)
	require.NotNil(t, accepted.DriverID)
	assert.Equal(t, dave.ID, *accepted.DriverID)

	_, err = c.StartWaterRequestTransit(ctx, request.ID)
	require.NoError(t, err)
	completed, err := c.CompleteWaterRequest(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", completed.Status)

	// the post-mutation read sees the final state, not a stale cache entry
	fetched, err := c.GetWaterRequest(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", fetched.Status)

	require.NoError(t, store.CreateAnomaly(&models.Anomaly{
		RequestID:   request.ID,
		Type:        models.AnomalyDelay,
		Description: "arrived late",
	}))
	anomalies, err := c.GetAllAnomalies(ctx)
	require.NoError(t, err)
	require.Len(t, anomalies, 1)

	resolved, err := c.ResolveAnomaly(ctx, anomalies[0].ID)
	require.NoError(t, err)
	assert.True(t, resolved.Resolved)
}

func TestErrorMapping(t *testing.T) {
	c, _, _ := newTestServer(t)
	ctx := context.Background()

	_, err := c.GetUser(ctx, 999)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.StatusCode)

	_, err = c.Login(ctx, "nobody@x.com", "wrong")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 401, apiErr.StatusCode)
}

func TestResourceOf(t *testing.T) {
	assert.Equal(t, "requests", resourceOf("/api/requests/7/accept"))
	assert.Equal(t, "users", resourceOf("/api/users"))
	assert.Equal(t, "anomalies", resourceOf("/api/anomalies/3/resolve"))
}
