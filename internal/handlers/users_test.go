package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaflow/aquaflow-backend/internal/models"
)

func TestCreateUser(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/users", map[string]interface{}{
		"username": "alice",
		"email":    "a@x.com",
		"password": "secret",
		"role":     "resident",
	}, "")
	require.Equal(t, 201, w.Code)

	var user models.User
	decode(t, w, &user)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "resident", user.Role)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestCreateUserDefaultsRoleToResident(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/users", map[string]interface{}{
		"username": "bob",
		"email":    "b@x.com",
		"password": "secret",
	}, "")
	require.Equal(t, 201, w.Code)

	var user models.User
	decode(t, w, &user)
	assert.Equal(t, "resident", user.Role)
}

func TestCreateUserValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/users", map[string]interface{}{
		"username": "alice",
		"email":    "not-an-email",
	}, "")
	require.Equal(t, 400, w.Code)

	var body struct {
		Error  string `json:"error"`
		Fields []struct {
			Field string `json:"field"`
			Rule  string `json:"rule"`
		} `json:"fields"`
	}
	decode(t, w, &body)
	assert.Equal(t, "Validation failed", body.Error)
	assert.NotEmpty(t, body.Fields)

	w = doJSON(r, http.MethodPost, "/api/users", map[string]interface{}{
		"username": "carol",
		"email":    "c@x.com",
		"password": "secret",
		"role":     "superuser",
	}, "")
	assert.Equal(t, 400, w.Code)
}

func TestCreateUserConflicts(t *testing.T) {
	r, store := newTestRouter(t)
	seedUser(t, store, "alice", "a@x.com", "resident")

	w := doJSON(r, http.MethodPost, "/api/users", map[string]interface{}{
		"username": "alice",
		"email":    "fresh@x.com",
		"password": "secret",
	}, "")
	assert.Equal(t, 409, w.Code)

	w = doJSON(r, http.MethodPost, "/api/users", map[string]interface{}{
		"username": "fresh",
		"email":    "a@x.com",
		"password": "secret",
	}, "")
	assert.Equal(t, 409, w.Code)

	users, err := store.GetUsersByRole("resident")
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestGetUser(t *testing.T) {
	r, store := newTestRouter(t)
	user, _ := seedUser(t, store, "alice", "a@x.com", "resident")

	w := doJSON(r, http.MethodGet, "/api/users/1", nil, "")
	require.Equal(t, 200, w.Code)
	var got models.User
	decode(t, w, &got)
	assert.Equal(t, user.ID, got.ID)

	w = doJSON(r, http.MethodGet, "/api/users/999", nil, "")
	assert.Equal(t, 404, w.Code)

	w = doJSON(r, http.MethodGet, "/api/users/abc", nil, "")
	assert.Equal(t, 400, w.Code)
}

func TestGetUserByEmailAndUsername(t *testing.T) {
	r, store := newTestRouter(t)
	seedUser(t, store, "alice", "a@x.com", "driver")

	w := doJSON(r, http.MethodGet, "/api/users/email/a@x.com", nil, "")
	require.Equal(t, 200, w.Code)
	var byEmail models.User
	decode(t, w, &byEmail)
	assert.Equal(t, "alice", byEmail.Username)

	w = doJSON(r, http.MethodGet, "/api/users/username/alice", nil, "")
	require.Equal(t, 200, w.Code)

	w = doJSON(r, http.MethodGet, "/api/users/email/nobody@x.com", nil, "")
	assert.Equal(t, 404, w.Code)
}

func TestGetUsersByRole(t *testing.T) {
	r, store := newTestRouter(t)
	seedUser(t, store, "alice", "a@x.com", "resident")
	seedUser(t, store, "dave", "d@x.com", "driver")
	seedUser(t, store, "erin", "e@x.com", "driver")

	w := doJSON(r, http.MethodGet, "/api/users/role/driver", nil, "")
	require.Equal(t, 200, w.Code)
	var drivers []models.User
	decode(t, w, &drivers)
	assert.Len(t, drivers, 2)

	// list endpoints return an empty list, never 404
	w = doJSON(r, http.MethodGet, "/api/users/role/admin", nil, "")
	require.Equal(t, 200, w.Code)
	var admins []models.User
	decode(t, w, &admins)
	assert.Empty(t, admins)
}

func TestGetProfileRequiresAuth(t *testing.T) {
	r, store := newTestRouter(t)
	_, token := seedUser(t, store, "alice", "a@x.com", "resident")

	w := doJSON(r, http.MethodGet, "/api/users/profile", nil, "")
	assert.Equal(t, 401, w.Code)

	w = doJSON(r, http.MethodGet, "/api/users/profile", nil, token)
	require.Equal(t, 200, w.Code)
	var user models.User
	decode(t, w, &user)
	assert.Equal(t, "alice", user.Username)
}
