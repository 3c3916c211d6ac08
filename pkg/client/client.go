// Package client is a typed Go client for the AquaFlow REST API. Reads are
// served from a per-resource cache; any successful mutation invalidates the
// cached reads for that resource, so the next read reflects the new state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aquaflow/aquaflow-backend/internal/models"
)

// APIError carries the status code and message of a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to one AquaFlow server. Safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client

	mu    sync.RWMutex
	token string
	cache map[string]json.RawMessage
}

// New builds a client for the given base URL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 10 * time.Second},
		cache:   make(map[string]json.RawMessage),
	}
}

// SetToken installs the bearer token used on authenticated routes.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// resourceOf maps an API path to its cache resource, the first path segment
// after /api. Mutations on "/api/requests/7/accept" invalidate every cached
// read under "requests".
func resourceOf(path string) string {
	trimmed := strings.TrimPrefix(path, "/api/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

// Invalidate drops every cached read for a resource. Mutations call this
// automatically; it is exported for callers that mutate out of band.
func (c *Client) Invalidate(resource string) {
	prefix := "/api/" + resource
	c.mu.Lock()
	for key := range c.cache {
		if strings.HasPrefix(key, prefix) {
			delete(c.cache, key)
		}
	}
	c.mu.Unlock()
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.httpc.Do(req)
}

func decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body.Error == "" {
		body.Error = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: body.Error}
}

// get serves path from the cache when possible, otherwise fetches and caches.
func (c *Client) get(ctx context.Context, path string, dest interface{}) error {
	c.mu.RLock()
	raw, hit := c.cache[path]
	c.mu.RUnlock()
	if hit {
		return json.Unmarshal(raw, dest)
	}

	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return decodeError(resp)
	}

	var payload json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	c.mu.Lock()
	c.cache[path] = payload
	c.mu.Unlock()

	return json.Unmarshal(payload, dest)
}

// mutate issues a write and, on success, invalidates the resource's reads.
func (c *Client) mutate(ctx context.Context, method, path string, body, dest interface{}) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 && resp.StatusCode != 201 {
		return decodeError(resp)
	}

	c.Invalidate(resourceOf(path))

	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// Auth

type loginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login exchanges credentials for a token and installs it on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var out loginResponse
	err := c.mutate(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out.User, nil
}

// Users

type CreateUserInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      string `json:"role,omitempty"`
}

func (c *Client) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	var user models.User
	if err := c.mutate(ctx, http.MethodPost, "/api/users", input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := c.get(ctx, fmt.Sprintf("/api/users/%d", id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetUsersByRole(ctx context.Context, role string) ([]models.User, error) {
	var users []models.User
	if err := c.get(ctx, "/api/users/role/"+role, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Water requests

type CreateWaterRequestInput struct {
	RequestID   string   `json:"requestId"`
	UserID      uint     `json:"userId"`
	Address     string   `json:"address"`
	WaterAmount int      `json:"waterAmount"`
	Urgency     string   `json:"urgency"`
	Notes       string   `json:"notes,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// WaterRequestPatch is a partial update; nil fields are left untouched.
type WaterRequestPatch struct {
	Status      *string    `json:"status,omitempty"`
	DriverID    *uint      `json:"driverId,omitempty"`
	AcceptedAt  *time.Time `json:"acceptedAt,omitempty"`
	InTransitAt *time.Time `json:"inTransitAt,omitempty"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
	Rating      *int       `json:"rating,omitempty"`
	Feedback    *string    `json:"feedback,omitempty"`
}

func (c *Client) CreateWaterRequest(ctx context.Context, input CreateWaterRequestInput) (*models.WaterRequest, error) {
	var request models.WaterRequest
	if err := c.mutate(ctx, http.MethodPost, "/api/requests", input, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

func (c *Client) GetWaterRequest(ctx context.Context, id uint) (*models.WaterRequest, error) {
	var request models.WaterRequest
	if err := c.get(ctx, fmt.Sprintf("/api/requests/%d", id), &request); err != nil {
		return nil, err
	}
	return &request, nil
}

func (c *Client) GetUserWaterRequests(ctx context.Context, userID uint) ([]models.WaterRequest, error) {
	var requests []models.WaterRequest
	if err := c.get(ctx, fmt.Sprintf("/api/requests/user/%d", userID), &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (c *Client) UpdateWaterRequest(ctx context.Context, id uint, patch WaterRequestPatch) (*models.WaterRequest, error) {
	var request models.WaterRequest
	if err := c.mutate(ctx, http.MethodPatch, fmt.Sprintf("/api/requests/%d", id), patch, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

// AcceptWaterRequest claims a pending request as the authenticated driver.
func (c *Client) AcceptWaterRequest(ctx context.Context, id uint) (*models.WaterRequest, error) {
	return c.driverAction(ctx, id, "accept")
}

func (c *Client) StartWaterRequestTransit(ctx context.Context, id uint) (*models.WaterRequest, error) {
	return c.driverAction(ctx, id, "transit")
}

func (c *Client) CompleteWaterRequest(ctx context.Context, id uint) (*models.WaterRequest, error) {
	return c.driverAction(ctx, id, "complete")
}

func (c *Client) driverAction(ctx context.Context, id uint, action string) (*models.WaterRequest, error) {
	var request models.WaterRequest
	path := fmt.Sprintf("/api/requests/%d/%s", id, action)
	if err := c.mutate(ctx, http.MethodPost, path, nil, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

// Locations

func (c *Client) ReportLocation(ctx context.Context, driverID uint, lat, lng float64) (*models.DriverLocation, error) {
	var location models.DriverLocation
	err := c.mutate(ctx, http.MethodPost, "/api/locations", map[string]interface{}{
		"driverId":  driverID,
		"latitude":  lat,
		"longitude": lng,
	}, &location)
	if err != nil {
		return nil, err
	}
	return &location, nil
}

func (c *Client) GetLatestDriverLocation(ctx context.Context, driverID uint) (*models.DriverLocation, error) {
	var location models.DriverLocation
	if err := c.get(ctx, fmt.Sprintf("/api/locations/driver/%d", driverID), &location); err != nil {
		return nil, err
	}
	return &location, nil
}

// Anomalies

func (c *Client) GetAllAnomalies(ctx context.Context) ([]models.Anomaly, error) {
	var anomalies []models.Anomaly
	if err := c.get(ctx, "/api/anomalies", &anomalies); err != nil {
		return nil, err
	}
	return anomalies, nil
}

func (c *Client) ResolveAnomaly(ctx context.Context, id uint) (*models.Anomaly, error) {
	var anomaly models.Anomaly
	if err := c.mutate(ctx, http.MethodPatch, fmt.Sprintf("/api/anomalies/%d/resolve", id), nil, &anomaly); err != nil {
		return nil, err
	}
	return &anomaly, nil
}
