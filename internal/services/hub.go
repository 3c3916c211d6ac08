package services

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/aquaflow/aquaflow-backend/internal/models"
)

// HubClient represents a connected WebSocket subscriber.
type HubClient struct {
	ID   uint
	Role string
	Send chan []byte
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	clients    map[*HubClient]bool
	register   chan *HubClient
	unregister chan *HubClient
	broadcast  chan []byte
	mutex      sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*HubClient]bool),
		register:   make(chan *HubClient),
		unregister: make(chan *HubClient),
		broadcast:  make(chan []byte),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			logrus.WithField("userId", client.ID).Debug("websocket client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()
			logrus.WithField("userId", client.ID).Debug("websocket client disconnected")

		case message := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *HubClient) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *HubClient) {
	h.unregister <- client
}

// WebSocketMessage is the envelope for every hub broadcast.
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// RequestStatusUpdate notifies dashboards that a water request changed state.
type RequestStatusUpdate struct {
	RequestID uint   `json:"requestId"`
	Status    string `json:"status"`
	DriverID  *uint  `json:"driverId,omitempty"`
}

// SendRequestUpdate broadcasts a request lifecycle change. A nil hub drops
// the update so handlers work without a running hub.
func (h *Hub) SendRequestUpdate(request *models.WaterRequest) {
	if h == nil {
		return
	}
	h.send(WebSocketMessage{
		Type: "request_status",
		Data: RequestStatusUpdate{
			RequestID: request.ID,
			Status:    request.Status,
			DriverID:  request.DriverID,
		},
	})
}

// SendDriverLocationUpdate broadcasts a newly persisted location sample.
func (h *Hub) SendDriverLocationUpdate(location *models.DriverLocation) {
	if h == nil {
		return
	}
	h.send(WebSocketMessage{
		Type: "driver_location",
		Data: location,
	})
}

func (h *Hub) send(msg WebSocketMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		logrus.WithError(err).Error("failed to marshal websocket message")
		return
	}
	h.broadcast <- data
}

// GetConnectedClients returns the number of connected clients
func (h *Hub) GetConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
