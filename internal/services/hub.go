package services

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now (should be restricted in production)
	},
}

// TrainingEvent is pushed to connected dashboards whenever session
// data changes and analytics need a refetch.
type TrainingEvent struct {
	Type       string `json:"type"`
	TrainingID uint   `json:"training_id"`
	Timestamp  string `json:"timestamp"`
}

// WSClient represents a connected dashboard. TrainingID 0 means the
// client wants events for every session.
type WSClient struct {
	TrainingID uint
	Conn       *websocket.Conn
	Send       chan []byte
	Hub        *Hub
}

// Hub maintains active WebSocket connections and fans training events
// out to dashboards watching the affected session.
type Hub struct {
	clients         map[*WSClient]bool
	trainingClients map[uint][]*WSClient
	register        chan *WSClient
	unregister      chan *WSClient
	logger          *logrus.Logger
	mutex           sync.RWMutex
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients:         make(map[*WSClient]bool),
		trainingClients: make(map[uint][]*WSClient),
		register:        make(chan *WSClient),
		unregister:      make(chan *WSClient),
		logger:          logger,
	}
}

// Run starts the hub and handles client registration/unregistration.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.trainingClients[client.TrainingID] = append(h.trainingClients[client.TrainingID], client)
			h.mutex.Unlock()

			h.logger.WithFields(logrus.Fields{
				"training_id":   client.TrainingID,
				"total_clients": len(h.clients),
			}).Info("WebSocket client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)

				watchers := h.trainingClients[client.TrainingID]
				for i, c := range watchers {
					if c == client {
						h.trainingClients[client.TrainingID] = append(watchers[:i], watchers[i+1:]...)
						break
					}
				}
				if len(h.trainingClients[client.TrainingID]) == 0 {
					delete(h.trainingClients, client.TrainingID)
				}
			}
			h.mutex.Unlock()

			h.logger.WithFields(logrus.Fields{
				"training_id":   client.TrainingID,
				"total_clients": len(h.clients),
			}).Info("WebSocket client disconnected")
		}
	}
}

// HandleWebSocket upgrades the connection. An optional training_id
// query parameter narrows the subscription to one session.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	var trainingID uint
	if raw := c.Query("training_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid training ID"})
			return
		}
		trainingID = uint(parsed)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}

	client := &WSClient{
		TrainingID: trainingID,
		Conn:       conn,
		Send:       make(chan []byte, 256),
		Hub:        h,
	}

	client.Hub.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastTrainingUpdate notifies watchers of a session, plus any
// client subscribed to all sessions, that its data changed.
func (h *Hub) BroadcastTrainingUpdate(trainingID uint, eventType string) {
	event := TrainingEvent{
		Type:       eventType,
		TrainingID: trainingID,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal WebSocket message")
		return
	}

	h.mutex.RLock()
	targets := make([]*WSClient, 0, len(h.trainingClients[trainingID])+len(h.trainingClients[0]))
	targets = append(targets, h.trainingClients[trainingID]...)
	if trainingID != 0 {
		targets = append(targets, h.trainingClients[0]...)
	}
	h.mutex.RUnlock()

	for _, client := range targets {
		select {
		case client.Send <- data:
		default:
		}
	}
}

// GetConnectionCount returns the total number of active connections.
func (h *Hub) GetConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (c *WSClient) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		_, _, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.WithError(err).Error("WebSocket error")
			}
			break
		}
	}
}

func (c *WSClient) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.Hub.logger.WithError(err).Error("Failed to write WebSocket message")
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
