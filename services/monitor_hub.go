package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// MonitorHub fans submission lifecycle events out to staff dashboards
// watching a test: started, submitted, graded. It is a read-only feed; no
// client message changes server state.
type MonitorHub struct {
	clients    map[*monitorClient]bool
	register   chan *monitorClient
	unregister chan *monitorClient
	mutex      sync.RWMutex
}

type monitorClient struct {
	hub    *MonitorHub
	socket *websocket.Conn
	send   chan []byte
	testID uint
}

type monitorMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewMonitorHub() *MonitorHub {
	return &MonitorHub{
		clients:    make(map[*monitorClient]bool),
		register:   make(chan *monitorClient),
		unregister: make(chan *monitorClient),
	}
}

func (h *MonitorHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Monitor client connected for test %d - total clients: %d", client.testID, len(h.clients))

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("Monitor client disconnected for test %d - total clients: %d", client.testID, len(h.clients))
			}
			h.mutex.Unlock()
		}
	}
}

// BroadcastToTest sends one event to every dashboard watching the test.
// Clients whose send buffer is full are dropped rather than blocking the
// submission path.
func (h *MonitorHub) BroadcastToTest(testID uint, messageType string, payload interface{}) {
	data, err := json.Marshal(monitorMessage{Type: messageType, Payload: payload})
	if err != nil {
		log.Printf("Error marshaling monitor message: %v", err)
		return
	}

	h.mutex.Lock()
	for client := range h.clients {
		if client.testID != testID {
			continue
		}
		select {
		case client.send <- data:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
	h.mutex.Unlock()
}

// RegisterClient attaches a websocket connection as a dashboard for one test
// and starts its read/write pumps.
func (h *MonitorHub) RegisterClient(conn *websocket.Conn, testID uint) {
	client := &monitorClient{
		hub:    h,
		socket: conn,
		send:   make(chan []byte, 64),
		testID: testID,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *monitorClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.socket.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.socket.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only watches for the client going away; inbound frames are
// discarded.
func (c *monitorClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.socket.Close()
	}()
	for {
		if _, _, err := c.socket.ReadMessage(); err != nil {
			return
		}
	}
}
