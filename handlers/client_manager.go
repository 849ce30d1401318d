package handlers

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// ClientManager tracks connected clients by connection id
type ClientManager struct {
	clients map[string]*ClientHandler
	mutex   sync.RWMutex
	log     *logrus.Entry
}

// NewClientManager creates a new client manager
func NewClientManager(log *logrus.Entry) *ClientManager {
	return &ClientManager{
		clients: make(map[string]*ClientHandler),
		log:     log,
	}
}

// AddClient adds a client to the manager
func (cm *ClientManager) AddClient(handler *ClientHandler) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	cm.clients[handler.id] = handler
}

// RemoveClient removes a client from the manager
func (cm *ClientManager) RemoveClient(id string) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	delete(cm.clients, id)
}

// Count returns the number of connected clients
func (cm *ClientManager) Count() int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return len(cm.clients)
}

// BroadcastToOthers sends a message to every client except excludeID
func (cm *ClientManager) BroadcastToOthers(excludeID string, msg any) {
	cm.ExecuteOnAllClients(func(client *ClientHandler) {
		if client.id == excludeID {
			return
		}
		if err := client.conn.SendMessage(msg); err != nil {
			cm.log.WithError(err).WithField("client_id", client.id).Warn("broadcast failed")
		}
	})
}

// ExecuteOnAllClients runs action for each connected client. action must not
// add or remove clients.
func (cm *ClientManager) ExecuteOnAllClients(action func(*ClientHandler)) {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	for _, client := range cm.clients {
		action(client)
	}
}

// CloseAll closes every client connection. The server calls it on shutdown.
func (cm *ClientManager) CloseAll() {
	cm.ExecuteOnAllClients(func(client *ClientHandler) {
		client.conn.Close()
	})
}
