package ws

import (
	"encoding/json"
	"sync"

	"jobscout/internal/domain/notification"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Hub fans notifications out to a user's open connections. Groups are keyed
// by user id; a user may hold several tabs.
type Hub struct {
	clients    map[*Client]bool
	byUser     map[uuid.UUID]map[*Client]bool
	send       chan userMessage
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	log        *logrus.Logger
}

type userMessage struct {
	userID  uuid.UUID
	payload []byte
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		byUser:     make(map[uuid.UUID]map[*Client]bool),
		send:       make(chan userMessage, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			h.clients[client] = true
			group := h.byUser[client.userID]
			if group == nil {
				group = make(map[*Client]bool)
				h.byUser[client.userID] = group
			}
			group[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.WithFields(logrus.Fields{"user_id": client.userID, "total_clients": total}).Debug("ws connected")

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				if group := h.byUser[client.userID]; group != nil {
					delete(group, client)
					if len(group) == 0 {
						delete(h.byUser, client.userID)
					}
				}
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.WithFields(logrus.Fields{"user_id": client.userID, "total_clients": total}).Debug("ws disconnected")

		case msg := <-h.send:
			h.mutex.RLock()
			targets := make([]*Client, 0, len(h.byUser[msg.userID]))
			for c := range h.byUser[msg.userID] {
				targets = append(targets, c)
			}
			h.mutex.RUnlock()

			for _, client := range targets {
				select {
				case client.send <- msg.payload:
				default:
					h.unregister <- client
				}
			}
		}
	}
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	h.unregister <- client
}

// SendToUser queues a payload for every connection in the user's group.
// Drops when the hub buffer is full.
func (h *Hub) SendToUser(userID uuid.UUID, payload []byte) {
	if h == nil {
		return
	}
	select {
	case h.send <- userMessage{userID: userID, payload: payload}:
	default:
		h.log.WithField("user_id", userID).Warn("ws send dropped, buffer full")
	}
}

// Push satisfies the notifier's fire-and-forget delivery contract.
func (h *Hub) Push(userID uuid.UUID, n notification.Notification) {
	if h == nil {
		return
	}
	b, err := json.Marshal(struct {
		Type string                    `json:"type"`
		Data notification.Notification `json:"data"`
	}{Type: "notification", Data: n})
	if err != nil {
		return
	}
	h.SendToUser(userID, b)
}

func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
