package websocket

import (
	"encoding/json"
	"sync"
)

// BalanceUpdate is pushed to both parties after a settlement commits.
type BalanceUpdate struct {
	AccountID string `json:"account_id"`
	Balance   string `json:"balance"`
}

// ReservationEvent is pushed to a charger owner when a reservation is
// created against one of their chargers, and to the requesting user when
// the owner decides.
type ReservationEvent struct {
	ReservationID string `json:"reservation_id"`
	ChargerID     string `json:"charger_id"`
	Status        string `json:"status"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
}

func (h *Hub) Unregister(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		return
	}
	delete(h.clients[userID], client)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}

func (h *Hub) BroadcastBalance(userID string, update BalanceUpdate) {
	h.broadcast(userID, envelope{Type: "balance", Payload: update})
}

func (h *Hub) BroadcastReservation(userID string, event ReservationEvent) {
	h.broadcast(userID, envelope{Type: "reservation", Payload: event})
}

type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func (h *Hub) broadcast(userID string, message envelope) {
	payload, _ := json.Marshal(message)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
		}
	}
}
