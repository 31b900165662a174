package handlers

import (
	"encoding/json"
	"net/http"

	"eevy/internal/config"
	"eevy/internal/db"
	"eevy/internal/websocket"
)

type Handler struct {
	txRunner     db.TxRunner
	cfg          config.Config
	users        UserStore
	chargers     ChargerStore
	accounts     AccountStore
	movements    MovementStore
	comments     CommentStore
	availability AvailabilityService
	reservations ReservationService
	settlement   SettlementService
	geocoder     Geocoder
	hub          *websocket.Hub
}

func New(txRunner db.TxRunner, cfg config.Config, users UserStore, chargers ChargerStore, accounts AccountStore, movements MovementStore, comments CommentStore, availability AvailabilityService, reservations ReservationService, settlement SettlementService, geocoder Geocoder, hub *websocket.Hub) *Handler {
	return &Handler{
		txRunner:     txRunner,
		cfg:          cfg,
		users:        users,
		chargers:     chargers,
		accounts:     accounts,
		movements:    movements,
		comments:     comments,
		availability: availability,
		reservations: reservations,
		settlement:   settlement,
		geocoder:     geocoder,
		hub:          hub,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
