package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"eevy/internal/geocode"
	"eevy/internal/middleware"
	"eevy/internal/money"
	"eevy/internal/services"
	"eevy/internal/store"
	"eevy/internal/timeutil"
	"eevy/internal/validator"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type createChargerRequest struct {
	Brand        string  `json:"brand"`
	Power        float64 `json:"power"`
	PlugType     string  `json:"plug_type"`
	PricePerHour string  `json:"price_per_hour"`
	Available    bool    `json:"available"`
	StreetNumber int     `json:"num"`
	Street       string  `json:"street"`
	ZipCode      string  `json:"zip_code"`
	City         string  `json:"city"`
}

func (h *Handler) CreateCharger(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createChargerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.RequireStrings(map[string]string{
		"brand":          req.Brand,
		"plug_type":      req.PlugType,
		"price_per_hour": req.PricePerHour,
		"street":         req.Street,
		"zip_code":       req.ZipCode,
		"city":           req.City,
	}); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Power <= 0 {
		respondError(w, http.StatusBadRequest, "power must be positive")
		return
	}
	pricePerHour, err := money.ParseMinor(req.PricePerHour)
	if err != nil || pricePerHour <= 0 {
		respondError(w, http.StatusBadRequest, "invalid price_per_hour")
		return
	}

	var latitude, longitude *float64
	street := fmt.Sprintf("%d %s", req.StreetNumber, req.Street)
	lat, lon, err := h.geocoder.Coordinates(r.Context(), street, req.City)
	switch {
	case err == nil:
		latitude, longitude = &lat, &lon
	case errors.Is(err, geocode.ErrUnavailable):
		// Stored without coordinates; the client falls back to the
		// textual address.
		log.Printf("geocoding failed for charger in %s", req.City)
	default:
		respondError(w, http.StatusInternalServerError, "charger creation failed")
		return
	}

	chargerID := uuid.NewString()
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.chargers.Create(r.Context(), tx, store.ChargerInput{
			ID:           chargerID,
			OwnerID:      userID,
			Brand:        req.Brand,
			Power:        req.Power,
			PlugType:     req.PlugType,
			PricePerHour: pricePerHour,
			Available:    req.Available,
			StreetNumber: req.StreetNumber,
			Street:       req.Street,
			ZipCode:      req.ZipCode,
			City:         req.City,
			Latitude:     latitude,
			Longitude:    longitude,
		})
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "charger creation failed")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": chargerID})
}

// ListAvailableChargers answers both "what is free right now" (no query
// params) and "what is free for this window" (from/to, or from/duration).
// A city filter also lands the city in the caller's recent places.
func (h *Handler) ListAvailableChargers(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	window, explicit, err := windowFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var listed []services.AvailableCharger
	if explicit {
		listed, err = h.availability.ListAvailableWindow(r.Context(), window)
	} else {
		listed, err = h.availability.ListAvailable(r.Context())
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list chargers")
		return
	}
	city := r.URL.Query().Get("city")
	results := make([]services.AvailableCharger, 0, len(listed))
	for _, item := range listed {
		if city != "" && !strings.EqualFold(item.City, city) {
			continue
		}
		results = append(results, item)
	}
	if city != "" {
		if err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
			return h.users.AddRecentPlace(r.Context(), tx, userID, city)
		}); err != nil {
			// Best effort; the search result still stands.
			log.Printf("recent place update failed for user %s: %v", userID, err)
		}
	}
	respondJSON(w, http.StatusOK, results)
}

func (h *Handler) ListOwnChargers(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	chargers, err := h.chargers.ListByOwner(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list chargers")
		return
	}
	respondJSON(w, http.StatusOK, chargers)
}

func (h *Handler) GetCharger(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	chargerID := chi.URLParam(r, "id")
	charger, err := h.chargers.GetByID(r.Context(), chargerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "charger not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load charger")
		return
	}
	owner, err := h.users.GetByID(r.Context(), charger.OwnerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load owner")
		return
	}
	averageRating, err := h.comments.AverageRating(r.Context(), chargerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load rating")
		return
	}
	favorite, err := h.users.HasFavorite(r.Context(), userID, chargerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load favorite")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"charger":        charger,
		"price_per_hour": money.FormatEuros(charger.PricePerHour),
		"average_rating": averageRating,
		"favorite":       favorite,
		"owner": map[string]any{
			"id":         owner.ID,
			"first_name": owner.FirstName,
			"last_name":  owner.LastName,
			"rating":     owner.Rating,
		},
	})
}

type availabilityRequest struct {
	Available bool `json:"available"`
}

func (h *Handler) SetChargerAvailability(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	chargerID := chi.URLParam(r, "id")
	var rows int64
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		var err error
		rows, err = h.chargers.SetAvailability(r.Context(), tx, chargerID, userID, req.Available)
		return err
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update charger")
		return
	}
	if rows == 0 {
		respondError(w, http.StatusNotFound, "charger not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"available": req.Available})
}

func (h *Handler) DeleteCharger(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	chargerID := chi.URLParam(r, "id")
	var rows int64
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		var err error
		rows, err = h.chargers.Delete(r.Context(), tx, chargerID, userID)
		return err
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete charger")
		return
	}
	if rows == 0 {
		respondError(w, http.StatusNotFound, "charger not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"deleted": chargerID})
}

// windowFromQuery reads from/to, or from/duration, returning explicit =
// false when the caller asked for "now".
func windowFromQuery(r *http.Request) (timeutil.Window, bool, error) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	duration := r.URL.Query().Get("duration")
	if from == "" {
		return timeutil.Window{}, false, nil
	}
	start, err := timeutil.ParseTime(from)
	if err != nil {
		return timeutil.Window{}, false, err
	}
	if duration != "" {
		end, err := timeutil.EndAfter(start, duration)
		if err != nil {
			return timeutil.Window{}, false, err
		}
		w, err := timeutil.NewWindow(start, end)
		return w, true, err
	}
	w, err := timeutil.ParseWindow(from, to)
	return w, true, err
}
