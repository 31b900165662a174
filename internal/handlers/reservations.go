package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"eevy/internal/middleware"
	"eevy/internal/money"
	"eevy/internal/services"
	"eevy/internal/timeutil"
	"eevy/internal/validator"

	"github.com/go-chi/chi/v5"
)

type createReservationRequest struct {
	ChargerID string `json:"charger_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Duration  string `json:"duration"`
	Price     string `json:"price"`
}

func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.RequireStrings(map[string]string{
		"charger_id": req.ChargerID,
		"from":       req.From,
	}); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	window, err := reservationWindow(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var priceMinor *int64
	if req.Price != "" {
		parsed, err := money.ParseMinor(req.Price)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid price")
			return
		}
		priceMinor = &parsed
	}
	reservation, err := h.reservations.Create(r.Context(), services.CreateReservationRequest{
		UserID:     userID,
		ChargerID:  req.ChargerID,
		Window:     window,
		PriceMinor: priceMinor,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrChargerNotFound):
			respondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrChargerDelisted),
			errors.Is(err, services.ErrOwnCharger),
			errors.Is(err, services.ErrInvalidPrice):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrChargerBusy):
			respondError(w, http.StatusConflict, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "reservation failed")
		}
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"id":     reservation.ID,
		"status": reservation.Status,
		"price":  money.FormatMinor(reservation.Price),
	})
}

func (h *Handler) ListOwnReservations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	out, err := h.reservations.ListForUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list reservations")
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) ListChargerReservations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	chargerID := chi.URLParam(r, "id")
	out, err := h.reservations.ListForCharger(r.Context(), chargerID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrChargerNotFound):
			respondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrNotOwner):
			respondError(w, http.StatusForbidden, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "unable to list reservations")
		}
		return
	}
	respondJSON(w, http.StatusOK, out)
}

type decisionRequest struct {
	Accept bool `json:"accept"`
}

func (h *Handler) DecideReservation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	reservationID := chi.URLParam(r, "id")
	err := h.reservations.Decide(r.Context(), reservationID, userID, req.Accept)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReservationNotFound), errors.Is(err, services.ErrChargerNotFound):
			respondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrNotOwner):
			respondError(w, http.StatusForbidden, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "decision failed")
		}
		return
	}
	if req.Accept {
		respondJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

func (h *Handler) SettleReservation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	reservationID := chi.URLParam(r, "id")
	balance, err := h.settlement.Settle(r.Context(), reservationID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReservationNotFound):
			respondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrAlreadySettled):
			respondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, services.ErrNotSettleable), errors.Is(err, services.ErrInsufficientFunds):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrNotPayer):
			respondError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, services.ErrOwnerNotFound):
			respondError(w, http.StatusInternalServerError, "the charger owner could not be resolved, nothing was charged")
		case errors.Is(err, services.ErrLedgerInconsistent):
			respondError(w, http.StatusInternalServerError, "ledger inconsistency detected, the settlement was rolled back")
		default:
			respondError(w, http.StatusInternalServerError, "settlement failed")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"balance": money.FormatMinor(balance)})
}

func reservationWindow(req createReservationRequest) (timeutil.Window, error) {
	start, err := timeutil.ParseTime(req.From)
	if err != nil {
		return timeutil.Window{}, err
	}
	if req.Duration != "" {
		end, err := timeutil.EndAfter(start, req.Duration)
		if err != nil {
			return timeutil.Window{}, err
		}
		return timeutil.NewWindow(start, end)
	}
	return timeutil.ParseWindow(req.From, req.To)
}
