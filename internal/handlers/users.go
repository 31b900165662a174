package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"eevy/internal/middleware"
	"eevy/internal/money"
	"eevy/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func (h *Handler) ListRecentPlaces(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	places, err := h.users.RecentPlaces(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load recent places")
		return
	}
	if places == nil {
		places = []string{}
	}
	respondJSON(w, http.StatusOK, places)
}

func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	ids, err := h.users.ListFavoriteIDs(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load favorites")
		return
	}
	chargers := make([]store.Charger, 0, len(ids))
	for _, id := range ids {
		charger, err := h.chargers.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// Charger deleted since it was favorited.
				continue
			}
			respondError(w, http.StatusInternalServerError, "unable to load favorites")
			return
		}
		chargers = append(chargers, charger)
	}
	respondJSON(w, http.StatusOK, chargers)
}

func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	chargerID := chi.URLParam(r, "chargerID")
	if _, err := h.chargers.GetByID(r.Context(), chargerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "charger not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to add favorite")
		return
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.users.InsertFavorite(r.Context(), tx, userID, chargerID)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to add favorite")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"favorite": true})
}

func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	chargerID := chi.URLParam(r, "chargerID")
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.users.DeleteFavorite(r.Context(), tx, userID, chargerID)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to remove favorite")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"favorite": false})
}

type addCommentRequest struct {
	Rating int    `json:"rating"`
	Body   string `json:"body"`
}

// AddComment stores the comment and folds its rating into the charger
// owner's running average.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		respondError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}
	chargerID := chi.URLParam(r, "id")
	ownerID, err := h.chargers.OwnerID(r.Context(), chargerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "charger not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to add comment")
		return
	}
	if ownerID == userID {
		respondError(w, http.StatusBadRequest, "cannot rate own charger")
		return
	}
	owner, err := h.users.GetByID(r.Context(), ownerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to add comment")
		return
	}
	count, err := h.comments.CountByOwner(r.Context(), ownerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to add comment")
		return
	}
	newRating := (owner.Rating*float64(count) + float64(req.Rating)) / float64(count+1)
	commentID := uuid.NewString()
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.comments.Insert(r.Context(), tx, store.CommentInput{
			ID:        commentID,
			ChargerID: chargerID,
			AuthorID:  userID,
			Rating:    req.Rating,
			Body:      req.Body,
		}); err != nil {
			return err
		}
		return h.users.UpdateRating(r.Context(), tx, ownerID, newRating)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to add comment")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": commentID})
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	chargerID := chi.URLParam(r, "id")
	comments, err := h.comments.ListByCharger(r.Context(), chargerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load comments")
		return
	}
	if comments == nil {
		comments = []store.Comment{}
	}
	respondJSON(w, http.StatusOK, comments)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	account, err := h.accounts.GetByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load account")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"id":      account.ID,
		"balance": money.FormatMinor(account.Balance),
	})
}

func (h *Handler) ListMovements(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	account, err := h.accounts.GetByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load account")
		return
	}
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	movements, err := h.movements.ListByAccount(r.Context(), account.ID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load movements")
		return
	}
	if movements == nil {
		movements = []store.Movement{}
	}
	// The net over all movements should reconcile with the stored balance.
	net, err := h.movements.NetByAccount(r.Context(), account.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load movements")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"movements": movements,
		"net":       money.FormatMinor(net),
	})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
