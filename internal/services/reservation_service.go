package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eevy/internal/db"
	"eevy/internal/models"
	"eevy/internal/money"
	"eevy/internal/store"
	"eevy/internal/timeutil"
	"eevy/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrChargerNotFound     = errors.New("charger not found")
	ErrChargerDelisted     = errors.New("charger is not listed")
	ErrChargerBusy         = errors.New("charger already reserved for this window")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrNotOwner            = errors.New("charger does not belong to user")
	ErrOwnCharger          = errors.New("cannot reserve own charger")
	ErrInvalidPrice        = errors.New("invalid price")
)

type ReservationService struct {
	txRunner         db.TxRunner
	reservationStore ReservationStore
	chargerStore     ReservationChargerStore
	hub              ReservationHub
	now              func() time.Time
}

type ReservationStore interface {
	Create(ctx context.Context, tx store.Execer, input store.ReservationInput) error
	GetByID(ctx context.Context, reservationID string) (store.Reservation, error)
	HasOverlap(ctx context.Context, chargerID string, start, end time.Time) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]store.ReservationWithCharger, error)
	ListByCharger(ctx context.Context, chargerID string) ([]store.ReservationWithUser, error)
	Accept(ctx context.Context, tx store.Execer, reservationID string) (int64, error)
	DeleteInitiated(ctx context.Context, tx store.Execer, reservationID string) (int64, error)
}

type ReservationChargerStore interface {
	GetByID(ctx context.Context, chargerID string) (store.Charger, error)
	OwnerID(ctx context.Context, chargerID string) (string, error)
}

type ReservationHub interface {
	BroadcastReservation(userID string, event websocket.ReservationEvent)
}

func NewReservationService(txRunner db.TxRunner, reservationStore ReservationStore, chargerStore ReservationChargerStore, hub ReservationHub) *ReservationService {
	return &ReservationService{
		txRunner:         txRunner,
		reservationStore: reservationStore,
		chargerStore:     chargerStore,
		hub:              hub,
		now:              time.Now,
	}
}

type CreateReservationRequest struct {
	UserID     string
	ChargerID  string
	Window     timeutil.Window
	PriceMinor *int64
}

// Create books a window on a listed, free charger. The free check and the
// insert are not atomic; a racing duplicate is resolved later by the owner
// accepting one request and rejecting the other.
func (s *ReservationService) Create(ctx context.Context, req CreateReservationRequest) (models.Reservation, error) {
	charger, err := s.chargerStore.GetByID(ctx, req.ChargerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Reservation{}, ErrChargerNotFound
		}
		return models.Reservation{}, err
	}
	if charger.OwnerID == req.UserID {
		return models.Reservation{}, ErrOwnCharger
	}
	if !charger.Available {
		return models.Reservation{}, ErrChargerDelisted
	}
	taken, err := s.reservationStore.HasOverlap(ctx, req.ChargerID, req.Window.Start, req.Window.End)
	if err != nil {
		return models.Reservation{}, err
	}
	if taken {
		return models.Reservation{}, ErrChargerBusy
	}
	price := DefaultPrice(charger.PricePerHour, req.Window)
	if req.PriceMinor != nil {
		if *req.PriceMinor < 0 {
			return models.Reservation{}, ErrInvalidPrice
		}
		price = *req.PriceMinor
	}
	reservation := models.Reservation{
		ID:        uuid.NewString(),
		ChargerID: req.ChargerID,
		UserID:    req.UserID,
		StartAt:   req.Window.Start,
		EndAt:     req.Window.End,
		Price:     price,
		Status:    models.ReservationInitiated,
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.reservationStore.Create(ctx, tx, store.ReservationInput{
			ID:        reservation.ID,
			ChargerID: reservation.ChargerID,
			UserID:    reservation.UserID,
			StartAt:   reservation.StartAt,
			EndAt:     reservation.EndAt,
			Price:     reservation.Price,
			Status:    reservation.Status,
		})
	})
	if err != nil {
		return models.Reservation{}, err
	}
	s.hub.BroadcastReservation(charger.OwnerID, websocket.ReservationEvent{
		ReservationID: reservation.ID,
		ChargerID:     reservation.ChargerID,
		Status:        reservation.Status,
	})
	return reservation, nil
}

// Decide accepts or rejects a pending reservation. Only the charger's
// owner may decide. A rejection deletes the row; there is no rejected
// status to resurrect.
func (s *ReservationService) Decide(ctx context.Context, reservationID, callerID string, accept bool) error {
	reservation, err := s.reservationStore.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrReservationNotFound
		}
		return err
	}
	ownerID, err := s.chargerStore.OwnerID(ctx, reservation.ChargerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrChargerNotFound
		}
		return err
	}
	if ownerID != callerID {
		return ErrNotOwner
	}
	status := models.ReservationAccepted
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var rows int64
		var err error
		if accept {
			rows, err = s.reservationStore.Accept(ctx, tx, reservationID)
		} else {
			rows, err = s.reservationStore.DeleteInitiated(ctx, tx, reservationID)
		}
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrReservationNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !accept {
		status = "rejected"
	}
	s.hub.BroadcastReservation(reservation.UserID, websocket.ReservationEvent{
		ReservationID: reservationID,
		ChargerID:     reservation.ChargerID,
		Status:        status,
	})
	return nil
}

// ReservationView is one reservation shaped for display, with the joined
// counterpart's columns flattened in by the store queries.
type ReservationView struct {
	ID           string  `json:"id"`
	ChargerID    string  `json:"charger_id"`
	UserID       string  `json:"user_id"`
	Date         string  `json:"date"`
	Slot         string  `json:"slot"`
	Price        string  `json:"price"`
	Status       string  `json:"status"`
	Power        float64 `json:"power,omitempty"`
	Address      string  `json:"address,omitempty"`
	Requester    string  `json:"requester,omitempty"`
	UserRating   float64 `json:"user_rating,omitempty"`
}

// OngoingView is the at-most-one reservation currently in progress, with
// countdown fields for the client timer.
type OngoingView struct {
	ReservationView
	TimeToEnd    int64 `json:"time_to_end"`
	TotalSeconds int64 `json:"total_seconds"`
}

// PartitionedReservations splits a listing into past, upcoming and the
// single in-progress entry, judged against the presentation-shifted clock.
type PartitionedReservations struct {
	Past     []ReservationView `json:"past"`
	Upcoming []ReservationView `json:"upcoming"`
	Ongoing  *OngoingView      `json:"ongoing,omitempty"`
}

func (s *ReservationService) ListForUser(ctx context.Context, userID string) (PartitionedReservations, error) {
	rows, err := s.reservationStore.ListByUser(ctx, userID)
	if err != nil {
		return PartitionedReservations{}, err
	}
	now := s.now()
	out := PartitionedReservations{Past: []ReservationView{}, Upcoming: []ReservationView{}}
	for _, row := range rows {
		view := viewFromReservation(row.Reservation)
		view.Power = row.Power
		view.Address = formatAddress(row.StreetNumber, row.Street, row.ZipCode, row.City)
		placeReservation(&out, view, row.Reservation, now)
	}
	return out, nil
}

func (s *ReservationService) ListForCharger(ctx context.Context, chargerID, callerID string) (PartitionedReservations, error) {
	ownerID, err := s.chargerStore.OwnerID(ctx, chargerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PartitionedReservations{}, ErrChargerNotFound
		}
		return PartitionedReservations{}, err
	}
	if ownerID != callerID {
		return PartitionedReservations{}, ErrNotOwner
	}
	rows, err := s.reservationStore.ListByCharger(ctx, chargerID)
	if err != nil {
		return PartitionedReservations{}, err
	}
	now := s.now()
	out := PartitionedReservations{Past: []ReservationView{}, Upcoming: []ReservationView{}}
	for _, row := range rows {
		view := viewFromReservation(row.Reservation)
		view.Requester = row.FirstName + " " + row.LastName
		view.UserRating = row.UserRating
		placeReservation(&out, view, row.Reservation, now)
	}
	return out, nil
}

// placeReservation assigns a view to its partition. Stored instants sit
// one hour ahead of the server clock, so the comparison point is shifted
// by the same offset. The three cases are exhaustive and disjoint.
func placeReservation(out *PartitionedReservations, view ReservationView, row store.Reservation, now time.Time) {
	localeNow := now.Add(timeutil.PresentationOffset)
	switch {
	case !row.EndAt.After(localeNow):
		out.Past = append(out.Past, view)
	case row.StartAt.After(localeNow):
		out.Upcoming = append(out.Upcoming, view)
	default:
		out.Ongoing = &OngoingView{
			ReservationView: view,
			TimeToEnd:       timeutil.RemainingSeconds(now, row.EndAt),
			TotalSeconds:    timeutil.TotalSeconds(row.StartAt, row.EndAt),
		}
	}
}

func viewFromReservation(row store.Reservation) ReservationView {
	return ReservationView{
		ID:        row.ID,
		ChargerID: row.ChargerID,
		UserID:    row.UserID,
		Date:      timeutil.FormatDate(row.StartAt),
		Slot:      timeutil.FormatSlot(timeutil.Window{Start: row.StartAt, End: row.EndAt}),
		Price:     money.FormatEuros(row.Price),
		Status:    row.Status,
	}
}

func formatAddress(num int, street, zipCode, city string) string {
	return fmt.Sprintf("%d %s, %s %s", num, street, zipCode, city)
}
