package services

import (
	"context"
	"time"

	"eevy/internal/store"
	"eevy/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type stubReservationStore struct {
	createFn          func(ctx context.Context, tx store.Execer, input store.ReservationInput) error
	getByIDFn         func(ctx context.Context, reservationID string) (store.Reservation, error)
	getForUpdateFn    func(ctx context.Context, tx store.Getter, reservationID string) (store.Reservation, error)
	hasOverlapFn      func(ctx context.Context, chargerID string, start, end time.Time) (bool, error)
	bookedFn          func(ctx context.Context, start, end time.Time) ([]string, error)
	listByUserFn      func(ctx context.Context, userID string) ([]store.ReservationWithCharger, error)
	listByChargerFn   func(ctx context.Context, chargerID string) ([]store.ReservationWithUser, error)
	acceptFn          func(ctx context.Context, tx store.Execer, reservationID string) (int64, error)
	deleteInitiatedFn func(ctx context.Context, tx store.Execer, reservationID string) (int64, error)
	markSettledFn     func(ctx context.Context, tx store.Execer, reservationID string) (int64, error)
}

func (s stubReservationStore) Create(ctx context.Context, tx store.Execer, input store.ReservationInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubReservationStore) GetByID(ctx context.Context, reservationID string) (store.Reservation, error) {
	return s.getByIDFn(ctx, reservationID)
}

func (s stubReservationStore) GetForUpdate(ctx context.Context, tx store.Getter, reservationID string) (store.Reservation, error) {
	return s.getForUpdateFn(ctx, tx, reservationID)
}

func (s stubReservationStore) HasOverlap(ctx context.Context, chargerID string, start, end time.Time) (bool, error) {
	if s.hasOverlapFn == nil {
		return false, nil
	}
	return s.hasOverlapFn(ctx, chargerID, start, end)
}

func (s stubReservationStore) BookedChargerIDs(ctx context.Context, start, end time.Time) ([]string, error) {
	return s.bookedFn(ctx, start, end)
}

func (s stubReservationStore) ListByUser(ctx context.Context, userID string) ([]store.ReservationWithCharger, error) {
	return s.listByUserFn(ctx, userID)
}

func (s stubReservationStore) ListByCharger(ctx context.Context, chargerID string) ([]store.ReservationWithUser, error) {
	return s.listByChargerFn(ctx, chargerID)
}

func (s stubReservationStore) Accept(ctx context.Context, tx store.Execer, reservationID string) (int64, error) {
	if s.acceptFn == nil {
		return 1, nil
	}
	return s.acceptFn(ctx, tx, reservationID)
}

func (s stubReservationStore) DeleteInitiated(ctx context.Context, tx store.Execer, reservationID string) (int64, error) {
	if s.deleteInitiatedFn == nil {
		return 1, nil
	}
	return s.deleteInitiatedFn(ctx, tx, reservationID)
}

func (s stubReservationStore) MarkSettled(ctx context.Context, tx store.Execer, reservationID string) (int64, error) {
	if s.markSettledFn == nil {
		return 1, nil
	}
	return s.markSettledFn(ctx, tx, reservationID)
}

type stubChargerStore struct {
	getByIDFn    func(ctx context.Context, chargerID string) (store.Charger, error)
	ownerIDFn    func(ctx context.Context, chargerID string) (string, error)
	listListedFn func(ctx context.Context) ([]store.Charger, error)
}

func (s stubChargerStore) GetByID(ctx context.Context, chargerID string) (store.Charger, error) {
	return s.getByIDFn(ctx, chargerID)
}

func (s stubChargerStore) OwnerID(ctx context.Context, chargerID string) (string, error) {
	return s.ownerIDFn(ctx, chargerID)
}

func (s stubChargerStore) ListListed(ctx context.Context) ([]store.Charger, error) {
	return s.listListedFn(ctx)
}

type stubAccountStore struct {
	idByUserFn      func(ctx context.Context, userID string) (string, error)
	getForUpdateFn  func(ctx context.Context, tx store.Getter, accountID string) (store.Account, error)
	updateBalanceFn func(ctx context.Context, tx store.Execer, accountID string, balance int64) (int64, error)
}

func (s stubAccountStore) IDByUser(ctx context.Context, userID string) (string, error) {
	if s.idByUserFn == nil {
		return "acc-" + userID, nil
	}
	return s.idByUserFn(ctx, userID)
}

func (s stubAccountStore) GetForUpdate(ctx context.Context, tx store.Getter, accountID string) (store.Account, error) {
	return s.getForUpdateFn(ctx, tx, accountID)
}

func (s stubAccountStore) UpdateBalance(ctx context.Context, tx store.Execer, accountID string, balance int64) (int64, error) {
	if s.updateBalanceFn == nil {
		return 1, nil
	}
	return s.updateBalanceFn(ctx, tx, accountID, balance)
}

type stubMovementStore struct {
	insertAllFn func(ctx context.Context, tx store.Execer, movements []store.MovementInput) error
}

func (s stubMovementStore) InsertAll(ctx context.Context, tx store.Execer, movements []store.MovementInput) error {
	if s.insertAllFn == nil {
		return nil
	}
	return s.insertAllFn(ctx, tx, movements)
}

type stubHub struct {
	balances     []websocket.BalanceUpdate
	reservations []websocket.ReservationEvent
}

func (s *stubHub) BroadcastBalance(_ string, update websocket.BalanceUpdate) {
	s.balances = append(s.balances, update)
}

func (s *stubHub) BroadcastReservation(_ string, event websocket.ReservationEvent) {
	s.reservations = append(s.reservations, event)
}
