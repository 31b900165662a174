package services

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"eevy/internal/db"
	"eevy/internal/models"
	"eevy/internal/money"
	"eevy/internal/store"
	"eevy/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAlreadySettled    = errors.New("reservation already settled")
	ErrNotSettleable     = errors.New("reservation not accepted")
	ErrNotPayer          = errors.New("reservation does not belong to user")
	ErrOwnerNotFound     = errors.New("charger owner not found")
	// ErrLedgerInconsistent means an account row disappeared between the
	// lock and the balance write. The transaction rolls back, so no
	// movement survives, but the condition is logged as its own class.
	ErrLedgerInconsistent = errors.New("ledger inconsistent")
)

type SettlementService struct {
	txRunner         db.TxRunner
	reservationStore SettlementReservationStore
	chargerStore     OwnerResolver
	accountStore     SettlementAccountStore
	movementStore    SettlementMovementStore
	hub              BalanceHub
}

type SettlementReservationStore interface {
	GetForUpdate(ctx context.Context, tx store.Getter, reservationID string) (store.Reservation, error)
	MarkSettled(ctx context.Context, tx store.Execer, reservationID string) (int64, error)
}

type OwnerResolver interface {
	OwnerID(ctx context.Context, chargerID string) (string, error)
}

type SettlementAccountStore interface {
	IDByUser(ctx context.Context, userID string) (string, error)
	GetForUpdate(ctx context.Context, tx store.Getter, accountID string) (store.Account, error)
	UpdateBalance(ctx context.Context, tx store.Execer, accountID string, balance int64) (int64, error)
}

type SettlementMovementStore interface {
	InsertAll(ctx context.Context, tx store.Execer, movements []store.MovementInput) error
}

type BalanceHub interface {
	BroadcastBalance(userID string, update websocket.BalanceUpdate)
}

func NewSettlementService(txRunner db.TxRunner, reservationStore SettlementReservationStore, chargerStore OwnerResolver, accountStore SettlementAccountStore, movementStore SettlementMovementStore, hub BalanceHub) *SettlementService {
	return &SettlementService{
		txRunner:         txRunner,
		reservationStore: reservationStore,
		chargerStore:     chargerStore,
		accountStore:     accountStore,
		movementStore:    movementStore,
		hub:              hub,
	}
}

// Settle moves the reservation price from the requesting user to the
// charger owner, atomically with the accepted-to-done status flip. Either
// everything commits or nothing does; there is no compensation path.
// Returns the payer's balance after settlement.
func (s *SettlementService) Settle(ctx context.Context, reservationID, payerID string) (int64, error) {
	var payerBalanceAfter int64
	var payeeBalanceAfter int64
	var payerAccountID string
	var payeeAccountID string
	var ownerID string
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		reservation, err := s.reservationStore.GetForUpdate(ctx, tx, reservationID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrReservationNotFound
			}
			return err
		}
		if reservation.UserID != payerID {
			return ErrNotPayer
		}
		switch reservation.Status {
		case models.ReservationAccepted:
		case models.ReservationDone:
			return ErrAlreadySettled
		default:
			return ErrNotSettleable
		}
		rows, err := s.reservationStore.MarkSettled(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrAlreadySettled
		}
		ownerID, err = s.chargerStore.OwnerID(ctx, reservation.ChargerID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrOwnerNotFound
			}
			return err
		}
		payerAccountID, err = s.accountStore.IDByUser(ctx, payerID)
		if err != nil {
			return err
		}
		payeeAccountID, err = s.accountStore.IDByUser(ctx, ownerID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrOwnerNotFound
			}
			return err
		}
		payerAccount, payeeAccount, err := lockTwoAccounts(ctx, tx, s.accountStore, payerAccountID, payeeAccountID)
		if err != nil {
			return err
		}
		if payerAccount.Balance < reservation.Price {
			return ErrInsufficientFunds
		}
		movements := []store.MovementInput{
			{
				ID:          uuid.NewString(),
				AccountID:   payerAccountID,
				Amount:      reservation.Price,
				IsCredit:    false,
				Description: "Reservation " + reservationID + " debit",
			},
			{
				ID:          uuid.NewString(),
				AccountID:   payeeAccountID,
				Amount:      reservation.Price,
				IsCredit:    true,
				Description: "Reservation " + reservationID + " credit",
			},
		}
		if err := ensureSymmetric(movements); err != nil {
			return err
		}
		if err := s.movementStore.InsertAll(ctx, tx, movements); err != nil {
			return err
		}
		payerBalanceAfter = payerAccount.Balance - reservation.Price
		payeeBalanceAfter = payeeAccount.Balance + reservation.Price
		rows, err = s.accountStore.UpdateBalance(ctx, tx, payerAccountID, payerBalanceAfter)
		if err != nil {
			return err
		}
		if rows == 0 {
			log.Printf("settlement %s: payer account %s vanished after movements", reservationID, payerAccountID)
			return ErrLedgerInconsistent
		}
		rows, err = s.accountStore.UpdateBalance(ctx, tx, payeeAccountID, payeeBalanceAfter)
		if err != nil {
			return err
		}
		if rows == 0 {
			log.Printf("settlement %s: payee account %s vanished after movements", reservationID, payeeAccountID)
			return ErrLedgerInconsistent
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.hub.BroadcastBalance(payerID, websocket.BalanceUpdate{
		AccountID: payerAccountID,
		Balance:   money.FormatMinor(payerBalanceAfter),
	})
	s.hub.BroadcastBalance(ownerID, websocket.BalanceUpdate{
		AccountID: payeeAccountID,
		Balance:   money.FormatMinor(payeeBalanceAfter),
	})
	return payerBalanceAfter, nil
}

// ensureSymmetric checks that debits and credits cancel out before the
// movements are written.
func ensureSymmetric(movements []store.MovementInput) error {
	var sum int64
	for _, m := range movements {
		if m.IsCredit {
			sum += m.Amount
		} else {
			sum -= m.Amount
		}
	}
	if sum != 0 {
		return errors.New("movements are not symmetric")
	}
	return nil
}

// lockTwoAccounts locks both rows in id order so two settlements touching
// the same accounts cannot deadlock.
func lockTwoAccounts(ctx context.Context, tx store.Getter, accountStore SettlementAccountStore, firstID, secondID string) (store.Account, store.Account, error) {
	leftID, rightID := orderedIDs(firstID, secondID)
	leftAccount, err := accountStore.GetForUpdate(ctx, tx, leftID)
	if err != nil {
		return store.Account{}, store.Account{}, err
	}
	rightAccount, err := accountStore.GetForUpdate(ctx, tx, rightID)
	if err != nil {
		return store.Account{}, store.Account{}, err
	}
	if firstID == leftID {
		return leftAccount, rightAccount, nil
	}
	return rightAccount, leftAccount, nil
}

func orderedIDs(firstID, secondID string) (string, string) {
	if firstID <= secondID {
		return firstID, secondID
	}
	return secondID, firstID
}
