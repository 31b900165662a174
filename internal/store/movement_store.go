package store

import (
	"context"
	"time"
)

// MovementStore is the append-only half of the ledger: one row per debit
// or credit, never updated or deleted.
type MovementStore struct {
	db DB
}

func NewMovementStore(db DB) *MovementStore {
	return &MovementStore{db: db}
}

type Movement struct {
	ID          string    `db:"id"`
	AccountID   string    `db:"account_id"`
	OccurredAt  time.Time `db:"occurred_at"`
	Amount      int64     `db:"amount"`
	IsCredit    bool      `db:"is_credit"`
	Description string    `db:"description"`
}

type MovementInput struct {
	ID          string
	AccountID   string
	Amount      int64
	IsCredit    bool
	Description string
}

func (s *MovementStore) InsertAll(ctx context.Context, tx Execer, movements []MovementInput) error {
	query := `
		INSERT INTO account_movements (id, account_id, occurred_at, amount, is_credit, description)
		VALUES ($1, $2, NOW(), $3, $4, $5)
	`
	for _, m := range movements {
		if _, err := tx.ExecContext(ctx, query, m.ID, m.AccountID, m.Amount, m.IsCredit, m.Description); err != nil {
			return err
		}
	}
	return nil
}

func (s *MovementStore) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]Movement, error) {
	var rows []Movement
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, account_id, occurred_at, amount, is_credit, description
		FROM account_movements
		WHERE account_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2 OFFSET $3
	`, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// NetByAccount recomputes the balance from movements, for reconciliation
// against the stored balance.
func (s *MovementStore) NetByAccount(ctx context.Context, accountID string) (int64, error) {
	var net int64
	err := s.db.GetContext(ctx, &net, `
		SELECT COALESCE(SUM(CASE WHEN is_credit THEN amount ELSE -amount END), 0)
		FROM account_movements
		WHERE account_id = $1
	`, accountID)
	return net, err
}
