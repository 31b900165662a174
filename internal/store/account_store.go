package store

import (
	"context"
	"time"
)

type AccountStore struct {
	db DB
}

type Account struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
}

func NewAccountStore(db DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) Create(ctx context.Context, tx Execer, id, userID string, balance int64) error {
	query := `
		INSERT INTO accounts (id, user_id, balance)
		VALUES ($1, $2, $3)
	`
	_, err := tx.ExecContext(ctx, query, id, userID, balance)
	return err
}

func (s *AccountStore) GetByUser(ctx context.Context, userID string) (Account, error) {
	var row Account
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, balance, created_at
		FROM accounts
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return Account{}, err
	}
	return row, nil
}

// IDByUser resolves the 1:1 user account without reading the balance.
func (s *AccountStore) IDByUser(ctx context.Context, userID string) (string, error) {
	var id string
	err := s.db.GetContext(ctx, &id, `
		SELECT id FROM accounts WHERE user_id = $1
	`, userID)
	return id, err
}

func (s *AccountStore) GetForUpdate(ctx context.Context, tx Getter, accountID string) (Account, error) {
	var row Account
	err := tx.GetContext(ctx, &row, `
		SELECT id, user_id, balance
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`, accountID)
	if err != nil {
		return Account{}, err
	}
	return row, nil
}

// UpdateBalance writes an absolute balance and reports the affected count
// so callers can detect a row that vanished mid-transaction.
func (s *AccountStore) UpdateBalance(ctx context.Context, tx Execer, accountID string, balance int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = $1, updated_at = NOW()
		WHERE id = $2
	`, balance, accountID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
