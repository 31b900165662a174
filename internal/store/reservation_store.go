package store

import (
	"context"
	"time"
)

type ReservationStore struct {
	db DB
}

func NewReservationStore(db DB) *ReservationStore {
	return &ReservationStore{db: db}
}

type Reservation struct {
	ID        string    `db:"id"`
	ChargerID string    `db:"charger_id"`
	UserID    string    `db:"user_id"`
	StartAt   time.Time `db:"start_at"`
	EndAt     time.Time `db:"end_at"`
	Price     int64     `db:"price"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

// ReservationWithCharger joins the reserved charger's display columns for
// the per-user listing.
type ReservationWithCharger struct {
	Reservation
	Power        float64 `db:"power"`
	StreetNumber int     `db:"num"`
	Street       string  `db:"street"`
	ZipCode      string  `db:"zip_code"`
	City         string  `db:"city"`
}

// ReservationWithUser joins the requesting user's display columns for the
// per-charger listing.
type ReservationWithUser struct {
	Reservation
	FirstName  string  `db:"first_name"`
	LastName   string  `db:"last_name"`
	UserRating float64 `db:"user_rating"`
}

type ReservationInput struct {
	ID        string
	ChargerID string
	UserID    string
	StartAt   time.Time
	EndAt     time.Time
	Price     int64
	Status    string
}

func (s *ReservationStore) Create(ctx context.Context, tx Execer, input ReservationInput) error {
	query := `
		INSERT INTO reservations (id, charger_id, user_id, start_at, end_at, price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.ChargerID, input.UserID, input.StartAt, input.EndAt, input.Price, input.Status)
	return err
}

func (s *ReservationStore) GetByID(ctx context.Context, reservationID string) (Reservation, error) {
	var row Reservation
	err := s.db.GetContext(ctx, &row, `
		SELECT id, charger_id, user_id, start_at, end_at, price, status, created_at
		FROM reservations
		WHERE id = $1
	`, reservationID)
	if err != nil {
		return Reservation{}, err
	}
	return row, nil
}

// GetForUpdate locks the reservation row for the settlement transaction.
func (s *ReservationStore) GetForUpdate(ctx context.Context, tx Getter, reservationID string) (Reservation, error) {
	var row Reservation
	err := tx.GetContext(ctx, &row, `
		SELECT id, charger_id, user_id, start_at, end_at, price, status
		FROM reservations
		WHERE id = $1
		FOR UPDATE
	`, reservationID)
	if err != nil {
		return Reservation{}, err
	}
	return row, nil
}

// BookedChargerIDs returns the chargers holding a blocking reservation
// that overlaps the half-open window [start, end). Boundary-touching
// reservations do not conflict.
func (s *ReservationStore) BookedChargerIDs(ctx context.Context, start, end time.Time) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids, `
		SELECT DISTINCT charger_id
		FROM reservations
		WHERE status IN ('initiated', 'accepted')
		  AND end_at > $1
		  AND start_at < $2
	`, start, end)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// HasOverlap reports whether one charger holds a blocking reservation
// overlapping [start, end).
func (s *ReservationStore) HasOverlap(ctx context.Context, chargerID string, start, end time.Time) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1
			FROM reservations
			WHERE charger_id = $1
			  AND status IN ('initiated', 'accepted')
			  AND end_at > $2
			  AND start_at < $3
		)
	`, chargerID, start, end)
	return exists, err
}

func (s *ReservationStore) ListByUser(ctx context.Context, userID string) ([]ReservationWithCharger, error) {
	var rows []ReservationWithCharger
	err := s.db.SelectContext(ctx, &rows, `
		SELECT r.id, r.charger_id, r.user_id, r.start_at, r.end_at, r.price, r.status, r.created_at,
		       c.power, c.num, c.street, c.zip_code, c.city
		FROM reservations r
		JOIN chargers c ON c.id = r.charger_id
		WHERE r.user_id = $1
		ORDER BY r.start_at
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *ReservationStore) ListByCharger(ctx context.Context, chargerID string) ([]ReservationWithUser, error) {
	var rows []ReservationWithUser
	err := s.db.SelectContext(ctx, &rows, `
		SELECT r.id, r.charger_id, r.user_id, r.start_at, r.end_at, r.price, r.status, r.created_at,
		       u.first_name, u.last_name, u.rating AS user_rating
		FROM reservations r
		JOIN users u ON u.id = r.user_id
		WHERE r.charger_id = $1
		ORDER BY r.start_at
	`, chargerID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Accept is a checked-and-set transition out of initiated; a zero affected
// count means the reservation vanished or already moved on.
func (s *ReservationStore) Accept(ctx context.Context, tx Execer, reservationID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE reservations SET status = 'accepted'
		WHERE id = $1 AND status = 'initiated'
	`, reservationID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteInitiated removes a rejected reservation. Rejection is a removal,
// not a status value.
func (s *ReservationStore) DeleteInitiated(ctx context.Context, tx Execer, reservationID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		DELETE FROM reservations WHERE id = $1 AND status = 'initiated'
	`, reservationID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkSettled flips accepted to done. The checked set is what makes
// settlement idempotent: the second attempt matches zero rows.
func (s *ReservationStore) MarkSettled(ctx context.Context, tx Execer, reservationID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE reservations SET status = 'done'
		WHERE id = $1 AND status = 'accepted'
	`, reservationID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
