// Package models holds the reservation lifecycle shared by the services
// and handlers. Row-shaped structs live next to their queries in store.
package models

import "time"

const (
	ReservationInitiated = "initiated"
	ReservationAccepted  = "accepted"
	ReservationDone      = "done"
	// Declared but never reached by any transition; kept so the overlap
	// query's status filter stays future-proof.
	ReservationCancelled = "cancelled"
)

type Reservation struct {
	ID        string    `db:"id" json:"id"`
	ChargerID string    `db:"charger_id" json:"charger_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	StartAt   time.Time `db:"start_at" json:"start_at"`
	EndAt     time.Time `db:"end_at" json:"end_at"`
	Price     int64     `db:"price" json:"price"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
