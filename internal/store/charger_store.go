package store

import (
	"context"
	"time"
)

type ChargerStore struct {
	db DB
}

func NewChargerStore(db DB) *ChargerStore {
	return &ChargerStore{db: db}
}

type Charger struct {
	ID           string    `db:"id"`
	OwnerID      string    `db:"owner_id"`
	Brand        string    `db:"brand"`
	Power        float64   `db:"power"`
	PlugType     string    `db:"plug_type"`
	PricePerHour int64     `db:"price_per_hour"`
	Available    bool      `db:"available"`
	StreetNumber int       `db:"num"`
	Street       string    `db:"street"`
	ZipCode      string    `db:"zip_code"`
	City         string    `db:"city"`
	Latitude     *float64  `db:"latitude"`
	Longitude    *float64  `db:"longitude"`
	CreatedAt    time.Time `db:"created_at"`
}

type ChargerInput struct {
	ID           string
	OwnerID      string
	Brand        string
	Power        float64
	PlugType     string
	PricePerHour int64
	Available    bool
	StreetNumber int
	Street       string
	ZipCode      string
	City         string
	Latitude     *float64
	Longitude    *float64
}

func (s *ChargerStore) Create(ctx context.Context, tx Execer, input ChargerInput) error {
	query := `
		INSERT INTO chargers (id, owner_id, brand, power, plug_type, price_per_hour, available,
		                      num, street, zip_code, city, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.OwnerID, input.Brand, input.Power, input.PlugType, input.PricePerHour,
		input.Available, input.StreetNumber, input.Street, input.ZipCode, input.City,
		input.Latitude, input.Longitude,
	)
	return err
}

func (s *ChargerStore) GetByID(ctx context.Context, chargerID string) (Charger, error) {
	var row Charger
	err := s.db.GetContext(ctx, &row, `
		SELECT id, owner_id, brand, power, plug_type, price_per_hour, available,
		       num, street, zip_code, city, latitude, longitude, created_at
		FROM chargers
		WHERE id = $1
	`, chargerID)
	if err != nil {
		return Charger{}, err
	}
	return row, nil
}

// ListListed returns chargers whose owners have not delisted them. Being
// listed says nothing about being free for a given window.
func (s *ChargerStore) ListListed(ctx context.Context) ([]Charger, error) {
	var rows []Charger
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, owner_id, brand, power, plug_type, price_per_hour, available,
		       num, street, zip_code, city, latitude, longitude, created_at
		FROM chargers
		WHERE available = TRUE
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *ChargerStore) ListByOwner(ctx context.Context, ownerID string) ([]Charger, error) {
	var rows []Charger
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, owner_id, brand, power, plug_type, price_per_hour, available,
		       num, street, zip_code, city, latitude, longitude, created_at
		FROM chargers
		WHERE owner_id = $1
		ORDER BY created_at
	`, ownerID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// OwnerID resolves a charger's owner through the back-reference column.
func (s *ChargerStore) OwnerID(ctx context.Context, chargerID string) (string, error) {
	var ownerID string
	err := s.db.GetContext(ctx, &ownerID, `
		SELECT owner_id FROM chargers WHERE id = $1
	`, chargerID)
	return ownerID, err
}

// SetAvailability flips the listed flag. The owner filter makes the update
// a no-op for any other principal; callers check the affected count.
func (s *ChargerStore) SetAvailability(ctx context.Context, tx Execer, chargerID, ownerID string, available bool) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE chargers SET available = $1 WHERE id = $2 AND owner_id = $3
	`, available, chargerID, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *ChargerStore) Delete(ctx context.Context, tx Execer, chargerID, ownerID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		DELETE FROM chargers WHERE id = $1 AND owner_id = $2
	`, chargerID, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
