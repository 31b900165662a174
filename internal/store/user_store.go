package store

import (
	"context"
	"strings"
	"time"

	"github.com/lib/pq"
)

const maxRecentPlaces = 10

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

type User struct {
	ID           string    `db:"id"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Phone        string    `db:"phone"`
	Rating       float64   `db:"rating"`
	CreatedAt    time.Time `db:"created_at"`
}

type UserInput struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Phone        string
}

func (s *UserStore) Create(ctx context.Context, tx Execer, input UserInput) error {
	query := `
		INSERT INTO users (id, first_name, last_name, email, password_hash, phone)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.FirstName, input.LastName, input.Email, input.PasswordHash, input.Phone)
	return err
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (User, error) {
	var row User
	err := s.db.GetContext(ctx, &row, `
		SELECT id, first_name, last_name, email, password_hash, phone, rating, created_at
		FROM users
		WHERE email = $1
	`, email)
	if err != nil {
		return User{}, err
	}
	return row, nil
}

func (s *UserStore) GetByID(ctx context.Context, userID string) (User, error) {
	var row User
	err := s.db.GetContext(ctx, &row, `
		SELECT id, first_name, last_name, email, password_hash, phone, rating, created_at
		FROM users
		WHERE id = $1
	`, userID)
	if err != nil {
		return User{}, err
	}
	return row, nil
}

func (s *UserStore) UpdateRating(ctx context.Context, tx Execer, userID string, rating float64) error {
	_, err := tx.ExecContext(ctx, `UPDATE users SET rating = $1 WHERE id = $2`, rating, userID)
	return err
}

func (s *UserStore) RecentPlaces(ctx context.Context, userID string) ([]string, error) {
	var places pq.StringArray
	err := s.db.GetContext(ctx, &places, `
		SELECT COALESCE(recent_places, '{}')
		FROM users
		WHERE id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	return []string(places), nil
}

// AddRecentPlace pushes the city to the front of the user's bounded
// recent-places list.
func (s *UserStore) AddRecentPlace(ctx context.Context, tx Execer, userID, city string) error {
	places, err := s.RecentPlaces(ctx, userID)
	if err != nil {
		return err
	}
	updated := PushRecent(places, city, maxRecentPlaces)
	_, err = tx.ExecContext(ctx, `
		UPDATE users SET recent_places = $1 WHERE id = $2
	`, pq.StringArray(updated), userID)
	return err
}

// PushRecent returns the list with city at the front. Duplicates are not
// inserted; when the list is full the oldest entry is evicted.
func PushRecent(places []string, city string, max int) []string {
	city = strings.ToUpper(strings.TrimSpace(city))
	for _, p := range places {
		if p == city {
			return places
		}
	}
	if len(places) >= max {
		places = places[:max-1]
	}
	return append([]string{city}, places...)
}

func (s *UserStore) HasFavorite(ctx context.Context, userID, chargerID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = $1 AND charger_id = $2)
	`, userID, chargerID)
	return exists, err
}

func (s *UserStore) InsertFavorite(ctx context.Context, tx Execer, userID, chargerID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO favorites (user_id, charger_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, userID, chargerID)
	return err
}

func (s *UserStore) DeleteFavorite(ctx context.Context, tx Execer, userID, chargerID string) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM favorites WHERE user_id = $1 AND charger_id = $2
	`, userID, chargerID)
	return err
}

func (s *UserStore) ListFavoriteIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids, `
		SELECT charger_id FROM favorites WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	return ids, nil
}
