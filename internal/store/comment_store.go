package store

import (
	"context"
	"time"
)

type CommentStore struct {
	db DB
}

func NewCommentStore(db DB) *CommentStore {
	return &CommentStore{db: db}
}

type Comment struct {
	ID         string    `db:"id"`
	ChargerID  string    `db:"charger_id"`
	AuthorID   string    `db:"author_id"`
	AuthorName string    `db:"author_name"`
	Rating     int       `db:"rating"`
	Body       string    `db:"body"`
	CreatedAt  time.Time `db:"created_at"`
}

type CommentInput struct {
	ID        string
	ChargerID string
	AuthorID  string
	Rating    int
	Body      string
}

func (s *CommentStore) Insert(ctx context.Context, tx Execer, input CommentInput) error {
	query := `
		INSERT INTO comments (id, charger_id, author_id, rating, body)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := tx.ExecContext(ctx, query, input.ID, input.ChargerID, input.AuthorID, input.Rating, input.Body)
	return err
}

func (s *CommentStore) ListByCharger(ctx context.Context, chargerID string) ([]Comment, error) {
	var rows []Comment
	err := s.db.SelectContext(ctx, &rows, `
		SELECT c.id, c.charger_id, c.author_id,
		       u.first_name || ' ' || u.last_name AS author_name,
		       c.rating, c.body, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.charger_id = $1
		ORDER BY c.created_at DESC
	`, chargerID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *CommentStore) AverageRating(ctx context.Context, chargerID string) (float64, error) {
	var avg float64
	err := s.db.GetContext(ctx, &avg, `
		SELECT COALESCE(AVG(rating), 0)
		FROM comments
		WHERE charger_id = $1
	`, chargerID)
	return avg, err
}

// CountByOwner supports the owner rating running average.
func (s *CommentStore) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM comments c
		JOIN chargers ch ON ch.id = c.charger_id
		WHERE ch.owner_id = $1
	`, ownerID)
	return count, err
}
