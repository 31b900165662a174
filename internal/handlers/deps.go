package handlers

import (
	"context"

	"eevy/internal/models"
	"eevy/internal/services"
	"eevy/internal/store"
	"eevy/internal/timeutil"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, input store.UserInput) error
	GetByEmail(ctx context.Context, email string) (store.User, error)
	GetByID(ctx context.Context, userID string) (store.User, error)
	UpdateRating(ctx context.Context, tx store.Execer, userID string, rating float64) error
	RecentPlaces(ctx context.Context, userID string) ([]string, error)
	AddRecentPlace(ctx context.Context, tx store.Execer, userID, city string) error
	HasFavorite(ctx context.Context, userID, chargerID string) (bool, error)
	InsertFavorite(ctx context.Context, tx store.Execer, userID, chargerID string) error
	DeleteFavorite(ctx context.Context, tx store.Execer, userID, chargerID string) error
	ListFavoriteIDs(ctx context.Context, userID string) ([]string, error)
}

type ChargerStore interface {
	Create(ctx context.Context, tx store.Execer, input store.ChargerInput) error
	GetByID(ctx context.Context, chargerID string) (store.Charger, error)
	ListByOwner(ctx context.Context, ownerID string) ([]store.Charger, error)
	OwnerID(ctx context.Context, chargerID string) (string, error)
	SetAvailability(ctx context.Context, tx store.Execer, chargerID, ownerID string, available bool) (int64, error)
	Delete(ctx context.Context, tx store.Execer, chargerID, ownerID string) (int64, error)
}

type AccountStore interface {
	Create(ctx context.Context, tx store.Execer, id, userID string, balance int64) error
	GetByUser(ctx context.Context, userID string) (store.Account, error)
}

type MovementStore interface {
	InsertAll(ctx context.Context, tx store.Execer, movements []store.MovementInput) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]store.Movement, error)
	NetByAccount(ctx context.Context, accountID string) (int64, error)
}

type CommentStore interface {
	Insert(ctx context.Context, tx store.Execer, input store.CommentInput) error
	ListByCharger(ctx context.Context, chargerID string) ([]store.Comment, error)
	AverageRating(ctx context.Context, chargerID string) (float64, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
}

type AvailabilityService interface {
	ListAvailable(ctx context.Context) ([]services.AvailableCharger, error)
	ListAvailableWindow(ctx context.Context, w timeutil.Window) ([]services.AvailableCharger, error)
}

type ReservationService interface {
	Create(ctx context.Context, req services.CreateReservationRequest) (models.Reservation, error)
	Decide(ctx context.Context, reservationID, callerID string, accept bool) error
	ListForUser(ctx context.Context, userID string) (services.PartitionedReservations, error)
	ListForCharger(ctx context.Context, chargerID, callerID string) (services.PartitionedReservations, error)
}

type SettlementService interface {
	Settle(ctx context.Context, reservationID, payerID string) (int64, error)
}

type Geocoder interface {
	Coordinates(ctx context.Context, street, city string) (float64, float64, error)
}
