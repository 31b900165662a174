package handlers

import (
	"context"
	"time"

	"eevy/internal/config"
	"eevy/internal/db"
	"eevy/internal/models"
	"eevy/internal/services"
	"eevy/internal/store"
	"eevy/internal/timeutil"
	"eevy/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn          func(ctx context.Context, tx store.Execer, input store.UserInput) error
	getByEmailFn      func(ctx context.Context, email string) (store.User, error)
	getByIDFn         func(ctx context.Context, userID string) (store.User, error)
	updateRatingFn    func(ctx context.Context, tx store.Execer, userID string, rating float64) error
	recentPlacesFn    func(ctx context.Context, userID string) ([]string, error)
	addRecentPlaceFn  func(ctx context.Context, tx store.Execer, userID, city string) error
	hasFavoriteFn     func(ctx context.Context, userID, chargerID string) (bool, error)
	insertFavoriteFn  func(ctx context.Context, tx store.Execer, userID, chargerID string) error
	deleteFavoriteFn  func(ctx context.Context, tx store.Execer, userID, chargerID string) error
	listFavoriteIDsFn func(ctx context.Context, userID string) ([]string, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, input store.UserInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (store.User, error) {
	if s.getByEmailFn == nil {
		return store.User{}, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (store.User, error) {
	if s.getByIDFn == nil {
		return store.User{}, nil
	}
	return s.getByIDFn(ctx, userID)
}

func (s stubUserStore) UpdateRating(ctx context.Context, tx store.Execer, userID string, rating float64) error {
	if s.updateRatingFn == nil {
		return nil
	}
	return s.updateRatingFn(ctx, tx, userID, rating)
}

func (s stubUserStore) RecentPlaces(ctx context.Context, userID string) ([]string, error) {
	if s.recentPlacesFn == nil {
		return nil, nil
	}
	return s.recentPlacesFn(ctx, userID)
}

func (s stubUserStore) AddRecentPlace(ctx context.Context, tx store.Execer, userID, city string) error {
	if s.addRecentPlaceFn == nil {
		return nil
	}
	return s.addRecentPlaceFn(ctx, tx, userID, city)
}

func (s stubUserStore) HasFavorite(ctx context.Context, userID, chargerID string) (bool, error) {
	if s.hasFavoriteFn == nil {
		return false, nil
	}
	return s.hasFavoriteFn(ctx, userID, chargerID)
}

func (s stubUserStore) InsertFavorite(ctx context.Context, tx store.Execer, userID, chargerID string) error {
	if s.insertFavoriteFn == nil {
		return nil
	}
	return s.insertFavoriteFn(ctx, tx, userID, chargerID)
}

func (s stubUserStore) DeleteFavorite(ctx context.Context, tx store.Execer, userID, chargerID string) error {
	if s.deleteFavoriteFn == nil {
		return nil
	}
	return s.deleteFavoriteFn(ctx, tx, userID, chargerID)
}

func (s stubUserStore) ListFavoriteIDs(ctx context.Context, userID string) ([]string, error) {
	if s.listFavoriteIDsFn == nil {
		return nil, nil
	}
	return s.listFavoriteIDsFn(ctx, userID)
}

type stubChargerStore struct {
	createFn          func(ctx context.Context, tx store.Execer, input store.ChargerInput) error
	getByIDFn         func(ctx context.Context, chargerID string) (store.Charger, error)
	listByOwnerFn     func(ctx context.Context, ownerID string) ([]store.Charger, error)
	ownerIDFn         func(ctx context.Context, chargerID string) (string, error)
	setAvailabilityFn func(ctx context.Context, tx store.Execer, chargerID, ownerID string, available bool) (int64, error)
	deleteFn          func(ctx context.Context, tx store.Execer, chargerID, ownerID string) (int64, error)
}

func (s stubChargerStore) Create(ctx context.Context, tx store.Execer, input store.ChargerInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubChargerStore) GetByID(ctx context.Context, chargerID string) (store.Charger, error) {
	if s.getByIDFn == nil {
		return store.Charger{}, nil
	}
	return s.getByIDFn(ctx, chargerID)
}

func (s stubChargerStore) ListByOwner(ctx context.Context, ownerID string) ([]store.Charger, error) {
	if s.listByOwnerFn == nil {
		return nil, nil
	}
	return s.listByOwnerFn(ctx, ownerID)
}

func (s stubChargerStore) OwnerID(ctx context.Context, chargerID string) (string, error) {
	if s.ownerIDFn == nil {
		return "", nil
	}
	return s.ownerIDFn(ctx, chargerID)
}

func (s stubChargerStore) SetAvailability(ctx context.Context, tx store.Execer, chargerID, ownerID string, available bool) (int64, error) {
	if s.setAvailabilityFn == nil {
		return 1, nil
	}
	return s.setAvailabilityFn(ctx, tx, chargerID, ownerID, available)
}

func (s stubChargerStore) Delete(ctx context.Context, tx store.Execer, chargerID, ownerID string) (int64, error) {
	if s.deleteFn == nil {
		return 1, nil
	}
	return s.deleteFn(ctx, tx, chargerID, ownerID)
}

type stubAccountStore struct {
	createFn    func(ctx context.Context, tx store.Execer, id, userID string, balance int64) error
	getByUserFn func(ctx context.Context, userID string) (store.Account, error)
}

func (s stubAccountStore) Create(ctx context.Context, tx store.Execer, id, userID string, balance int64) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, userID, balance)
}

func (s stubAccountStore) GetByUser(ctx context.Context, userID string) (store.Account, error) {
	if s.getByUserFn == nil {
		return store.Account{}, nil
	}
	return s.getByUserFn(ctx, userID)
}

type stubMovementStore struct {
	insertAllFn     func(ctx context.Context, tx store.Execer, movements []store.MovementInput) error
	listByAccountFn func(ctx context.Context, accountID string, limit, offset int) ([]store.Movement, error)
	netByAccountFn  func(ctx context.Context, accountID string) (int64, error)
}

func (s stubMovementStore) InsertAll(ctx context.Context, tx store.Execer, movements []store.MovementInput) error {
	if s.insertAllFn == nil {
		return nil
	}
	return s.insertAllFn(ctx, tx, movements)
}

func (s stubMovementStore) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]store.Movement, error) {
	if s.listByAccountFn == nil {
		return nil, nil
	}
	return s.listByAccountFn(ctx, accountID, limit, offset)
}

func (s stubMovementStore) NetByAccount(ctx context.Context, accountID string) (int64, error) {
	if s.netByAccountFn == nil {
		return 0, nil
	}
	return s.netByAccountFn(ctx, accountID)
}

type stubCommentStore struct {
	insertFn        func(ctx context.Context, tx store.Execer, input store.CommentInput) error
	listByChargerFn func(ctx context.Context, chargerID string) ([]store.Comment, error)
	averageRatingFn func(ctx context.Context, chargerID string) (float64, error)
	countByOwnerFn  func(ctx context.Context, ownerID string) (int64, error)
}

func (s stubCommentStore) Insert(ctx context.Context, tx store.Execer, input store.CommentInput) error {
	if s.insertFn == nil {
		return nil
	}
	return s.insertFn(ctx, tx, input)
}

func (s stubCommentStore) ListByCharger(ctx context.Context, chargerID string) ([]store.Comment, error) {
	if s.listByChargerFn == nil {
		return nil, nil
	}
	return s.listByChargerFn(ctx, chargerID)
}

func (s stubCommentStore) AverageRating(ctx context.Context, chargerID string) (float64, error) {
	if s.averageRatingFn == nil {
		return 0, nil
	}
	return s.averageRatingFn(ctx, chargerID)
}

func (s stubCommentStore) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	if s.countByOwnerFn == nil {
		return 0, nil
	}
	return s.countByOwnerFn(ctx, ownerID)
}

type stubAvailabilityService struct {
	listFn       func(ctx context.Context) ([]services.AvailableCharger, error)
	listWindowFn func(ctx context.Context, w timeutil.Window) ([]services.AvailableCharger, error)
}

func (s stubAvailabilityService) ListAvailable(ctx context.Context) ([]services.AvailableCharger, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx)
}

func (s stubAvailabilityService) ListAvailableWindow(ctx context.Context, w timeutil.Window) ([]services.AvailableCharger, error) {
	if s.listWindowFn == nil {
		return nil, nil
	}
	return s.listWindowFn(ctx, w)
}

type stubReservationService struct {
	createFn         func(ctx context.Context, req services.CreateReservationRequest) (models.Reservation, error)
	decideFn         func(ctx context.Context, reservationID, callerID string, accept bool) error
	listForUserFn    func(ctx context.Context, userID string) (services.PartitionedReservations, error)
	listForChargerFn func(ctx context.Context, chargerID, callerID string) (services.PartitionedReservations, error)
}

func (s stubReservationService) Create(ctx context.Context, req services.CreateReservationRequest) (models.Reservation, error) {
	if s.createFn == nil {
		return models.Reservation{}, nil
	}
	return s.createFn(ctx, req)
}

func (s stubReservationService) Decide(ctx context.Context, reservationID, callerID string, accept bool) error {
	if s.decideFn == nil {
		return nil
	}
	return s.decideFn(ctx, reservationID, callerID, accept)
}

func (s stubReservationService) ListForUser(ctx context.Context, userID string) (services.PartitionedReservations, error) {
	if s.listForUserFn == nil {
		return services.PartitionedReservations{}, nil
	}
	return s.listForUserFn(ctx, userID)
}

func (s stubReservationService) ListForCharger(ctx context.Context, chargerID, callerID string) (services.PartitionedReservations, error) {
	if s.listForChargerFn == nil {
		return services.PartitionedReservations{}, nil
	}
	return s.listForChargerFn(ctx, chargerID, callerID)
}

type stubSettlementService struct {
	settleFn func(ctx context.Context, reservationID, payerID string) (int64, error)
}

func (s stubSettlementService) Settle(ctx context.Context, reservationID, payerID string) (int64, error) {
	if s.settleFn == nil {
		return 0, nil
	}
	return s.settleFn(ctx, reservationID, payerID)
}

type stubGeocoder struct {
	coordinatesFn func(ctx context.Context, street, city string) (float64, float64, error)
}

func (s stubGeocoder) Coordinates(ctx context.Context, street, city string) (float64, float64, error) {
	if s.coordinatesFn == nil {
		return 48.8566, 2.3522, nil
	}
	return s.coordinatesFn(ctx, street, city)
}

type handlerDeps struct {
	txRunner     db.TxRunner
	users        UserStore
	chargers     ChargerStore
	accounts     AccountStore
	movements    MovementStore
	comments     CommentStore
	availability AvailabilityService
	reservations ReservationService
	settlement   SettlementService
	geocoder     Geocoder
}

func newTestHandler(deps handlerDeps) *Handler {
	cfg := config.Config{
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
	}
	if deps.txRunner == nil {
		deps.txRunner = fakeTxRunner{}
	}
	if deps.users == nil {
		deps.users = stubUserStore{}
	}
	if deps.chargers == nil {
		deps.chargers = stubChargerStore{}
	}
	if deps.accounts == nil {
		deps.accounts = stubAccountStore{}
	}
	if deps.movements == nil {
		deps.movements = stubMovementStore{}
	}
	if deps.comments == nil {
		deps.comments = stubCommentStore{}
	}
	if deps.availability == nil {
		deps.availability = stubAvailabilityService{}
	}
	if deps.reservations == nil {
		deps.reservations = stubReservationService{}
	}
	if deps.settlement == nil {
		deps.settlement = stubSettlementService{}
	}
	if deps.geocoder == nil {
		deps.geocoder = stubGeocoder{}
	}
	return New(deps.txRunner, cfg, deps.users, deps.chargers, deps.accounts, deps.movements, deps.comments, deps.availability, deps.reservations, deps.settlement, deps.geocoder, websocket.NewHub())
}
