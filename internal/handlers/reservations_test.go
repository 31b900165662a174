package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eevy/internal/models"
	"eevy/internal/services"
	"eevy/internal/store"
)

func TestCreateReservationWithDuration(t *testing.T) {
	var received services.CreateReservationRequest
	handler := newTestHandler(handlerDeps{
		reservations: stubReservationService{
			createFn: func(_ context.Context, req services.CreateReservationRequest) (models.Reservation, error) {
				received = req
				return models.Reservation{ID: "res-1", Status: "initiated", Price: 800}, nil
			},
		},
	})
	body := `{"charger_id":"charger-1","from":"2026-09-01 09:00","duration":"02:00"}`
	rr := httptest.NewRecorder()
	handler.CreateReservation(rr, authedRequest(http.MethodPost, "/reservations", body, "user-1"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if received.Window.Duration().Hours() != 2 {
		t.Fatalf("duration not applied: %#v", received.Window)
	}
	if received.PriceMinor != nil {
		t.Fatalf("no explicit price expected")
	}
	var resp map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp["price"] != "8.00" {
		t.Fatalf("unexpected price: %v", resp["price"])
	}
}

func TestCreateReservationBusyConflict(t *testing.T) {
	handler := newTestHandler(handlerDeps{
		reservations: stubReservationService{
			createFn: func(context.Context, services.CreateReservationRequest) (models.Reservation, error) {
				return models.Reservation{}, services.ErrChargerBusy
			},
		},
	})
	body := `{"charger_id":"charger-1","from":"2026-09-01 09:00","to":"2026-09-01 11:00"}`
	rr := httptest.NewRecorder()
	handler.CreateReservation(rr, authedRequest(http.MethodPost, "/reservations", body, "user-1"))
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestCreateReservationMalformedWindow(t *testing.T) {
	handler := newTestHandler(handlerDeps{})
	body := `{"charger_id":"charger-1","from":"01/09/2026 09:00","to":"2026-09-01 11:00"}`
	rr := httptest.NewRecorder()
	handler.CreateReservation(rr, authedRequest(http.MethodPost, "/reservations", body, "user-1"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCreateReservationInvertedWindow(t *testing.T) {
	handler := newTestHandler(handlerDeps{})
	body := `{"charger_id":"charger-1","from":"2026-09-01 11:00","to":"2026-09-01 09:00"}`
	rr := httptest.NewRecorder()
	handler.CreateReservation(rr, authedRequest(http.MethodPost, "/reservations", body, "user-1"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestDecideReservationForbidden(t *testing.T) {
	handler := newTestHandler(handlerDeps{
		reservations: stubReservationService{
			decideFn: func(context.Context, string, string, bool) error {
				return services.ErrNotOwner
			},
		},
	})
	req := withURLParam(authedRequest(http.MethodPost, "/reservations/res-1/decision", `{"accept":true}`, "intruder"), "id", "res-1")
	rr := httptest.NewRecorder()
	handler.DecideReservation(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestDecideReservationReject(t *testing.T) {
	var accepted *bool
	handler := newTestHandler(handlerDeps{
		reservations: stubReservationService{
			decideFn: func(_ context.Context, _, _ string, accept bool) error {
				accepted = &accept
				return nil
			},
		},
	})
	req := withURLParam(authedRequest(http.MethodPost, "/reservations/res-1/decision", `{"accept":false}`, "owner-1"), "id", "res-1")
	rr := httptest.NewRecorder()
	handler.DecideReservation(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if accepted == nil || *accepted {
		t.Fatalf("expected a rejection to pass through")
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil || resp["status"] != "rejected" {
		t.Fatalf("unexpected response: %s", rr.Body.String())
	}
}

func TestSettleReservationReturnsBalance(t *testing.T) {
	handler := newTestHandler(handlerDeps{
		settlement: stubSettlementService{
			settleFn: func(_ context.Context, reservationID, payerID string) (int64, error) {
				if reservationID != "res-1" || payerID != "user-1" {
					t.Fatalf("unexpected arguments: %s, %s", reservationID, payerID)
				}
				return 7000, nil
			},
		},
	})
	req := withURLParam(authedRequest(http.MethodPost, "/reservations/res-1/settle", "", "user-1"), "id", "res-1")
	rr := httptest.NewRecorder()
	handler.SettleReservation(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil || resp["balance"] != "70.00" {
		t.Fatalf("unexpected response: %s", rr.Body.String())
	}
}

func TestSettleReservationAlreadySettled(t *testing.T) {
	handler := newTestHandler(handlerDeps{
		settlement: stubSettlementService{
			settleFn: func(context.Context, string, string) (int64, error) {
				return 0, services.ErrAlreadySettled
			},
		},
	})
	req := withURLParam(authedRequest(http.MethodPost, "/reservations/res-1/settle", "", "user-1"), "id", "res-1")
	rr := httptest.NewRecorder()
	handler.SettleReservation(rr, req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestSettleReservationInsufficientFunds(t *testing.T) {
	handler := newTestHandler(handlerDeps{
		settlement: stubSettlementService{
			settleFn: func(context.Context, string, string) (int64, error) {
				return 0, services.ErrInsufficientFunds
			},
		},
	})
	req := withURLParam(authedRequest(http.MethodPost, "/reservations/res-1/settle", "", "user-1"), "id", "res-1")
	rr := httptest.NewRecorder()
	handler.SettleReservation(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestSettleReservationOwnerUnresolvable(t *testing.T) {
	handler := newTestHandler(handlerDeps{
		settlement: stubSettlementService{
			settleFn: func(context.Context, string, string) (int64, error) {
				return 0, services.ErrOwnerNotFound
			},
		},
	})
	req := withURLParam(authedRequest(http.MethodPost, "/reservations/res-1/settle", "", "user-1"), "id", "res-1")
	rr := httptest.NewRecorder()
	handler.SettleReservation(rr, req)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "owner could not be resolved") {
		t.Fatalf("expected an owner-resolution message, got %s", rr.Body.String())
	}
}

func TestSettleReservationLedgerInconsistency(t *testing.T) {
	handler := newTestHandler(handlerDeps{
		settlement: stubSettlementService{
			settleFn: func(context.Context, string, string) (int64, error) {
				return 0, services.ErrLedgerInconsistent
			},
		},
	})
	req := withURLParam(authedRequest(http.MethodPost, "/reservations/res-1/settle", "", "user-1"), "id", "res-1")
	rr := httptest.NewRecorder()
	handler.SettleReservation(rr, req)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "ledger inconsistency") {
		t.Fatalf("expected the ledger message, got %s", rr.Body.String())
	}
}

func TestListMovementsIncludesNet(t *testing.T) {
	handler := newTestHandler(handlerDeps{
		accounts: stubAccountStore{
			getByUserFn: func(context.Context, string) (store.Account, error) {
				return store.Account{ID: "acc-1", Balance: 8500}, nil
			},
		},
		movements: stubMovementStore{
			listByAccountFn: func(_ context.Context, accountID string, limit, offset int) ([]store.Movement, error) {
				if accountID != "acc-1" || limit != 50 || offset != 0 {
					t.Fatalf("unexpected arguments: %s, %d, %d", accountID, limit, offset)
				}
				return []store.Movement{
					{ID: "mov-1", AccountID: "acc-1", Amount: 10000, IsCredit: true},
					{ID: "mov-2", AccountID: "acc-1", Amount: 1500, IsCredit: false},
				}, nil
			},
			netByAccountFn: func(context.Context, string) (int64, error) {
				return 8500, nil
			},
		},
	})
	rr := httptest.NewRecorder()
	handler.ListMovements(rr, authedRequest(http.MethodGet, "/account/movements", "", "user-1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Movements []store.Movement `json:"movements"`
		Net       string           `json:"net"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if len(resp.Movements) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(resp.Movements))
	}
	if resp.Net != "85.00" {
		t.Fatalf("expected the movement net alongside the listing, got %q", resp.Net)
	}
}

func TestAddCommentUpdatesOwnerRating(t *testing.T) {
	var updatedRating float64
	handler := newTestHandler(handlerDeps{
		chargers: stubChargerStore{
			ownerIDFn: func(context.Context, string) (string, error) {
				return "owner-1", nil
			},
		},
		users: stubUserStore{
			getByIDFn: func(context.Context, string) (store.User, error) {
				return store.User{ID: "owner-1", Rating: 4.0}, nil
			},
			updateRatingFn: func(_ context.Context, _ store.Execer, _ string, rating float64) error {
				updatedRating = rating
				return nil
			},
		},
		comments: stubCommentStore{
			countByOwnerFn: func(context.Context, string) (int64, error) {
				return 3, nil
			},
		},
	})
	req := withURLParam(authedRequest(http.MethodPost, "/chargers/charger-1/comments", `{"rating":5,"body":"great spot"}`, "user-1"), "id", "charger-1")
	rr := httptest.NewRecorder()
	handler.AddComment(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	// (4.0*3 + 5) / 4
	if updatedRating != 4.25 {
		t.Fatalf("unexpected owner rating: %f", updatedRating)
	}
}

func TestAddCommentOwnChargerRejected(t *testing.T) {
	handler := newTestHandler(handlerDeps{
		chargers: stubChargerStore{
			ownerIDFn: func(context.Context, string) (string, error) {
				return "owner-1", nil
			},
		},
	})
	req := withURLParam(authedRequest(http.MethodPost, "/chargers/charger-1/comments", `{"rating":5}`, "owner-1"), "id", "charger-1")
	rr := httptest.NewRecorder()
	handler.AddComment(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
