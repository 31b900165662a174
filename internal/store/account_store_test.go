package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
)

func TestAccountStoreCreate(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO accounts") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 3 || args[0] != "acc-1" || args[1] != "user-1" || args[2] != int64(0) {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewAccountStore(stubDB{})
	if err := store.Create(ctx, execer, "acc-1", "user-1", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAccountStoreGetForUpdate(t *testing.T) {
	ctx := context.Background()
	getter := stubGetter{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "FOR UPDATE") {
				t.Fatalf("row lock missing: %s", query)
			}
			*dest.(*Account) = Account{ID: "acc-1", Balance: 10000}
			return nil
		},
	}
	store := NewAccountStore(stubDB{})
	row, err := store.GetForUpdate(ctx, getter, "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row.Balance != 10000 {
		t.Fatalf("unexpected row: %#v", row)
	}
}

func TestAccountStoreUpdateBalanceReportsRows(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "UPDATE accounts") {
				t.Fatalf("unexpected query: %s", query)
			}
			if args[0] != int64(7000) || args[1] != "acc-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewAccountStore(stubDB{})
	rows, err := store.UpdateBalance(ctx, execer, "acc-1", 7000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 row affected, got %d", rows)
	}
}

func TestMovementStoreInsertAll(t *testing.T) {
	ctx := context.Background()
	var inserted [][]any
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO account_movements") {
				t.Fatalf("unexpected query: %s", query)
			}
			inserted = append(inserted, args)
			return stubResult{rows: 1}, nil
		},
	}
	store := NewMovementStore(stubDB{})
	err := store.InsertAll(ctx, execer, []MovementInput{
		{ID: "mov-1", AccountID: "acc-payer", Amount: 3000, IsCredit: false, Description: "debit"},
		{ID: "mov-2", AccountID: "acc-payee", Amount: 3000, IsCredit: true, Description: "credit"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inserted) != 2 {
		t.Fatalf("expected 2 inserts, got %d", len(inserted))
	}
	if inserted[0][3] != false || inserted[1][3] != true {
		t.Fatalf("unexpected polarities: %#v", inserted)
	}
}

func TestMovementStoreNetByAccount(t *testing.T) {
	ctx := context.Background()
	store := NewMovementStore(stubDB{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "CASE WHEN is_credit") {
				t.Fatalf("unexpected query: %s", query)
			}
			*dest.(*int64) = -3000
			return nil
		},
	})
	net, err := store.NetByAccount(ctx, "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if net != -3000 {
		t.Fatalf("unexpected net: %d", net)
	}
}
