package store

import (
	"context"
	"database/sql"
)

// The stores take the narrowest seam each query needs, so a write that
// must join a settlement or signup transaction accepts an Execer and
// plain reads go straight to the pool. *sqlx.DB and *sqlx.Tx satisfy all
// of these.

type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Getter interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

type Selecter interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type DB interface {
	Execer
	Getter
	Selecter
}
