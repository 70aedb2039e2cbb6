// Package postgres implements the inventory repositories on PostgreSQL.
// Queries are built with squirrel and scanned with scany; every repository
// joins the transaction carried in ctx by database.RunInTx.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/ghuser/larder/pkg/database"
	"github.com/ghuser/larder/services/inventory/domain"
)

const (
	tableItems     = "items"
	tableVendors   = "vendors"
	tableChefs     = "chefs"
	tableMovements = "stock_movements"
	tableAudit     = "audit_entries"

	// uqMovementReverses guarantees at most one compensating entry per movement.
	uqMovementReverses = "stock_movements_reverses_id_key"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var errNoRows = sql.ErrNoRows

// selectAll runs b and scans every row into dst.
func selectAll(ctx context.Context, db *database.Database, dst any, b sq.SelectBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return sqlscan.Select(ctx, db.Querier(ctx), dst, query, args...)
}

// selectOne runs b and scans exactly one row into dst.
func selectOne(ctx context.Context, db *database.Database, dst any, b sq.SelectBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return sqlscan.Get(ctx, db.Querier(ctx), dst, query, args...)
}

// exec runs a write statement and returns the number of affected rows.
func exec(ctx context.Context, db *database.Database, b sq.Sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	res, err := db.Querier(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// mapError converts driver errors into domain errors. notFound is returned
// for missing rows.
func mapError(err error, entity string, id uuid.UUID, notFound error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	if errors.Is(err, sql.ErrNoRows) || sqlscan.NotFound(err) {
		return fmt.Errorf("%w: %s", notFound, id)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if pgErr.ConstraintName == uqMovementReverses {
				return domain.ErrMovementAlreadyReversed
			}
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrAlreadyExists)
		case "23514", "22003": // check_violation, numeric_value_out_of_range
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrValidation)
		}
	}

	return fmt.Errorf("%s %s: %w", entity, id, err)
}

// nullUUID converts a nullable id into a driver argument.
func nullUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

// nullDecimal converts a nullable decimal into a driver argument.
func nullDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// nullString converts a nullable string into a driver argument.
func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
