package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// SQLExecutor abstracts *sql.DB and *sql.Tx so a repository call can run
// either standalone or inside a caller-owned transaction.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

// pqConstraint reports whether err is a postgres constraint violation of
// the given class (23505 unique, 23503 foreign key) on the named
// constraint. An empty constraint matches any.
func pqConstraint(err error, code pq.ErrorCode, constraint string) bool {
	pqErr, ok := err.(*pq.Error)
	if !ok || pqErr.Code != code {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
