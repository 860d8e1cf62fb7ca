package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hokuto-abe/quiz-grandprix/models"
)

var (
	ErrMatchNotFound = errors.New("match not found")
	// ErrMatchTipConflict means the match tip moved underneath a
	// compare-and-swap: another operator committed first.
	ErrMatchTipConflict = errors.New("match operation tip conflict")
)

type MatchRepository interface {
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByRound(ctx context.Context, exec SQLExecutor, roundID int) ([]*models.Match, error)
	// UpdateLastOperation advances the match tip only if it still equals
	// from (nil meaning unopened). Returns ErrMatchTipConflict otherwise.
	UpdateLastOperation(ctx context.Context, exec SQLExecutor, matchID int, from, to *int64) error
	// ClearLastOperationByRound detaches every match of a round from its
	// operation chain. Only a forced matchmaking re-run does this.
	ClearLastOperationByRound(ctx context.Context, exec SQLExecutor, roundID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	err := rowScanner.Scan(&m.ID, &m.RoundID, &m.Number, &m.Name, &m.Rule, &m.LastScoreOperationID, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `
		SELECT id, round_id, number, name, rule, last_score_operation_id, created_at
		FROM matches WHERE id = $1`
	row := r.getExecutor(exec).QueryRowContext(ctx, query, id)
	return r.scanMatch(row)
}

func (r *postgresMatchRepository) ListByRound(ctx context.Context, exec SQLExecutor, roundID int) ([]*models.Match, error) {
	query := `
		SELECT id, round_id, number, name, rule, last_score_operation_id, created_at
		FROM matches WHERE round_id = $1 ORDER BY number`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, errScan := r.scanMatch(rows)
		if errScan != nil {
			return nil, errScan
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) UpdateLastOperation(ctx context.Context, exec SQLExecutor, matchID int, from, to *int64) error {
	// IS NOT DISTINCT FROM makes the guard hold for the unopened (NULL)
	// tip as well.
	query := `
		UPDATE matches SET last_score_operation_id = $1
		WHERE id = $2 AND last_score_operation_id IS NOT DISTINCT FROM $3`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, to, matchID, from)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchTipConflict)
}

func (r *postgresMatchRepository) ClearLastOperationByRound(ctx context.Context, exec SQLExecutor, roundID int) error {
	query := `UPDATE matches SET last_score_operation_id = NULL WHERE round_id = $1`
	_, err := r.getExecutor(exec).ExecContext(ctx, query, roundID)
	return err
}
