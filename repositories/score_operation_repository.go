package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hokuto-abe/quiz-grandprix/models"
)

var ErrScoreOperationNotFound = errors.New("score operation not found")

type ScoreOperationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, op *models.ScoreOperation) error
	GetByID(ctx context.Context, exec SQLExecutor, id int64) (*models.ScoreOperation, error)
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.ScoreOperation, error)
	DeleteByRound(ctx context.Context, exec SQLExecutor, roundID int) error
}

type postgresScoreOperationRepository struct {
	db *sql.DB
}

func NewPostgresScoreOperationRepository(db *sql.DB) ScoreOperationRepository {
	return &postgresScoreOperationRepository{db: db}
}

func (r *postgresScoreOperationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresScoreOperationRepository) Create(ctx context.Context, exec SQLExecutor, op *models.ScoreOperation) error {
	payload, err := json.Marshal(op.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode operation payload: %w", err)
	}
	query := `
		INSERT INTO score_operations (match_id, preceding_operation_id, kind, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	return r.getExecutor(exec).QueryRowContext(ctx, query,
		op.MatchID, op.PrecedingOperationID, op.Kind, payload,
	).Scan(&op.ID, &op.CreatedAt)
}

func (r *postgresScoreOperationRepository) scanOperation(rowScanner interface{ Scan(...interface{}) error }) (*models.ScoreOperation, error) {
	var op models.ScoreOperation
	var payload []byte
	err := rowScanner.Scan(&op.ID, &op.MatchID, &op.PrecedingOperationID, &op.Kind, &payload, &op.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScoreOperationNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(payload, &op.Payload); err != nil {
		return nil, fmt.Errorf("failed to decode payload of operation %d: %w", op.ID, err)
	}
	return &op, nil
}

func (r *postgresScoreOperationRepository) GetByID(ctx context.Context, exec SQLExecutor, id int64) (*models.ScoreOperation, error) {
	query := `
		SELECT id, match_id, preceding_operation_id, kind, payload, created_at
		FROM score_operations WHERE id = $1`
	row := r.getExecutor(exec).QueryRowContext(ctx, query, id)
	return r.scanOperation(row)
}

func (r *postgresScoreOperationRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.ScoreOperation, error) {
	query := `
		SELECT id, match_id, preceding_operation_id, kind, payload, created_at
		FROM score_operations WHERE match_id = $1 ORDER BY id`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ops := make([]*models.ScoreOperation, 0)
	for rows.Next() {
		op, errScan := r.scanOperation(rows)
		if errScan != nil {
			return nil, errScan
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

func (r *postgresScoreOperationRepository) DeleteByRound(ctx context.Context, exec SQLExecutor, roundID int) error {
	// Scores go with the operations via ON DELETE CASCADE.
	query := `
		DELETE FROM score_operations WHERE match_id IN (
			SELECT id FROM matches WHERE round_id = $1
		)`
	_, err := r.getExecutor(exec).ExecContext(ctx, query, roundID)
	return err
}
