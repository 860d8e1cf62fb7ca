package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hokuto-abe/quiz-grandprix/models"
)

var ErrScoreNotFound = errors.New("score not found")

type ScoreRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, scores []*models.Score) error
	ListByOperation(ctx context.Context, exec SQLExecutor, operationID int64) ([]models.Score, error)
	// UpdateByOperationAndMatching rewrites the score fields of one
	// existing snapshot row. Only the free-edit path uses this.
	UpdateByOperationAndMatching(ctx context.Context, exec SQLExecutor, score *models.Score) error
}

type postgresScoreRepository struct {
	db *sql.DB
}

func NewPostgresScoreRepository(db *sql.DB) ScoreRepository {
	return &postgresScoreRepository{db: db}
}

func (r *postgresScoreRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresScoreRepository) CreateBatch(ctx context.Context, exec SQLExecutor, scores []*models.Score) error {
	if len(scores) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO scores (score_operation_id, matching_id, status, points, misses, stars, rank)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	for _, s := range scores {
		err := executor.QueryRowContext(ctx, query,
			s.ScoreOperationID, s.MatchingID, s.Status, s.Points, s.Misses, s.Stars, s.Rank,
		).Scan(&s.ID)
		if err != nil {
			return fmt.Errorf("failed to insert score for matching %d: %w", s.MatchingID, err)
		}
	}
	return nil
}

func (r *postgresScoreRepository) ListByOperation(ctx context.Context, exec SQLExecutor, operationID int64) ([]models.Score, error) {
	query := `
		SELECT s.id, s.score_operation_id, s.matching_id, s.status, s.points, s.misses, s.stars, s.rank
		FROM scores s
		JOIN matchings mg ON mg.id = s.matching_id
		WHERE s.score_operation_id = $1
		ORDER BY mg.seat`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, operationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make([]models.Score, 0)
	for rows.Next() {
		var s models.Score
		errScan := rows.Scan(&s.ID, &s.ScoreOperationID, &s.MatchingID, &s.Status, &s.Points, &s.Misses, &s.Stars, &s.Rank)
		if errScan != nil {
			return nil, errScan
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

func (r *postgresScoreRepository) UpdateByOperationAndMatching(ctx context.Context, exec SQLExecutor, score *models.Score) error {
	query := `
		UPDATE scores SET status = $1, points = $2, misses = $3, stars = $4, rank = $5
		WHERE score_operation_id = $6 AND matching_id = $7`
	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		score.Status, score.Points, score.Misses, score.Stars, score.Rank,
		score.ScoreOperationID, score.MatchingID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrScoreNotFound)
}
