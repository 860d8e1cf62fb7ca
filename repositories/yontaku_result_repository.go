package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hokuto-abe/quiz-grandprix/models"
)

var (
	ErrYontakuResultNotFound = errors.New("yontaku result not found")
	ErrYontakuResultConflict = errors.New("yontaku result already recorded for player")
)

type YontakuResultRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, results []*models.YontakuPlayerResult) error
	List(ctx context.Context, exec SQLExecutor) ([]models.YontakuPlayerResult, error)
	DeleteAll(ctx context.Context, exec SQLExecutor) error
}

type postgresYontakuResultRepository struct {
	db *sql.DB
}

func NewPostgresYontakuResultRepository(db *sql.DB) YontakuResultRepository {
	return &postgresYontakuResultRepository{db: db}
}

func (r *postgresYontakuResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresYontakuResultRepository) CreateBatch(ctx context.Context, exec SQLExecutor, results []*models.YontakuPlayerResult) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO yontaku_player_results (player_id, score, tiebreaker, rank)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	for _, res := range results {
		err := executor.QueryRowContext(ctx, query,
			res.PlayerID, res.Score, res.Tiebreaker, res.Rank,
		).Scan(&res.ID)
		if err != nil {
			if pqConstraint(err, "23505", "") {
				return fmt.Errorf("player %d: %w", res.PlayerID, ErrYontakuResultConflict)
			}
			return fmt.Errorf("failed to insert result for player %d: %w", res.PlayerID, err)
		}
	}
	return nil
}

func (r *postgresYontakuResultRepository) List(ctx context.Context, exec SQLExecutor) ([]models.YontakuPlayerResult, error) {
	query := `
		SELECT id, player_id, score, tiebreaker, rank
		FROM yontaku_player_results ORDER BY rank`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.YontakuPlayerResult, 0)
	for rows.Next() {
		var res models.YontakuPlayerResult
		errScan := rows.Scan(&res.ID, &res.PlayerID, &res.Score, &res.Tiebreaker, &res.Rank)
		if errScan != nil {
			return nil, errScan
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

func (r *postgresYontakuResultRepository) DeleteAll(ctx context.Context, exec SQLExecutor) error {
	_, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM yontaku_player_results`)
	return err
}
