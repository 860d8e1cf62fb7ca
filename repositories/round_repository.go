package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hokuto-abe/quiz-grandprix/models"
)

var ErrRoundNotFound = errors.New("round not found")

type RoundRepository interface {
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Round, error)
	GetByKind(ctx context.Context, exec SQLExecutor, kind models.RoundKind) (*models.Round, error)
	List(ctx context.Context, exec SQLExecutor) ([]*models.Round, error)
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRoundRepository) scanRound(rowScanner interface{ Scan(...interface{}) error }) (*models.Round, error) {
	var round models.Round
	err := rowScanner.Scan(&round.ID, &round.Kind, &round.Name, &round.Position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	return &round, nil
}

func (r *postgresRoundRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Round, error) {
	query := `SELECT id, kind, name, position FROM rounds WHERE id = $1`
	row := r.getExecutor(exec).QueryRowContext(ctx, query, id)
	return r.scanRound(row)
}

func (r *postgresRoundRepository) GetByKind(ctx context.Context, exec SQLExecutor, kind models.RoundKind) (*models.Round, error) {
	query := `SELECT id, kind, name, position FROM rounds WHERE kind = $1`
	row := r.getExecutor(exec).QueryRowContext(ctx, query, kind)
	return r.scanRound(row)
}

func (r *postgresRoundRepository) List(ctx context.Context, exec SQLExecutor) ([]*models.Round, error) {
	query := `SELECT id, kind, name, position FROM rounds ORDER BY position`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rounds := make([]*models.Round, 0)
	for rows.Next() {
		round, errScan := r.scanRound(rows)
		if errScan != nil {
			return nil, errScan
		}
		rounds = append(rounds, round)
	}
	return rounds, rows.Err()
}
