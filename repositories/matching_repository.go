package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hokuto-abe/quiz-grandprix/models"
)

var (
	ErrMatchingNotFound     = errors.New("matching not found")
	ErrMatchingSeatConflict = errors.New("seat already taken in this match")
	ErrMatchingInvalidRef   = errors.New("matching references an unknown match or player")
)

type MatchingRepository interface {
	Create(ctx context.Context, exec SQLExecutor, matching *models.Matching) error
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.Matching, error)
	CountByRound(ctx context.Context, exec SQLExecutor, roundID int) (int, error)
	DeleteByRound(ctx context.Context, exec SQLExecutor, roundID int) error
}

type postgresMatchingRepository struct {
	db *sql.DB
}

func NewPostgresMatchingRepository(db *sql.DB) MatchingRepository {
	return &postgresMatchingRepository{db: db}
}

func (r *postgresMatchingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchingRepository) Create(ctx context.Context, exec SQLExecutor, matching *models.Matching) error {
	query := `
		INSERT INTO matchings (match_id, player_id, seat)
		VALUES ($1, $2, $3)
		RETURNING id`
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		matching.MatchID, matching.PlayerID, matching.Seat,
	).Scan(&matching.ID)
	if err != nil {
		if pqConstraint(err, "23505", "") {
			return ErrMatchingSeatConflict
		}
		if pqConstraint(err, "23503", "") {
			return ErrMatchingInvalidRef
		}
		return err
	}
	return nil
}

func (r *postgresMatchingRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.Matching, error) {
	query := `
		SELECT id, match_id, player_id, seat
		FROM matchings WHERE match_id = $1 ORDER BY seat`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matchings := make([]models.Matching, 0)
	for rows.Next() {
		var m models.Matching
		if errScan := rows.Scan(&m.ID, &m.MatchID, &m.PlayerID, &m.Seat); errScan != nil {
			return nil, errScan
		}
		matchings = append(matchings, m)
	}
	return matchings, rows.Err()
}

func (r *postgresMatchingRepository) CountByRound(ctx context.Context, exec SQLExecutor, roundID int) (int, error) {
	query := `
		SELECT COUNT(*) FROM matchings mg
		JOIN matches m ON m.id = mg.match_id
		WHERE m.round_id = $1`
	var count int
	err := r.getExecutor(exec).QueryRowContext(ctx, query, roundID).Scan(&count)
	return count, err
}

func (r *postgresMatchingRepository) DeleteByRound(ctx context.Context, exec SQLExecutor, roundID int) error {
	query := `
		DELETE FROM matchings WHERE match_id IN (
			SELECT id FROM matches WHERE round_id = $1
		)`
	_, err := r.getExecutor(exec).ExecContext(ctx, query, roundID)
	return err
}
