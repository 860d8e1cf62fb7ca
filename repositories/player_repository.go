package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/hokuto-abe/quiz-grandprix/models"
)

var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrPlayerNameConflict = errors.New("player name already registered")
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error)
	List(ctx context.Context, exec SQLExecutor) ([]*models.Player, error)
	ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) (map[int]models.Player, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	query := `
		INSERT INTO players (name, name_kana)
		VALUES ($1, $2)
		RETURNING id, created_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query, player.Name, player.NameKana).
		Scan(&player.ID, &player.CreatedAt)
	if err != nil {
		if pqConstraint(err, "23505", "players_name_key") {
			return ErrPlayerNameConflict
		}
		return err
	}
	return nil
}

func (r *postgresPlayerRepository) scanPlayer(rowScanner interface{ Scan(...interface{}) error }) (*models.Player, error) {
	var p models.Player
	err := rowScanner.Scan(&p.ID, &p.Name, &p.NameKana, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error) {
	query := `SELECT id, name, name_kana, created_at FROM players WHERE id = $1`
	row := r.getExecutor(exec).QueryRowContext(ctx, query, id)
	return r.scanPlayer(row)
}

func (r *postgresPlayerRepository) List(ctx context.Context, exec SQLExecutor) ([]*models.Player, error) {
	query := `SELECT id, name, name_kana, created_at FROM players ORDER BY id`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		p, errScan := r.scanPlayer(rows)
		if errScan != nil {
			return nil, errScan
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) (map[int]models.Player, error) {
	if len(ids) == 0 {
		return map[int]models.Player{}, nil
	}
	query := `SELECT id, name, name_kana, created_at FROM players WHERE id = ANY($1)`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make(map[int]models.Player, len(ids))
	for rows.Next() {
		p, errScan := r.scanPlayer(rows)
		if errScan != nil {
			return nil, errScan
		}
		players[p.ID] = *p
	}
	return players, rows.Err()
}
