package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hokuto-abe/quiz-grandprix/models"
)

var ErrSettingNotFound = errors.New("setting not found")

type SettingRepository interface {
	Get(ctx context.Context, exec SQLExecutor, key string) (*models.Setting, error)
	Set(ctx context.Context, exec SQLExecutor, setting *models.Setting) error
}

type postgresSettingRepository struct {
	db *sql.DB
}

func NewPostgresSettingRepository(db *sql.DB) SettingRepository {
	return &postgresSettingRepository{db: db}
}

func (r *postgresSettingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSettingRepository) Get(ctx context.Context, exec SQLExecutor, key string) (*models.Setting, error) {
	query := `SELECT key, value FROM settings WHERE key = $1`
	var s models.Setting
	err := r.getExecutor(exec).QueryRowContext(ctx, query, key).Scan(&s.Key, &s.Value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSettingNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresSettingRepository) Set(ctx context.Context, exec SQLExecutor, setting *models.Setting) error {
	query := `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	_, err := r.getExecutor(exec).ExecContext(ctx, query, setting.Key, setting.Value)
	return err
}
