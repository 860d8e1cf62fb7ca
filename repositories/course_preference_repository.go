package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hokuto-abe/quiz-grandprix/models"
)

var (
	ErrPreferenceNotFound   = errors.New("course preference not found")
	ErrPreferenceInvalidRef = errors.New("course preference references an unknown player or match")
)

type CoursePreferenceRepository interface {
	// Upsert inserts or replaces the player's four choices.
	Upsert(ctx context.Context, exec SQLExecutor, pref *models.RoundCoursePreference) error
	GetByPlayer(ctx context.Context, exec SQLExecutor, playerID int) (*models.RoundCoursePreference, error)
	List(ctx context.Context, exec SQLExecutor) (map[int]models.RoundCoursePreference, error)
}

type postgresCoursePreferenceRepository struct {
	db *sql.DB
}

func NewPostgresCoursePreferenceRepository(db *sql.DB) CoursePreferenceRepository {
	return &postgresCoursePreferenceRepository{db: db}
}

func (r *postgresCoursePreferenceRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresCoursePreferenceRepository) Upsert(ctx context.Context, exec SQLExecutor, pref *models.RoundCoursePreference) error {
	query := `
		INSERT INTO round_course_preferences (player_id, choice1, choice2, choice3, choice4)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (player_id) DO UPDATE SET
			choice1 = EXCLUDED.choice1, choice2 = EXCLUDED.choice2,
			choice3 = EXCLUDED.choice3, choice4 = EXCLUDED.choice4
		RETURNING id`
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		pref.PlayerID, pref.Choice1, pref.Choice2, pref.Choice3, pref.Choice4,
	).Scan(&pref.ID)
	if err != nil {
		if pqConstraint(err, "23503", "") {
			return ErrPreferenceInvalidRef
		}
		return err
	}
	return nil
}

func (r *postgresCoursePreferenceRepository) GetByPlayer(ctx context.Context, exec SQLExecutor, playerID int) (*models.RoundCoursePreference, error) {
	query := `
		SELECT id, player_id, choice1, choice2, choice3, choice4
		FROM round_course_preferences WHERE player_id = $1`
	var p models.RoundCoursePreference
	err := r.getExecutor(exec).QueryRowContext(ctx, query, playerID).
		Scan(&p.ID, &p.PlayerID, &p.Choice1, &p.Choice2, &p.Choice3, &p.Choice4)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPreferenceNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresCoursePreferenceRepository) List(ctx context.Context, exec SQLExecutor) (map[int]models.RoundCoursePreference, error) {
	query := `
		SELECT id, player_id, choice1, choice2, choice3, choice4
		FROM round_course_preferences`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prefs := make(map[int]models.RoundCoursePreference)
	for rows.Next() {
		var p models.RoundCoursePreference
		errScan := rows.Scan(&p.ID, &p.PlayerID, &p.Choice1, &p.Choice2, &p.Choice3, &p.Choice4)
		if errScan != nil {
			return nil, errScan
		}
		prefs[p.PlayerID] = p
	}
	return prefs, rows.Err()
}
