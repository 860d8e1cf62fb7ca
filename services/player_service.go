package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/hokuto-abe/quiz-grandprix/models"
	"github.com/hokuto-abe/quiz-grandprix/repositories"
)

// ResultEntry is one row of the qualifying result import. Rank is
// computed here, not supplied.
type ResultEntry struct {
	PlayerID   int `json:"player_id"`
	Score      int `json:"score"`
	Tiebreaker int `json:"tiebreaker"`
}

type PlayerService interface {
	CreatePlayer(ctx context.Context, name, nameKana string) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]*models.Player, error)
	// ImportResults ranks and stores the whole qualifying field in one
	// shot. force replaces a previous import.
	ImportResults(ctx context.Context, entries []ResultEntry, force bool) ([]models.YontakuPlayerResult, error)
	SetPreference(ctx context.Context, playerID int, choices [4]int) (*models.RoundCoursePreference, error)
	SetPreferenceLock(ctx context.Context, locked bool) error
}

type playerService struct {
	db          *sql.DB
	players     repositories.PlayerRepository
	results     repositories.YontakuResultRepository
	preferences repositories.CoursePreferenceRepository
	settings    repositories.SettingRepository
	matches     repositories.MatchRepository
	rounds      repositories.RoundRepository
	logger      *slog.Logger
}

func NewPlayerService(
	db *sql.DB,
	players repositories.PlayerRepository,
	results repositories.YontakuResultRepository,
	preferences repositories.CoursePreferenceRepository,
	settings repositories.SettingRepository,
	matches repositories.MatchRepository,
	rounds repositories.RoundRepository,
	logger *slog.Logger,
) PlayerService {
	return &playerService{
		db:          db,
		players:     players,
		results:     results,
		preferences: preferences,
		settings:    settings,
		matches:     matches,
		rounds:      rounds,
		logger:      logger,
	}
}

func (s *playerService) CreatePlayer(ctx context.Context, name, nameKana string) (*models.Player, error) {
	if name == "" || nameKana == "" {
		return nil, fmt.Errorf("%w: name and name_kana are required", ErrValidationFailed)
	}
	player := &models.Player{Name: name, NameKana: nameKana}
	if err := s.players.Create(ctx, nil, player); err != nil {
		return nil, err
	}
	return player, nil
}

func (s *playerService) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	return s.players.List(ctx, nil)
}

func (s *playerService) ImportResults(ctx context.Context, entries []ResultEntry, force bool) ([]models.YontakuPlayerResult, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no result entries", ErrValidationFailed)
	}
	seen := make(map[int]bool, len(entries))
	order := make(map[[2]int]bool, len(entries))
	for _, e := range entries {
		if seen[e.PlayerID] {
			return nil, fmt.Errorf("%w: player %d appears twice", ErrValidationFailed, e.PlayerID)
		}
		seen[e.PlayerID] = true
		key := [2]int{e.Score, e.Tiebreaker}
		if order[key] {
			return nil, fmt.Errorf("%w: players tie on score %d and tiebreaker %d", ErrValidationFailed, e.Score, e.Tiebreaker)
		}
		order[key] = true
	}

	existing, err := s.results.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 && !force {
		return nil, ErrResultsAlreadyLoaded
	}

	// Score decides, tiebreaker breaks ties, so ranks come out dense.
	sorted := make([]ResultEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Tiebreaker < sorted[j].Tiebreaker
	})
	rows := make([]*models.YontakuPlayerResult, 0, len(sorted))
	for i, e := range sorted {
		rows = append(rows, &models.YontakuPlayerResult{
			PlayerID:   e.PlayerID,
			Score:      e.Score,
			Tiebreaker: e.Tiebreaker,
			Rank:       i + 1,
		})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	if force {
		if err := s.results.DeleteAll(ctx, tx); err != nil {
			return nil, err
		}
	}
	if err := s.results.CreateBatch(ctx, tx, rows); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	s.logger.Info("qualifying results imported", slog.Int("players", len(rows)), slog.Bool("force", force))

	out := make([]models.YontakuPlayerResult, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	return out, nil
}

func (s *playerService) SetPreference(ctx context.Context, playerID int, choices [4]int) (*models.RoundCoursePreference, error) {
	locked, err := s.preferencesLocked(ctx)
	if err != nil {
		return nil, err
	}
	if locked {
		return nil, ErrPreferenceLocked
	}

	distinct := make(map[int]bool, 4)
	for _, c := range choices {
		distinct[c] = true
	}
	if len(distinct) != 4 {
		return nil, ErrPreferenceInvalid
	}
	round3, err := s.rounds.GetByKind(ctx, nil, models.RoundRound3)
	if err != nil {
		return nil, err
	}
	for _, c := range choices {
		match, err := s.matches.GetByID(ctx, nil, c)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return nil, fmt.Errorf("%w: course %d does not exist", ErrPreferenceInvalid, c)
			}
			return nil, err
		}
		if match.RoundID != round3.ID {
			return nil, fmt.Errorf("%w: match %d is not a course", ErrPreferenceInvalid, c)
		}
	}

	pref := &models.RoundCoursePreference{
		PlayerID: playerID,
		Choice1:  choices[0],
		Choice2:  choices[1],
		Choice3:  choices[2],
		Choice4:  choices[3],
	}
	if err := s.preferences.Upsert(ctx, nil, pref); err != nil {
		if errors.Is(err, repositories.ErrPreferenceInvalidRef) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return pref, nil
}

func (s *playerService) SetPreferenceLock(ctx context.Context, locked bool) error {
	value := "true"
	if locked {
		value = "false"
	}
	return s.settings.Set(ctx, nil, &models.Setting{
		Key:   models.SettingPreferenceEditable,
		Value: value,
	})
}

// preferencesLocked reads the lock setting; a missing row means still
// editable.
func (s *playerService) preferencesLocked(ctx context.Context) (bool, error) {
	setting, err := s.settings.Get(ctx, nil, models.SettingPreferenceEditable)
	if err != nil {
		if errors.Is(err, repositories.ErrSettingNotFound) {
			return false, nil
		}
		return false, err
	}
	return setting.Value != "true", nil
}
