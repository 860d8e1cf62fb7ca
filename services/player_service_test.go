package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hokuto-abe/quiz-grandprix/models"
	"github.com/hokuto-abe/quiz-grandprix/repositories"
)

type fakeSettingRepo struct {
	settings map[string]string
}

func (f *fakeSettingRepo) Get(_ context.Context, _ repositories.SQLExecutor, key string) (*models.Setting, error) {
	value, ok := f.settings[key]
	if !ok {
		return nil, repositories.ErrSettingNotFound
	}
	return &models.Setting{Key: key, Value: value}, nil
}

func (f *fakeSettingRepo) Set(_ context.Context, _ repositories.SQLExecutor, setting *models.Setting) error {
	if f.settings == nil {
		f.settings = map[string]string{}
	}
	f.settings[setting.Key] = setting.Value
	return nil
}

func TestImportResultsValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewPlayerService(nil, nil, nil, nil, nil, nil, nil, nil)

	t.Run("empty import is rejected", func(t *testing.T) {
		_, err := svc.ImportResults(ctx, nil, false)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("duplicate player is rejected", func(t *testing.T) {
		_, err := svc.ImportResults(ctx, []ResultEntry{
			{PlayerID: 1, Score: 80, Tiebreaker: 10},
			{PlayerID: 1, Score: 75, Tiebreaker: 11},
		}, false)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("unresolvable tie is rejected", func(t *testing.T) {
		// Equal score and tiebreaker would break rank density downstream.
		_, err := svc.ImportResults(ctx, []ResultEntry{
			{PlayerID: 1, Score: 80, Tiebreaker: 10},
			{PlayerID: 2, Score: 80, Tiebreaker: 10},
		}, false)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}

func TestSetPreferenceLock(t *testing.T) {
	ctx := context.Background()
	settings := &fakeSettingRepo{settings: map[string]string{
		models.SettingPreferenceEditable: "false",
	}}
	svc := NewPlayerService(nil, nil, nil, nil, settings, nil, nil, nil)

	t.Run("locked preferences reject edits", func(t *testing.T) {
		_, err := svc.SetPreference(ctx, 1, [4]int{1, 2, 3, 4})
		assert.ErrorIs(t, err, ErrPreferenceLocked)
	})

	t.Run("unlocking flips the setting", func(t *testing.T) {
		require.NoError(t, svc.SetPreferenceLock(ctx, false))
		assert.Equal(t, "true", settings.settings[models.SettingPreferenceEditable])

		require.NoError(t, svc.SetPreferenceLock(ctx, true))
		assert.Equal(t, "false", settings.settings[models.SettingPreferenceEditable])
	})
}
