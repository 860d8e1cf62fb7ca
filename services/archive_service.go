package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hokuto-abe/quiz-grandprix/storage"
)

// ArchiveService snapshots a finished round's results to the object
// store, so the public site can serve them without touching the engine.
type ArchiveService interface {
	ArchiveRound(ctx context.Context, roundID int) (string, error)
}

type archiveService struct {
	dashboard DashboardService
	uploader  storage.FileUploader
	logger    *slog.Logger
}

func NewArchiveService(dashboard DashboardService, uploader storage.FileUploader, logger *slog.Logger) ArchiveService {
	return &archiveService{dashboard: dashboard, uploader: uploader, logger: logger}
}

type roundArchive struct {
	ArchivedAt time.Time     `json:"archived_at"`
	Overview   RoundOverview `json:"overview"`
}

func (s *archiveService) ArchiveRound(ctx context.Context, roundID int) (string, error) {
	overview, err := s.dashboard.GetRoundOverview(ctx, roundID)
	if err != nil {
		return "", err
	}

	doc := roundArchive{ArchivedAt: time.Now().UTC(), Overview: *overview}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode round archive: %w", err)
	}

	key := fmt.Sprintf("archives/round-%d.json", roundID)
	result, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	s.logger.Info("round archived",
		slog.Int("round_id", roundID),
		slog.String("key", result.Key),
		slog.String("url", result.Location))
	return result.Location, nil
}
