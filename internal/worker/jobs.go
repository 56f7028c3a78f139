package worker

import (
	"bytes"
	"context"
	"io"

	"github.com/mariana/studydeck/internal/logger"
	"github.com/mariana/studydeck/internal/repository"
)

// CSVImporter is the slice of the import service the job needs.
type CSVImporter interface {
	ImportCSV(ctx context.Context, deckID int64, r io.Reader) (int, error)
}

// ImportDeckJob loads a CSV payload into a deck and refreshes the deck's
// cached stats afterwards. The payload is captured up front because the
// HTTP request body is gone by the time a worker picks the job up.
type ImportDeckJob struct {
	Importer  CSVImporter
	StatsRepo repository.StatsRepository
	DeckID    int64
	Payload   []byte
}

func (j *ImportDeckJob) Name() string { return "import_deck" }

func (j *ImportDeckJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("deck_id", j.DeckID)

	inserted, err := j.Importer.ImportCSV(ctx, j.DeckID, bytes.NewReader(j.Payload))
	if err != nil {
		log.Error("deck import failed: %v", err)
		return err
	}
	log.Info("deck import finished, %d cards added", inserted)

	if err := j.StatsRepo.RefreshDeckStats(ctx, j.DeckID); err != nil {
		log.Warn("failed to refresh cached stats after import: %v", err)
	}
	return nil
}

// RefreshStatsJob rebuilds the cached stats row for one deck. Enqueued after
// a study session completes so the overview page stays warm.
type RefreshStatsJob struct {
	StatsRepo repository.StatsRepository
	DeckID    int64
}

func (j *RefreshStatsJob) Name() string { return "refresh_stats" }

func (j *RefreshStatsJob) Run(ctx context.Context) error {
	return j.StatsRepo.RefreshDeckStats(ctx, j.DeckID)
}
