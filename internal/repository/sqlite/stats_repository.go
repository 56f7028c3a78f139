package sqlite

import (
	"context"
	"database/sql"

	"github.com/mariana/studydeck/internal/logger"
	"github.com/mariana/studydeck/internal/models"
	"github.com/mariana/studydeck/internal/repository"
)

type statsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new StatsRepository implementation
func NewStatsRepository(db *sql.DB) repository.StatsRepository {
	return &statsRepository{db: db}
}

// DeckStats computes live aggregates for one deck. Ratings 3 (good) and
// 4 (easy) count as correct answers for the accuracy figure.
func (r *statsRepository) DeckStats(ctx context.Context, deckID int64) (*models.DeckStat, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching deck stats: deck_id=%d", deckID)

	var stat models.DeckStat
	err := r.db.QueryRowContext(ctx, `
SELECT
    COUNT(DISTINCT c.id) AS total_cards,
    COUNT(rh.id) AS total_reviews,
    COUNT(DISTINCT CASE WHEN c.repetitions = 0 THEN c.id END) AS cards_new,
    COUNT(DISTINCT CASE WHEN c.repetitions > 0 AND c.ease_factor >= 2.0 AND c.next_review_at IS NOT NULL AND datetime(c.next_review_at) <= CURRENT_TIMESTAMP THEN c.id END) AS cards_due,
    COUNT(DISTINCT CASE WHEN c.repetitions >= 3 AND c.ease_factor >= 2.5 THEN c.id END) AS cards_mastered,
    COUNT(DISTINCT CASE WHEN c.ease_factor < 2.0 AND c.repetitions > 0 THEN c.id END) AS cards_struggling,
    CASE
        WHEN COUNT(rh.id) > 0
        THEN ROUND(100.0 * SUM(CASE WHEN rh.rating >= 3 THEN 1 ELSE 0 END) / COUNT(rh.id), 1)
        ELSE 0
    END AS overall_accuracy,
    COALESCE(AVG(c.ease_factor), 0) AS avg_ease_factor,
    COALESCE(AVG(c.interval_days), 0) AS avg_interval_days
FROM cards c
LEFT JOIN review_history rh ON rh.card_id = c.id
WHERE c.deck_id = ?
`, deckID).Scan(
		&stat.TotalCards,
		&stat.TotalReviews,
		&stat.CardsNew,
		&stat.CardsDue,
		&stat.CardsMastered,
		&stat.CardsStruggling,
		&stat.OverallAccuracy,
		&stat.AvgEaseFactor,
		&stat.AvgIntervalDays,
	)
	if err != nil {
		log.Error("failed to get deck stats: %v", err)
		return nil, err
	}
	return &stat, nil
}

func (r *statsRepository) RatingBreakdown(ctx context.Context, deckID int64) ([]models.RatingStat, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching rating breakdown: deck_id=%d", deckID)

	rows, err := r.db.QueryContext(ctx, `
SELECT
    rh.rating,
    COUNT(*) AS total_reviews,
    COALESCE(AVG(rh.time_seconds), 0) AS avg_time_seconds
FROM review_history rh
JOIN cards c ON c.id = rh.card_id
WHERE c.deck_id = ?
GROUP BY rh.rating
ORDER BY rh.rating
`, deckID)
	if err != nil {
		log.Error("failed to query rating breakdown: %v", err)
		return nil, err
	}
	defer rows.Close()

	var stats []models.RatingStat
	for rows.Next() {
		var s models.RatingStat
		if err := rows.Scan(&s.Rating, &s.TotalReviews, &s.AvgTimeSeconds); err != nil {
			log.Error("failed to scan rating stat: %v", err)
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// RefreshDeckStats rebuilds the cached stats row for a deck.
func (r *statsRepository) RefreshDeckStats(ctx context.Context, deckID int64) error {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("refreshing cached deck stats: deck_id=%d", deckID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin stats refresh: %v", err)
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM deck_stats_cache WHERE deck_id = ?`, deckID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO deck_stats_cache (deck_id, total_cards, total_reviews, cards_due, cards_mastered, cards_struggling, overall_accuracy, avg_ease_factor)
SELECT
    c.deck_id,
    COUNT(DISTINCT c.id),
    COUNT(rh.id),
    COUNT(DISTINCT CASE WHEN c.repetitions > 0 AND c.ease_factor >= 2.0 AND c.next_review_at IS NOT NULL AND datetime(c.next_review_at) <= CURRENT_TIMESTAMP THEN c.id END),
    COUNT(DISTINCT CASE WHEN c.repetitions >= 3 AND c.ease_factor >= 2.5 THEN c.id END),
    COUNT(DISTINCT CASE WHEN c.ease_factor < 2.0 AND c.repetitions > 0 THEN c.id END),
    CASE
        WHEN COUNT(rh.id) > 0
        THEN ROUND(100.0 * SUM(CASE WHEN rh.rating >= 3 THEN 1 ELSE 0 END) / COUNT(rh.id), 1)
        ELSE 0
    END,
    COALESCE(AVG(c.ease_factor), 0)
FROM cards c
LEFT JOIN review_history rh ON rh.card_id = c.id
WHERE c.deck_id = ?
GROUP BY c.deck_id
`, deckID); err != nil {
		log.Error("failed to rebuild stats cache for deck %d: %v", deckID, err)
		return err
	}
	return tx.Commit()
}

func (r *statsRepository) CachedDeckStats(ctx context.Context) ([]models.CachedDeckStat, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching cached deck stats")

	rows, err := r.db.QueryContext(ctx, `
SELECT s.deck_id, d.name, s.total_cards, s.total_reviews, s.cards_due, s.cards_mastered, s.cards_struggling, s.overall_accuracy, s.avg_ease_factor, s.refreshed_at
FROM deck_stats_cache s
JOIN decks d ON d.id = s.deck_id
ORDER BY s.total_cards DESC
`)
	if err != nil {
		log.Error("failed to query cached deck stats: %v", err)
		return nil, err
	}
	defer rows.Close()

	var stats []models.CachedDeckStat
	for rows.Next() {
		var s models.CachedDeckStat
		if err := rows.Scan(&s.DeckID, &s.DeckName, &s.TotalCards, &s.TotalReviews, &s.CardsDue, &s.CardsMastered, &s.CardsStruggling, &s.OverallAccuracy, &s.AvgEaseFactor, &s.RefreshedAt); err != nil {
			log.Error("failed to scan cached stat row: %v", err)
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
