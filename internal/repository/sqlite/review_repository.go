package sqlite

import (
	"context"
	"database/sql"

	"github.com/mariana/studydeck/internal/logger"
	"github.com/mariana/studydeck/internal/models"
	"github.com/mariana/studydeck/internal/repository"
)

type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new ReviewRepository implementation
func NewReviewRepository(db *sql.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Insert(ctx context.Context, cardID int64, rating int, timeSeconds float64) error {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("inserting review: card_id=%d, rating=%d, time=%.2fs", cardID, rating, timeSeconds)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO review_history (card_id, rating, time_seconds)
VALUES (?, ?, ?)
`, cardID, rating, timeSeconds)
	if err != nil {
		log.Error("failed to insert review: %v", err)
	}
	return err
}

func (r *reviewRepository) RecentForCard(ctx context.Context, cardID int64, limit int) ([]models.ReviewEvent, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("fetching recent reviews: card_id=%d, limit=%d", cardID, limit)

	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, card_id, rating, time_seconds, reviewed_at
FROM review_history
WHERE card_id = ?
ORDER BY reviewed_at DESC
LIMIT ?
`, cardID, limit)
	if err != nil {
		log.Error("failed to query reviews: %v", err)
		return nil, err
	}
	defer rows.Close()

	var events []models.ReviewEvent
	for rows.Next() {
		var e models.ReviewEvent
		if err := rows.Scan(&e.ID, &e.CardID, &e.Rating, &e.TimeSeconds, &e.ReviewedAt); err != nil {
			log.Error("failed to scan review row: %v", err)
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
