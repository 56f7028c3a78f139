package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/mariana/studydeck/internal/logger"
	"github.com/mariana/studydeck/internal/models"
	"github.com/mariana/studydeck/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

const cardColumns = "id, deck_id, front, back, repetitions, ease_factor, interval_days, next_review_at, created_at"

type cardRepository struct {
	db *sql.DB
}

// NewCardRepository creates a new CardRepository implementation
func NewCardRepository(db *sql.DB) repository.CardRepository {
	return &cardRepository{db: db}
}

func (r *cardRepository) Insert(ctx context.Context, c models.Card) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("inserting card: deck_id=%d", c.DeckID)

	ease := c.EaseFactor
	if ease == 0 {
		ease = 2.5
	}
	res, err := r.db.ExecContext(ctx, `
INSERT INTO cards (deck_id, front, back, repetitions, ease_factor, interval_days, next_review_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, c.DeckID, c.Front, c.Back, c.Repetitions, ease, c.IntervalDays, c.NextReviewAt)
	if err != nil {
		log.Error("failed to insert card: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get card id: %v", err)
		return 0, err
	}
	log.Debug("card inserted: id=%d", id)
	return id, nil
}

// InsertBatch inserts multiple cards within a single transaction and returns
// the number inserted.
func (r *cardRepository) InsertBatch(ctx context.Context, cards []models.Card) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("batch inserting %d cards", len(cards))

	if len(cards) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin batch insert: %v", err)
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO cards (deck_id, front, back, repetitions, ease_factor, interval_days, next_review_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		log.Error("failed to prepare batch insert: %v", err)
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, c := range cards {
		ease := c.EaseFactor
		if ease == 0 {
			ease = 2.5
		}
		if _, err := stmt.ExecContext(ctx, c.DeckID, c.Front, c.Back, c.Repetitions, ease, c.IntervalDays, c.NextReviewAt); err != nil {
			log.Error("failed to insert card front=%q: %v", c.Front, err)
			return 0, err
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit batch insert: %v", err)
		return 0, err
	}
	log.Debug("batch insert completed, %d cards inserted", inserted)
	return inserted, nil
}

func (r *cardRepository) Get(ctx context.Context, id int64) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("getting card: id=%d", id)

	var c models.Card
	err := r.db.QueryRowContext(ctx, `
SELECT `+cardColumns+`
FROM cards
WHERE id = ?
`, id).Scan(&c.ID, &c.DeckID, &c.Front, &c.Back, &c.Repetitions, &c.EaseFactor, &c.IntervalDays, &c.NextReviewAt, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("card not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get card: %v", err)
		return nil, err
	}
	return &c, nil
}

func (r *cardRepository) List(ctx context.Context, filter models.CardFilter) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("listing cards: deck_id=%d, search=%q", filter.DeckID, filter.Search)

	query := sqlBuilder.Select(
		"id", "deck_id", "front", "back", "repetitions", "ease_factor",
		"interval_days", "next_review_at", "created_at",
	).From("cards")

	if filter.DeckID != 0 {
		query = query.Where(squirrel.Eq{"deck_id": filter.DeckID})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(squirrel.Or{
			squirrel.Like{"front": pattern},
			squirrel.Like{"back": pattern},
		})
	}

	orderBy := "created_at"
	if filter.OrderBy == "next_review_at" || filter.OrderBy == "ease_factor" {
		orderBy = filter.OrderBy
	}
	orderDir := "ASC"
	if filter.OrderDir == "DESC" {
		orderDir = "DESC"
	}
	query = query.OrderBy(orderBy + " " + orderDir)

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query = query.Limit(uint64(limit)).Offset(uint64(offset))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, err
	}
	defer rows.Close()

	cards, err := scanCards(rows)
	if err != nil {
		log.Error("failed to scan card rows: %v", err)
		return nil, err
	}
	log.Debug("found %d cards", len(cards))
	return cards, nil
}

// DueCards returns the cards classified as due, ordered by how overdue they
// are. Unreviewed (repetitions = 0) and difficult (ease < 2.0) cards take
// precedence over due and are excluded even when their review date has
// passed, matching Classify.
func (r *cardRepository) DueCards(ctx context.Context, deckID int64, limit int, now time.Time) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("fetching due cards: deck_id=%d, limit=%d", deckID, limit)

	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+cardColumns+`
FROM cards
WHERE deck_id = ?
  AND repetitions > 0
  AND ease_factor >= 2.0
  AND next_review_at IS NOT NULL
  AND datetime(next_review_at) <= datetime(?)
ORDER BY next_review_at ASC
LIMIT ?
`, deckID, now, limit)
	if err != nil {
		log.Error("failed to query due cards: %v", err)
		return nil, err
	}
	defer rows.Close()

	cards, err := scanCards(rows)
	if err != nil {
		log.Error("failed to scan due card rows: %v", err)
		return nil, err
	}
	log.Debug("found %d due cards", len(cards))
	return cards, nil
}

// UpdateScheduling writes the fields the review evaluator changes. Content
// fields are left alone.
func (r *cardRepository) UpdateScheduling(ctx context.Context, c models.Card) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("updating card scheduling: id=%d, reps=%d, ease=%.2f, interval=%d",
		c.ID, c.Repetitions, c.EaseFactor, c.IntervalDays)

	res, err := r.db.ExecContext(ctx, `
UPDATE cards
SET repetitions = ?, ease_factor = ?, interval_days = ?, next_review_at = ?
WHERE id = ?
`, c.Repetitions, c.EaseFactor, c.IntervalDays, c.NextReviewAt, c.ID)
	if err != nil {
		log.Error("failed to update card: %v", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		log.Warn("card update matched no rows: id=%d", c.ID)
		return sql.ErrNoRows
	}
	return nil
}

func (r *cardRepository) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("deleting card: id=%d", id)

	_, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete card: %v", err)
	}
	return err
}

func scanCards(rows *sql.Rows) ([]models.Card, error) {
	var cards []models.Card
	for rows.Next() {
		var c models.Card
		if err := rows.Scan(&c.ID, &c.DeckID, &c.Front, &c.Back, &c.Repetitions, &c.EaseFactor, &c.IntervalDays, &c.NextReviewAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}
