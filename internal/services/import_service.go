package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/mariana/studydeck/internal/errors"
	"github.com/mariana/studydeck/internal/logger"
	"github.com/mariana/studydeck/internal/models"
	"github.com/mariana/studydeck/internal/repository"
	"github.com/mariana/studydeck/internal/srs"
)

// ImportService bulk-loads cards into a deck from CSV input
type ImportService interface {
	ImportCSV(ctx context.Context, deckID int64, r io.Reader) (int, error)
}

type importService struct {
	decks repository.DeckRepository
	cards repository.CardRepository
}

// NewImportService creates a new ImportService
func NewImportService(decks repository.DeckRepository, cards repository.CardRepository) ImportService {
	return &importService{decks: decks, cards: cards}
}

// ImportCSV reads front,back rows and inserts them as new cards in one
// batch. A header row named "front" is skipped. Rows with a blank front or
// back are rejected with their line number so the caller can fix the file.
func (s *importService) ImportCSV(ctx context.Context, deckID int64, r io.Reader) (int, error) {
	log := logger.FromContext(ctx)

	deck, err := s.decks.Get(ctx, deckID)
	if err != nil {
		return 0, errors.NewInternalError(err)
	}
	if deck == nil {
		return 0, errors.NewNotFoundError("deck", deckID)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var cards []models.Card
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, errors.NewBadRequestError(fmt.Sprintf("malformed CSV at line %d: %v", line+1, err))
		}
		line++

		if len(record) < 2 {
			return 0, errors.NewBadRequestError(fmt.Sprintf("line %d: expected front,back columns", line))
		}
		front := strings.TrimSpace(record[0])
		back := strings.TrimSpace(record[1])
		if line == 1 && strings.EqualFold(front, "front") {
			continue
		}
		if front == "" || back == "" {
			return 0, errors.NewBadRequestError(fmt.Sprintf("line %d: front and back cannot be empty", line))
		}

		cards = append(cards, models.Card{
			DeckID:     deckID,
			Front:      front,
			Back:       back,
			EaseFactor: srs.DefaultEase,
		})
	}

	if len(cards) == 0 {
		return 0, errors.NewBadRequestError("no cards found in CSV input")
	}

	inserted, err := s.cards.InsertBatch(ctx, cards)
	if err != nil {
		log.Error("failed to import cards into deck %d: %v", deckID, err)
		return 0, errors.NewInternalError(err)
	}

	log.Info("imported %d cards into deck %d", inserted, deckID)
	return inserted, nil
}
