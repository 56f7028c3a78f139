package services

import (
	"context"
	"strings"
	"time"

	"github.com/mariana/studydeck/internal/errors"
	"github.com/mariana/studydeck/internal/logger"
	"github.com/mariana/studydeck/internal/models"
	"github.com/mariana/studydeck/internal/repository"
	"github.com/mariana/studydeck/internal/srs"
)

// DeckService handles deck and card management
type DeckService interface {
	CreateDeck(ctx context.Context, name, subject string) (*models.Deck, error)
	GetDeck(ctx context.Context, id int64) (*models.Deck, error)
	ListDecks(ctx context.Context) ([]models.Deck, error)
	DeleteDeck(ctx context.Context, id int64) error
	AddCard(ctx context.Context, deckID int64, front, back string) (*models.Card, error)
	DeleteCard(ctx context.Context, cardID int64) error
	BrowseCards(ctx context.Context, deckID int64, search string) (*srs.Partitions, error)
}

type deckService struct {
	decks repository.DeckRepository
	cards repository.CardRepository
}

// NewDeckService creates a new DeckService
func NewDeckService(decks repository.DeckRepository, cards repository.CardRepository) DeckService {
	return &deckService{decks: decks, cards: cards}
}

func (s *deckService) CreateDeck(ctx context.Context, name, subject string) (*models.Deck, error) {
	log := logger.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("name", "cannot be empty")
	}

	deck := models.Deck{Name: name, Subject: strings.TrimSpace(subject)}
	id, err := s.decks.Insert(ctx, deck)
	if err != nil {
		log.Error("failed to create deck: %v", err)
		return nil, errors.NewInternalError(err)
	}

	created, err := s.decks.Get(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	log.Info("deck created: id=%d, name=%s", id, name)
	return created, nil
}

func (s *deckService) GetDeck(ctx context.Context, id int64) (*models.Deck, error) {
	deck, err := s.decks.Get(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", id)
	}
	return deck, nil
}

func (s *deckService) ListDecks(ctx context.Context) ([]models.Deck, error) {
	decks, err := s.decks.List(ctx)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return decks, nil
}

func (s *deckService) DeleteDeck(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)

	deck, err := s.decks.Get(ctx, id)
	if err != nil {
		return errors.NewInternalError(err)
	}
	if deck == nil {
		return errors.NewNotFoundError("deck", id)
	}
	if err := s.decks.Delete(ctx, id); err != nil {
		log.Error("failed to delete deck %d: %v", id, err)
		return errors.NewInternalError(err)
	}
	log.Info("deck deleted: id=%d", id)
	return nil
}

func (s *deckService) AddCard(ctx context.Context, deckID int64, front, back string) (*models.Card, error) {
	log := logger.FromContext(ctx)

	front = strings.TrimSpace(front)
	back = strings.TrimSpace(back)
	if front == "" {
		return nil, errors.NewValidationError("front", "cannot be empty")
	}
	if back == "" {
		return nil, errors.NewValidationError("back", "cannot be empty")
	}

	deck, err := s.decks.Get(ctx, deckID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", deckID)
	}

	card := models.Card{
		DeckID:     deckID,
		Front:      front,
		Back:       back,
		EaseFactor: srs.DefaultEase,
	}
	id, err := s.cards.Insert(ctx, card)
	if err != nil {
		log.Error("failed to add card: %v", err)
		return nil, errors.NewInternalError(err)
	}

	created, err := s.cards.Get(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	log.Debug("card added: id=%d, deck_id=%d", id, deckID)
	return created, nil
}

func (s *deckService) DeleteCard(ctx context.Context, cardID int64) error {
	card, err := s.cards.Get(ctx, cardID)
	if err != nil {
		return errors.NewInternalError(err)
	}
	if card == nil {
		return errors.NewNotFoundError("card", cardID)
	}
	if err := s.cards.Delete(ctx, cardID); err != nil {
		return errors.NewInternalError(err)
	}
	return nil
}

// BrowseCards loads a deck's cards, applies the search filter, and returns
// the five status buckets.
func (s *deckService) BrowseCards(ctx context.Context, deckID int64, search string) (*srs.Partitions, error) {
	deck, err := s.decks.Get(ctx, deckID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", deckID)
	}

	cards, err := s.cards.List(ctx, models.CardFilter{DeckID: deckID})
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	parts := srs.Partition(srs.Filter(cards, search), time.Now())
	return &parts, nil
}
