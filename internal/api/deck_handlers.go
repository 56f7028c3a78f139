package api

import (
	"net/http"
)

type createDeckRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Subject string `json:"subject" validate:"max=200"`
}

type addCardRequest struct {
	Front string `json:"front" validate:"required,max=2000"`
	Back  string `json:"back" validate:"required,max=2000"`
}

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := s.DeckService.ListDecks(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"decks": decks})
}

func (s *Server) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	var req createDeckRequest
	if err := s.decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	deck, err := s.DeckService.CreateDeck(r.Context(), req.Name, req.Subject)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, deck)
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "deckID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	deck, err := s.DeckService.GetDeck(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, deck)
}

func (s *Server) handleDeleteDeck(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "deckID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.DeckService.DeleteDeck(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusNoContent, nil)
}

// handleBrowseCards returns the deck's cards split into status buckets,
// optionally narrowed by a search query.
func (s *Server) handleBrowseCards(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "deckID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	search := r.URL.Query().Get("q")

	parts, err := s.DeckService.BrowseCards(r.Context(), id, search)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{
		"total":     parts.Total(),
		"new":       parts.New,
		"due":       parts.Due,
		"learning":  parts.Learning,
		"difficult": parts.Difficult,
		"mastered":  parts.Mastered,
	})
}

func (s *Server) handleAddCard(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "deckID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req addCardRequest
	if err := s.decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.DeckService.AddCard(r.Context(), id, req.Front, req.Back)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, card)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "cardID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.DeckService.DeleteCard(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusNoContent, nil)
}
