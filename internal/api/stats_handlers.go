package api

import (
	"net/http"
	"strconv"
)

func (s *Server) handleDeckStats(w http.ResponseWriter, r *http.Request) {
	deckID, err := urlID(r, "deckID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	report, err := s.StatsService.DeckReport(r.Context(), deckID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, report)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	cached, err := s.StatsService.Overview(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"decks": cached})
}

func (s *Server) handleCardHistory(w http.ResponseWriter, r *http.Request) {
	cardID, err := urlID(r, "cardID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := s.StatsService.CardHistory(r.Context(), cardID, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"reviews": events})
}
