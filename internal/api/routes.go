package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Route("/decks", func(r chi.Router) {
			r.Get("/", s.handleListDecks)
			r.Post("/", s.handleCreateDeck)
			r.Route("/{deckID}", func(r chi.Router) {
				r.Get("/", s.handleGetDeck)
				r.Delete("/", s.handleDeleteDeck)
				r.Get("/cards", s.handleBrowseCards)
				r.Post("/cards", s.handleAddCard)
				r.Post("/import", s.handleImportDeck)
				r.Post("/sessions", s.handleStartSession)
				r.Get("/stats", s.handleDeckStats)
			})
		})

		r.Route("/cards/{cardID}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteCard)
			r.Get("/history", s.handleCardHistory)
		})

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/reveal", s.handleReveal)
			r.Post("/rate", s.handleRate)
			r.Post("/skip", s.handleSkip)
			r.Post("/previous", s.handlePrevious)
			r.Delete("/", s.handleEndSession)
		})

		r.Get("/stats", s.handleOverview)
	})

	return r
}
