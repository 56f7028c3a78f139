package api

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"github.com/mariana/studydeck/internal/errors"
	"github.com/mariana/studydeck/internal/logger"
	"github.com/mariana/studydeck/internal/worker"
)

// handleImportDeck accepts a CSV body of front,back rows. By default the
// import runs on the worker pool and the handler answers 202 right away;
// ?sync=1 runs it inline and reports the inserted count.
func (s *Server) handleImportDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	deckID, err := urlID(r, "deckID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	// Validate the deck up front so a bad ID fails fast instead of inside
	// a background job.
	if _, err := s.DeckService.GetDeck(r.Context(), deckID); err != nil {
		handleError(w, r, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, s.MaxImportBytes+1))
	if err != nil {
		handleError(w, r, errors.NewBadRequestError("failed to read request body"))
		return
	}
	if int64(len(body)) > s.MaxImportBytes {
		handleError(w, r, errors.NewBadRequestError("import payload too large"))
		return
	}
	if len(body) == 0 {
		handleError(w, r, errors.NewBadRequestError("empty import payload"))
		return
	}

	if sync, _ := strconv.ParseBool(r.URL.Query().Get("sync")); sync {
		inserted, err := s.ImportService.ImportCSV(r.Context(), deckID, bytes.NewReader(body))
		if err != nil {
			handleError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, map[string]any{"imported": inserted})
		return
	}

	job := &worker.ImportDeckJob{
		Importer:  s.ImportService,
		StatsRepo: s.StatsRepo,
		DeckID:    deckID,
		Payload:   body,
	}
	if !s.JobQueue.TrySubmit(job) {
		handleError(w, r, errors.NewConflictError("import queue is full, try again later"))
		return
	}

	log.Info("import job queued: deck_id=%d, bytes=%d", deckID, len(body))
	respondJSON(w, r, http.StatusAccepted, map[string]any{"status": "queued"})
}
