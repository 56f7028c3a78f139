package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mariana/studydeck/internal/logger"
	"github.com/mariana/studydeck/internal/services"
	"github.com/mariana/studydeck/internal/session"
	"github.com/mariana/studydeck/internal/srs"
)

type startSessionRequest struct {
	Mode    string `json:"mode" validate:"omitempty,oneof=due all new difficult"`
	Search  string `json:"search" validate:"max=200"`
	Shuffle bool   `json:"shuffle"`
	Limit   int    `json:"limit" validate:"min=0,max=500"`
}

type rateRequest struct {
	Rating int `json:"rating" validate:"required,min=1,max=4"`
}

type sessionCard struct {
	ID    int64  `json:"id"`
	Front string `json:"front"`
	Back  string `json:"back,omitempty"`
}

type sessionResponse struct {
	ID       string        `json:"id"`
	DeckID   int64         `json:"deck_id"`
	Mode     srs.Mode      `json:"mode"`
	State    session.State `json:"state"`
	Position int           `json:"position"`
	Total    int           `json:"total"`
	Card     *sessionCard  `json:"card,omitempty"`
	Stats    session.Stats `json:"stats"`
}

// sessionView snapshots a session for the response body. The card's back is
// withheld until the answer has been revealed.
func sessionView(sess *session.Session) sessionResponse {
	resp := sessionResponse{
		ID:     sess.ID,
		DeckID: sess.DeckID,
		Mode:   sess.Mode,
		State:  sess.State(),
		Total:  sess.Len(),
		Stats:  sess.Stats(),
	}
	card, idx, ok := sess.Current()
	resp.Position = idx
	if ok {
		sc := &sessionCard{ID: card.ID, Front: card.Front}
		if resp.State == session.StateAwaitingRating {
			sc.Back = card.Back
		}
		resp.Card = sc
	}
	return resp
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	deckID, err := urlID(r, "deckID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	req := startSessionRequest{Mode: string(srs.ModeDue), Shuffle: true}
	if r.ContentLength > 0 {
		if err := s.decodeJSON(r, &req); err != nil {
			handleError(w, r, err)
			return
		}
	}

	sess, err := s.StudyService.StartSession(r.Context(), deckID, services.StartOptions{
		Mode:    srs.Mode(req.Mode),
		Search:  req.Search,
		Shuffle: req.Shuffle,
		Limit:   req.Limit,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Debug("session response: id=%s, cards=%d", sess.ID, sess.Len())
	respondJSON(w, r, http.StatusCreated, sessionView(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.StudyService.GetSession(r.Context(), sessionID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, sessionView(sess))
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	sess, err := s.StudyService.Reveal(r.Context(), sessionID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, sessionView(sess))
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := s.decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	sess, err := s.StudyService.Rate(r.Context(), sessionID(r), srs.Rating(req.Rating))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, sessionView(sess))
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	sess, err := s.StudyService.Skip(r.Context(), sessionID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, sessionView(sess))
}

func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	sess, err := s.StudyService.Previous(r.Context(), sessionID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, sessionView(sess))
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	stats, err := s.StudyService.EndSession(r.Context(), sessionID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"stats": stats})
}

func sessionID(r *http.Request) string {
	return chi.URLParam(r, "sessionID")
}
