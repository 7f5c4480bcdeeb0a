package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/avelasco/bizpulse/internal/auth"
	"github.com/avelasco/bizpulse/internal/store"
)

type readEventRequest struct {
	store.ReadEvent
}

func (req *readEventRequest) Bind(r *http.Request) error {
	if req.ArticleID == "" {
		return errors.New("article_id is required")
	}
	return nil
}

func (s *Server) handleRecordRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		s.renderErr(w, r, ErrUnauthorized)
		return
	}

	data := &readEventRequest{}
	if err := render.Bind(r, data); err != nil {
		s.renderErr(w, r, ErrInvalidRequest(err))
		return
	}

	if err := s.store.RecordRead(userID, data.ReadEvent); err != nil {
		s.log.Errorw("recording read failed", "user", userID, "error", err)
		s.renderErr(w, r, ErrInternal(err))
		return
	}

	render.Status(r, http.StatusCreated)
	render.Respond(w, r, map[string]string{"status": "recorded"})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		s.renderErr(w, r, ErrUnauthorized)
		return
	}

	analytics, err := s.store.Analytics(userID)
	if err != nil {
		s.log.Errorw("computing analytics failed", "user", userID, "error", err)
		s.renderErr(w, r, ErrInternal(err))
		return
	}
	render.Respond(w, r, analytics)
}
