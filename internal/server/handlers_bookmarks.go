package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/avelasco/bizpulse/internal/auth"
	"github.com/avelasco/bizpulse/internal/store"
)

type bookmarkRequest struct {
	store.Bookmark
}

func (req *bookmarkRequest) Bind(r *http.Request) error {
	if req.Title == "" || req.URL == "" {
		return errors.New("title and url are required")
	}
	return nil
}

func (s *Server) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		s.renderErr(w, r, ErrUnauthorized)
		return
	}

	bookmarks, err := s.store.Bookmarks(userID)
	if err != nil {
		s.log.Errorw("listing bookmarks failed", "user", userID, "error", err)
		s.renderErr(w, r, ErrInternal(err))
		return
	}
	if bookmarks == nil {
		bookmarks = []store.Bookmark{}
	}
	render.Respond(w, r, map[string]interface{}{"bookmarks": bookmarks})
}

func (s *Server) handleSaveBookmark(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		s.renderErr(w, r, ErrUnauthorized)
		return
	}

	data := &bookmarkRequest{}
	if err := render.Bind(r, data); err != nil {
		s.renderErr(w, r, ErrInvalidRequest(err))
		return
	}

	b := data.Bookmark
	b.UserID = userID
	if _, err := s.store.SaveBookmark(b); err != nil {
		s.log.Errorw("saving bookmark failed", "user", userID, "error", err)
		s.renderErr(w, r, ErrInternal(err))
		return
	}

	render.Status(r, http.StatusCreated)
	render.Respond(w, r, map[string]string{"status": "saved"})
}

func (s *Server) handleDeleteBookmark(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		s.renderErr(w, r, ErrUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "bookmarkID"), 10, 64)
	if err != nil {
		s.renderErr(w, r, ErrInvalidRequest(errors.New("invalid bookmark id")))
		return
	}

	if err := s.store.DeleteBookmark(userID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.renderErr(w, r, ErrNotFound)
			return
		}
		s.log.Errorw("deleting bookmark failed", "user", userID, "error", err)
		s.renderErr(w, r, ErrInternal(err))
		return
	}
	render.Respond(w, r, map[string]string{"status": "deleted"})
}
