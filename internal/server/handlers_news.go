package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/avelasco/bizpulse/internal/news"
	"github.com/avelasco/bizpulse/internal/store"
)

// Defaults substituted for empty profile fields before the engine is called;
// the engine itself never validates profiles.
const (
	defaultCity        = "New York"
	defaultState       = "New York"
	defaultCountry     = "US"
	defaultCareerField = "business"
)

func profileWithDefaults(u *store.User) news.Profile {
	p := news.Profile{
		City:        u.City,
		State:       u.State,
		Country:     u.Country,
		CareerField: u.CareerField,
	}
	if p.City == "" {
		p.City = defaultCity
	}
	if p.State == "" {
		p.State = defaultState
	}
	if p.Country == "" {
		p.Country = defaultCountry
	}
	if p.CareerField == "" {
		p.CareerField = defaultCareerField
	}
	return p
}

func (s *Server) handlePersonalized(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	result, err := s.news.GetPersonalizedNews(r.Context(), profileWithDefaults(user))
	if err != nil {
		s.log.Errorw("personalized news failed", "user", user.ID, "error", err)
		s.renderErr(w, r, ErrInternal(err))
		return
	}
	render.Respond(w, r, result)
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	render.Respond(w, r, map[string]interface{}{
		"articles": s.news.GetTrendingNews(r.Context()),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		s.renderErr(w, r, ErrInvalidRequest(errors.New("query parameter q is required")))
		return
	}
	limit := queryLimit(r, 10)
	render.Respond(w, r, map[string]interface{}{
		"articles": s.news.SearchNews(r.Context(), term, limit),
	})
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	limit := queryLimit(r, 10)
	render.Respond(w, r, map[string]interface{}{
		"articles": s.news.GetCategoryNews(r.Context(), category, limit),
	})
}

func (s *Server) handleCached(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 50)
	articles, err := s.news.CachedNews(limit)
	if err != nil {
		s.log.Errorw("reading cache failed", "error", err)
		s.renderErr(w, r, ErrInternal(err))
		return
	}
	render.Respond(w, r, map[string]interface{}{"articles": articles})
}

func queryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > 100 {
		return fallback
	}
	return n
}
