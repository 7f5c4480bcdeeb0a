// Package server wires the HTTP surface: auth, profile, news, bookmarks
// and reading-history endpoints.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/avelasco/bizpulse/internal/auth"
	"github.com/avelasco/bizpulse/internal/news"
	"github.com/avelasco/bizpulse/internal/store"
)

type Server struct {
	router *chi.Mux
	news   *news.Service
	store  *store.Store
	auth   *auth.Manager
	log    *zap.SugaredLogger
}

func New(newsSvc *news.Service, st *store.Store, am *auth.Manager, log *zap.SugaredLogger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		news:   newsSvc,
		store:  st,
		auth:   am,
		log:    log,
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Route("/news", func(r chi.Router) {
			r.Get("/trending", s.handleTrending)
			r.Get("/search", s.handleSearch)
			r.Get("/category/{category}", s.handleCategory)
			r.Get("/cached", s.handleCached)
			r.With(s.auth.Middleware).Get("/personalized", s.handlePersonalized)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.auth.Middleware)

			r.Get("/profile", s.handleGetProfile)
			r.Put("/profile", s.handleUpdateProfile)

			r.Get("/bookmarks", s.handleListBookmarks)
			r.Post("/bookmarks", s.handleSaveBookmark)
			r.Delete("/bookmarks/{bookmarkID}", s.handleDeleteBookmark)

			r.Post("/history", s.handleRecordRead)
			r.Get("/history/analytics", s.handleAnalytics)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.Respond(w, r, map[string]string{"status": "ok"})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// renderErr logs render failures; by that point the response is usually
// half-written, so there is nothing better to do.
func (s *Server) renderErr(w http.ResponseWriter, r *http.Request, v render.Renderer) {
	if err := render.Render(w, r, v); err != nil {
		s.log.Errorw("rendering response failed", "error", err)
	}
}
