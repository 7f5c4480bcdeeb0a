package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/avelasco/bizpulse/internal/auth"
	"github.com/avelasco/bizpulse/internal/store"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *registerRequest) Bind(r *http.Request) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" {
		return errors.New("name is required")
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return errors.New("a valid email is required")
	}
	if len(req.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *loginRequest) Bind(r *http.Request) error {
	if req.Email == "" || req.Password == "" {
		return errors.New("email and password are required")
	}
	return nil
}

type tokenResponse struct {
	Token string      `json:"token"`
	User  *store.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	data := &registerRequest{}
	if err := render.Bind(r, data); err != nil {
		s.renderErr(w, r, ErrInvalidRequest(err))
		return
	}

	hash, err := auth.HashPassword(data.Password)
	if err != nil {
		s.log.Errorw("hashing password failed", "error", err)
		s.renderErr(w, r, ErrInternal(err))
		return
	}

	id, err := s.store.CreateUser(data.Name, data.Email, hash)
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			s.renderErr(w, r, ErrConflict(err))
			return
		}
		s.log.Errorw("creating user failed", "error", err)
		s.renderErr(w, r, ErrInternal(err))
		return
	}

	user, err := s.store.UserByID(id)
	if err != nil {
		s.log.Errorw("loading new user failed", "error", err)
		s.renderErr(w, r, ErrInternal(err))
		return
	}

	token, err := s.auth.IssueToken(id)
	if err != nil {
		s.log.Errorw("issuing token failed", "error", err)
		s.renderErr(w, r, ErrInternal(err))
		return
	}

	render.Status(r, http.StatusCreated)
	render.Respond(w, r, &tokenResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	data := &loginRequest{}
	if err := render.Bind(r, data); err != nil {
		s.renderErr(w, r, ErrInvalidRequest(err))
		return
	}

	user, err := s.store.UserByEmail(data.Email)
	if err != nil {
		// Same response for unknown email and bad password.
		s.renderErr(w, r, ErrUnauthorized)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, data.Password) {
		s.renderErr(w, r, ErrUnauthorized)
		return
	}

	token, err := s.auth.IssueToken(user.ID)
	if err != nil {
		s.log.Errorw("issuing token failed", "error", err)
		s.renderErr(w, r, ErrInternal(err))
		return
	}

	render.Respond(w, r, &tokenResponse{Token: token, User: user})
}

type profileRequest struct {
	City        string `json:"city"`
	State       string `json:"state"`
	Country     string `json:"country"`
	CareerField string `json:"careerField"`
}

func (req *profileRequest) Bind(r *http.Request) error {
	return nil
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	render.Respond(w, r, user)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		s.renderErr(w, r, ErrUnauthorized)
		return
	}

	data := &profileRequest{}
	if err := render.Bind(r, data); err != nil {
		s.renderErr(w, r, ErrInvalidRequest(err))
		return
	}

	if err := s.store.UpdateProfile(userID, data.City, data.State, data.Country, data.CareerField); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.renderErr(w, r, ErrNotFound)
			return
		}
		s.log.Errorw("updating profile failed", "error", err)
		s.renderErr(w, r, ErrInternal(err))
		return
	}

	user, err := s.store.UserByID(userID)
	if err != nil {
		s.log.Errorw("loading user failed", "error", err)
		s.renderErr(w, r, ErrInternal(err))
		return
	}
	render.Respond(w, r, user)
}

// currentUser loads the authenticated user or writes an error response.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (*store.User, bool) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		s.renderErr(w, r, ErrUnauthorized)
		return nil, false
	}
	user, err := s.store.UserByID(userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.renderErr(w, r, ErrUnauthorized)
			return nil, false
		}
		s.log.Errorw("loading user failed", "error", err)
		s.renderErr(w, r, ErrInternal(err))
		return nil, false
	}
	return user, true
}
