package server

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/campusquest/api/internal/campus"
	"github.com/campusquest/api/internal/docstore"
	"github.com/campusquest/api/internal/users"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

func handleRegister(docs *docstore.Store, us *users.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		req.Email = strings.TrimSpace(req.Email)
		if req.Name == "" || req.Email == "" || len(req.Password) < 8 {
			writeError(w, http.StatusBadRequest, "name, email, and a password of at least 8 characters are required")
			return
		}

		if _, err := us.ByEmail(r.Context(), req.Email); err == nil {
			writeError(w, http.StatusConflict, "email already registered")
			return
		} else if !errors.Is(err, campus.ErrNotFound) {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		u := campus.User{
			ID:           docstore.NewID(),
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: string(hash),
		}
		if err := us.Create(r.Context(), u); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		token, err := createSession(r.Context(), docs, u.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, AuthResponse{Token: token, UserID: u.ID, Name: u.Name})
	}
}

func handleLogin(docs *docstore.Store, us *users.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		u, err := us.ByEmail(r.Context(), strings.TrimSpace(req.Email))
		if errors.Is(err, campus.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		token, err := createSession(r.Context(), docs, u.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, AuthResponse{Token: token, UserID: u.ID, Name: u.Name})
	}
}

type MeResponse struct {
	ID                     string   `json:"id"`
	Name                   string   `json:"name"`
	Email                  string   `json:"email"`
	Admin                  bool     `json:"admin"`
	LeaderBoardPoints      int      `json:"leaderBoardPoints"`
	SpendablePoints        int      `json:"spendablePoints"`
	AcceptedQuests         []string `json:"acceptedQuests"`
	CompletedJourneyQuests []string `json:"completedJourneyQuests"`
}

func handleMe(docs *docstore.Store, us *users.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := userFromRequest(r, docs, us)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}
		writeJSON(w, http.StatusOK, MeResponse{
			ID:                     u.ID,
			Name:                   u.Name,
			Email:                  u.Email,
			Admin:                  u.Admin,
			LeaderBoardPoints:      u.LeaderBoardPoints,
			SpendablePoints:        u.SpendablePoints,
			AcceptedQuests:         u.AcceptedQuests,
			CompletedJourneyQuests: u.CompletedJourneyQuests,
		})
	}
}
