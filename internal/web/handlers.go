// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GYSD Contributors

package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/emales/gysd/internal/auth"
	"github.com/emales/gysd/pkg/errutil"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.auth.Register(r.Context(), req.Username, req.Password, req.Name, req.Email)
	if err != nil {
		s.countRegistration("failure")
		switch {
		case errors.Is(err, auth.ErrMissingFields),
			errors.Is(err, auth.ErrWeakPassword),
			errors.Is(err, auth.ErrUsernameTooShort):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrUsernameTaken):
			respondError(w, http.StatusConflict, err.Error())
		default:
			errutil.LogError(s.logger, "registration failed", err)
			respondError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	s.countRegistration("success")
	respondJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snapshot, err := s.auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		s.countLogin("failure")
		if errors.Is(err, auth.ErrInvalidCredentials) {
			// One message for unknown user and wrong password alike.
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		errutil.LogError(s.logger, "login failed", err)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	token, sess, err := s.sessions.Begin()
	if err != nil {
		s.countLogin("failure")
		errutil.LogError(s.logger, "session create failed", err)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	sess.Login(*snapshot)

	s.setSessionCookie(w, token)
	s.countLogin("success")
	s.logger.Info("user logged in",
		"user_id", snapshot.ID,
		"session_id", sess.ID.String(),
	)
	respondJSON(w, http.StatusOK, map[string]any{"user": snapshot})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		s.sessions.End(cookie.Value)
	}
	s.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, ok := sess.CurrentUser()
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	duration, _ := sess.Duration()

	respondJSON(w, http.StatusOK, map[string]any{
		"user":             user,
		"session_duration": duration.Round(time.Second).String(),
	})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	user, ok := sess.CurrentUser()
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.auth.ChangePassword(r.Context(), user.ID, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrIncorrectPassword):
			respondError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, auth.ErrWeakPassword):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrUserNotFound):
			respondError(w, http.StatusNotFound, err.Error())
		default:
			errutil.LogError(s.logger, "change password failed", err)
			respondError(w, http.StatusInternalServerError, "password change failed")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) countLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *Server) countRegistration(outcome string) {
	if s.metrics != nil {
		s.metrics.RegistrationsTotal.WithLabelValues(outcome).Inc()
	}
}
