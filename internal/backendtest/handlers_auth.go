package backendtest

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterCredentials
	if !decode(r, &in) || in.Validate() != nil {
		writeError(w, http.StatusBadRequest, "Please provide a username, email and password")
		return
	}

	u, err := s.AddUser(in.Username, in.Email, in.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, "User already exists")
		return
	}

	token, err := s.issue(u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}
	writeToken(w, token)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in models.LoginCredentials
	if !decode(r, &in) || in.Email == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "Please provide an email and password")
		return
	}

	s.mu.Lock()
	a := s.users[s.byEmail[in.Email]]
	s.mu.Unlock()
	if a == nil || bcrypt.CompareHashAndPassword(a.hash, []byte(in.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.issue(a.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}
	writeToken(w, token)
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in models.ForgotPasswordRequest
	if !decode(r, &in) || in.Email == "" {
		writeError(w, http.StatusBadRequest, "Please provide an email")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[in.Email]
	if !ok {
		writeError(w, http.StatusNotFound, "There is no user with that email")
		return
	}
	s.resets[uuid.NewString()] = id
	writeData(w, http.StatusOK, "Email sent")
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	resetToken := chi.URLParam(r, "resetToken")

	var in models.ResetPasswordRequest
	if !decode(r, &in) || in.Validate() != nil {
		writeError(w, http.StatusBadRequest, "Please provide a new password")
		return
	}

	s.mu.Lock()
	id, ok := s.resets[resetToken]
	a := s.users[id]
	if ok {
		delete(s.resets, resetToken)
	}
	s.mu.Unlock()
	if !ok || a == nil {
		writeError(w, http.StatusBadRequest, "Invalid token")
		return
	}

	if !s.setPassword(a, in.Password) {
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	token, err := s.issue(a.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}
	writeToken(w, token)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	u := s.users[userID(r.Context())].User
	s.mu.Unlock()
	writeData(w, http.StatusOK, u)
}

// handleUpdatePassword answers a wrong current password with 400, not 401:
// the caller's session is still valid.
func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var in models.UpdatePasswordRequest
	if !decode(r, &in) || in.Validate() != nil {
		writeError(w, http.StatusBadRequest, "Please provide current and new password")
		return
	}

	s.mu.Lock()
	a := s.users[userID(r.Context())]
	hash := a.hash
	s.mu.Unlock()
	if bcrypt.CompareHashAndPassword(hash, []byte(in.CurrentPassword)) != nil {
		writeError(w, http.StatusBadRequest, "Password is incorrect")
		return
	}

	if !s.setPassword(a, in.NewPassword) {
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	token, err := s.issue(a.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}
	writeToken(w, token)
}

func (s *Server) handleUpdateDetails(w http.ResponseWriter, r *http.Request) {
	var in models.UpdateDetailsRequest
	if !decode(r, &in) || in.Validate() != nil {
		writeError(w, http.StatusBadRequest, "Invalid details")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.users[userID(r.Context())]
	if in.Username != nil {
		a.Username = strings.TrimSpace(*in.Username)
	}
	if in.Bio != nil {
		a.Bio = *in.Bio
	}
	writeData(w, http.StatusOK, a.User)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	var in models.DeleteAccountRequest
	if !decode(r, &in) || in.Password == "" {
		writeError(w, http.StatusBadRequest, "Please provide your password")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := userID(r.Context())
	a := s.users[id]
	if bcrypt.CompareHashAndPassword(a.hash, []byte(in.Password)) != nil {
		writeError(w, http.StatusBadRequest, "Password is incorrect")
		return
	}

	delete(s.users, id)
	delete(s.byEmail, a.Email)
	delete(s.tasks, id)
	writeData(w, http.StatusOK, map[string]any{})
}

func (s *Server) setPassword(a *account, password string) bool {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return false
	}
	s.mu.Lock()
	a.hash = hash
	s.mu.Unlock()
	return true
}
