// Package backendtest is an in-process implementation of the task manager
// backend for tests. It speaks the same JSON contract as the real server:
// bearer JWTs, {"message": ...} error bodies and {"data": ...} envelopes.
package backendtest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = time.Hour

type account struct {
	models.User
	hash []byte
}

// Server holds users and tasks in memory. The zero value is not usable; call
// New.
type Server struct {
	mu       sync.Mutex
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time

	users   map[string]*account
	byEmail map[string]string
	tasks   map[string]map[string]*models.Task
	resets  map[string]string
	hits    map[string]int

	unavailable atomic.Bool
	router      chi.Router
}

func New() *Server {
	s := &Server{
		secret:   []byte(uuid.NewString()),
		tokenTTL: defaultTokenTTL,
		now:      time.Now,
		users:    make(map[string]*account),
		byEmail:  make(map[string]string),
		tasks:    make(map[string]map[string]*models.Task),
		resets:   make(map[string]string),
		hits:     make(map[string]int),
	}
	s.router = s.routes()
	return s
}

// Start serves a new backend on a loopback port until the test ends.
func Start(t testing.TB) (*Server, *httptest.Server) {
	t.Helper()
	s := New()
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return s, srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetUnavailable makes every endpoint answer 503.
func (s *Server) SetUnavailable(v bool) {
	s.unavailable.Store(v)
}

// RevokeAll invalidates every token issued so far.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secret = []byte(uuid.NewString())
}

// Hits reports how many requests reached path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// AddUser registers an account directly and returns its profile.
func (s *Server) AddUser(username, email, password string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[email]; ok {
		return models.User{}, errDuplicateEmail
	}
	a := &account{
		User: models.User{
			ID:        uuid.NewString(),
			Username:  username,
			Email:     email,
			CreatedAt: s.now().UTC().Format(time.RFC3339),
		},
		hash: hash,
	}
	s.users[a.ID] = a
	s.byEmail[email] = a.ID
	return a.User, nil
}

// TokenFor issues a valid bearer token for the account registered with email.
func (s *Server) TokenFor(email string) (string, error) {
	s.mu.Lock()
	id, ok := s.byEmail[email]
	secret := s.secret
	s.mu.Unlock()
	if !ok {
		return "", errNoUser
	}
	return GenerateToken(id, secret, s.tokenTTL)
}

// ResetTokenFor returns the reset token a forgot-password request issued for
// email, as if it had been read from the mail.
func (s *Server) ResetTokenFor(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.byEmail[email]
	for tok, uid := range s.resets {
		if uid == id {
			return tok, true
		}
	}
	return "", false
}

// Tasks returns a copy of the tasks owned by the account registered with email.
func (s *Server) Tasks(email string) []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Task
	for _, t := range s.tasks[s.byEmail[email]] {
		out = append(out, *t)
	}
	return out
}

func (s *Server) issue(userID string) (string, error) {
	s.mu.Lock()
	secret := s.secret
	s.mu.Unlock()
	return GenerateToken(userID, secret, s.tokenTTL)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.countHits)
	r.Use(s.availability)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/forgotpassword", s.handleForgotPassword)
		r.Put("/resetpassword/{resetToken}", s.handleResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/me", s.handleMe)
			r.Put("/updatepassword", s.handleUpdatePassword)
			r.Put("/updatedetails", s.handleUpdateDetails)
			r.Delete("/deleteaccount", s.handleDeleteAccount)
		})
	})

	r.Route("/api/tasks", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.handleListTasks)
		r.Post("/", s.handleCreateTask)
		r.Put("/{id}", s.handleUpdateTask)
		r.Delete("/{id}", s.handleDeleteTask)
	})

	r.Route("/api/analytics", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/status", s.handleByStatus)
		r.Get("/priority", s.handleByPriority)
		r.Get("/trends", s.handleTrends)
		r.Get("/overdue", s.handleOverdue)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	return r
}
