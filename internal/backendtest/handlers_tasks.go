package backendtest

import (
	"net/http"
	"sort"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) ownTasks(id string) map[string]*models.Task {
	m, ok := s.tasks[id]
	if !ok {
		m = make(map[string]*models.Task)
		s.tasks[id] = m
	}
	return m
}

// sortedTasks returns the caller's tasks newest first. Callers hold s.mu.
func (s *Server) sortedTasks(id string) []models.Task {
	out := make([]models.Task, 0, len(s.tasks[id]))
	for _, t := range s.tasks[id] {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt == out[j].CreatedAt {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusOK, s.sortedTasks(userID(r.Context())))
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in models.Task
	if !decode(r, &in) || in.Validate() != nil {
		writeError(w, http.StatusBadRequest, "Please add a title")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	uid := userID(r.Context())
	now := s.now().UTC().Format(time.RFC3339Nano)

	in.ID = uuid.NewString()
	in.User = uid
	in.CreatedAt, in.UpdatedAt = now, now
	if in.Status == "" {
		in.Status = models.StatusTodo
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	s.ownTasks(uid)[in.ID] = &in
	writeData(w, http.StatusCreated, in)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in models.Task
	if !decode(r, &in) || in.Validate() != nil {
		writeError(w, http.StatusBadRequest, "Invalid task")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	uid := userID(r.Context())
	cur, ok := s.ownTasks(uid)[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}

	in.ID, in.User, in.CreatedAt = cur.ID, cur.User, cur.CreatedAt
	in.UpdatedAt = s.now().UTC().Format(time.RFC3339Nano)
	*cur = in
	writeData(w, http.StatusOK, in)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	own := s.ownTasks(userID(r.Context()))
	if _, ok := own[id]; !ok {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	delete(own, id)
	writeData(w, http.StatusOK, map[string]any{})
}

func (s *Server) handleByStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := map[string]int{}
	for _, t := range s.tasks[userID(r.Context())] {
		counts[string(t.Status)]++
	}
	out := make([]models.StatusCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, models.StatusCount{ID: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeData(w, http.StatusOK, out)
}

func (s *Server) handleByPriority(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buckets := map[string]*models.PriorityCount{}
	for _, t := range s.tasks[userID(r.Context())] {
		b, ok := buckets[string(t.Priority)]
		if !ok {
			b = &models.PriorityCount{ID: string(t.Priority)}
			buckets[b.ID] = b
		}
		b.Count++
		if t.Status == models.StatusDone {
			b.Completed++
		}
	}
	out := make([]models.PriorityCount, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeData(w, http.StatusOK, out)
}

// handleTrends counts completed tasks per day of their last update.
func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	days := map[string]int{}
	for _, t := range s.tasks[userID(r.Context())] {
		if t.Status != models.StatusDone || len(t.UpdatedAt) < 10 {
			continue
		}
		days[t.UpdatedAt[:10]]++
	}
	out := make([]models.TrendPoint, 0, len(days))
	for d, n := range days {
		out = append(out, models.TrendPoint{ID: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeData(w, http.StatusOK, out)
}

func (s *Server) handleOverdue(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.now().UTC().Format(time.DateOnly)
	out := []models.Task{}
	for _, t := range s.sortedTasks(userID(r.Context())) {
		if t.Status == models.StatusDone || len(t.DueDate) < 10 {
			continue
		}
		if t.DueDate[:10] < today {
			out = append(out, t)
		}
	}
	writeData(w, http.StatusOK, out)
}
