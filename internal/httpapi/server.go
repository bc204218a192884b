// Package httpapi exposes the REST surface: bearer-token authenticated
// JSON endpoints over the user, namespace, and task services.
package httpapi

import (
	"log"
	"net/http"
	"time"

	"taskspace/internal/auth"
	"taskspace/internal/namespace"
	"taskspace/internal/task"
	"taskspace/internal/user"
)

// Server routes HTTP requests to the services.
type Server struct {
	verifier   auth.Verifier
	users      *user.Service
	namespaces *namespace.Service
	tasks      *task.Service
	logger     *log.Logger
	mux        *http.ServeMux
}

// NewServer wires the routes. The verifier guards every route except the
// health probe.
func NewServer(
	verifier auth.Verifier,
	users *user.Service,
	namespaces *namespace.Service,
	tasks *task.Service,
	logger *log.Logger,
) *Server {
	s := &Server{
		verifier:   verifier,
		users:      users,
		namespaces: namespaces,
		tasks:      tasks,
		logger:     logger,
		mux:        http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("POST /auth/register", s.requireAuth(s.handleRegister))
	s.mux.HandleFunc("GET /auth/profile", s.requireAuth(s.handleGetProfile))
	s.mux.HandleFunc("PUT /auth/profile", s.requireAuth(s.handleUpdateProfile))
	s.mux.HandleFunc("POST /auth/verify", s.requireAuth(s.handleVerify))

	s.mux.HandleFunc("GET /namespaces", s.requireAuth(s.handleListNamespaces))
	s.mux.HandleFunc("POST /namespaces", s.requireAuth(s.handleCreateNamespace))
	s.mux.HandleFunc("POST /namespaces/reorder", s.requireAuth(s.handleReorderNamespaces))
	s.mux.HandleFunc("GET /namespaces/{id}", s.requireAuth(s.handleGetNamespace))
	s.mux.HandleFunc("PUT /namespaces/{id}", s.requireAuth(s.handleUpdateNamespace))
	s.mux.HandleFunc("DELETE /namespaces/{id}", s.requireAuth(s.handleDeleteNamespace))

	s.mux.HandleFunc("GET /tasks", s.requireAuth(s.handleListTasks))
	s.mux.HandleFunc("POST /tasks", s.requireAuth(s.handleCreateTask))
	s.mux.HandleFunc("GET /tasks/stats/summary", s.requireAuth(s.handleTaskStats))
	s.mux.HandleFunc("GET /tasks/{id}", s.requireAuth(s.handleGetTask))
	s.mux.HandleFunc("PUT /tasks/{id}", s.requireAuth(s.handleUpdateTask))
	s.mux.HandleFunc("DELETE /tasks/{id}", s.requireAuth(s.handleDeleteTask))
	s.mux.HandleFunc("PATCH /tasks/{id}/toggle", s.requireAuth(s.handleToggleTask))
	s.mux.HandleFunc("POST /tasks/{id}/checklist", s.requireAuth(s.handleAddChecklistItem))
	s.mux.HandleFunc("PATCH /tasks/{id}/checklist/{itemId}/toggle", s.requireAuth(s.handleToggleChecklistItem))
	s.mux.HandleFunc("DELETE /tasks/{id}/checklist/{itemId}", s.requireAuth(s.handleDeleteChecklistItem))

	s.mux.HandleFunc("/", s.handleNotFound)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	withRequestID(s.logging(s.mux)).ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Route not found", "")
}
