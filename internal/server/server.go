// Package server provides the HTTP status server and handlers.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"slices"
	"strings"
	"time"

	"shelterwatch/internal/model"
	"shelterwatch/internal/service"
	"shelterwatch/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server exposes health, seen-set inspection and a manual check trigger.
type Server struct {
	store   store.Store
	service *service.Service
	router  chi.Router
}

// New creates a new server.
func New(st store.Store, svc *service.Service) *Server {
	s := &Server{store: st, service: svc}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dogs", s.handleDogs)
		r.Get("/status", s.handleStatus)
		r.Post("/check", s.handleCheck)
	})

	s.router = r
}

// Router returns the HTTP handler, for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the server.
func (s *Server) Start(addr string) error {
	log.Printf("Status server listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type dogJSON struct {
	ID string `json:"id"`
	model.Payload
}

// handleDogs dumps the persisted seen-set, sorted by id.
func (s *Server) handleDogs(w http.ResponseWriter, r *http.Request) {
	seen, err := s.store.Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	dogs := make([]dogJSON, 0, len(seen))
	for id, d := range seen {
		dogs = append(dogs, dogJSON{ID: id, Payload: d.Payload()})
	}
	slices.SortFunc(dogs, func(a, b dogJSON) int {
		return strings.Compare(a.ID, b.ID)
	})

	writeJSON(w, http.StatusOK, dogs)
}

type statusJSON struct {
	Backend      string     `json:"backend"`
	KnownDogs    int        `json:"known_dogs"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastNew      int        `json:"last_new"`
	LastNotified int        `json:"last_notified"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	seen, err := s.store.Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	status := statusJSON{
		Backend:   s.store.BackendType(),
		KnownDogs: len(seen),
	}
	if last, ok := s.service.LastResult(); ok {
		status.LastRun = &last.RanAt
		status.LastNew = last.New
		status.LastNotified = last.Notified
	}

	writeJSON(w, http.StatusOK, status)
}

// handleCheck triggers a cycle immediately. Returns 409 when the poller
// is already mid-cycle; cycles never overlap.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.TryRunCycle(r.Context())
	if errors.Is(err, service.ErrCycleInFlight) {
		writeError(w, http.StatusConflict, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"scraped":  result.Scraped,
		"new":      result.New,
		"notified": result.Notified,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
