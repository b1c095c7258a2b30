package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"tipdex/internal/catalog"
	"tipdex/internal/domain"
)

// Server exposes the catalog as a read-only JSON API.
type Server struct {
	svc  *catalog.Service
	log  *zap.Logger
	addr string
}

func New(svc *catalog.Service, log *zap.Logger, addr string) *Server {
	return &Server{svc: svc, log: log, addr: addr}
}

// Handler builds the router. Exposed separately from Run for tests.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestID)
	r.Use(logging(s.log))
	r.Use(cors)

	r.Get("/health", s.health)
	r.Get("/entries", s.listEntries)
	r.Get("/entries/{id}", s.getEntry)
	r.Get("/tags", s.listTags)
	r.Get("/tags/{tag}/entries", s.entriesByTag)
	r.Get("/search", s.searchEntries)

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", s.addr), zap.Int("entries", s.svc.Len()))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"entries": s.svc.Len(),
	})
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0

	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}

	all := s.svc.All()
	if offset > len(all) {
		offset = len(all)
	}
	page := all[offset:]
	if limit < len(page) {
		page = page[:limit]
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries": page,
		"total":   len(all),
		"limit":   limit,
		"offset":  offset,
	})
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "entry id must be an integer")
		return
	}

	entry, err := s.svc.ByID(id)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no such entry")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"tags": s.svc.Tags(),
	})
}

func (s *Server) entriesByTag(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	entries := s.svc.ByTag(tag)
	if entries == nil {
		entries = []domain.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tag":     tag,
		"entries": entries,
	})
}

func (s *Server) searchEntries(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	entries := s.svc.Search(query)
	if entries == nil {
		entries = []domain.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"entries": entries,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
