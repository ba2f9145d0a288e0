// Package devserver serves an in-memory note collection with the same
// routes as the remote, for local development and tests.
package devserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/labstack/echo/v4"

	"github.com/aretw0/notesync/pkg/core"
)

// Store is the in-memory collection. IDs are assigned sequentially as
// numbers, like json-server does.
type Store struct {
	mu     sync.RWMutex
	notes  []core.Note
	nextID int
}

// NewStore seeds the store. Seed notes keep their ids.
func NewStore(seed ...core.Note) *Store {
	s := &Store{}
	for _, n := range seed {
		s.notes = append(s.notes, n)
		if v, err := strconv.Atoi(string(n.ID)); err == nil && v > s.nextID {
			s.nextID = v
		}
	}
	return s
}

func (s *Store) List() []core.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := slices.Clone(s.notes)
	if out == nil {
		out = []core.Note{}
	}
	return out
}

func (s *Store) Create(d core.Draft) core.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	n := d.Note(core.ID(strconv.Itoa(s.nextID)))
	s.notes = append(s.notes, n)
	return n
}

func (s *Store) Update(id core.ID, p core.Patch) (core.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return core.Note{}, false
	}
	s.notes[i] = p.Apply(s.notes[i])
	return s.notes[i], true
}

func (s *Store) Delete(id core.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.notes = slices.Delete(s.notes, i, i+1)
	return true
}

func (s *Store) index(id core.ID) int {
	return slices.IndexFunc(s.notes, func(n core.Note) bool { return n.ID == id })
}

// Server wraps an echo instance over a Store.
type Server struct {
	Echo    *echo.Echo
	store   *Store
	offline atomic.Bool
	logger  *slog.Logger
}

// New creates a server for store.
func New(store *Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{Echo: e, store: store, logger: logger}
	e.Use(s.availability)
	Register(e, store)
	return s
}

// Register wires the note routes on the provided Echo instance.
func Register(e *echo.Echo, store *Store) {
	e.GET("/notes", listNotes(store))
	e.POST("/notes", createNote(store))
	e.PATCH("/notes/:id", updateNote(store))
	e.DELETE("/notes/:id", deleteNote(store))
}

// SetOffline makes every request fail with 503 until switched back.
func (s *Server) SetOffline(offline bool) {
	s.offline.Store(offline)
}

func (s *Server) availability(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.offline.Load() {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"message": "offline"})
		}
		err := next(c)
		s.logger.Debug("request", "method", c.Request().Method, "path", c.Request().URL.Path, "status", c.Response().Status)
		return err
	}
}

// ListenAndServe blocks until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.Echo.Start(addr) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		return s.Echo.Shutdown(context.Background())
	}
}

func listNotes(store *Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, store.List())
	}
}

func createNote(store *Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		var d core.Draft
		if err := c.Bind(&d); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid note"})
		}
		return c.JSON(http.StatusCreated, store.Create(d))
	}
}

func updateNote(store *Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		var p core.Patch
		if err := c.Bind(&p); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid patch"})
		}
		n, ok := store.Update(core.ID(c.Param("id")), p)
		if !ok {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "note not found"})
		}
		return c.JSON(http.StatusOK, n)
	}
}

func deleteNote(store *Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !store.Delete(core.ID(c.Param("id"))) {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "note not found"})
		}
		return c.NoContent(http.StatusOK)
	}
}
