// Package fdsntest provides a canned in-process web service for client
// tests: fixed status/content-type/body per service, with request capture.
package fdsntest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Canned is the fixed response one service returns.
type Canned struct {
	Status      int
	ContentType string
	Body        []byte
}

// Captured is one request the server saw.
type Captured struct {
	Method   string
	Path     string
	RawQuery string
	Body     []byte
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	canned   map[string]Canned
	captured []Captured
}

// New starts a server answering /fdsnws/{service}/1/query and
// /irisws/{service}/1/query with the canned response registered for the
// service. Close it with Server.Close.
func New(canned map[string]Canned) *Server {
	s := &Server{canned: canned}

	r := chi.NewRouter()
	handle := func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		s.mu.Lock()
		s.captured = append(s.captured, Captured{
			Method:   req.Method,
			Path:     req.URL.Path,
			RawQuery: req.URL.RawQuery,
			Body:     body,
		})
		c, ok := s.canned[chi.URLParam(req, "service")]
		s.mu.Unlock()

		if !ok {
			http.NotFound(w, req)
			return
		}
		if c.ContentType != "" {
			w.Header().Set("Content-Type", c.ContentType)
		}
		w.WriteHeader(c.Status)
		_, _ = w.Write(c.Body)
	}
	for _, proto := range []string{"fdsnws", "irisws"} {
		r.Get("/"+proto+"/{service}/1/query", handle)
		r.Post("/"+proto+"/{service}/1/query", handle)
	}

	s.Server = httptest.NewServer(r)
	return s
}

// Requests returns a copy of everything the server captured so far.
func (s *Server) Requests() []Captured {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Captured, len(s.captured))
	copy(out, s.captured)
	return out
}
