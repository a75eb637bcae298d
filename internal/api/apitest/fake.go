// Package apitest provides an in-memory tasks API for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rogersnm/taskdesk/internal/model"
)

// Request is a call recorded by the fake.
type Request struct {
	Method string
	Path   string
	Body   map[string]any
}

// Server is a minimal tasks API backed by a map.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	records  map[int]model.Record
	nextID   int
	failures map[string]int
	requests []Request
}

func NewServer(seed ...model.Record) *Server {
	s := &Server{
		records:  make(map[int]model.Record),
		failures: make(map[string]int),
		nextID:   1,
	}
	for _, r := range seed {
		s.records[r.ID] = r
		if r.ID >= s.nextID {
			s.nextID = r.ID + 1
		}
	}
	s.Server = httptest.NewServer(s)
	return s
}

// FailNext makes the next request with method respond with status.
func (s *Server) FailNext(method string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = status
}

func (s *Server) Records() []model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// CountMethod returns how many requests used method.
func (s *Server) CountMethod(method string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method {
			n++
		}
	}
	return n
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var body map[string]any
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&body)
	}
	s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Body: body})

	if status, ok := s.failures[r.Method]; ok {
		delete(s.failures, r.Method)
		w.WriteHeader(status)
		w.Write([]byte(`{"message":"injected failure"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	path := strings.Trim(r.URL.Path, "/")

	switch {
	case r.Method == http.MethodGet && path == "":
		list := make([]model.Record, 0, len(s.records))
		for _, rec := range s.records {
			list = append(list, rec)
		}
		// server order is arbitrary; reverse id keeps tests honest about sorting
		sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
		json.NewEncoder(w).Encode(list)

	case r.Method == http.MethodPost && path == "":
		rec := model.Record{ID: s.nextID}
		s.nextID++
		applyBody(&rec, body)
		if rec.Task == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.records[rec.ID] = rec
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(rec)

	case r.Method == http.MethodPatch && path != "":
		id, err := strconv.Atoi(path)
		rec, ok := s.records[id]
		if err != nil || !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		applyBody(&rec, body)
		s.records[id] = rec
		json.NewEncoder(w).Encode(rec)

	case r.Method == http.MethodDelete && path != "":
		id, err := strconv.Atoi(path)
		if _, ok := s.records[id]; err != nil || !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		delete(s.records, id)
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func applyBody(rec *model.Record, body map[string]any) {
	if v, ok := body["task"].(string); ok {
		rec.Task = v
	}
	if v, ok := body["process"].(string); ok {
		rec.Process = model.Process(v)
	}
	if v, ok := body["priority"].(string); ok {
		rec.Priority = model.Priority(v)
	}
}
