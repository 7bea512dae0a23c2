// Package fakeapi is an in-process Finance Monkey API for tests. It keeps
// its collections in memory, issues opaque tokens and records every call.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"financemonkey/fm-cli/internal/models"
)

// Call is one recorded request.
type Call struct {
	Method string
	Path   string
	Query  string
}

type failure struct {
	status  int
	message string
}

// Server is the fake API. Seed the exported collections before use and
// read them back under Lock/Unlock, or through the snapshot helpers.
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	Transactions []models.Transaction
	Categories   []models.Category
	Accounts     []models.EmailAccount
	Summary      models.DashboardSummary
	Drive        models.DriveStatus
	DriveFiles   []models.DriveFile

	users         map[string]models.Registration
	accessTokens  map[string]string
	refreshTokens map[string]string
	calls         []Call
	failures      map[string]failure
	seq           int
	now           func() time.Time
}

// New starts a server and registers its shutdown with t.
func New(t interface{ Cleanup(func()) }) *Server {
	s := &Server{
		users:         map[string]models.Registration{},
		accessTokens:  map[string]string{},
		refreshTokens: map[string]string{},
		failures:      map[string]failure{},
		now:           time.Now,
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Server.Close)
	return s
}

// BaseURL is the API root the client should be configured with.
func (s *Server) BaseURL() string { return s.Server.URL + "/api" }

// Lock guards direct access to the exported collections.
func (s *Server) Lock() { s.mu.Lock() }

// Unlock releases Lock.
func (s *Server) Unlock() { s.mu.Unlock() }

// AddUser registers an account that can log in.
func (s *Server) AddUser(name, email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = models.Registration{Name: name, Email: email, Password: password}
}

// HasUser reports whether email has been registered.
func (s *Server) HasUser(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[email]
	return ok
}

// IssueSession mints a valid token pair for email without a login call.
func (s *Server) IssueSession(email string) models.AuthResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(email)
}

// ExpireAccessTokens invalidates every access token; refresh tokens stay valid.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessTokens = map[string]string{}
}

// FailNext makes the next request matching "METHOD /path" fail with status.
func (s *Server) FailNext(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, message: message}
}

// Calls returns the recorded requests in arrival order.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallCount counts recorded requests with the given method and path.
func (s *Server) CallCount(method, path string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// ResetCalls forgets the recorded requests.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *Server) issueLocked(email string) models.AuthResponse {
	s.seq++
	access := fmt.Sprintf("access-%d", s.seq)
	refresh := fmt.Sprintf("refresh-%d", s.seq)
	s.accessTokens[access] = email
	s.refreshTokens[refresh] = email

	u := s.users[email]
	return models.AuthResponse{
		Token:        access,
		RefreshToken: refresh,
		User:         models.User{ID: "user-" + email, Email: email, Name: u.Name},
	}
}

func (s *Server) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.login)
		r.Post("/auth/register", s.register)
		r.Post("/auth/google", s.google)
		r.Post("/auth/refresh-token", s.refresh)

		r.Group(func(r chi.Router) {
			r.Use(s.requireToken)

			r.Get("/transactions", s.listTransactions)
			r.Post("/transactions", s.createTransaction)
			r.Put("/transactions/{id}", s.updateTransaction)
			r.Delete("/transactions/{id}", s.deleteTransaction)

			r.Get("/categories", s.listCategories)
			r.Post("/categories", s.createCategory)
			r.Put("/categories/{id}", s.updateCategory)
			r.Delete("/categories/{id}", s.deleteCategory)

			r.Get("/emails/accounts", s.listAccounts)
			r.Post("/emails/connect", s.connectAccount)
			r.Post("/emails/disconnect/{id}", s.disconnectAccount)
			r.Post("/emails/fetch/{id}", s.fetchAccount)

			r.Get("/dashboard/summary", s.summary)

			r.Get("/drive/status", s.driveStatus)
			r.Get("/drive/files", s.driveFiles)
			r.Post("/drive/export", s.driveExport)
		})
	})
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/api")

		s.mu.Lock()
		s.calls = append(s.calls, Call{Method: r.Method, Path: path, Query: r.URL.RawQuery})
		key := r.Method + " " + path
		f, failing := s.failures[key]
		if failing {
			delete(s.failures, key)
		}
		s.mu.Unlock()

		if failing {
			writeError(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

		s.mu.Lock()
		_, ok := s.accessTokens[token]
		s.mu.Unlock()

		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	if message == "" {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, map[string]string{"message": message})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return false
	}
	return true
}
