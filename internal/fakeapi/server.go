// Package fakeapi is an in-memory implementation of the products API used
// by the tests and by the dev-server command. It keeps products in insertion
// order, authenticates users with bcrypt hashes and issues HS256 access
// tokens carrying a userId claim.
package fakeapi

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/powervision/estoque/internal/domain"
)

const tokenTTL = time.Hour

type user struct {
	id   string
	hash []byte
}

// Server is the fake API. Create it with New and mount Handler().
type Server struct {
	mu       sync.Mutex
	products []domain.Product
	users    map[string]user
	hits     map[string]int
	failures map[string]int

	secret []byte
	cost   int
	now    func() time.Time
	log    *zap.Logger

	router *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithSecret sets the HS256 signing key. A random key is used otherwise.
func WithSecret(secret string) Option {
	return func(s *Server) {
		if secret != "" {
			s.secret = []byte(secret)
		}
	}
}

// WithLogger logs every request.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithBcryptCost overrides the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Server) { s.cost = cost }
}

// WithClock overrides time.Now for timestamps and token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates an empty fake API.
func New(opts ...Option) *Server {
	s := &Server{
		users:    make(map[string]user),
		hits:     make(map[string]int),
		failures: make(map[string]int),
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.secret == nil {
		s.secret = make([]byte, 32)
		_, _ = rand.Read(s.secret)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.countHits, s.injectFailures, s.logRequests)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	p := r.PathPrefix("/products").Subrouter()
	p.Use(s.requireToken)
	p.HandleFunc("", s.handleList).Methods(http.MethodGet)
	p.HandleFunc("/", s.handleList).Methods(http.MethodGet)
	p.HandleFunc("", s.handleCreate).Methods(http.MethodPost)
	p.HandleFunc("/", s.handleCreate).Methods(http.MethodPost)
	p.HandleFunc("/{id}", s.handleGet).Methods(http.MethodGet)
	p.HandleFunc("/{id}", s.handlePatch).Methods(http.MethodPatch)
	p.HandleFunc("/{id}", s.handleDelete).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusNotFound, "Cannot find route")
	})
	return r
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler { return s.router }

// AddUser registers a login. It returns the generated user id.
func (s *Server) AddUser(username, password string) (string, error) {
	if username == "" || password == "" {
		return "", errors.New("username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	s.mu.Lock()
	s.users[username] = user{id: id, hash: hash}
	s.mu.Unlock()
	return id, nil
}

// Seed appends products as-is, assigning ids and timestamps when missing.
func (s *Server) Seed(products ...domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	for _, p := range products {
		if p.ID == "" {
			p.ID = domain.ProductID(uuid.NewString())
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = now
		}
		s.products = append(s.products, p)
	}
}

// Products returns a copy of the stored products.
func (s *Server) Products() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Hits returns how many requests reached method+path, e.g. ("DELETE", "/products/42").
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+path]
}

// FailNext makes the next request to method+path answer status with a
// generic message, without touching the store.
func (s *Server) FailNext(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = status
}

// ---------- middleware ----------

func (s *Server) countHits(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		status, ok := s.failures[key]
		if ok {
			delete(s.failures, key)
		}
		s.mu.Unlock()
		if ok {
			writeMessage(w, status, http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)
		s.log.Info("http_request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sr.status),
			zap.String("request_id", r.Header.Get("X-Request-Id")),
			zap.Duration("latency", time.Since(start)),
		)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		_, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ---------- helpers ----------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"statusCode": status, "message": msg})
}
