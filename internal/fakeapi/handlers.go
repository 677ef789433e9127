package fakeapi

import (
	"encoding/json"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/powervision/estoque/internal/domain"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "username and password are required")
		return
	}

	s.mu.Lock()
	u, ok := s.users[req.Username]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(req.Password)) != nil {
		writeMessage(w, http.StatusUnauthorized, "Usuário ou senha inválidos")
		return
	}

	now := s.now()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    req.Username,
		"userId": u.id,
		"iat":    now.Unix(),
		"exp":    now.Add(tokenTTL).Unix(),
	}).SignedString(s.secret)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "could not sign token")
		return
	}
	writeJSON(w, http.StatusCreated, domain.Token{AccessToken: tok})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Products())
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := domain.ProductID(mux.Vars(r)["id"])
	s.mu.Lock()
	i := s.indexOf(id)
	var p domain.Product
	if i >= 0 {
		p = s.products[i]
	}
	s.mu.Unlock()
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "Produto não encontrado")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var d domain.ProductDraft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}
	if msg := validate(d.Name, d.Price, d.Quantity); msg != "" {
		writeMessage(w, http.StatusBadRequest, msg)
		return
	}

	now := s.now().UTC()
	p := domain.Product{
		ID:          domain.ProductID(uuid.NewString()),
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Quantity:    d.Quantity,
		ImageURL:    d.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.mu.Lock()
	s.products = append(s.products, p)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, p)
}

type patchRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Quantity    *int64   `json:"quantity"`
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	id := domain.ProductID(mux.Vars(r)["id"])
	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "Produto não encontrado")
		return
	}
	p := s.products[i]
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Quantity != nil {
		p.Quantity = *req.Quantity
	}
	if msg := validate(p.Name, p.Price, p.Quantity); msg != "" {
		writeMessage(w, http.StatusBadRequest, msg)
		return
	}
	p.UpdatedAt = s.now().UTC()
	s.products[i] = p
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := domain.ProductID(mux.Vars(r)["id"])
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		writeMessage(w, http.StatusNotFound, "Produto não encontrado")
		return
	}
	p := s.products[i]
	s.products = append(s.products[:i], s.products[i+1:]...)
	writeJSON(w, http.StatusOK, p)
}

// indexOf must be called with s.mu held.
func (s *Server) indexOf(id domain.ProductID) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func validate(name string, price float64, quantity int64) string {
	switch {
	case name == "":
		return "name should not be empty"
	case price < 0:
		return "price must not be less than 0"
	case quantity < 0:
		return "quantity must not be less than 0"
	}
	return ""
}
