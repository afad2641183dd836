// Package httpapi exposes the Registry API (C7) over the stdlib
// net/http.ServeMux, implementing spec §6's four request shapes. No
// router framework is grounded anywhere in the complete-repo pack, so
// this stays on stdlib rather than introducing an ungrounded dependency
// (see DESIGN.md).
package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/oneedge/orderengine/internal/apperrors"
	"github.com/oneedge/orderengine/internal/domain"
	"github.com/oneedge/orderengine/internal/registry"
)

// RegistryAPI is the subset of *registry.Registry the HTTP surface
// drives.
type RegistryAPI interface {
	Create(o *domain.Order) (*domain.Order, error)
	Cancel(id string) error
	Modify(id string, patch registry.OrderPatch) (string, error)
	Get(id string) (*domain.Order, error)
	ListByMaker(maker string) ([]*domain.Order, error)
	ListActive() ([]*domain.Order, error)
}

// Server wires RegistryAPI onto a ServeMux.
type Server struct {
	mux *http.ServeMux
	reg RegistryAPI
}

func NewServer(reg RegistryAPI) *Server {
	s := &Server{mux: http.NewServeMux(), reg: reg}
	s.mux.HandleFunc("POST /orders", s.handleCreate)
	s.mux.HandleFunc("DELETE /orders/{id}", s.handleCancel)
	s.mux.HandleFunc("PATCH /orders/{id}", s.handleModify)
	s.mux.HandleFunc("GET /orders", s.handleList)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var o domain.Order
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidParams")
		return
	}

	created, err := s.reg.Create(&o)
	if err != nil {
		writeCreateError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": created.ID})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.reg.Cancel(id); err != nil {
		if err == apperrors.ErrOrderNotFound {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleModify(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var patch registry.OrderPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidParams")
		return
	}

	newID, err := s.reg.Modify(id, patch)
	if err != nil {
		if err == apperrors.ErrOrderNotFound {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"newId": newID})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	maker := r.URL.Query().Get("maker")
	var (
		orders []*domain.Order
		err    error
	)
	if maker != "" {
		orders, err = s.reg.ListByMaker(maker)
	} else {
		orders, err = s.reg.ListActive()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := r.URL.Query().Get("status")
	if status != "" {
		orders = filterByStatus(orders, domain.Status(strings.ToUpper(status)))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}

func filterByStatus(orders []*domain.Order, status domain.Status) []*domain.Order {
	out := make([]*domain.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

func writeCreateError(w http.ResponseWriter, err error) {
	switch err {
	case apperrors.ErrSignatureInvalid:
		writeError(w, http.StatusBadRequest, "InvalidSignature")
	case apperrors.ErrUnknownOrderType:
		writeError(w, http.StatusBadRequest, "UnknownOrderType")
	case apperrors.ErrInvalidParams:
		writeError(w, http.StatusBadRequest, "InvalidParams")
	default:
		log.Error().Err(err).Msg("order create failed")
		writeError(w, http.StatusInternalServerError, "StorageError")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
