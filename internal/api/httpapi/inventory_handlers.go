package httpapi

import (
	"net/http"

	"github.com/antonkhm/warelog/internal/models"
)

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var p models.Product
	if err := decodeJSON(r, &p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}
	created, err := s.inventory.CreateProduct(r.Context(), p)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	out, err := s.inventory.ListProducts(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) createWarehouse(w http.ResponseWriter, r *http.Request) {
	var wh models.Warehouse
	if err := decodeJSON(r, &wh); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}
	created, err := s.inventory.CreateWarehouse(r.Context(), wh)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) listWarehouses(w http.ResponseWriter, r *http.Request) {
	out, err := s.inventory.ListWarehouses(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) listLevels(w http.ResponseWriter, r *http.Request) {
	out, err := s.inventory.ListLevels(r.Context(), r.URL.Query().Get("warehouseId"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) setLevel(w http.ResponseWriter, r *http.Request) {
	var l models.InventoryLevel
	if err := decodeJSON(r, &l); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.inventory.SetLevel(r.Context(), l); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listLowStock(w http.ResponseWriter, r *http.Request) {
	out, err := s.inventory.ListLowStock(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, out)
}
