package httpapi

import (
	"net/http"

	"github.com/antonkhm/warelog/internal/models"
	"github.com/go-chi/chi/v5"
)

func (s *Server) createVehicle(w http.ResponseWriter, r *http.Request) {
	var v models.Vehicle
	if err := decodeJSON(r, &v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}
	created, err := s.logistics.CreateVehicle(r.Context(), v)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) listVehicles(w http.ResponseWriter, r *http.Request) {
	out, err := s.logistics.ListVehicles(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) updateVehicleStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status models.VehicleStatus `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.logistics.UpdateVehicleStatus(r.Context(), id, req.Status); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "status": req.Status})
}

func (s *Server) getVehicleLocation(w http.ResponseWriter, r *http.Request) {
	loc, found, err := s.logistics.GetLocation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "location not found")
		return
	}
	respondJSON(w, http.StatusOK, loc)
}

func (s *Server) recordVehicleLocation(w http.ResponseWriter, r *http.Request) {
	var loc models.VehicleLocation
	if err := decodeJSON(r, &loc); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}
	loc.VehicleID = chi.URLParam(r, "id")
	saved, err := s.logistics.RecordLocation(r.Context(), loc)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

type createRouteRequest struct {
	Route models.DeliveryRoute  `json:"route"`
	Stops []models.DeliveryStop `json:"stops"`
}

func (s *Server) createRoute(w http.ResponseWriter, r *http.Request) {
	var req createRouteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}
	route, err := s.logistics.CreateRoute(r.Context(), req.Route, req.Stops)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, route)
}

func (s *Server) listRoutes(w http.ResponseWriter, r *http.Request) {
	out, err := s.logistics.ListRoutes(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) getRoute(w http.ResponseWriter, r *http.Request) {
	route, found, err := s.logistics.GetRoute(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "route not found")
		return
	}
	respondJSON(w, http.StatusOK, route)
}

func (s *Server) updateRouteStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status models.RouteStatus `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.logistics.UpdateRouteStatus(r.Context(), id, req.Status); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "status": req.Status})
}

func (s *Server) listRouteStops(w http.ResponseWriter, r *http.Request) {
	out, err := s.logistics.ListRouteStops(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) updateStopStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status models.StopStatus `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.logistics.UpdateStopStatus(r.Context(), id, req.Status); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "status": req.Status})
}
