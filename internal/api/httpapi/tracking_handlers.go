package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/antonkhm/warelog/internal/models"
	"github.com/antonkhm/warelog/internal/services/tracking"
	"github.com/go-chi/chi/v5"
)

// getTracking — одноразовый снапшот без подписок. Короткий кэш в Redis
// гасит повторные запросы по одному заказу.
func (s *Server) getTracking(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	cacheKey := "tracking:" + orderID + ":view"

	if s.cache != nil && s.snapshotTTL > 0 {
		if b, ok, err := s.cache.Get(r.Context(), cacheKey); err == nil && ok {
			var vm tracking.ViewModel
			if json.Unmarshal(b, &vm) == nil {
				respondJSON(w, http.StatusOK, vm)
				return
			}
		}
	}

	order, found, err := s.trackRepo.GetOrder(r.Context(), orderID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "order not found")
		return
	}

	snap := models.TrackingSnapshot{Order: order, FetchedAt: time.Now().UTC()}
	row, rowFound, err := s.trackRepo.GetTrackingRow(r.Context(), orderID)
	if err != nil {
		// Частичный ответ: заказ известен, доставка — нет.
		snap.Err = err
	} else if rowFound {
		snap.Delivery = &row
	}

	vm := tracking.BuildView(snap)

	if s.cache != nil && s.snapshotTTL > 0 && snap.Err == nil {
		if b, err := json.Marshal(vm); err == nil {
			_ = s.cache.Set(r.Context(), cacheKey, b, s.snapshotTTL)
		}
	}

	respondJSON(w, http.StatusOK, vm)
}
