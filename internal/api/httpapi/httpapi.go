package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/antonkhm/warelog/internal/cache"
	"github.com/antonkhm/warelog/internal/services/inventory"
	"github.com/antonkhm/warelog/internal/services/logistics"
	"github.com/antonkhm/warelog/internal/services/notifications"
	"github.com/antonkhm/warelog/internal/services/orders"
	"github.com/antonkhm/warelog/internal/services/tracking"
	"github.com/gorilla/websocket"
)

type Server struct {
	orders        *orders.Service
	logistics     *logistics.Service
	inventory     *inventory.Service
	notifications *notifications.Service

	tracker   *tracking.Tracker
	trackRepo tracking.Repository

	cache       cache.BytesCache
	snapshotTTL time.Duration

	auth     *Auth
	upgrader websocket.Upgrader
}

func New(
	ordersSvc *orders.Service,
	logisticsSvc *logistics.Service,
	inventorySvc *inventory.Service,
	notificationsSvc *notifications.Service,
	tracker *tracking.Tracker,
	trackRepo tracking.Repository,
	auth *Auth,
) *Server {
	return &Server{
		orders:        ordersSvc,
		logistics:     logisticsSvc,
		inventory:     inventorySvc,
		notifications: notificationsSvc,
		tracker:       tracker,
		trackRepo:     trackRepo,
		auth:          auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Браузерный клиент ходит с другого origin; доступ режет bearer-токен.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// WithSnapshotCache включает кэш одноразовых снапшотов трекинга.
func (s *Server) WithSnapshotCache(c cache.BytesCache, ttl time.Duration) *Server {
	s.cache = c
	s.snapshotTTL = ttl
	return s
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "error", err.Error())
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(v)
}
