package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/antonkhm/warelog/internal/services/tracking"
	"github.com/go-chi/chi/v5"
)

const wsWriteTimeout = 10 * time.Second

// trackingWS стримит каждый применённый снапшот сессии как JSON модели
// представления. Разрыв соединения гасит сессию.
func (s *Server) trackingWS(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	// CheckOrigin у апгрейдера выключен, поэтому токен обязателен:
	// минимум анонимный ключ, иначе валидный JWT.
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusUnauthorized, "token is required")
		return
	}
	if token != s.auth.anonKey {
		if _, err := s.auth.parse(token); err != nil {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade", "error", err.Error())
		return
	}
	defer func() { _ = conn.Close() }()

	session, cancel := s.tracker.StartTracking(r.Context(), orderID)
	defer cancel()

	// Читающая горутина нужна только чтобы поймать закрытие соединения.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	writeCurrent := func() error {
		vm := tracking.BuildView(session.Current())
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(vm)
	}

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-session.Updates():
			if err := writeCurrent(); err != nil {
				slog.Debug("ws write", "order_id", orderID, "error", err.Error())
				return
			}
		}
	}
}
