package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	r.Route("/api", func(r chi.Router) {
		// Чтение трекинга доступно и с анонимным ключом.
		r.Group(func(r chi.Router) {
			r.Use(s.auth.AllowAnon)
			r.Get("/tracking/{orderID}", s.getTracking)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.auth.Middleware)

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", s.createOrder)
				r.Get("/", s.listOrders)
				r.Get("/{id}", s.getOrder)
				r.Patch("/{id}/status", s.updateOrderStatus)
				r.Get("/{id}/items", s.listOrderItems)
				r.Post("/{id}/items", s.addOrderItem)
				r.Patch("/{id}/items/{itemID}", s.updateOrderItem)
				r.Delete("/{id}/items/{itemID}", s.removeOrderItem)
				r.Get("/{id}/history", s.listOrderHistory)
				r.Get("/{id}/inventory-summary", s.listOrderSummary)
			})

			r.Route("/logistics", func(r chi.Router) {
				r.Post("/vehicles", s.createVehicle)
				r.Get("/vehicles", s.listVehicles)
				r.Patch("/vehicles/{id}/status", s.updateVehicleStatus)
				r.Get("/vehicles/{id}/location", s.getVehicleLocation)
				r.Post("/vehicles/{id}/location", s.recordVehicleLocation)
				r.Post("/routes", s.createRoute)
				r.Get("/routes", s.listRoutes)
				r.Get("/routes/{id}", s.getRoute)
				r.Patch("/routes/{id}/status", s.updateRouteStatus)
				r.Get("/routes/{id}/stops", s.listRouteStops)
				r.Patch("/stops/{id}/status", s.updateStopStatus)
			})

			r.Route("/inventory", func(r chi.Router) {
				r.Post("/products", s.createProduct)
				r.Get("/products", s.listProducts)
				r.Post("/warehouses", s.createWarehouse)
				r.Get("/warehouses", s.listWarehouses)
				r.Get("/levels", s.listLevels)
				r.Post("/levels", s.setLevel)
				r.Get("/low-stock", s.listLowStock)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", s.listNotifications)
				r.Get("/unread-count", s.unreadCount)
				r.Patch("/{id}/read", s.markNotificationRead)
				r.Post("/read-all", s.markAllNotificationsRead)
				r.Delete("/{id}", s.deleteNotification)
				r.Delete("/", s.clearNotifications)
			})
		})
	})

	// Веб-сокет сам проверяет токен: браузерный WebSocket не умеет
	// выставлять Authorization, токен приходит в query.
	r.Get("/ws/tracking/{orderID}", s.trackingWS)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "not found")
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("http request", "method", r.Method, "path", r.URL.Path, "duration_ms", time.Since(start).Milliseconds())
	})
}
