package httpapi

import (
	"net/http"

	"github.com/antonkhm/warelog/internal/models"
	"github.com/antonkhm/warelog/internal/services/orders"
	"github.com/go-chi/chi/v5"
)

type createOrderRequest struct {
	CustomerID         string  `json:"customerId"`
	ShippingAddress    string  `json:"shippingAddress"`
	ShippingCity       string  `json:"shippingCity"`
	ShippingState      string  `json:"shippingState"`
	ShippingPostalCode string  `json:"shippingPostalCode"`
	ShippingCountry    string  `json:"shippingCountry"`
	Notes              *string `json:"notes,omitempty"`
	DeliveryAddress    *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"deliveryAddress,omitempty"`
	Items []struct {
		ProductID   string  `json:"productId"`
		WarehouseID string  `json:"warehouseId"`
		Quantity    float64 `json:"quantity"`
	} `json:"items"`
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	in := models.OrderCreateInput{
		CustomerID:         req.CustomerID,
		ShippingAddress:    req.ShippingAddress,
		ShippingCity:       req.ShippingCity,
		ShippingState:      req.ShippingState,
		ShippingPostalCode: req.ShippingPostalCode,
		ShippingCountry:    req.ShippingCountry,
		Notes:              req.Notes,
	}
	if req.CustomerID == "" {
		if sub, ok := Subject(r.Context()); ok {
			in.CustomerID = sub
		}
	}
	if req.DeliveryAddress != nil {
		in.DeliveryLatitude = &req.DeliveryAddress.Latitude
		in.DeliveryLongitude = &req.DeliveryAddress.Longitude
	}

	items := make([]orders.ItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, orders.ItemInput{
			ProductID:   it.ProductID,
			WarehouseID: it.WarehouseID,
			Quantity:    it.Quantity,
		})
	}

	order, preview, err := s.orders.Create(r.Context(), in, items)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"order":        order,
		"routePreview": preview,
	})
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customerId")
	if customerID == "" {
		if sub, ok := Subject(r.Context()); ok {
			customerID = sub
		}
	}
	out, err := s.orders.ListByCustomer(r.Context(), customerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, found, err := s.orders.Get(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "order not found")
		return
	}
	respondJSON(w, http.StatusOK, order)
}

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status"`
	Notes  *string            `json:"notes,omitempty"`
}

func (s *Server) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	changedBy, _ := Subject(r.Context())
	if err := s.orders.UpdateStatus(r.Context(), id, req.Status, changedBy, req.Notes); err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "status": req.Status})
}

func (s *Server) listOrderItems(w http.ResponseWriter, r *http.Request) {
	out, err := s.orders.ListItems(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, out)
}

type addItemRequest struct {
	ProductID   string  `json:"productId"`
	WarehouseID string  `json:"warehouseId"`
	Quantity    float64 `json:"quantity"`
}

func (s *Server) addOrderItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	item, err := s.orders.AddItem(r.Context(), chi.URLParam(r, "id"), orders.ItemInput{
		ProductID:   req.ProductID,
		WarehouseID: req.WarehouseID,
		Quantity:    req.Quantity,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

type updateItemRequest struct {
	Quantity float64 `json:"quantity"`
}

func (s *Server) updateOrderItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	item, err := s.orders.UpdateItemQuantity(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemID"), req.Quantity)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (s *Server) removeOrderItem(w http.ResponseWriter, r *http.Request) {
	if err := s.orders.RemoveItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemID")); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listOrderHistory(w http.ResponseWriter, r *http.Request) {
	out, err := s.orders.ListStatusHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) listOrderSummary(w http.ResponseWriter, r *http.Request) {
	out, err := s.orders.ListInventorySummary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, out)
}
