package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"autohub-rest-api/internal/model"
	"autohub-rest-api/internal/service"
	"autohub-rest-api/internal/store"
	"autohub-rest-api/pkg/apierror"
	"autohub-rest-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	orders    *service.OrderService
	snapshots *store.Snapshots
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders *service.OrderService, snapshots *store.Snapshots) *OrderHandler {
	return &OrderHandler{
		orders:    orders,
		snapshots: snapshots,
	}
}

// CreateOrderRequest is the purchase-inquiry payload.
type CreateOrderRequest struct {
	CarID         string `json:"car_id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email,omitempty"`
	Message       string `json:"message,omitempty"`
	Image         string `json:"image,omitempty"`
}

// Create handles POST /api/v1/orders
//
// The inquiry is accepted (201) as long as it validates: a platform
// outage only shows up as sync_status=failed on the returned record, the
// order itself is durably retained.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	order := &model.Order{
		CarID:         req.CarID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		Message:       req.Message,
		Image:         req.Image,
	}

	created, err := h.orders.Create(r.Context(), order)
	if err != nil {
		response.Error(w, apierror.ValidationError(err.Error()))
		return
	}
	response.Created(w, created)
}

// List handles GET /api/v1/admin/orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]interface{}{
		"orders":         h.orders.List(),
		"sync":           h.orders.SyncStats(),
		"last_reconcile": h.orders.LastReconcile(),
	})
}

// SetStatusRequest is the status-change payload.
type SetStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

// SetStatus handles PUT /api/v1/admin/orders/{id}/status
func (h *OrderHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	if !req.Status.Valid() {
		response.Error(w, apierror.BadRequest("unknown order status"))
		return
	}

	order, err := h.orders.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.Error(w, apierror.NotFound("order not found"))
			return
		}
		response.Error(w, apierror.BadRequest(err.Error()))
		return
	}
	// A failed remote push is non-fatal: the change is retained locally
	// and re-published by the next reconcile pass.
	response.OK(w, order)
}

// Delete handles DELETE /api/v1/admin/orders/{id}
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.orders.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.Error(w, apierror.NotFound("order not found"))
			return
		}
		response.Error(w, apierror.BadGateway(err.Error()))
		return
	}
	response.NoContent(w)
}

// Reconcile handles POST /api/v1/admin/orders/reconcile
func (h *OrderHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Reconcile(context.WithoutCancel(r.Context())); err != nil {
		response.Error(w, apierror.BadGateway(err.Error()))
		return
	}
	response.OK(w, map[string]interface{}{
		"reconciled_at": h.orders.LastReconcile(),
		"sync":          h.orders.SyncStats(),
	})
}

// ExportCSV handles GET /api/v1/admin/orders/export
//
// Serves the CSV mirror written by the last reconcile; when none exists
// yet the document is rendered from the current order list.
func (h *OrderHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	csvDoc, generatedAt, err := h.snapshots.LoadOrdersCSV(r.Context())
	if err != nil {
		csvDoc = service.OrdersCSV(h.orders.List())
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="orders.csv"`)
	if generatedAt != "" {
		w.Header().Set("X-Generated-At", generatedAt)
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(csvDoc))
}
