// internal/app/features/orders/handler.go
package orders

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/slothstore/internal/app/system/auditlog"
	"github.com/dalemusser/slothstore/internal/app/system/authz"
	"github.com/dalemusser/slothstore/internal/app/system/httpx"
	"github.com/dalemusser/slothstore/internal/app/system/inputval"
	"github.com/dalemusser/slothstore/internal/app/system/timeouts"
	"github.com/dalemusser/slothstore/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the cart and order endpoints.
type Handler struct {
	Svc      *Service
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(svc *Service, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, AuditLog: audit, Log: logger}
}

// failure maps a service error to a status code and client message. ok is
// false for errors that should be reported as 500.
func failure(err error) (code int, msg string, ok bool) {
	switch {
	case errors.Is(err, ErrNoActiveCart):
		return http.StatusNotFound, "No active order found", true
	case errors.Is(err, ErrOrderNotFound):
		return http.StatusNotFound, "Order not found", true
	case errors.Is(err, ErrEmptyCart):
		return http.StatusBadRequest, "Your cart is empty", true
	case errors.Is(err, ErrInvalidAddress):
		return http.StatusBadRequest, "Address not found", true
	case errors.Is(err, ErrNegativeTotal):
		return http.StatusBadRequest, "Total must not be negative", true
	case errors.Is(err, ErrTotalMismatch):
		return http.StatusBadRequest, "Total does not match the cart", true
	case errors.Is(err, ErrInvalidStatus):
		return http.StatusBadRequest, msgInvalidStatus, true
	case errors.Is(err, ErrInsufficientStock):
		detail := strings.TrimPrefix(err.Error(), ErrInsufficientStock.Error()+": ")
		return http.StatusConflict, "Insufficient stock for " + detail, true
	case errors.Is(err, ErrStatusConflict):
		return http.StatusConflict, "Order status changed, please retry", true
	case errors.Is(err, ErrSecondCart):
		return http.StatusConflict, "User already has an active cart", true
	}
	return 0, "", false
}

const (
	msgInvalidStatus = "Invalid status value"
	msgNotLoggedIn   = "You are not logged in! Please log in to get access."
)

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, logMsg string, err error) {
	if code, msg, ok := failure(err); ok {
		httpx.Fail(w, code, msg)
		return
	}
	httpx.ServerError(w, r, h.Log, logMsg, err)
}

// ServeMerge handles POST /orders.
func (h *Handler) ServeMerge(w http.ResponseWriter, r *http.Request) {
	h.serveCartWrite(w, r, h.Svc.MergeCart)
}

// ServeSet handles PUT /orders.
func (h *Handler) ServeSet(w http.ResponseWriter, r *http.Request) {
	h.serveCartWrite(w, r, h.Svc.SetCartQuantities)
}

func (h *Handler) serveCartWrite(w http.ResponseWriter, r *http.Request, op func(context.Context, primitive.ObjectID, []LineDelta) (CartResult, error)) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, msgNotLoggedIn)
		return
	}

	var req cartRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpx.Fail(w, http.StatusBadRequest, res.First())
		return
	}

	deltas := make([]LineDelta, 0, len(req.Products))
	for _, p := range req.Products {
		id, _ := primitive.ObjectIDFromHex(p.ID)
		deltas = append(deltas, LineDelta{ProductID: id, Size: p.Size, Color: p.Color, Quantity: p.Quantity})
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := op(ctx, uid, deltas)
	if err != nil {
		h.fail(w, r, "orders: cart write failed", err)
		return
	}

	switch {
	case res.Created:
		httpx.JSON(w, http.StatusCreated, map[string]any{"message": "Order created successfully", "order": res.Order})
	case res.LinesChanged:
		httpx.JSON(w, http.StatusOK, map[string]any{"message": "Products changed", "order": res.Order})
	default:
		httpx.JSON(w, http.StatusOK, res.Order)
	}
}

// ServeGetCart handles GET /orders.
func (h *Handler) ServeGetCart(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, msgNotLoggedIn)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	v, err := h.Svc.GetCart(ctx, uid)
	if err != nil {
		h.fail(w, r, "orders: get cart failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

// ServePlace handles POST /orders/place-order.
func (h *Handler) ServePlace(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, msgNotLoggedIn)
		return
	}

	var req placeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpx.Fail(w, http.StatusBadRequest, res.First())
		return
	}
	addrID, _ := primitive.ObjectIDFromHex(req.AddressID)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	o, err := h.Svc.PlaceOrder(ctx, uid, PlaceInput{Total: req.Total, AddressID: addrID})
	if err != nil {
		h.fail(w, r, "orders: place order failed", err)
		return
	}

	h.AuditLog.OrderPlaced(ctx, r, uid, o.ID, len(o.Products), o.Total)
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Order placed successfully", "order": o})
}

// ServeUpdateStatus handles PATCH /orders/status.
func (h *Handler) ServeUpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.ActorFrom(r)
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, msgNotLoggedIn)
		return
	}

	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status != nil && !models.OrderStatus(*req.Status).Valid() {
		httpx.Fail(w, http.StatusBadRequest, msgInvalidStatus)
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpx.Fail(w, http.StatusBadRequest, res.First())
		return
	}
	orderID, _ := primitive.ObjectIDFromHex(req.OrderID)
	status := models.OrderStatus(*req.Status)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.Svc.UpdateStatus(ctx, actor, orderID, status)
	if err != nil {
		h.fail(w, r, "orders: status update failed", err)
		return
	}

	if res.Changed {
		o := res.Order
		h.AuditLog.OrderStatusChanged(ctx, r, actor.UserID, o.UserID, o.ID, int(res.From), int(o.Status))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Order status updated successfully", "order": res.Order})
}

// ServeHistory handles GET /orders/status.
func (h *Handler) ServeHistory(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, msgNotLoggedIn)
		return
	}
	h.serveHistory(w, r, &uid)
}

// ServeHistoryAll handles GET /orders/status-all (admin).
func (h *Handler) ServeHistoryAll(w http.ResponseWriter, r *http.Request) {
	h.serveHistory(w, r, nil)
}

func (h *Handler) serveHistory(w http.ResponseWriter, r *http.Request, uid *primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	views, err := h.Svc.History(ctx, uid)
	if err != nil {
		httpx.ServerError(w, r, h.Log, "orders: history failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, views)
}
