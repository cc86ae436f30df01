package orders

import (
	"net/http"
	"testing"

	"github.com/dalemusser/slothstore/internal/domain/models"
	"github.com/dalemusser/slothstore/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, opts Options) (*Handler, *env) {
	t.Helper()
	e := newEnv(t, opts)
	return NewHandler(e.svc, nil, zap.NewNop()), e
}

func TestServeMerge_Responses(t *testing.T) {
	h, e := newTestHandler(t, Options{AllowBackorder: true})
	p := e.fx.CreateProduct(e.ctx, "Tee", 10, testutil.Item("M", "red", 5, 0))
	user := testutil.AsTestUser(e.user)
	line := map[string]any{"id": p.ID.Hex(), "size": "M", "color": "red", "quantity": 1}

	rec := testutil.NewRecorder()
	h.ServeMerge(rec, testutil.NewAuthenticatedRequest(t, http.MethodPost, "/orders", map[string]any{"products": []any{line}}, user))
	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, "Order created successfully")

	rec = testutil.NewRecorder()
	h.ServeMerge(rec, testutil.NewAuthenticatedRequest(t, http.MethodPost, "/orders", map[string]any{"products": []any{line}}, user))
	rec.AssertStatus(t, http.StatusOK)
	var o models.Order
	rec.DecodeJSON(t, &o)
	if len(o.Products) != 1 || o.Products[0].Quantity != 2 {
		t.Errorf("cart = %+v", o.Products)
	}

	removal := map[string]any{"id": p.ID.Hex(), "size": "M", "color": "red", "quantity": 0}
	rec = testutil.NewRecorder()
	h.ServeMerge(rec, testutil.NewAuthenticatedRequest(t, http.MethodPost, "/orders", map[string]any{"products": []any{removal}}, user))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Products changed")
}

func TestServeMerge_BadInput(t *testing.T) {
	h, e := newTestHandler(t, Options{AllowBackorder: true})
	user := testutil.AsTestUser(e.user)

	tests := []struct {
		name string
		body any
	}{
		{"missing products", map[string]any{}},
		{"malformed id", map[string]any{"products": []any{map[string]any{"id": "nope"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.ServeMerge(rec, testutil.NewAuthenticatedRequest(t, http.MethodPost, "/orders", tt.body, user))
			rec.AssertStatus(t, http.StatusBadRequest)
		})
	}
}

func TestServeSet(t *testing.T) {
	h, e := newTestHandler(t, Options{AllowBackorder: true})
	p := e.fx.CreateProduct(e.ctx, "Tee", 10, testutil.Item("M", "red", 5, 0))
	e.fx.CreateOrder(e.ctx, e.user.ID, models.OrderCart, testutil.Line(p.ID, "M", "red", 4))

	body := map[string]any{"products": []any{map[string]any{"id": p.ID.Hex(), "size": "M", "color": "red", "quantity": 1}}}
	rec := testutil.NewRecorder()
	h.ServeSet(rec, testutil.NewAuthenticatedRequest(t, http.MethodPut, "/orders", body, testutil.AsTestUser(e.user)))
	rec.AssertStatus(t, http.StatusOK)

	var o models.Order
	rec.DecodeJSON(t, &o)
	if o.Products[0].Quantity != 1 {
		t.Errorf("quantity = %d, want 1", o.Products[0].Quantity)
	}
}

func TestServeGetCart_NotFound(t *testing.T) {
	h, e := newTestHandler(t, Options{AllowBackorder: true})

	rec := testutil.NewRecorder()
	h.ServeGetCart(rec, testutil.NewAuthenticatedRequest(t, http.MethodGet, "/orders", nil, testutil.AsTestUser(e.user)))
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertContains(t, "No active order found")
}

func TestServePlace(t *testing.T) {
	h, e := newTestHandler(t, Options{AllowBackorder: false})
	user := testutil.AsTestUser(e.user)
	_, _, addr := seedCheckout(t, e, 1, 2)

	rec := testutil.NewRecorder()
	h.ServePlace(rec, testutil.NewAuthenticatedRequest(t, http.MethodPost, "/orders/place-order", map[string]any{"addressId": addr.Hex(), "total": 20}, user))
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, "Insufficient stock")

	rec = testutil.NewRecorder()
	h.ServePlace(rec, testutil.NewAuthenticatedRequest(t, http.MethodPost, "/orders/place-order", map[string]any{"addressId": primitive.NewObjectID().Hex()}, user))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServeUpdateStatus(t *testing.T) {
	h, e := newTestHandler(t, Options{AllowBackorder: true})
	o := e.fx.CreateOrder(e.ctx, e.user.ID, models.OrderPlaced)
	user := testutil.AsTestUser(e.user)

	tests := []struct {
		name   string
		body   map[string]any
		as     testutil.TestUser
		status int
	}{
		{"invalid status", map[string]any{"orderId": o.ID.Hex(), "status": 9}, user, http.StatusBadRequest},
		{"missing status", map[string]any{"orderId": o.ID.Hex()}, user, http.StatusBadRequest},
		{"other user", map[string]any{"orderId": o.ID.Hex(), "status": 0}, testutil.ShopperUser(), http.StatusNotFound},
		{"unknown order", map[string]any{"orderId": primitive.NewObjectID().Hex(), "status": 0}, user, http.StatusNotFound},
		{"owner cancels", map[string]any{"orderId": o.ID.Hex(), "status": 0}, user, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.ServeUpdateStatus(rec, testutil.NewAuthenticatedRequest(t, http.MethodPatch, "/orders/status", tt.body, tt.as))
			rec.AssertStatus(t, tt.status)
		})
	}
}

func TestServeHistory_EmptyIsOK(t *testing.T) {
	h, e := newTestHandler(t, Options{AllowBackorder: true})

	rec := testutil.NewRecorder()
	h.ServeHistory(rec, testutil.NewAuthenticatedRequest(t, http.MethodGet, "/orders/status", nil, testutil.AsTestUser(e.user)))
	rec.AssertStatus(t, http.StatusOK)
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("body = %q, want []", body)
	}
}

func TestServeHistory_MissingAddressBookIsNull(t *testing.T) {
	h, e := newTestHandler(t, Options{AllowBackorder: true})
	placed := e.fx.CreateOrder(e.ctx, e.user.ID, models.OrderPlaced)
	if _, err := e.db.Collection("orders").UpdateByID(e.ctx, placed.ID, map[string]any{"$set": map[string]any{"address_id": primitive.NewObjectID()}}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := testutil.NewRecorder()
	h.ServeHistory(rec, testutil.NewAuthenticatedRequest(t, http.MethodGet, "/orders/status", nil, testutil.AsTestUser(e.user)))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"address":null`)
}
