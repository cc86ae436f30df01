// internal/app/features/products/write.go
package products

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/slothstore/internal/app/store/audit"
	productstore "github.com/dalemusser/slothstore/internal/app/store/products"
	"github.com/dalemusser/slothstore/internal/app/system/authz"
	"github.com/dalemusser/slothstore/internal/app/system/htmlsanitize"
	"github.com/dalemusser/slothstore/internal/app/system/httpx"
	"github.com/dalemusser/slothstore/internal/app/system/inputval"
	"github.com/dalemusser/slothstore/internal/app/system/normalize"
	"github.com/dalemusser/slothstore/internal/app/system/timeouts"
	"github.com/dalemusser/slothstore/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeCreate handles POST /products.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpx.Fail(w, http.StatusBadRequest, res.First())
		return
	}

	name := normalize.Name(htmlsanitize.StripTags(req.Name))
	if name == "" {
		httpx.Fail(w, http.StatusBadRequest, "Name is required.")
		return
	}
	sizes := cleanVariants(req.Sizes)
	colors := cleanVariants(req.Colors)
	inv := cleanInventory(req.Inventory)
	if err := ValidateInventory(sizes, colors, inv); err != nil {
		httpx.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Catalog.Create(ctx, models.Product{
		Name:        name,
		Description: htmlsanitize.Sanitize(req.Description),
		Price:       *req.Price,
		Type:        normalize.Name(req.Type),
		Images:      req.Images,
		Sizes:       sizes,
		Colors:      colors,
		Inventory:   inv,
	})
	if err != nil {
		httpx.ServerError(w, r, h.Log, "products: create failed", err)
		return
	}

	if actor, ok := authz.ActorFrom(r); ok {
		h.AuditLog.ProductChanged(ctx, r, actor.UserID, p.ID, audit.EventProductCreated)
	}
	httpx.JSON(w, http.StatusCreated, p)
}

// ServeUpdate handles PUT /products/{id}. When the body carries inventory
// without sizes or colors, the stored lists are used for validation.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpx.Fail(w, http.StatusBadRequest, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	upd, err := h.buildUpdate(ctx, id, req)
	var ie *InventoryError
	switch {
	case errors.As(err, &ie):
		httpx.Fail(w, http.StatusBadRequest, ie.Message)
		return
	case errors.Is(err, errEmptyName):
		httpx.Fail(w, http.StatusBadRequest, "Name is required.")
		return
	case isNotFound(err):
		httpx.Fail(w, http.StatusNotFound, msgProductNotFound)
		return
	case err != nil:
		httpx.ServerError(w, r, h.Log, "products: load for update failed", err, zap.String("product_id", id.Hex()))
		return
	}

	p, err := h.Catalog.Update(ctx, id, upd)
	if isNotFound(err) {
		httpx.Fail(w, http.StatusNotFound, msgProductNotFound)
		return
	}
	if err != nil {
		httpx.ServerError(w, r, h.Log, "products: update failed", err, zap.String("product_id", id.Hex()))
		return
	}

	if actor, ok := authz.ActorFrom(r); ok {
		h.AuditLog.ProductChanged(ctx, r, actor.UserID, p.ID, audit.EventProductUpdated)
	}
	httpx.JSON(w, http.StatusOK, p)
}

var errEmptyName = errors.New("empty name")

// buildUpdate normalizes req into a store update, validating inventory
// against the effective sizes and colors.
func (h *Handler) buildUpdate(ctx context.Context, id primitive.ObjectID, req updateRequest) (productstore.Update, error) {
	var upd productstore.Update
	if req.Name != nil {
		name := normalize.Name(htmlsanitize.StripTags(*req.Name))
		if name == "" {
			return upd, errEmptyName
		}
		upd.Name = &name
	}
	if req.Description != nil {
		d := htmlsanitize.Sanitize(*req.Description)
		upd.Description = &d
	}
	upd.Price = req.Price
	if req.Type != nil {
		t := normalize.Name(*req.Type)
		upd.Type = &t
	}
	upd.Images = req.Images
	if req.Sizes != nil {
		s := cleanVariants(*req.Sizes)
		upd.Sizes = &s
	}
	if req.Colors != nil {
		c := cleanVariants(*req.Colors)
		upd.Colors = &c
	}

	// Inventory must agree with the sizes and colors the product will have
	// after the write, whether or not the body changes them.
	needStored := (req.Inventory != nil && (upd.Sizes == nil || upd.Colors == nil)) ||
		(req.Inventory == nil && (upd.Sizes != nil || upd.Colors != nil))
	var stored *models.Product
	if needStored {
		p, err := h.Catalog.GetByID(ctx, id)
		if err != nil {
			return upd, err
		}
		stored = p
	}

	sizes, colors := effective(upd.Sizes, stored, true), effective(upd.Colors, stored, false)
	switch {
	case req.Inventory != nil:
		inv := cleanInventory(*req.Inventory)
		if err := ValidateInventory(sizes, colors, inv); err != nil {
			return upd, err
		}
		upd.Inventory = &inv
	case stored != nil:
		if err := ValidateInventory(sizes, colors, stored.Inventory); err != nil {
			return upd, err
		}
	}
	return upd, nil
}

func effective(next *[]string, stored *models.Product, sizes bool) []string {
	if next != nil {
		return *next
	}
	if stored == nil {
		return nil
	}
	if sizes {
		return stored.Sizes
	}
	return stored.Colors
}

// ServeDelete handles DELETE /products/{id}.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Catalog.Delete(ctx, id)
	if isNotFound(err) {
		httpx.Fail(w, http.StatusNotFound, msgProductNotFound)
		return
	}
	if err != nil {
		httpx.ServerError(w, r, h.Log, "products: delete failed", err, zap.String("product_id", id.Hex()))
		return
	}

	if actor, ok := authz.ActorFrom(r); ok {
		h.AuditLog.ProductChanged(ctx, r, actor.UserID, id, audit.EventProductDeleted)
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}
