// internal/app/features/addresses/handler.go
package addresses

import (
	"context"
	"errors"
	"net/http"

	addressstore "github.com/dalemusser/slothstore/internal/app/store/addresses"
	"github.com/dalemusser/slothstore/internal/app/system/authz"
	"github.com/dalemusser/slothstore/internal/app/system/htmlsanitize"
	"github.com/dalemusser/slothstore/internal/app/system/httpx"
	"github.com/dalemusser/slothstore/internal/app/system/inputval"
	"github.com/dalemusser/slothstore/internal/app/system/normalize"
	"github.com/dalemusser/slothstore/internal/app/system/timeouts"
	"github.com/dalemusser/slothstore/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Store *addressstore.Store
	Log   *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{Store: addressstore.New(db), Log: logger}
}

// createRequest is the body of POST /addresses.
type createRequest struct {
	FullName    string `json:"fullName" validate:"required,max=200" label:"Full name"`
	PhoneNumber string `json:"phoneNumber" validate:"required,max=30" label:"Phone number"`
	Province    string `json:"province" validate:"required,max=100" label:"Province"`
	District    string `json:"district" validate:"required,max=100" label:"District"`
	Ward        string `json:"ward" validate:"required,max=100" label:"Ward"`
	Street      string `json:"street" validate:"required,max=300" label:"Street"`
}

// updateRequest is the body of PUT /addresses/{id}. Empty fields are kept.
type updateRequest struct {
	FullName    string `json:"fullName" validate:"max=200" label:"Full name"`
	PhoneNumber string `json:"phoneNumber" validate:"max=30" label:"Phone number"`
	Province    string `json:"province" validate:"max=100" label:"Province"`
	District    string `json:"district" validate:"max=100" label:"District"`
	Ward        string `json:"ward" validate:"max=100" label:"Ward"`
	Street      string `json:"street" validate:"max=300" label:"Street"`
}

func clean(s string) string {
	return normalize.Name(htmlsanitize.StripTags(s))
}

func (r updateRequest) address() models.Address {
	return models.Address{
		FullName:    clean(r.FullName),
		PhoneNumber: clean(r.PhoneNumber),
		Province:    clean(r.Province),
		District:    clean(r.District),
		Ward:        clean(r.Ward),
		Street:      clean(r.Street),
	}
}

// ServeList handles GET /addresses. A user without a book gets [].
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "You are not logged in! Please log in to get access.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Store.List(ctx, uid)
	if err != nil {
		httpx.ServerError(w, r, h.Log, "addresses: list failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

// ServeCreate handles POST /addresses and returns the whole book.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "You are not logged in! Please log in to get access.")
		return
	}

	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpx.Fail(w, http.StatusBadRequest, res.First())
		return
	}
	addr := updateRequest(req).address()
	if addr.FullName == "" || addr.PhoneNumber == "" || addr.Street == "" {
		httpx.Fail(w, http.StatusBadRequest, "Full name, phone number and street are required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	book, err := h.Store.Add(ctx, uid, addr)
	if err != nil {
		httpx.ServerError(w, r, h.Log, "addresses: create failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, book)
}

// ServeUpdate handles PUT /addresses/{id}.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "You are not logged in! Please log in to get access.")
		return
	}
	addrID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid address id")
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	book, err := h.Store.Update(ctx, uid, addrID, req.address())
	if h.notFound(w, err) {
		return
	}
	if err != nil {
		httpx.ServerError(w, r, h.Log, "addresses: update failed", err, zap.String("address_id", addrID.Hex()))
		return
	}
	httpx.JSON(w, http.StatusOK, book)
}

// ServeDelete handles DELETE /addresses/{id}.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "You are not logged in! Please log in to get access.")
		return
	}
	addrID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid address id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	book, err := h.Store.Delete(ctx, uid, addrID)
	if h.notFound(w, err) {
		return
	}
	if err != nil {
		httpx.ServerError(w, r, h.Log, "addresses: delete failed", err, zap.String("address_id", addrID.Hex()))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Address deleted", "addressBook": book})
}

// notFound writes a 404 for a missing book or address and reports whether
// it did.
func (h *Handler) notFound(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, addressstore.ErrBookNotFound):
		httpx.Fail(w, http.StatusNotFound, "No addresses found for this user")
	case errors.Is(err, addressstore.ErrAddressNotFound):
		httpx.Fail(w, http.StatusNotFound, "Address not found")
	default:
		return false
	}
	return true
}
