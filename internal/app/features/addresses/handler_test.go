package addresses_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/slothstore/internal/app/features/addresses"
	"github.com/dalemusser/slothstore/internal/domain/models"
	"github.com/dalemusser/slothstore/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*addresses.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return addresses.NewHandler(db, zap.NewNop()), testutil.NewFixtures(t, db)
}

var validAddress = map[string]any{
	"fullName":    "Sam Sloth",
	"phoneNumber": "0901234567",
	"province":    "Lam Dong",
	"district":    "Da Lat",
	"ward":        "Ward 1",
	"street":      "1 Tree Rd",
}

func TestServeList_NoBookIsEmpty(t *testing.T) {
	h, _ := newHandler(t)

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest(t, http.MethodGet, "/addresses", nil, testutil.ShopperUser()))
	rec.AssertStatus(t, http.StatusOK)
	if rec.Body.String() != "[]\n" {
		t.Errorf("body = %q, want []", rec.Body.String())
	}
}

func TestServeCreate_ThenList(t *testing.T) {
	h, _ := newHandler(t)
	user := testutil.ShopperUser()

	for i := 0; i < 2; i++ {
		rec := testutil.NewRecorder()
		h.ServeCreate(rec, testutil.NewAuthenticatedRequest(t, http.MethodPost, "/addresses", validAddress, user))
		rec.AssertStatus(t, http.StatusCreated)
	}

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest(t, http.MethodGet, "/addresses", nil, user))
	var list []models.Address
	rec.DecodeJSON(t, &list)
	if len(list) != 2 {
		t.Fatalf("got %d addresses, want 2", len(list))
	}
	if list[0].ID.IsZero() || list[0].ID == list[1].ID {
		t.Errorf("addresses need distinct ids: %v %v", list[0].ID, list[1].ID)
	}
}

func TestServeCreate_MissingField(t *testing.T) {
	h, _ := newHandler(t)

	rec := testutil.NewRecorder()
	h.ServeCreate(rec, testutil.NewAuthenticatedRequest(t, http.MethodPost, "/addresses", map[string]any{"fullName": "Sam"}, testutil.ShopperUser()))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "Phone number is required.")
}

func TestServeUpdate_MergesNonEmptyFields(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	user := testutil.ShopperUser()
	book := fx.CreateAddressBook(ctx, user.OID(), models.Address{FullName: "Sam", Street: "Old St", PhoneNumber: "1"})
	id := book.Addresses[0].ID.Hex()

	req := testutil.NewAuthenticatedRequest(t, http.MethodPut, "/addresses/"+id, map[string]any{"street": "New St"}, user)
	rec := testutil.NewRecorder()
	h.ServeUpdate(rec, testutil.WithChiURLParam(req, "id", id))
	rec.AssertStatus(t, http.StatusOK)

	var got models.AddressBook
	rec.DecodeJSON(t, &got)
	a := got.Addresses[0]
	if a.Street != "New St" || a.FullName != "Sam" || a.PhoneNumber != "1" {
		t.Errorf("address = %+v", a)
	}
}

func TestServeUpdateDelete_NotFound(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	missing := primitive.NewObjectID().Hex()

	noBook := testutil.ShopperUser()
	rec := testutil.NewRecorder()
	req := testutil.NewAuthenticatedRequest(t, http.MethodPut, "/addresses/"+missing, map[string]any{"street": "x"}, noBook)
	h.ServeUpdate(rec, testutil.WithChiURLParam(req, "id", missing))
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertContains(t, "No addresses found for this user")

	withBook := testutil.ShopperUser()
	fx.CreateAddressBook(ctx, withBook.OID(), models.Address{FullName: "Sam"})
	rec = testutil.NewRecorder()
	req = testutil.NewAuthenticatedRequest(t, http.MethodDelete, "/addresses/"+missing, nil, withBook)
	h.ServeDelete(rec, testutil.WithChiURLParam(req, "id", missing))
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertContains(t, "Address not found")
}

func TestServeDelete(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	user := testutil.ShopperUser()
	book := fx.CreateAddressBook(ctx, user.OID(), models.Address{FullName: "A"}, models.Address{FullName: "B"})
	id := book.Addresses[0].ID.Hex()

	rec := testutil.NewRecorder()
	req := testutil.NewAuthenticatedRequest(t, http.MethodDelete, "/addresses/"+id, nil, user)
	h.ServeDelete(rec, testutil.WithChiURLParam(req, "id", id))
	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		Message     string             `json:"message"`
		AddressBook models.AddressBook `json:"addressBook"`
	}
	rec.DecodeJSON(t, &body)
	if len(body.AddressBook.Addresses) != 1 || body.AddressBook.Addresses[0].FullName != "B" {
		t.Errorf("book after delete = %+v", body.AddressBook)
	}
}
