package addressstore_test

import (
	"errors"
	"testing"

	addressstore "github.com/dalemusser/slothstore/internal/app/store/addresses"
	"github.com/dalemusser/slothstore/internal/domain/models"
	"github.com/dalemusser/slothstore/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sampleAddress(name string) models.Address {
	return models.Address{
		FullName:    name,
		PhoneNumber: "0900000000",
		Province:    "Ha Noi",
		District:    "Ba Dinh",
		Ward:        "Kim Ma",
		Street:      "1 Sloth Lane",
	}
}

func TestStore_List_EmptyWhenNoBook(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := addressstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	got, err := store.List(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty slice, got %v", got)
	}
}

func TestStore_AddCreatesBookAndAssignsIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := addressstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	uid := primitive.NewObjectID()

	if _, err := store.Add(ctx, uid, sampleAddress("First")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	b, err := store.Add(ctx, uid, sampleAddress("Second"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(b.Addresses) != 2 {
		t.Fatalf("got %d addresses, want 2", len(b.Addresses))
	}
	if b.Addresses[0].FullName != "First" || b.Addresses[1].FullName != "Second" {
		t.Error("addresses out of insertion order")
	}
	if b.Addresses[0].ID.IsZero() || b.Addresses[0].ID == b.Addresses[1].ID {
		t.Error("addresses need distinct ids")
	}

	ok, err := store.Has(ctx, uid, b.Addresses[1].ID)
	if err != nil || !ok {
		t.Errorf("Has = %v, %v", ok, err)
	}
	if ok, _ := store.Has(ctx, primitive.NewObjectID(), b.Addresses[1].ID); ok {
		t.Error("address should not belong to another user")
	}
}

func TestStore_UpdateMergesNonEmptyFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := addressstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	uid := primitive.NewObjectID()
	book := fx.CreateAddressBook(ctx, uid, sampleAddress("Old"), sampleAddress("Other"))
	target := book.Addresses[0].ID

	b, err := store.Update(ctx, uid, target, models.Address{FullName: "New", Street: "2 Sloth Lane"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	got := b.Addresses[b.Find(target)]
	if got.FullName != "New" || got.Street != "2 Sloth Lane" || got.Province != "Ha Noi" {
		t.Errorf("unexpected merged address: %+v", got)
	}
	if b.Addresses[1].FullName != "Other" {
		t.Error("other address was modified")
	}
}

func TestStore_UpdateDelete_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := addressstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	uid := primitive.NewObjectID()

	if _, err := store.Update(ctx, uid, primitive.NewObjectID(), sampleAddress("x")); !errors.Is(err, addressstore.ErrBookNotFound) {
		t.Errorf("update without book: got %v", err)
	}
	if _, err := store.Delete(ctx, uid, primitive.NewObjectID()); !errors.Is(err, addressstore.ErrBookNotFound) {
		t.Errorf("delete without book: got %v", err)
	}

	fx.CreateAddressBook(ctx, uid, sampleAddress("Only"))
	if _, err := store.Update(ctx, uid, primitive.NewObjectID(), sampleAddress("x")); !errors.Is(err, addressstore.ErrAddressNotFound) {
		t.Errorf("update unknown address: got %v", err)
	}
	if _, err := store.Delete(ctx, uid, primitive.NewObjectID()); !errors.Is(err, addressstore.ErrAddressNotFound) {
		t.Errorf("delete unknown address: got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := addressstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	uid := primitive.NewObjectID()
	book := fx.CreateAddressBook(ctx, uid, sampleAddress("A"), sampleAddress("B"))

	b, err := store.Delete(ctx, uid, book.Addresses[0].ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(b.Addresses) != 1 || b.Addresses[0].FullName != "B" {
		t.Errorf("unexpected book after delete: %+v", b.Addresses)
	}
}
