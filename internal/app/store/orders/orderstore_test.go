package orderstore_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	orderstore "github.com/dalemusser/slothstore/internal/app/store/orders"
	"github.com/dalemusser/slothstore/internal/app/system/indexes"
	"github.com/dalemusser/slothstore/internal/domain/models"
	"github.com/dalemusser/slothstore/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func setup(t *testing.T) (*orderstore.Store, *testutil.Fixtures, context.Context) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	t.Cleanup(cancel)
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	return orderstore.New(db), testutil.NewFixtures(t, db), ctx
}

func TestStore_GetOrCreateCart(t *testing.T) {
	store, _, ctx := setup(t)
	uid := primitive.NewObjectID()

	o, created, err := store.GetOrCreateCart(ctx, uid)
	if err != nil {
		t.Fatalf("GetOrCreateCart: %v", err)
	}
	if !created || o.Status != models.OrderCart {
		t.Errorf("first call: created=%v status=%d", created, o.Status)
	}

	again, created, err := store.GetOrCreateCart(ctx, uid)
	if err != nil {
		t.Fatalf("GetOrCreateCart: %v", err)
	}
	if created || again.ID != o.ID {
		t.Errorf("second call should return the same cart")
	}
}

func TestStore_GetOrCreateCart_ConcurrentSingleCart(t *testing.T) {
	store, _, ctx := setup(t)
	uid := primitive.NewObjectID()

	const n = 8
	ids := make([]primitive.ObjectID, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o, _, err := store.GetOrCreateCart(ctx, uid)
			if err != nil {
				t.Errorf("GetOrCreateCart: %v", err)
				return
			}
			ids[i] = o.ID
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if ids[i] != ids[0] {
			t.Fatalf("callers saw different carts: %s vs %s", ids[i].Hex(), ids[0].Hex())
		}
	}
}

func TestStore_CreateCart_SecondFails(t *testing.T) {
	store, _, ctx := setup(t)
	uid := primitive.NewObjectID()

	if _, err := store.CreateCart(ctx, uid); err != nil {
		t.Fatalf("CreateCart: %v", err)
	}
	if _, err := store.CreateCart(ctx, uid); !errors.Is(err, orderstore.ErrActiveCartExists) {
		t.Errorf("second CreateCart: got %v", err)
	}
}

func TestStore_SaveCartLines_ResetsAddressAndTotal(t *testing.T) {
	store, fx, ctx := setup(t)
	uid := primitive.NewObjectID()
	pid := primitive.NewObjectID()
	o := fx.CreateOrder(ctx, uid, models.OrderCart)

	got, err := store.SaveCartLines(ctx, o.ID, []models.OrderLine{testutil.Line(pid, "M", "red", 2)})
	if err != nil {
		t.Fatalf("SaveCartLines: %v", err)
	}
	if len(got.Products) != 1 || got.AddressID != nil || got.Total != 0 {
		t.Errorf("unexpected cart: %+v", got)
	}

	placed := fx.CreateOrder(ctx, primitive.NewObjectID(), models.OrderPlaced)
	if _, err := store.SaveCartLines(ctx, placed.ID, nil); !errors.Is(err, orderstore.ErrNotFound) {
		t.Errorf("saving a placed order: got %v", err)
	}
}

func TestStore_ClaimForCheckout_OnlyOnce(t *testing.T) {
	store, fx, ctx := setup(t)
	uid := primitive.NewObjectID()
	addr := primitive.NewObjectID()
	o := fx.CreateOrder(ctx, uid, models.OrderCart)

	got, err := store.ClaimForCheckout(ctx, o.ID, 42.5, addr)
	if err != nil {
		t.Fatalf("ClaimForCheckout: %v", err)
	}
	if got.Status != models.OrderPlaced || got.Total != 42.5 || got.AddressID == nil || *got.AddressID != addr || got.PlacedAt == nil {
		t.Errorf("unexpected order: %+v", got)
	}
	if _, err := store.ClaimForCheckout(ctx, o.ID, 1, addr); !errors.Is(err, orderstore.ErrNotFound) {
		t.Errorf("second claim: got %v", err)
	}
}

func TestStore_TransitionStatus(t *testing.T) {
	store, fx, ctx := setup(t)
	uid := primitive.NewObjectID()
	o := fx.CreateOrder(ctx, uid, models.OrderPlaced)

	if err := store.TransitionStatus(ctx, o.ID, models.OrderPlaced, models.OrderApproved); err != nil {
		t.Fatalf("TransitionStatus: %v", err)
	}
	if err := store.TransitionStatus(ctx, o.ID, models.OrderPlaced, models.OrderCancelled); !errors.Is(err, orderstore.ErrStatusChanged) {
		t.Errorf("stale transition: got %v", err)
	}

	fx.CreateOrder(ctx, uid, models.OrderCart)
	if err := store.TransitionStatus(ctx, o.ID, models.OrderApproved, models.OrderCart); !errors.Is(err, orderstore.ErrActiveCartExists) {
		t.Errorf("second cart: got %v", err)
	}
}

func TestStore_ListByStatus(t *testing.T) {
	store, fx, ctx := setup(t)
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	fx.CreateOrder(ctx, alice, models.OrderCart)
	fx.CreateOrder(ctx, alice, models.OrderPlaced)
	fx.CreateOrder(ctx, alice, models.OrderCancelled)
	fx.CreateOrder(ctx, bob, models.OrderApproved)

	mine, err := store.ListByStatus(ctx, &alice, models.HistoryStatuses)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("alice history = %d, want 2", len(mine))
	}

	all, err := store.ListByStatus(ctx, nil, models.HistoryStatuses)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all history = %d, want 3", len(all))
	}

	none, err := store.ListByStatus(ctx, &bob, []models.OrderStatus{models.OrderCart})
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", none)
	}
	if _, err := store.FindActiveCart(ctx, bob); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("bob has no cart: got %v", err)
	}
}
