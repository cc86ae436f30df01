package indexes_test

import (
	"testing"

	"github.com/dalemusser/slothstore/internal/app/system/indexes"
	"github.com/dalemusser/slothstore/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesNamedIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	want := map[string][]string{
		"users":         {"uniq_users_email", "uniq_users_usernameci"},
		"orders":        {"uniq_orders_active_cart", "idx_orders_user_status_createdat"},
		"address_books": {"uniq_addressbooks_user"},
	}
	for coll, names := range want {
		cur, err := db.Collection(coll).Indexes().List(ctx)
		if err != nil {
			t.Fatalf("list %s indexes: %v", coll, err)
		}
		var idx []bson.M
		if err := cur.All(ctx, &idx); err != nil {
			t.Fatalf("decode %s indexes: %v", coll, err)
		}
		have := map[string]bool{}
		for _, i := range idx {
			have[i["name"].(string)] = true
		}
		for _, n := range names {
			if !have[n] {
				t.Errorf("%s: missing index %s", coll, n)
			}
		}
	}
}

func TestActiveCartIndex_OnePerUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	user := primitive.NewObjectID()
	orders := db.Collection("orders")
	if _, err := orders.InsertOne(ctx, bson.M{"user_id": user, "status": 1, "products": bson.A{}}); err != nil {
		t.Fatalf("first cart insert failed: %v", err)
	}
	if _, err := orders.InsertOne(ctx, bson.M{"user_id": user, "status": 1, "products": bson.A{}}); err == nil {
		t.Error("expected duplicate key error for a second active cart")
	}
	// placed orders are unconstrained
	for i := 0; i < 2; i++ {
		if _, err := orders.InsertOne(ctx, bson.M{"user_id": user, "status": 2, "products": bson.A{}}); err != nil {
			t.Errorf("placed order insert %d failed: %v", i, err)
		}
	}
}
