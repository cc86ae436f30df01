package productstore_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	productstore "github.com/dalemusser/slothstore/internal/app/store/products"
	"github.com/dalemusser/slothstore/internal/testutil"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// setupRedis returns a client for SLOTHSTORE_TEST_REDIS_ADDR, skipping the
// test when no Redis is reachable.
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("SLOTHSTORE_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		t.Skipf("redis not available at %s: %v", addr, err)
	}
	_ = rdb.FlushDB(ctx).Err()
	t.Cleanup(func() {
		_ = rdb.FlushDB(context.Background()).Err()
		_ = rdb.Close()
	})
	return rdb
}

func TestCached_ReadThroughAndInvalidate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	rdb := setupRedis(t)
	fx := testutil.NewFixtures(t, db)
	cached := productstore.NewCached(productstore.New(db), rdb, time.Minute, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProduct(ctx, "Tee", 10, testutil.Item("M", "red", 5, 0))

	if _, err := cached.GetByID(ctx, p.ID); err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if n, _ := rdb.Exists(ctx, "product:"+p.ID.Hex()).Result(); n != 1 {
		t.Fatal("expected product to be cached")
	}

	if err := cached.AdjustInventory(ctx, p.ID, "M", "red", productstore.Stock, -1); err != nil {
		t.Fatalf("AdjustInventory: %v", err)
	}
	got, err := cached.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Inventory[0].Stock != 4 {
		t.Errorf("stale cache: stock = %d, want 4", got.Inventory[0].Stock)
	}
}

func TestCached_NotFoundIsCached(t *testing.T) {
	db := testutil.SetupTestDB(t)
	rdb := setupRedis(t)
	cached := productstore.NewCached(productstore.New(db), rdb, time.Minute, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id := primitive.NewObjectID()
	for i := 0; i < 2; i++ {
		if _, err := cached.GetByID(ctx, id); !errors.Is(err, mongo.ErrNoDocuments) {
			t.Fatalf("attempt %d: got %v", i, err)
		}
	}
	if v, _ := rdb.Get(ctx, "product:"+id.Hex()).Result(); v != "notfound" {
		t.Errorf("cached marker = %q", v)
	}
}

func TestCached_ListInvalidatedOnCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	rdb := setupRedis(t)
	fx := testutil.NewFixtures(t, db)
	cached := productstore.NewCached(productstore.New(db), rdb, time.Minute, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateProduct(ctx, "Tee", 10)
	first, err := cached.List(ctx, "")
	if err != nil || len(first) != 1 {
		t.Fatalf("List: %d, %v", len(first), err)
	}

	p, _ := productstore.New(db).GetByID(ctx, first[0].ID)
	p.Name = "Second"
	if _, err := cached.Create(ctx, *p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := cached.List(ctx, "")
	if err != nil || len(second) != 2 {
		t.Errorf("List after create: %d, %v", len(second), err)
	}
}

func TestCached_DeferInvalidationHoldsUntilFlush(t *testing.T) {
	db := testutil.SetupTestDB(t)
	rdb := setupRedis(t)
	fx := testutil.NewFixtures(t, db)
	cached := productstore.NewCached(productstore.New(db), rdb, time.Minute, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProduct(ctx, "Tee", 10, testutil.Item("M", "red", 5, 0))
	if _, err := cached.GetByID(ctx, p.ID); err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	dctx, flush := cached.DeferInvalidation(ctx)
	for i := 0; i < 2; i++ {
		if err := cached.AdjustInventory(dctx, p.ID, "M", "red", productstore.Stock, -1); err != nil {
			t.Fatalf("AdjustInventory: %v", err)
		}
	}
	if n, _ := rdb.Exists(ctx, "product:"+p.ID.Hex()).Result(); n != 1 {
		t.Fatal("cache entry dropped before flush")
	}

	flush(ctx)
	if n, _ := rdb.Exists(ctx, "product:"+p.ID.Hex()).Result(); n != 0 {
		t.Fatal("cache entry still present after flush")
	}
	got, err := cached.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Inventory[0].Stock != 3 {
		t.Errorf("stock = %d, want 3", got.Inventory[0].Stock)
	}
}
