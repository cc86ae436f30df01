// internal/app/store/products/cache.go
package productstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/dalemusser/slothstore/internal/domain/models"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	keyAll       = "products:all"
	keyTypePfx   = "products:type:"
	keyProdPfx   = "product:"
	notFoundMark = "notfound"
	notFoundTTL  = time.Minute
)

// Cached is a read-through Redis cache in front of Store. Redis failures
// are logged and the request falls through to Mongo.
type Cached struct {
	*Store
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

// NewCached wraps s with a Redis cache. ttl <= 0 uses five minutes.
func NewCached(s *Store, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Cached {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cached{Store: s, rdb: rdb, ttl: ttl, log: logger}
}

func productKey(id primitive.ObjectID) string { return keyProdPfx + id.Hex() }

func listKey(typ string) string {
	if typ == "" {
		return keyAll
	}
	return keyTypePfx + typ
}

func (c *Cached) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	key := productKey(id)
	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundMark {
			return nil, mongo.ErrNoDocuments
		}
		var p models.Product
		if err := json.Unmarshal(data, &p); err == nil {
			return &p, nil
		}
		c.log.Warn("product cache: bad entry, reading from db", zap.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("product cache: redis get failed", zap.String("key", key), zap.Error(err))
	}

	p, err := c.Store.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if setErr := c.rdb.Set(ctx, key, notFoundMark, notFoundTTL).Err(); setErr != nil {
			c.log.Warn("product cache: set notfound failed", zap.Error(setErr))
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	c.put(ctx, key, p)
	return p, nil
}

func (c *Cached) List(ctx context.Context, typ string) ([]models.Product, error) {
	key := listKey(typ)
	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var out []models.Product
		if err := json.Unmarshal(data, &out); err == nil {
			return out, nil
		}
		c.log.Warn("product cache: bad entry, reading from db", zap.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("product cache: redis get failed", zap.String("key", key), zap.Error(err))
	}

	out, err := c.Store.List(ctx, typ)
	if err != nil {
		return nil, err
	}
	c.put(ctx, key, out)
	return out, nil
}

func (c *Cached) Create(ctx context.Context, p models.Product) (models.Product, error) {
	out, err := c.Store.Create(ctx, p)
	if err != nil {
		return out, err
	}
	c.invalidate(ctx, out.ID, out.Type)
	return out, nil
}

func (c *Cached) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Product, error) {
	var oldType string
	if old, err := c.Store.GetByID(ctx, id); err == nil {
		oldType = old.Type
	}
	out, err := c.Store.Update(ctx, id, upd)
	if err != nil {
		c.invalidate(ctx, id, oldType)
		return nil, err
	}
	c.invalidate(ctx, id, oldType, out.Type)
	return out, nil
}

func (c *Cached) Delete(ctx context.Context, id primitive.ObjectID) error {
	var typ string
	if old, err := c.Store.GetByID(ctx, id); err == nil {
		typ = old.Type
	}
	err := c.Store.Delete(ctx, id)
	c.invalidate(ctx, id, typ)
	return err
}

func (c *Cached) AdjustInventory(ctx context.Context, id primitive.ObjectID, size, color string, counter Counter, delta int) error {
	err := c.Store.AdjustInventory(ctx, id, size, color, counter, delta)
	if err != nil {
		return err
	}
	if d, ok := ctx.Value(deferredKey{}).(*deferred); ok {
		d.add(id)
		return nil
	}
	c.invalidateProduct(ctx, id)
	return nil
}

type deferredKey struct{}

type deferred struct {
	mu  sync.Mutex
	ids []primitive.ObjectID
}

func (d *deferred) add(id primitive.ObjectID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, have := range d.ids {
		if have == id {
			return
		}
	}
	d.ids = append(d.ids, id)
}

// DeferInvalidation returns a context under which AdjustInventory records
// the products it touches instead of dropping their cache entries. flush
// drops them; call it once the transaction using ctx has returned, so a
// concurrent read cannot re-cache uncommitted stock.
func (c *Cached) DeferInvalidation(ctx context.Context) (context.Context, func(context.Context)) {
	d := &deferred{}
	flush := func(ctx context.Context) {
		d.mu.Lock()
		ids := d.ids
		d.ids = nil
		d.mu.Unlock()
		for _, id := range ids {
			c.invalidateProduct(ctx, id)
		}
	}
	return context.WithValue(ctx, deferredKey{}, d), flush
}

func (c *Cached) invalidateProduct(ctx context.Context, id primitive.ObjectID) {
	var typ string
	if p, err := c.Store.GetByID(ctx, id); err == nil {
		typ = p.Type
	}
	c.invalidate(ctx, id, typ)
}

func (c *Cached) put(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("product cache: marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("product cache: redis set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cached) invalidate(ctx context.Context, id primitive.ObjectID, types ...string) {
	keys := []string{productKey(id), keyAll}
	for _, t := range types {
		if t != "" {
			keys = append(keys, keyTypePfx+t)
		}
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("product cache: invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
