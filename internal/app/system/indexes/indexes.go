// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureAll reconciles every collection's indexes at startup. It is
// idempotent and joins all failures so startup can refuse to continue.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var errs []error
	for _, set := range []struct {
		coll   string
		ensure func(context.Context, *mongo.Database) error
	}{
		{"users", ensureUsers},
		{"products", ensureProducts},
		{"orders", ensureOrders},
		{"address_books", ensureAddressBooks},
		{"audit_events", ensureAuditEvents},
	} {
		if err := set.ensure(ctx, db); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", set.coll, err))
		}
	}
	return errors.Join(errs...)
}

// installed is the subset of listIndexes output compared against a
// desired model.
type installed struct {
	Name    string   `bson:"name"`
	Key     bson.D   `bson:"key"`
	Unique  bool     `bson:"unique"`
	Partial bson.Raw `bson:"partialFilterExpression,omitempty"`
}

func signature(keys bson.D) string {
	var b strings.Builder
	for i, kv := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s:%v", kv.Key, kv.Value)
	}
	return b.String()
}

func installedBySignature(ctx context.Context, coll *mongo.Collection) map[string]installed {
	out := map[string]installed{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return out
	}
	var all []installed
	if err := cur.All(ctx, &all); err != nil {
		zap.L().Warn("decode indexes failed", zap.String("collection", coll.Name()), zap.Error(err))
		return out
	}
	for _, ix := range all {
		out[signature(ix.Key)] = ix
	}
	return out
}

// duplicateHint tells an operator how to find the documents blocking a
// unique index.
func duplicateHint(coll, sig string) string {
	switch {
	case coll == "users" && strings.HasPrefix(sig, "email:"):
		return `; find duplicates with db.users.aggregate([{$group:{_id:"$email",n:{$sum:1}}},{$match:{n:{$gt:1}}}])`
	case coll == "orders" && strings.HasPrefix(sig, "user_id:") && !strings.Contains(sig, ","):
		return `; a user has several active carts, find them with db.orders.aggregate([{$match:{status:1}},{$group:{_id:"$user_id",n:{$sum:1}}},{$match:{n:{$gt:1}}}])`
	}
	return ""
}

// reconcile creates missing indexes and rebuilds ones whose options or
// name drifted from the desired model.
func reconcile(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	have := installedBySignature(ctx, coll)
	var errs []error

	for _, m := range models {
		opts := m.Options
		if opts == nil {
			opts = options.Index()
		}
		name := ""
		if opts.Name != nil {
			name = *opts.Name
		}
		unique := opts.Unique != nil && *opts.Unique
		sig := signature(m.Keys.(bson.D))
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig))
		start := time.Now()

		if cur, ok := have[sig]; ok {
			if cur.Unique == unique && (len(cur.Partial) > 0) == (opts.PartialFilterExpression != nil) && (name == "" || cur.Name == name) {
				log.Debug("index up to date")
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, cur.Name); err != nil {
				log.Warn("drop stale index failed", zap.String("existing", cur.Name), zap.Error(err))
				errs = append(errs, fmt.Errorf("%s: drop %s: %w", name, cur.Name, err))
				continue
			}
			log.Info("dropped stale index", zap.String("existing", cur.Name))
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			log.Warn("create index failed", zap.Error(err))
			if unique && wafflemongo.IsDup(err) {
				err = fmt.Errorf("duplicate keys block unique index%s", duplicateHint(coll.Name(), sig))
			}
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		log.Info("index ensured", zap.Duration("took", time.Since(start)))
	}
	return errors.Join(errs...)
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return reconcile(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		// login by username is case-insensitive
		{
			Keys:    bson.D{{Key: "username_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_usernameci"),
		},
		// reset-token lookup; sparse because most users have none
		{
			Keys:    bson.D{{Key: "password_reset_token_hash", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("idx_users_resettoken"),
		},
		{
			Keys:    bson.D{{Key: "password_reset_expires", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("idx_users_resetexpires"),
		},
	})
}

func ensureProducts(ctx context.Context, db *mongo.Database) error {
	return reconcile(ctx, db.Collection("products"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "type", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetName("idx_products_type_name"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_products_createdat"),
		},
	})
}

func ensureOrders(ctx context.Context, db *mongo.Database) error {
	return reconcile(ctx, db.Collection("orders"), []mongo.IndexModel{
		// at most one active cart (status 1) per user
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": 1}).
				SetName("uniq_orders_active_cart"),
		},
		// history listings
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_orders_user_status_createdat"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_orders_status_createdat"),
		},
	})
}

func ensureAddressBooks(ctx context.Context, db *mongo.Database) error {
	return reconcile(ctx, db.Collection("address_books"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_addressbooks_user"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return reconcile(ctx, db.Collection("audit_events"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_user_timestamp"),
		},
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "event_type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_audit_category_type_timestamp"),
		},
	})
}
