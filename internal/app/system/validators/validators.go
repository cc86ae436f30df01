// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"slices"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// schemas maps each collection to its $jsonSchema. A nil schema only
// guarantees the collection exists.
func schemas() []struct {
	name   string
	schema bson.M
} {
	return []struct {
		name   string
		schema bson.M
	}{
		{"users", usersSchema()},
		{"products", productsSchema()},
		{"orders", ordersSchema()},
		{"address_books", addressBooksSchema()},
		{"audit_events", nil},
	}
}

// EnsureAll creates the store's collections and attaches validators.
// Deployments without collMod support (some DocumentDB versions) keep
// their collections unvalidated.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	existing, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		// Creation below tolerates NamespaceExists, so an empty list is safe.
		zap.L().Warn("listCollections failed", zap.Error(err))
		existing = nil
	}

	var errs []error
	for _, c := range schemas() {
		log := zap.L().With(zap.String("collection", c.name))
		if !slices.Contains(existing, c.name) {
			switch err := db.CreateCollection(ctx, c.name); {
			case err == nil:
				log.Info("created collection")
			case !classify(err, 48, "already exists", "namespace exists"):
				errs = append(errs, errors.New(c.name+": "+err.Error()))
				continue
			}
		}
		if c.schema == nil {
			continue
		}
		err := db.RunCommand(ctx, bson.D{
			{Key: "collMod", Value: c.name},
			{Key: "validator", Value: c.schema},
			{Key: "validationLevel", Value: "moderate"},
			{Key: "validationAction", Value: "error"},
		}).Err()
		switch {
		case err == nil:
			log.Info("validator ensured")
		case classify(err, 59, "no such command") || classify(err, 115, "not implemented", "not supported"):
			log.Info("validator skipped (unsupported)")
		default:
			errs = append(errs, errors.New(c.name+": "+err.Error()))
		}
	}
	return errors.Join(errs...)
}

// classify reports whether err carries the server code or one of the
// message fragments.
func classify(err error, code int32, fragments ...string) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, f := range fragments {
		if strings.Contains(msg, f) {
			return true
		}
	}
	return false
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

var number = bson.M{"bsonType": bson.A{"double", "int", "long", "decimal"}}

func nonNegativeInt() bson.M {
	return bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0}
}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"username", "username_ci", "email", "password_hash", "role"},
			"properties": bson.M{
				"username":      nonBlank,
				"username_ci":   nonBlank,
				"email":         nonBlank,
				"password_hash": nonBlank,
				"role":          bson.M{"enum": bson.A{"user", "admin"}},
			},
		},
	}
}

func productsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "price", "inventory"},
			"properties": bson.M{
				"name":   nonBlank,
				"price":  bson.M{"bsonType": bson.A{"double", "int", "long", "decimal"}, "minimum": 0},
				"sizes":  bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				"colors": bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				"inventory": bson.M{
					"bsonType": "array",
					"items": bson.M{
						"bsonType": "object",
						"required": bson.A{"size", "color", "stock", "sold"},
						"properties": bson.M{
							"size":  bson.M{"bsonType": "string"},
							"color": bson.M{"bsonType": "string"},
							// stock may go negative on backorder
							"stock": bson.M{"bsonType": bson.A{"int", "long"}},
							"sold":  nonNegativeInt(),
						},
					},
				},
			},
		},
	}
}

func ordersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "products", "status"},
			"properties": bson.M{
				"user_id":    bson.M{"bsonType": "objectId"},
				"address_id": bson.M{"bsonType": bson.A{"objectId", "null"}},
				"total":      number,
				"status":     bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0, "maximum": 3},
				"products": bson.M{
					"bsonType": "array",
					"items": bson.M{
						"bsonType": "object",
						"required": bson.A{"product_id", "quantity"},
						"properties": bson.M{
							"product_id": bson.M{"bsonType": "objectId"},
							"quantity":   bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
						},
					},
				},
			},
		},
	}
}

func addressBooksSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "addresses"},
			"properties": bson.M{
				"user_id": bson.M{"bsonType": "objectId"},
				"addresses": bson.M{
					"bsonType": "array",
					"items": bson.M{
						"bsonType": "object",
						"required": bson.A{"_id"},
						"properties": bson.M{
							"_id": bson.M{"bsonType": "objectId"},
						},
					},
				},
			},
		},
	}
}
