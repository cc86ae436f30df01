// internal/app/store/products/productstore.go
package productstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/slothstore/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("product not found")
	// ErrNoInventory is returned by AdjustInventory when the product or its
	// (size, color) entry does not exist.
	ErrNoInventory = errors.New("inventory entry not found")
)

// Counter names an inventory counter that AdjustInventory can change.
type Counter string

const (
	Stock Counter = "stock"
	Sold  Counter = "sold"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("products")}
}

// List returns all products, optionally filtered by type, oldest first.
func (s *Store) List(ctx context.Context, typ string) ([]models.Product, error) {
	filter := bson.M{}
	if typ != "" {
		filter["type"] = typ
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Product{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID loads a product. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetMany loads the products with the given ids, keyed by id. Unknown ids
// are simply absent from the result.
func (s *Store) GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	out := make(map[primitive.ObjectID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var p models.Product
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, cur.Err()
}

// Create inserts p with a fresh id and timestamps.
func (s *Store) Create(ctx context.Context, p models.Product) (models.Product, error) {
	p.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Sizes == nil {
		p.Sizes = []string{}
	}
	if p.Colors == nil {
		p.Colors = []string{}
	}
	if p.Inventory == nil {
		p.Inventory = []models.InventoryItem{}
	}
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// Update holds optional product edits; nil fields are left unchanged.
type Update struct {
	Name        *string
	Description *string
	Price       *float64
	Type        *string
	Images      *[]string
	Sizes       *[]string
	Colors      *[]string
	Inventory   *[]models.InventoryItem
}

// Empty reports whether the update changes nothing.
func (u Update) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil && u.Type == nil &&
		u.Images == nil && u.Sizes == nil && u.Colors == nil && u.Inventory == nil
}

func (u Update) toSet(now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Price != nil {
		set["price"] = *u.Price
	}
	if u.Type != nil {
		set["type"] = *u.Type
	}
	if u.Images != nil {
		set["images"] = nonNil(*u.Images)
	}
	if u.Sizes != nil {
		set["sizes"] = nonNil(*u.Sizes)
	}
	if u.Colors != nil {
		set["colors"] = nonNil(*u.Colors)
	}
	if u.Inventory != nil {
		inv := *u.Inventory
		if inv == nil {
			inv = []models.InventoryItem{}
		}
		set["inventory"] = inv
	}
	return set
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Update applies upd and returns the updated product, or ErrNotFound.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Product, error) {
	var out models.Product
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": upd.toSet(time.Now().UTC())},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a product, returning ErrNotFound when it does not exist.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustInventory atomically adds delta to one counter of the (size, color)
// entry of a product. The write is a single-document $inc with an array
// filter, so concurrent adjustments never lose updates. Returns
// ErrNoInventory when the product or the entry is missing.
func (s *Store) AdjustInventory(ctx context.Context, id primitive.ObjectID, size, color string, counter Counter, delta int) error {
	filter := bson.M{
		"_id":       id,
		"inventory": bson.M{"$elemMatch": bson.M{"size": size, "color": color}},
	}
	update := bson.M{
		"$inc": bson.M{"inventory.$[it]." + string(counter): delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"it.size": size, "it.color": color}},
	})
	res, err := s.c.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNoInventory
	}
	return nil
}

// Stat summarizes the inventory of one product.
type Stat struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	Name       string             `bson:"name" json:"name"`
	Type       string             `bson:"type" json:"type"`
	Variants   int                `bson:"variants" json:"variants"`
	TotalStock int                `bson:"total_stock" json:"totalStock"`
	TotalSold  int                `bson:"total_sold" json:"totalSold"`
}

// Stats aggregates per-product stock and sold totals, best sellers first.
func (s *Store) Stats(ctx context.Context) ([]Stat, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: bson.M{
			"name":        1,
			"type":        1,
			"variants":    bson.M{"$size": bson.M{"$ifNull": bson.A{"$inventory", bson.A{}}}},
			"total_stock": bson.M{"$sum": "$inventory.stock"},
			"total_sold":  bson.M{"$sum": "$inventory.sold"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "total_sold", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Stat{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
