// internal/app/store/orders/orderstore.go
package orderstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/slothstore/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrActiveCartExists is returned when a write would give a user a
	// second order in cart status (unique partial index on user_id).
	ErrActiveCartExists = errors.New("user already has an active cart")
	// ErrStatusChanged is returned when a conditional status write finds
	// the order no longer in the expected status.
	ErrStatusChanged = errors.New("order status changed concurrently")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("orders")}
}

// GetByID loads an order. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return nil, err
	}
	return &o, nil
}

// FindActiveCart returns the user's order in cart status, or
// mongo.ErrNoDocuments.
func (s *Store) FindActiveCart(ctx context.Context, userID primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "status": models.OrderCart}).Decode(&o)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateCart inserts an empty active cart for the user. Returns
// ErrActiveCartExists if one already exists.
func (s *Store) CreateCart(ctx context.Context, userID primitive.ObjectID) (models.Order, error) {
	now := time.Now().UTC()
	o := models.Order{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Products:  []models.OrderLine{},
		Status:    models.OrderCart,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, o); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Order{}, ErrActiveCartExists
		}
		return models.Order{}, err
	}
	return o, nil
}

// GetOrCreateCart returns the user's active cart, creating one when none
// exists. created reports whether this call inserted it. A concurrent
// creator that wins the unique-index race is handled by re-reading.
func (s *Store) GetOrCreateCart(ctx context.Context, userID primitive.ObjectID) (o *models.Order, created bool, err error) {
	o, err = s.FindActiveCart(ctx, userID)
	if err == nil {
		return o, false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, err
	}

	fresh, err := s.CreateCart(ctx, userID)
	if err == nil {
		return &fresh, true, nil
	}
	if !errors.Is(err, ErrActiveCartExists) {
		return nil, false, err
	}
	o, err = s.FindActiveCart(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return o, false, nil
}

// SaveCartLines replaces the lines of an active cart and resets its address
// and total. Returns ErrNotFound when the order is no longer a cart.
func (s *Store) SaveCartLines(ctx context.Context, id primitive.ObjectID, lines []models.OrderLine) (*models.Order, error) {
	if lines == nil {
		lines = []models.OrderLine{}
	}
	var out models.Order
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.OrderCart},
		bson.M{"$set": bson.M{
			"products":   lines,
			"address_id": nil,
			"total":      0,
			"updated_at": time.Now().UTC(),
		}},
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

// ClaimForCheckout moves a cart to placed status, recording total, address
// and placement time. Only one caller can claim a given cart; the others
// get ErrNotFound.
func (s *Store) ClaimForCheckout(ctx context.Context, id primitive.ObjectID, total float64, addressID primitive.ObjectID) (*models.Order, error) {
	now := time.Now().UTC()
	var out models.Order
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.OrderCart},
		bson.M{"$set": bson.M{
			"status":     models.OrderPlaced,
			"total":      total,
			"address_id": addressID,
			"placed_at":  now,
			"updated_at": now,
		}},
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

// TransitionStatus sets the status of an order only if it is still in
// status from. Returns ErrStatusChanged when it is not, and
// ErrActiveCartExists when moving to cart status would give the owner a
// second active cart.
func (s *Store) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrActiveCartExists
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrStatusChanged
	}
	return nil
}

// ListByStatus returns orders in any of the given statuses, newest first.
// A nil userID lists orders of every user.
func (s *Store) ListByStatus(ctx context.Context, userID *primitive.ObjectID, statuses []models.OrderStatus) ([]models.Order, error) {
	filter := bson.M{"status": bson.M{"$in": statuses}}
	if userID != nil {
		filter["user_id"] = *userID
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Order{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
