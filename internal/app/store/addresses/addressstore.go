// internal/app/store/addresses/addressstore.go
package addressstore

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
	ErrBookNotFound    = errors.New("no addresses found for this user")
	ErrAddressNotFound = errors.New("address not found")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("address_books")}
}

// GetBook returns the user's address book, or ErrBookNotFound.
func (s *Store) GetBook(ctx context.Context, userID primitive.ObjectID) (*models.AddressBook, error) {
	var b models.AddressBook
	err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns the user's addresses in insertion order; empty when the user
// has no address book yet.
func (s *Store) List(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error) {
	b, err := s.GetBook(ctx, userID)
	if errors.Is(err, ErrBookNotFound) {
		return []models.Address{}, nil
	}
	if err != nil {
		return nil, err
	}
	if b.Addresses == nil {
		return []models.Address{}, nil
	}
	return b.Addresses, nil
}

// Has reports whether addressID is in the user's address book.
func (s *Store) Has(ctx context.Context, userID, addressID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"user_id": userID, "addresses._id": addressID},
		options.Count().SetLimit(1))
	return n > 0, err
}

// Add appends a with a fresh id to the user's address book, creating the
// book on first use, and returns the updated book.
func (s *Store) Add(ctx context.Context, userID primitive.ObjectID, a models.Address) (*models.AddressBook, error) {
	a.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	update := bson.M{
		"$push":        bson.M{"addresses": a},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var b models.AddressBook
	err := s.c.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&b)
	if wafflemongo.IsDup(err) {
		// Lost an upsert race on the unique user_id index; the book exists now.
		err = s.c.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&b)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Update overwrites the non-empty fields of upd onto the address with the
// given id. Returns ErrBookNotFound or ErrAddressNotFound.
func (s *Store) Update(ctx context.Context, userID, addressID primitive.ObjectID, upd models.Address) (*models.AddressBook, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	for field, v := range map[string]string{
		"full_name":    upd.FullName,
		"phone_number": upd.PhoneNumber,
		"province":     upd.Province,
		"district":     upd.District,
		"ward":         upd.Ward,
		"street":       upd.Street,
	} {
		if v != "" {
			set["addresses.$."+field] = v
		}
	}

	var b models.AddressBook
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"user_id": userID, "addresses._id": addressID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, s.missing(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Delete removes the address with the given id and returns the updated
// book. Returns ErrBookNotFound or ErrAddressNotFound.
func (s *Store) Delete(ctx context.Context, userID, addressID primitive.ObjectID) (*models.AddressBook, error) {
	var b models.AddressBook
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"user_id": userID, "addresses._id": addressID},
		bson.M{
			"$pull": bson.M{"addresses": bson.M{"_id": addressID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, s.missing(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// missing tells a missing book apart from a missing address.
func (s *Store) missing(ctx context.Context, userID primitive.ObjectID) error {
	n, err := s.c.CountDocuments(ctx, bson.M{"user_id": userID}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookNotFound
	}
	return ErrAddressNotFound
}
