package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/slothstore/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given password (bcrypt min cost to keep tests fast).
func (f *Fixtures) CreateUser(ctx context.Context, username, email, password string, role models.Role) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash password: %v", err)
	}
	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Username:     username,
		UsernameCI:   text.Fold(username),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateProduct inserts a product with one inventory entry per item given.
func (f *Fixtures) CreateProduct(ctx context.Context, name string, price float64, inv ...models.InventoryItem) models.Product {
	f.t.Helper()

	var sizes, colors []string
	seenS, seenC := map[string]bool{}, map[string]bool{}
	for _, it := range inv {
		if !seenS[it.Size] {
			seenS[it.Size] = true
			sizes = append(sizes, it.Size)
		}
		if !seenC[it.Color] {
			seenC[it.Color] = true
			colors = append(colors, it.Color)
		}
	}
	if inv == nil {
		inv = []models.InventoryItem{}
	}

	now := time.Now().UTC()
	p := models.Product{
		ID:          primitive.NewObjectID(),
		Images:      []string{},
		Name:        name,
		Description: name + " description",
		Price:       price,
		Sizes:       sizes,
		Colors:      colors,
		Type:        "shirt",
		Inventory:   inv,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("products").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test product: %v", err)
	}
	return p
}

// CreateOrder inserts an order in the given status.
func (f *Fixtures) CreateOrder(ctx context.Context, userID primitive.ObjectID, status models.OrderStatus, lines ...models.OrderLine) models.Order {
	f.t.Helper()

	if lines == nil {
		lines = []models.OrderLine{}
	}
	now := time.Now().UTC()
	o := models.Order{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Products:  lines,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("orders").InsertOne(ctx, o); err != nil {
		f.t.Fatalf("failed to create test order: %v", err)
	}
	return o
}

// CreateAddressBook inserts an address book holding the given addresses,
// assigning ids to any that lack one.
func (f *Fixtures) CreateAddressBook(ctx context.Context, userID primitive.ObjectID, addrs ...models.Address) models.AddressBook {
	f.t.Helper()

	for i := range addrs {
		if addrs[i].ID.IsZero() {
			addrs[i].ID = primitive.NewObjectID()
		}
	}
	if addrs == nil {
		addrs = []models.Address{}
	}
	now := time.Now().UTC()
	b := models.AddressBook{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Addresses: addrs,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("address_books").InsertOne(ctx, b); err != nil {
		f.t.Fatalf("failed to create test address book: %v", err)
	}
	return b
}

// Product reloads a product by id.
func (f *Fixtures) Product(ctx context.Context, id primitive.ObjectID) models.Product {
	f.t.Helper()
	var p models.Product
	if err := f.db.Collection("products").FindOne(ctx, map[string]any{"_id": id}).Decode(&p); err != nil {
		f.t.Fatalf("reload product: %v", err)
	}
	return p
}

// Order reloads an order by id.
func (f *Fixtures) Order(ctx context.Context, id primitive.ObjectID) models.Order {
	f.t.Helper()
	var o models.Order
	if err := f.db.Collection("orders").FindOne(ctx, map[string]any{"_id": id}).Decode(&o); err != nil {
		f.t.Fatalf("reload order: %v", err)
	}
	return o
}

// Item is shorthand for an inventory entry.
func Item(size, color string, stock, sold int) models.InventoryItem {
	return models.InventoryItem{Size: size, Color: color, Stock: stock, Sold: sold}
}

// Line is shorthand for an order line.
func Line(productID primitive.ObjectID, size, color string, qty int) models.OrderLine {
	return models.OrderLine{ProductID: productID, Size: size, Color: color, Quantity: qty}
}
