// internal/domain/models/order.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus int

const (
	OrderCancelled OrderStatus = 0
	OrderCart      OrderStatus = 1 // the user's active cart
	OrderPlaced    OrderStatus = 2 // checked out, pending approval
	OrderApproved  OrderStatus = 3
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	return s >= OrderCancelled && s <= OrderApproved
}

func (s OrderStatus) String() string {
	switch s {
	case OrderCancelled:
		return "cancelled"
	case OrderCart:
		return "cart"
	case OrderPlaced:
		return "placed"
	case OrderApproved:
		return "approved"
	}
	return "unknown"
}

// HistoryStatuses are the statuses shown in order history listings.
var HistoryStatuses = []OrderStatus{OrderCancelled, OrderPlaced, OrderApproved}

// OrderLine references a product variant by id; product data is not embedded.
type OrderLine struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"id"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Size      string             `bson:"size" json:"size"`
	Color     string             `bson:"color" json:"color"`
}

// Matches reports whether the line is for the given product variant.
func (l OrderLine) Matches(productID primitive.ObjectID, size, color string) bool {
	return l.ProductID == productID && l.Size == size && l.Color == color
}

// Order belongs to exactly one user. At most one order per user has
// Status == OrderCart.
type Order struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	UserID    primitive.ObjectID  `bson:"user_id" json:"user"`
	Products  []OrderLine         `bson:"products" json:"products"`
	AddressID *primitive.ObjectID `bson:"address_id" json:"address"`
	Total     float64             `bson:"total" json:"total"`
	Status    OrderStatus         `bson:"status" json:"status"`
	PlacedAt  *time.Time          `bson:"placed_at,omitempty" json:"placedAt,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
