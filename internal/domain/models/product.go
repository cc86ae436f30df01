// internal/domain/models/product.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InventoryItem is a stock/sold counter for one (size, color) combination.
type InventoryItem struct {
	Size  string `bson:"size" json:"size"`
	Color string `bson:"color" json:"color"`
	Stock int    `bson:"stock" json:"stock"`
	Sold  int    `bson:"sold" json:"sold"`
}

// Product is a catalog entry.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Images      []string           `bson:"images" json:"images"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Sizes       []string           `bson:"sizes" json:"sizes"`
	Colors      []string           `bson:"colors" json:"colors"`
	Type        string             `bson:"type" json:"type"`
	Inventory   []InventoryItem    `bson:"inventory" json:"inventory"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// FindInventory returns the index of the inventory entry for (size, color),
// or -1 when the product has none.
func (p *Product) FindInventory(size, color string) int {
	for i, it := range p.Inventory {
		if it.Size == size && it.Color == color {
			return i
		}
	}
	return -1
}
