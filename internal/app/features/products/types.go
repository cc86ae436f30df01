// internal/app/features/products/types.go
package products

import "github.com/dalemusser/slothstore/internal/domain/models"

// createRequest is the body of POST /products.
type createRequest struct {
	Name        string                 `json:"name" validate:"required,max=200" label:"Name"`
	Description string                 `json:"description" validate:"max=10000" label:"Description"`
	Price       *float64               `json:"price" validate:"required,gte=0" label:"Price"`
	Type        string                 `json:"type" validate:"max=100" label:"Type"`
	Images      []string               `json:"images" validate:"max=20,dive,max=2048" label:"Images"`
	Sizes       []string               `json:"sizes" validate:"max=50,dive,max=50" label:"Sizes"`
	Colors      []string               `json:"colors" validate:"max=50,dive,max=50" label:"Colors"`
	Inventory   []models.InventoryItem `json:"inventory" validate:"max=2500" label:"Inventory"`
}

// updateRequest is the body of PUT /products/{id}. Absent fields are left
// unchanged.
type updateRequest struct {
	Name        *string                 `json:"name" validate:"omitempty,max=200" label:"Name"`
	Description *string                 `json:"description" validate:"omitempty,max=10000" label:"Description"`
	Price       *float64                `json:"price" validate:"omitempty,gte=0" label:"Price"`
	Type        *string                 `json:"type" validate:"omitempty,max=100" label:"Type"`
	Images      *[]string               `json:"images" validate:"omitempty,max=20,dive,max=2048" label:"Images"`
	Sizes       *[]string               `json:"sizes" validate:"omitempty,max=50,dive,max=50" label:"Sizes"`
	Colors      *[]string               `json:"colors" validate:"omitempty,max=50,dive,max=50" label:"Colors"`
	Inventory   *[]models.InventoryItem `json:"inventory" validate:"omitempty,max=2500" label:"Inventory"`
}

// statsTotals sums the per-product stats.
type statsTotals struct {
	Stock int `json:"stock"`
	Sold  int `json:"sold"`
}
