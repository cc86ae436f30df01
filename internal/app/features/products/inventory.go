// internal/app/features/products/inventory.go
package products

import (
	"fmt"

	"github.com/dalemusser/slothstore/internal/app/system/normalize"
	"github.com/dalemusser/slothstore/internal/domain/models"
)

// InventoryError describes why an inventory list was rejected.
type InventoryError struct {
	Message string
}

func (e *InventoryError) Error() string { return e.Message }

const msgInventoryMismatch = "Inventory items must match product sizes and colors"

// ValidateInventory checks inventory against the declared sizes and colors.
// It is all-or-nothing: the first bad entry rejects the whole list. Every
// entry's (size, color) must be listed, appear once, and carry non-negative
// counters. Labels are compared after trimming.
func ValidateInventory(sizes, colors []string, inventory []models.InventoryItem) error {
	sizeSet := toSet(sizes)
	colorSet := toSet(colors)

	seen := make(map[[2]string]bool, len(inventory))
	for i, it := range inventory {
		size := normalize.Variant(it.Size)
		color := normalize.Variant(it.Color)
		if size == "" || color == "" {
			return &InventoryError{Message: fmt.Sprintf("Inventory item %d needs a size and a color", i+1)}
		}
		if !sizeSet[size] || !colorSet[color] {
			return &InventoryError{Message: msgInventoryMismatch}
		}
		key := [2]string{size, color}
		if seen[key] {
			return &InventoryError{Message: fmt.Sprintf("Duplicate inventory item for size %q and color %q", size, color)}
		}
		seen[key] = true
		if it.Stock < 0 || it.Sold < 0 {
			return &InventoryError{Message: fmt.Sprintf("Inventory item for size %q and color %q cannot have negative stock or sold", size, color)}
		}
	}
	return nil
}

func toSet(vals []string) map[string]bool {
	out := make(map[string]bool, len(vals))
	for _, v := range vals {
		if v = normalize.Variant(v); v != "" {
			out[v] = true
		}
	}
	return out
}

// cleanVariants trims labels and drops empties and duplicates, keeping order.
func cleanVariants(vals []string) []string {
	out := make([]string, 0, len(vals))
	seen := make(map[string]bool, len(vals))
	for _, v := range vals {
		v = normalize.Variant(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func cleanInventory(inv []models.InventoryItem) []models.InventoryItem {
	out := make([]models.InventoryItem, len(inv))
	for i, it := range inv {
		out[i] = models.InventoryItem{
			Size:  normalize.Variant(it.Size),
			Color: normalize.Variant(it.Color),
			Stock: it.Stock,
			Sold:  it.Sold,
		}
	}
	return out
}
