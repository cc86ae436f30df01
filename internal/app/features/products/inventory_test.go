package products

import (
	"errors"
	"testing"

	"github.com/dalemusser/slothstore/internal/domain/models"
)

func item(size, color string, stock, sold int) models.InventoryItem {
	return models.InventoryItem{Size: size, Color: color, Stock: stock, Sold: sold}
}

func TestValidateInventory(t *testing.T) {
	sizes := []string{"S", "M"}
	colors := []string{"red", "blue"}

	tests := []struct {
		name    string
		inv     []models.InventoryItem
		wantErr bool
	}{
		{"empty inventory", nil, false},
		{"all listed", []models.InventoryItem{item("S", "red", 1, 0), item("M", "blue", 0, 3)}, false},
		{"trimmed labels match", []models.InventoryItem{item(" S ", "red ", 1, 0)}, false},
		{"unlisted size", []models.InventoryItem{item("L", "red", 1, 0)}, true},
		{"unlisted color", []models.InventoryItem{item("S", "green", 1, 0)}, true},
		{"one bad entry rejects all", []models.InventoryItem{item("S", "red", 1, 0), item("XL", "red", 1, 0)}, true},
		{"duplicate pair", []models.InventoryItem{item("S", "red", 1, 0), item("S", "red", 2, 0)}, true},
		{"negative stock", []models.InventoryItem{item("S", "red", -1, 0)}, true},
		{"negative sold", []models.InventoryItem{item("S", "red", 1, -1)}, true},
		{"missing color", []models.InventoryItem{item("S", "", 1, 0)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInventory(sizes, colors, tt.inv)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var ie *InventoryError
				if !errors.As(err, &ie) {
					t.Errorf("expected *InventoryError, got %T", err)
				}
			}
		})
	}
}

func TestValidateInventory_MismatchMessage(t *testing.T) {
	err := ValidateInventory([]string{"S"}, []string{"red"}, []models.InventoryItem{item("M", "red", 1, 0)})
	if err == nil || err.Error() != msgInventoryMismatch {
		t.Errorf("err = %v, want %q", err, msgInventoryMismatch)
	}
}

func TestCleanVariants(t *testing.T) {
	got := cleanVariants([]string{" M", "M", "", "L "})
	if len(got) != 2 || got[0] != "M" || got[1] != "L" {
		t.Errorf("cleanVariants = %v", got)
	}
}
